package models

// Coordinates of a parking lot.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParkingLot as stored in the parking-lots document.
type ParkingLot struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Address     string      `json:"address"`
	Capacity    int         `json:"capacity"`
	Reserved    int         `json:"reserved"`
	Tariff      float64     `json:"tariff"`
	DayTariff   float64     `json:"daytariff"`
	CreatedAt   string      `json:"created_at"`
	Coordinates Coordinates `json:"coordinates"`
}

// Tariff is the price schedule a lot bills with.
type Tariff struct {
	Hourly float64
	Daily  float64
}

// Tariffs returns the lot price schedule.
func (l ParkingLot) Tariffs() Tariff {
	return Tariff{Hourly: l.Tariff, Daily: l.DayTariff}
}

// ParkingLotPatch carries a partial update; nil fields are left untouched.
type ParkingLotPatch struct {
	Name        *string      `json:"name"`
	Location    *string      `json:"location"`
	Address     *string      `json:"address"`
	Capacity    *int         `json:"capacity"`
	Reserved    *int         `json:"reserved"`
	Tariff      *float64     `json:"tariff"`
	DayTariff   *float64     `json:"daytariff"`
	CreatedAt   *string      `json:"created_at"`
	Coordinates *Coordinates `json:"coordinates"`
}

// Apply merges present fields into lot.
func (p ParkingLotPatch) Apply(lot *ParkingLot) {
	if p.Name != nil {
		lot.Name = *p.Name
	}
	if p.Location != nil {
		lot.Location = *p.Location
	}
	if p.Address != nil {
		lot.Address = *p.Address
	}
	if p.Capacity != nil {
		lot.Capacity = *p.Capacity
	}
	if p.Reserved != nil {
		lot.Reserved = *p.Reserved
	}
	if p.Tariff != nil {
		lot.Tariff = *p.Tariff
	}
	if p.DayTariff != nil {
		lot.DayTariff = *p.DayTariff
	}
	if p.CreatedAt != nil {
		lot.CreatedAt = *p.CreatedAt
	}
	if p.Coordinates != nil {
		lot.Coordinates = *p.Coordinates
	}
}

// IsEmpty reports whether the patch carries no field at all.
func (p ParkingLotPatch) IsEmpty() bool {
	return p == ParkingLotPatch{}
}
