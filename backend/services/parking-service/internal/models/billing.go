package models

// BillingSession is the session part of a billing entry.
type BillingSession struct {
	LicensePlate    string  `json:"licenseplate"`
	Started         string  `json:"started"`
	Stopped         *string `json:"stopped"`
	User            string  `json:"user"`
	DurationMinutes int     `json:"duration_minutes"`
	Hours           int     `json:"hours"`
	Days            int     `json:"days"`
}

// BillingEntry is the billing view of a single parking session.
type BillingEntry struct {
	ParkingLotID  string         `json:"parking_lot_id"`
	SessionID     string         `json:"session_id"`
	Session       BillingSession `json:"session"`
	Amount        float64        `json:"amount"`
	Payed         float64        `json:"payed"`
	Balance       float64        `json:"balance"`
	PaymentStatus PaymentStatus  `json:"payment_status"`
}
