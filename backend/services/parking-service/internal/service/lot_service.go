package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/models"
)

const dateLayout = "2006-01-02"

// LotService manages the parking-lots document.
type LotService struct {
	store  Store
	logger *zap.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewLotService builds service.
func NewLotService(store Store, logger *zap.Logger) *LotService {
	return &LotService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CreateLot stores a new lot under the next sequential id. Admin only.
func (s *LotService) CreateLot(ctx context.Context, lot models.ParkingLot, identity models.Identity) (models.ParkingLot, error) {
	if err := VerifyAdmin(identity); err != nil {
		return models.ParkingLot{}, err
	}
	lot.Name = strings.TrimSpace(lot.Name)
	if lot.CreatedAt == "" {
		lot.CreatedAt = s.now().Format(dateLayout)
	}
	if err := validateLot(lot); err != nil {
		return models.ParkingLot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lots, err := s.store.LoadParkingLots(ctx)
	if err != nil {
		s.logger.Error("load parking lots failed", zap.Error(err))
		return models.ParkingLot{}, storageError("Failed to load parking lots", err)
	}

	lot.ID = lots.NextID()
	lots.Set(lot.ID, lot)
	if err := s.store.SaveParkingLots(ctx, lots); err != nil {
		s.logger.Error("save parking lot failed", zap.String("lot_id", lot.ID), zap.Error(err))
		return models.ParkingLot{}, storageError("Failed to save parking lot", err)
	}

	s.logger.Info("parking lot created",
		zap.String("lot_id", lot.ID),
		zap.String("name", lot.Name),
		zap.String("by", identity.Username),
	)
	return lot, nil
}

// GetLot returns a single lot.
func (s *LotService) GetLot(ctx context.Context, id string) (models.ParkingLot, error) {
	return loadLot(ctx, s.store, id)
}

// ListLots returns every lot in creation order.
func (s *LotService) ListLots(ctx context.Context) (*models.Collection[models.ParkingLot], error) {
	lots, err := s.store.LoadParkingLots(ctx)
	if err != nil {
		return nil, storageError("Failed to load parking lots", err)
	}
	out := models.NewCollection[models.ParkingLot]()
	lots.Range(func(id string, lot models.ParkingLot) bool {
		lot.ID = id
		out.Set(id, lot)
		return true
	})
	return out, nil
}

// UpdateLot merges the fields present in patch into the stored lot. Admin only.
func (s *LotService) UpdateLot(ctx context.Context, id string, patch models.ParkingLotPatch, identity models.Identity) (models.ParkingLot, error) {
	if err := VerifyAdmin(identity); err != nil {
		return models.ParkingLot{}, err
	}
	if patch.IsEmpty() {
		return models.ParkingLot{}, newError(ErrValidation, "no fields to update")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lots, err := s.store.LoadParkingLots(ctx)
	if err != nil {
		return models.ParkingLot{}, storageError("Failed to load parking lots", err)
	}
	lot, ok := lots.Get(id)
	if !ok {
		return models.ParkingLot{}, newError(ErrNotFound, "Parking lot not found")
	}

	patch.Apply(&lot)
	lot.ID = id
	lot.Name = strings.TrimSpace(lot.Name)
	if err := validateLot(lot); err != nil {
		return models.ParkingLot{}, err
	}

	lots.Set(id, lot)
	if err := s.store.SaveParkingLots(ctx, lots); err != nil {
		s.logger.Error("update parking lot failed", zap.String("lot_id", id), zap.Error(err))
		return models.ParkingLot{}, storageError("Failed to update parking lot", err)
	}

	s.logger.Info("parking lot updated", zap.String("lot_id", id), zap.String("by", identity.Username))
	return lot, nil
}

func validateLot(lot models.ParkingLot) error {
	var problems []string
	if lot.Name == "" {
		problems = append(problems, "name is required")
	}
	if lot.Capacity < 0 {
		problems = append(problems, "capacity must not be negative")
	}
	if lot.Reserved < 0 || lot.Reserved > lot.Capacity {
		problems = append(problems, "reserved must be between 0 and capacity")
	}
	if lot.Tariff < 0 || lot.DayTariff < 0 {
		problems = append(problems, "tariffs must not be negative")
	}
	if lot.CreatedAt != "" {
		if _, err := time.Parse(dateLayout, lot.CreatedAt); err != nil {
			problems = append(problems, "created_at must be formatted YYYY-MM-DD")
		}
	}
	if lat, lng := lot.Coordinates.Lat, lot.Coordinates.Lng; lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		problems = append(problems, "coordinates out of range")
	}
	if len(problems) > 0 {
		return newError(ErrValidation, "%s", strings.Join(problems, "; "))
	}
	return nil
}

func loadLot(ctx context.Context, store Store, id string) (models.ParkingLot, error) {
	lots, err := store.LoadParkingLots(ctx)
	if err != nil {
		return models.ParkingLot{}, storageError("Failed to load parking lots", err)
	}
	lot, ok := lots.Get(id)
	if !ok {
		return models.ParkingLot{}, newError(ErrNotFound, "Parking lot not found")
	}
	lot.ID = id
	return lot, nil
}

// VerifyAdmin fails with ErrForbidden unless identity is an ADMIN.
func VerifyAdmin(identity models.Identity) error {
	if !identity.IsAdmin() {
		return newError(ErrForbidden, "Access denied")
	}
	return nil
}
