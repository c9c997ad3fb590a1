package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/models"
)

// SessionService runs the parking session lifecycle: Open --stop--> Closed.
// It caches nothing; each call reloads, mutates and saves the lot's whole sessions document while
// holding that lot's lock.
type SessionService struct {
	store   Store
	calc    *Calculator
	locks   *LotLocks
	events  EventPublisher
	metrics Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewSessionService builds service. events and metrics may be nil.
func NewSessionService(
	store Store,
	calc *Calculator,
	locks *LotLocks,
	events EventPublisher,
	metrics Recorder,
	logger *zap.Logger,
) *SessionService {
	if events == nil {
		events = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &SessionService{
		store:   store,
		calc:    calc,
		locks:   locks,
		events:  events,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// StartSession opens a session for plate in lot, owned by identity.
// Ids are sequential per lot: max existing numeric id + 1, "1" for an empty lot.
func (s *SessionService) StartSession(ctx context.Context, lotID, plate string, identity models.Identity) (models.SessionRecord, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return models.SessionRecord{}, newError(ErrValidation, "licenseplate is required")
	}

	unlock := s.locks.Lock(lotID)
	defer unlock()

	if _, err := loadLot(ctx, s.store, lotID); err != nil {
		return models.SessionRecord{}, err
	}

	sessions, err := s.store.LoadParkingSessions(ctx, lotID)
	if err != nil {
		s.logger.Error("load parking sessions failed", zap.String("lot_id", lotID), zap.Error(err))
		return models.SessionRecord{}, storageError("Failed to load parking sessions", err)
	}

	id := sessions.NextID()
	session := models.ParkingSession{
		LicensePlate: plate,
		Started:      models.FormatTimestamp(s.now()),
		User:         identity.Username,
	}
	sessions.Set(id, session)

	if err := s.store.SaveParkingSessions(ctx, lotID, sessions); err != nil {
		s.logger.Error("save parking session failed", zap.String("lot_id", lotID), zap.Error(err))
		return models.SessionRecord{}, storageError("Failed to save parking session", err)
	}

	record := models.SessionRecord{ID: id, ParkingLotID: lotID, ParkingSession: session}
	s.metrics.SessionStarted(lotID)
	s.publish(models.SessionStarted, record)
	s.logger.Info("parking session started",
		zap.String("lot_id", lotID),
		zap.String("session_id", id),
		zap.String("user", identity.Username),
	)
	return record, nil
}

// StopSession closes the first open session for plate in insertion order. When several open
// sessions share a plate only that first one is closed. Non-admins may only stop their own
// sessions. The closed record is returned only after it has been persisted.
func (s *SessionService) StopSession(ctx context.Context, lotID, plate string, identity models.Identity) (models.SessionRecord, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return models.SessionRecord{}, newError(ErrValidation, "licenseplate is required")
	}

	unlock := s.locks.Lock(lotID)
	defer unlock()

	lot, err := loadLot(ctx, s.store, lotID)
	if err != nil {
		return models.SessionRecord{}, err
	}

	sessions, err := s.store.LoadParkingSessions(ctx, lotID)
	if err != nil {
		s.logger.Error("load parking sessions failed", zap.String("lot_id", lotID), zap.Error(err))
		return models.SessionRecord{}, storageError("Failed to load parking sessions", err)
	}

	var (
		id      string
		session models.ParkingSession
		found   bool
	)
	sessions.Range(func(key string, candidate models.ParkingSession) bool {
		if candidate.IsOpen() && candidate.LicensePlate == plate {
			id, session, found = key, candidate, true
			return false
		}
		return true
	})
	if !found {
		return models.SessionRecord{}, newError(ErrNotFound, "No open parking session for this license plate")
	}

	if session.User != identity.Username && !identity.IsAdmin() {
		return models.SessionRecord{}, newError(ErrUnauthorized, "Unauthorized - session belongs to another user")
	}

	startedAt, err := session.StartedAt()
	if err != nil {
		s.logger.Error("corrupt session start timestamp",
			zap.String("lot_id", lotID),
			zap.String("session_id", id),
			zap.String("started", session.Started),
		)
		return models.SessionRecord{}, storageError("Stored parking session is invalid", err)
	}

	stopAt := s.now()
	elapsed := stopAt.Sub(startedAt)
	minutes := DurationMinutes(elapsed)
	quote := s.calc.Quote(elapsed, lot.Tariffs())
	stopped := models.FormatTimestamp(stopAt)

	session.Stopped = &stopped
	session.DurationMinutes = &minutes
	session.Cost = &quote.Amount
	session.PaymentStatus = models.PaymentPending
	if quote.Amount == 0 {
		session.PaymentStatus = models.PaymentPaid
	}
	sessions.Set(id, session)

	if err := s.store.SaveParkingSessions(ctx, lotID, sessions); err != nil {
		s.logger.Error("update parking session failed",
			zap.String("lot_id", lotID),
			zap.String("session_id", id),
			zap.Error(err),
		)
		return models.SessionRecord{}, storageError("Failed to update parking session", err)
	}

	record := models.SessionRecord{ID: id, ParkingLotID: lotID, ParkingSession: session}
	s.metrics.SessionStopped(lotID, elapsed, quote.Amount)
	s.publish(models.SessionStopped, record)
	s.logger.Info("parking session stopped",
		zap.String("lot_id", lotID),
		zap.String("session_id", id),
		zap.Int("duration_minutes", minutes),
		zap.Float64("cost", quote.Amount),
	)
	return record, nil
}

// ListSessions returns the lot's sessions visible to identity: own sessions for users, all for admins.
func (s *SessionService) ListSessions(ctx context.Context, lotID string, identity models.Identity) (*models.Collection[models.ParkingSession], error) {
	if _, err := loadLot(ctx, s.store, lotID); err != nil {
		return nil, err
	}
	sessions, err := s.store.LoadParkingSessions(ctx, lotID)
	if err != nil {
		return nil, storageError("Failed to load parking sessions", err)
	}
	return sessions.Filter(func(_ string, session models.ParkingSession) bool {
		return identity.CanSee(session.User)
	}), nil
}

func (s *SessionService) publish(kind models.SessionEventType, record models.SessionRecord) {
	s.events.PublishSessionEvent(models.SessionEvent{
		Type:    kind,
		Session: record,
		At:      models.FormatTimestamp(s.now()),
	})
}
