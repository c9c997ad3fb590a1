package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/models"
)

const paymentEpsilon = 0.005

// BillingService exposes the billing view over all parking sessions and records payments.
type BillingService struct {
	store   Store
	calc    *Calculator
	locks   *LotLocks
	events  EventPublisher
	metrics Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewBillingService builds service. events and metrics may be nil.
func NewBillingService(
	store Store,
	calc *Calculator,
	locks *LotLocks,
	events EventPublisher,
	metrics Recorder,
	logger *zap.Logger,
) *BillingService {
	if events == nil {
		events = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &BillingService{
		store:   store,
		calc:    calc,
		locks:   locks,
		events:  events,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// ListBilling returns entries for the caller's sessions, or every session for admins.
func (s *BillingService) ListBilling(ctx context.Context, identity models.Identity) ([]models.BillingEntry, error) {
	return s.entries(ctx, func(user string) bool { return identity.CanSee(user) })
}

// ListBillingForUser returns entries of username. Users may only ask for themselves.
func (s *BillingService) ListBillingForUser(ctx context.Context, identity models.Identity, username string) ([]models.BillingEntry, error) {
	if !identity.CanSee(username) {
		return nil, newError(ErrForbidden, "Access denied")
	}
	return s.entries(ctx, func(user string) bool { return user == username })
}

// RecordPayment adds amount to the payed total of a closed session. The payment may not exceed
// the outstanding balance, so balance stays >= 0.
func (s *BillingService) RecordPayment(ctx context.Context, lotID, sessionID string, amount float64, identity models.Identity) (models.BillingEntry, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return models.BillingEntry{}, newError(ErrValidation, "amount must be a positive number")
	}
	amount = roundCents(amount)

	unlock := s.locks.Lock(lotID)
	defer unlock()

	lot, err := loadLot(ctx, s.store, lotID)
	if err != nil {
		return models.BillingEntry{}, err
	}
	sessions, err := s.store.LoadParkingSessions(ctx, lotID)
	if err != nil {
		return models.BillingEntry{}, storageError("Failed to load parking sessions", err)
	}
	session, ok := sessions.Get(sessionID)
	if !ok {
		return models.BillingEntry{}, newError(ErrNotFound, "Parking session not found")
	}
	if !identity.CanSee(session.User) {
		return models.BillingEntry{}, newError(ErrForbidden, "Access denied")
	}
	if session.IsOpen() {
		return models.BillingEntry{}, newError(ErrValidation, "Parking session is still running")
	}

	entry, err := s.entry(lot, sessionID, session)
	if err != nil {
		return models.BillingEntry{}, storageError("Stored parking session is invalid", err)
	}
	if amount > entry.Balance+paymentEpsilon {
		return models.BillingEntry{}, newError(ErrValidation, "Payment exceeds outstanding balance of %.2f", entry.Balance)
	}

	// The amount is fixed once money is taken, so later tariff changes cannot push the
	// balance below zero.
	settled := entry.Amount
	session.Cost = &settled
	session.Payed = roundCents(session.Payed + amount)
	if session.Payed >= entry.Amount-paymentEpsilon {
		session.Payed = entry.Amount
		session.PaymentStatus = models.PaymentPaid
	} else {
		session.PaymentStatus = models.PaymentPartial
	}
	sessions.Set(sessionID, session)

	if err := s.store.SaveParkingSessions(ctx, lotID, sessions); err != nil {
		s.logger.Error("save payment failed",
			zap.String("lot_id", lotID),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return models.BillingEntry{}, storageError("Failed to save payment", err)
	}

	s.metrics.PaymentRecorded(lotID, amount)
	s.events.PublishSessionEvent(models.SessionEvent{
		Type:    models.SessionPaid,
		Session: models.SessionRecord{ID: sessionID, ParkingLotID: lotID, ParkingSession: session},
		At:      models.FormatTimestamp(s.now()),
	})
	s.logger.Info("payment recorded",
		zap.String("lot_id", lotID),
		zap.String("session_id", sessionID),
		zap.Float64("amount", amount),
		zap.String("status", string(session.PaymentStatus)),
	)
	return s.entry(lot, sessionID, session)
}

func (s *BillingService) entries(ctx context.Context, visible func(user string) bool) ([]models.BillingEntry, error) {
	lots, err := s.store.LoadParkingLots(ctx)
	if err != nil {
		return nil, storageError("Failed to load parking lots", err)
	}

	out := []models.BillingEntry{}
	var loadErr error
	lots.Range(func(lotID string, lot models.ParkingLot) bool {
		lot.ID = lotID
		sessions, err := s.store.LoadParkingSessions(ctx, lotID)
		if err != nil {
			loadErr = storageError("Failed to load parking sessions", err)
			return false
		}
		sessions.Range(func(sessionID string, session models.ParkingSession) bool {
			if !visible(session.User) {
				return true
			}
			entry, err := s.entry(lot, sessionID, session)
			if err != nil {
				s.logger.Warn("skip unreadable parking session",
					zap.String("lot_id", lotID),
					zap.String("session_id", sessionID),
					zap.Error(err),
				)
				return true
			}
			out = append(out, entry)
			return true
		})
		return true
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return out, nil
}

// entry prices a session. Closed sessions keep the cost recorded at stop time; open sessions and
// records without a cost are priced from their timestamps.
func (s *BillingService) entry(lot models.ParkingLot, sessionID string, session models.ParkingSession) (models.BillingEntry, error) {
	startedAt, err := session.StartedAt()
	if err != nil {
		return models.BillingEntry{}, err
	}
	end := s.now()
	if stoppedAt, ok, err := session.StoppedAt(); err != nil {
		return models.BillingEntry{}, err
	} else if ok {
		end = stoppedAt
	}

	elapsed := end.Sub(startedAt)
	quote := s.calc.Quote(elapsed, lot.Tariffs())

	amount := quote.Amount
	if session.Cost != nil && !isCostPlaceholder(session, quote) {
		amount = *session.Cost
	}
	minutes := DurationMinutes(elapsed)
	if session.DurationMinutes != nil {
		minutes = *session.DurationMinutes
	}
	status := session.PaymentStatus
	if status == "" {
		status = models.PaymentPending
	}
	if !session.IsOpen() && amount == 0 && status == models.PaymentPending {
		status = models.PaymentPaid
	}

	return models.BillingEntry{
		ParkingLotID: lot.ID,
		SessionID:    sessionID,
		Session: models.BillingSession{
			LicensePlate:    session.LicensePlate,
			Started:         session.Started,
			Stopped:         session.Stopped,
			User:            session.User,
			DurationMinutes: minutes,
			Hours:           quote.Hours,
			Days:            quote.Days,
		},
		Amount:        amount,
		Payed:         session.Payed,
		Balance:       amount - session.Payed,
		PaymentStatus: status,
	}, nil
}

// isCostPlaceholder reports a stored zero cost on an unpaid session whose duration is billable.
// Older records were closed with "cost": 0 before pricing existed; those are priced from their
// timestamps instead. Sessions closed here with a zero cost are marked Paid at stop time.
func isCostPlaceholder(session models.ParkingSession, quote Quote) bool {
	return *session.Cost == 0 &&
		quote.Amount > 0 &&
		session.Payed == 0 &&
		session.PaymentStatus != models.PaymentPaid
}
