package service

import (
	"context"
	"time"

	"parkinglot/backend/services/parking-service/internal/models"
)

// Store defines the whole-document persistence used by lot, session and billing services.
type Store interface {
	LoadParkingLots(ctx context.Context) (*models.Collection[models.ParkingLot], error)
	SaveParkingLots(ctx context.Context, lots *models.Collection[models.ParkingLot]) error
	LoadParkingSessions(ctx context.Context, lotID string) (*models.Collection[models.ParkingSession], error)
	SaveParkingSessions(ctx context.Context, lotID string, sessions *models.Collection[models.ParkingSession]) error
}

// UserStore defines user persistence used by AuthService.
type UserStore interface {
	LoadUsers(ctx context.Context) (*models.Collection[models.User], error)
	SaveUsers(ctx context.Context, users *models.Collection[models.User]) error
}

// EventPublisher receives session events after they are persisted.
type EventPublisher interface {
	PublishSessionEvent(event models.SessionEvent)
}

// Recorder receives metric observations.
type Recorder interface {
	SessionStarted(lotID string)
	SessionStopped(lotID string, duration time.Duration, cost float64)
	PaymentRecorded(lotID string, amount float64)
}

type noopPublisher struct{}

func (noopPublisher) PublishSessionEvent(models.SessionEvent) {}

type noopRecorder struct{}

func (noopRecorder) SessionStarted(string)                         {}
func (noopRecorder) SessionStopped(string, time.Duration, float64) {}
func (noopRecorder) PaymentRecorded(string, float64)               {}
