package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"parkinglot/backend/services/parking-service/internal/models"
	"parkinglot/backend/services/parking-service/internal/storage"
)

var (
	admin = models.Identity{Username: "root", Role: models.RoleAdmin}
	alice = models.Identity{Username: "alice", Role: models.RoleUser}
	bob   = models.Identity{Username: "bob", Role: models.RoleUser}

	errDiskFull = errors.New("disk full")
)

// flakyBackend fails writes while failWrites is set.
type flakyBackend struct {
	*storage.MemoryBackend
	failWrites atomic.Bool
}

func (b *flakyBackend) Write(ctx context.Context, key string, data []byte) error {
	if b.failWrites.Load() {
		return errDiskFull
	}
	return b.MemoryBackend.Write(ctx, key, data)
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)}
}

type fixture struct {
	backend  *flakyBackend
	store    *storage.Store
	clock    *clock
	lots     *LotService
	sessions *SessionService
	billing  *BillingService
	events   *eventSink
}

type eventSink struct {
	events []models.SessionEvent
}

func (s *eventSink) PublishSessionEvent(event models.SessionEvent) {
	s.events = append(s.events, event)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	backend := &flakyBackend{MemoryBackend: storage.NewMemoryBackend()}
	store := storage.NewStore(backend)
	calc := NewCalculator(DefaultGracePeriod)
	locks := NewLotLocks()
	sink := &eventSink{}
	clk := newClock()

	f := &fixture{
		backend:  backend,
		store:    store,
		clock:    clk,
		lots:     NewLotService(store, logger),
		sessions: NewSessionService(store, calc, locks, sink, nil, logger),
		billing:  NewBillingService(store, calc, locks, nil, nil, logger),
		events:   sink,
	}
	f.lots.now = clk.now
	f.sessions.now = clk.now
	f.billing.now = clk.now
	return f
}

func (f *fixture) seedLot(t *testing.T, hourly, daily float64) string {
	t.Helper()
	lot, err := f.lots.CreateLot(context.Background(), models.ParkingLot{
		Name:      "Centrum",
		Location:  "Rotterdam",
		Capacity:  100,
		Tariff:    hourly,
		DayTariff: daily,
	}, admin)
	require.NoError(t, err)
	return lot.ID
}
