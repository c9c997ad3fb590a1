package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkinglot/backend/services/parking-service/internal/models"
)

func startStop(t *testing.T, f *fixture, lotID, plate string, who models.Identity, elapsed time.Duration) models.SessionRecord {
	t.Helper()
	ctx := context.Background()
	_, err := f.sessions.StartSession(ctx, lotID, plate, who)
	require.NoError(t, err)
	f.clock.advance(elapsed)
	record, err := f.sessions.StopSession(ctx, lotID, plate, who)
	require.NoError(t, err)
	return record
}

func TestListBillingBalanceInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.seedLot(t, 2.5, 20)

	startStop(t, f, lotID, "AA-1", alice, 90*time.Minute)
	startStop(t, f, lotID, "BB-2", bob, 25*time.Hour)
	_, err := f.sessions.StartSession(ctx, lotID, "AA-3", alice)
	require.NoError(t, err)
	f.clock.advance(2 * time.Hour)

	entries, err := f.billing.ListBilling(ctx, admin)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for _, e := range entries {
		assert.Equal(t, e.Amount-e.Payed, e.Balance)
		assert.GreaterOrEqual(t, e.Balance, 0.0)
	}

	assert.Equal(t, 5.0, entries[0].Amount)
	assert.Equal(t, 90, entries[0].Session.DurationMinutes)
	assert.Equal(t, 2, entries[0].Session.Hours)
	assert.Equal(t, models.PaymentPending, entries[0].PaymentStatus)

	assert.Equal(t, 22.5, entries[1].Amount)
	assert.Equal(t, 1, entries[1].Session.Days)

	// open session priced up to now
	assert.Nil(t, entries[2].Session.Stopped)
	assert.Equal(t, 5.0, entries[2].Amount)
}

func TestListBillingGracePeriodIsFree(t *testing.T) {
	f := newFixture(t)
	lotID := f.seedLot(t, 2.5, 20)
	startStop(t, f, lotID, "AA-1", alice, 2*time.Minute)

	entries, err := f.billing.ListBilling(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].Amount)
	assert.Zero(t, entries[0].Balance)
}

func TestListBillingFiltersByCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.seedLot(t, 2.5, 20)
	startStop(t, f, lotID, "AA-1", alice, time.Hour)
	startStop(t, f, lotID, "BB-2", bob, time.Hour)

	own, err := f.billing.ListBilling(ctx, bob)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "bob", own[0].Session.User)

	forAlice, err := f.billing.ListBillingForUser(ctx, admin, "alice")
	require.NoError(t, err)
	require.Len(t, forAlice, 1)
	assert.Equal(t, "1", forAlice[0].SessionID)

	_, err = f.billing.ListBillingForUser(ctx, bob, "alice")
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Access denied", Message(err))

	nobody, err := f.billing.ListBillingForUser(ctx, admin, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, nobody)
	assert.Empty(t, nobody)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.seedLot(t, 2.5, 20)
	record := startStop(t, f, lotID, "AA-1", alice, 3*time.Hour)

	entry, err := f.billing.RecordPayment(ctx, lotID, record.ID, 2.5, alice)
	require.NoError(t, err)
	assert.Equal(t, 7.5, entry.Amount)
	assert.Equal(t, 2.5, entry.Payed)
	assert.Equal(t, 5.0, entry.Balance)
	assert.Equal(t, models.PaymentPartial, entry.PaymentStatus)

	_, err = f.billing.RecordPayment(ctx, lotID, record.ID, 6, alice)
	assert.ErrorIs(t, err, ErrValidation)

	entry, err = f.billing.RecordPayment(ctx, lotID, record.ID, 5, admin)
	require.NoError(t, err)
	assert.Zero(t, entry.Balance)
	assert.Equal(t, models.PaymentPaid, entry.PaymentStatus)

	_, err = f.billing.RecordPayment(ctx, lotID, record.ID, 0.01, alice)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordPaymentRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.seedLot(t, 2.5, 20)
	record := startStop(t, f, lotID, "AA-1", alice, time.Hour)
	open, err := f.sessions.StartSession(ctx, lotID, "AA-2", alice)
	require.NoError(t, err)

	_, err = f.billing.RecordPayment(ctx, lotID, record.ID, -1, alice)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.billing.RecordPayment(ctx, lotID, record.ID, 1, bob)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.billing.RecordPayment(ctx, lotID, open.ID, 1, alice)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.billing.RecordPayment(ctx, lotID, "99", 1, alice)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.billing.RecordPayment(ctx, "99", record.ID, 1, alice)
	assert.ErrorIs(t, err, ErrNotFound)
}

func seedClosedSession(t *testing.T, f *fixture, lotID string, session models.ParkingSession) string {
	t.Helper()
	ctx := context.Background()
	sessions, err := f.store.LoadParkingSessions(ctx, lotID)
	require.NoError(t, err)
	id := sessions.NextID()
	sessions.Set(id, session)
	require.NoError(t, f.store.SaveParkingSessions(ctx, lotID, sessions))
	return id
}

func TestRecordPaymentPinsCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.seedLot(t, 5, 20)

	stopped := models.FormatTimestamp(f.clock.now())
	id := seedClosedSession(t, f, lotID, models.ParkingSession{
		LicensePlate: "AA-1",
		Started:      models.FormatTimestamp(f.clock.now().Add(-3 * time.Hour)),
		Stopped:      &stopped,
		User:         "alice",
	})

	entry, err := f.billing.RecordPayment(ctx, lotID, id, 15, alice)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, entry.PaymentStatus)
	assert.Zero(t, entry.Balance)

	sessions, err := f.store.LoadParkingSessions(ctx, lotID)
	require.NoError(t, err)
	stored, ok := sessions.Get(id)
	require.True(t, ok)
	require.NotNil(t, stored.Cost)
	assert.Equal(t, 15.0, *stored.Cost)

	cheaper := 1.0
	_, err = f.lots.UpdateLot(ctx, lotID, models.ParkingLotPatch{Tariff: &cheaper}, admin)
	require.NoError(t, err)

	entries, err := f.billing.ListBilling(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 15.0, entries[0].Amount)
	assert.Zero(t, entries[0].Balance)
	assert.Equal(t, models.PaymentPaid, entries[0].PaymentStatus)
}

func TestListBillingZeroCostIsPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.seedLot(t, 2.5, 20)

	record := startStop(t, f, lotID, "AA-1", alice, 2*time.Minute)
	assert.Equal(t, models.PaymentPaid, record.PaymentStatus)

	stopped := models.FormatTimestamp(f.clock.now())
	seedClosedSession(t, f, lotID, models.ParkingSession{
		LicensePlate: "BB-2",
		Started:      models.FormatTimestamp(f.clock.now().Add(-time.Minute)),
		Stopped:      &stopped,
		User:         "alice",
	})

	entries, err := f.billing.ListBilling(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Zero(t, e.Amount)
		assert.Equal(t, models.PaymentPaid, e.PaymentStatus)
	}

	_, err = f.billing.RecordPayment(ctx, lotID, record.ID, 1, alice)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListBillingRepricesZeroCostRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.seedLot(t, 2.5, 20)

	zero := 0.0
	stopped := models.FormatTimestamp(f.clock.now())
	id := seedClosedSession(t, f, lotID, models.ParkingSession{
		LicensePlate: "AA-1",
		Started:      models.FormatTimestamp(f.clock.now().Add(-3 * time.Hour)),
		Stopped:      &stopped,
		User:         "alice",
		Cost:         &zero,
	})

	entries, err := f.billing.ListBilling(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7.5, entries[0].Amount)
	assert.Equal(t, 7.5, entries[0].Balance)
	assert.Equal(t, models.PaymentPending, entries[0].PaymentStatus)

	entry, err := f.billing.RecordPayment(ctx, lotID, id, 7.5, alice)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, entry.PaymentStatus)
	assert.Equal(t, 7.5, entry.Amount)
}

func TestListBillingKeepsRecordedCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.seedLot(t, 2.5, 20)
	startStop(t, f, lotID, "AA-1", alice, 3*time.Hour)

	pricier := 10.0
	_, err := f.lots.UpdateLot(ctx, lotID, models.ParkingLotPatch{Tariff: &pricier}, admin)
	require.NoError(t, err)

	entries, err := f.billing.ListBilling(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7.5, entries[0].Amount)
}
