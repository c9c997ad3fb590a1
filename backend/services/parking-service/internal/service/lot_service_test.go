package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkinglot/backend/services/parking-service/internal/models"
)

func TestCreateLotAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.lots.CreateLot(ctx, models.ParkingLot{Name: "A", Capacity: 10}, admin)
	require.NoError(t, err)
	second, err := f.lots.CreateLot(ctx, models.ParkingLot{Name: "B", Capacity: 10}, admin)
	require.NoError(t, err)

	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "2", second.ID)
	assert.Equal(t, "2024-03-10", first.CreatedAt)

	lots, err := f.lots.ListLots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, lots.Keys())
	got, _ := lots.Get("2")
	assert.Equal(t, "B", got.Name)
	assert.Equal(t, "2", got.ID)
}

func TestCreateLotRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.lots.CreateLot(context.Background(), models.ParkingLot{Name: "A"}, alice)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Access denied", Message(err))
}

func TestCreateLotValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		lot  models.ParkingLot
	}{
		{name: "missing name", lot: models.ParkingLot{Name: "  ", Capacity: 1}},
		{name: "reserved above capacity", lot: models.ParkingLot{Name: "A", Capacity: 2, Reserved: 3}},
		{name: "negative tariff", lot: models.ParkingLot{Name: "A", Tariff: -1}},
		{name: "bad date", lot: models.ParkingLot{Name: "A", CreatedAt: "10-03-2024"}},
		{name: "bad coordinates", lot: models.ParkingLot{Name: "A", Coordinates: models.Coordinates{Lat: 91}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.lots.CreateLot(ctx, tt.lot, admin)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	lots, err := f.lots.ListLots(ctx)
	require.NoError(t, err)
	assert.Zero(t, lots.Len())
}

func TestUpdateLotMergesPresentFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seedLot(t, 2.5, 20)

	name := "Centrum Noord"
	tariff := 3.0
	updated, err := f.lots.UpdateLot(ctx, id, models.ParkingLotPatch{Name: &name, Tariff: &tariff}, admin)
	require.NoError(t, err)

	assert.Equal(t, "Centrum Noord", updated.Name)
	assert.Equal(t, 3.0, updated.Tariff)
	assert.Equal(t, 20.0, updated.DayTariff)
	assert.Equal(t, "Rotterdam", updated.Location)

	stored, err := f.lots.GetLot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestUpdateLotErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seedLot(t, 2.5, 20)

	reserved := 500
	_, err := f.lots.UpdateLot(ctx, id, models.ParkingLotPatch{Reserved: &reserved}, admin)
	assert.ErrorIs(t, err, ErrValidation)

	name := "Elsewhere"
	_, err = f.lots.UpdateLot(ctx, "99", models.ParkingLotPatch{Name: &name}, admin)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.lots.UpdateLot(ctx, id, models.ParkingLotPatch{}, admin)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "no fields to update", Message(err))
}

func TestUpdateLotChecksRoleBeforeBody(t *testing.T) {
	f := newFixture(t)
	id := f.seedLot(t, 2.5, 20)

	_, err := f.lots.UpdateLot(context.Background(), id, models.ParkingLotPatch{}, bob)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Access denied", Message(err))
}

func TestGetLotNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.lots.GetLot(context.Background(), "7")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Parking lot not found", Message(err))
}

func TestCreateLotStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.failWrites.Store(true)

	_, err := f.lots.CreateLot(context.Background(), models.ParkingLot{Name: "A"}, admin)
	require.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, errDiskFull)
}
