package persistence

import (
	"context"
	"testing"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/metering"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/tenancy"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRoom(t *testing.T, db *gorm.DB, buildingID uuid.UUID, number string) uuid.UUID {
	t.Helper()
	room := &tenancy.Room{Number: number, BuildingID: buildingID}
	room.ID = uuid.New()
	require.NoError(t, db.Create(models.RoomModelFromDomain(room)).Error)
	return room.ID
}

func newReading(t *testing.T, roomID uuid.UUID, month, year int, electric, water int64) *metering.UtilityReading {
	t.Helper()
	reading, err := metering.NewUtilityReading(roomID, month, year)
	require.NoError(t, err)
	reading.CurrElectric = decimal.NewFromInt(electric)
	reading.CurrWater = decimal.NewFromInt(water)
	return reading
}

func TestGormReadingRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReadingRepository(db)
	ctx := context.Background()

	buildingID := uuid.New()
	roomID := seedRoom(t, db, buildingID, "101")

	t.Run("inserts a new reading", func(t *testing.T) {
		reading := newReading(t, roomID, 3, 2026, 1250, 80)
		reading.ElectricityPrice = decimal.NewFromInt(3500)
		require.NoError(t, repo.Upsert(ctx, reading))

		found, err := repo.FindByRoomPeriod(ctx, roomID, 3, 2026)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.CurrElectric.Equal(decimal.NewFromInt(1250)))
		assert.True(t, found.ElectricityPrice.Equal(decimal.NewFromInt(3500)))
	})

	t.Run("second upsert corrects the same row", func(t *testing.T) {
		correction := newReading(t, roomID, 3, 2026, 1260, 82)
		require.NoError(t, repo.Upsert(ctx, correction))

		found, err := repo.FindByRoomPeriod(ctx, roomID, 3, 2026)
		require.NoError(t, err)
		assert.True(t, found.CurrElectric.Equal(decimal.NewFromInt(1260)))

		var count int64
		require.NoError(t, db.Model(&models.UtilityReadingModel{}).
			Where("room_id = ?", roomID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("missing period returns nil without error", func(t *testing.T) {
		found, err := repo.FindByRoomPeriod(ctx, roomID, 1, 2026)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormReadingRepository_BuildingQueries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReadingRepository(db)
	ctx := context.Background()

	buildingID := uuid.New()
	roomA := seedRoom(t, db, buildingID, "101")
	roomB := seedRoom(t, db, buildingID, "102")
	otherRoom := seedRoom(t, db, uuid.New(), "201")

	billID := uuid.New()
	billed := newReading(t, roomA, 3, 2026, 1250, 80)
	billed.BillID = &billID
	require.NoError(t, repo.Upsert(ctx, billed))
	// linkage is written through Update, as the billing transaction does
	require.NoError(t, repo.Update(ctx, billed))
	require.NoError(t, repo.Upsert(ctx, newReading(t, roomB, 3, 2026, 400, 30)))
	require.NoError(t, repo.Upsert(ctx, newReading(t, otherRoom, 3, 2026, 900, 55)))
	require.NoError(t, repo.Upsert(ctx, newReading(t, roomA, 2, 2026, 1200, 75)))

	t.Run("building period scopes by building and period", func(t *testing.T) {
		readings, err := repo.FindByBuildingPeriod(ctx, buildingID, 3, 2026)
		require.NoError(t, err)
		assert.Len(t, readings, 2)
	})

	t.Run("unbilled excludes readings linked to a bill", func(t *testing.T) {
		readings, err := repo.FindUnbilledByBuildingPeriod(ctx, buildingID, 3, 2026)
		require.NoError(t, err)
		require.Len(t, readings, 1)
		assert.Equal(t, roomB, readings[0].RoomID)
	})
}

func TestGormReadingRepository_Update_PersistsBillLink(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReadingRepository(db)
	ctx := context.Background()

	roomID := seedRoom(t, db, uuid.New(), "101")
	reading := newReading(t, roomID, 3, 2026, 1250, 80)
	require.NoError(t, repo.Upsert(ctx, reading))

	stored, err := repo.FindByRoomPeriod(ctx, roomID, 3, 2026)
	require.NoError(t, err)
	billID := uuid.New()
	require.NoError(t, stored.LinkToBill(billID))
	require.NoError(t, repo.Update(ctx, stored))

	found, err := repo.FindByRoomPeriod(ctx, roomID, 3, 2026)
	require.NoError(t, err)
	require.NotNil(t, found.BillID)
	assert.Equal(t, billID, *found.BillID)
	assert.True(t, found.IsBilled())
}
