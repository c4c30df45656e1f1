package persistence

import (
	"context"
	"errors"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/metering"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReadingRepository implements metering.ReadingRepository using GORM
type GormReadingRepository struct {
	db *gorm.DB
}

// NewGormReadingRepository creates a new GormReadingRepository
func NewGormReadingRepository(db *gorm.DB) *GormReadingRepository {
	return &GormReadingRepository{db: db}
}

var _ metering.ReadingRepository = (*GormReadingRepository)(nil)

// FindByRoomPeriod returns the reading for (room, month, year), or nil when
// the period has no row yet
func (r *GormReadingRepository) FindByRoomPeriod(ctx context.Context, roomID uuid.UUID, month, year int) (*metering.UtilityReading, error) {
	var model models.UtilityReadingModel
	err := dbFor(ctx, r.db).
		Where("room_id = ? AND billing_year = ? AND billing_month = ?", roomID, year, month).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBuildingPeriod returns all readings recorded for rooms of the
// building in the given period
func (r *GormReadingRepository) FindByBuildingPeriod(ctx context.Context, buildingID uuid.UUID, month, year int) ([]metering.UtilityReading, error) {
	var rows []models.UtilityReadingModel
	err := dbFor(ctx, r.db).
		Joins("JOIN rooms ON rooms.id = utility_readings.room_id").
		Where("rooms.building_id = ?", buildingID).
		Where("utility_readings.billing_year = ? AND utility_readings.billing_month = ?", year, month).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainReadings(rows), nil
}

// Upsert writes the reading row keyed by (room, month, year). The unique
// index arbitrates concurrent inserts of the same period.
func (r *GormReadingRepository) Upsert(ctx context.Context, reading *metering.UtilityReading) error {
	model := models.ReadingModelFromDomain(reading)
	return dbFor(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "room_id"}, {Name: "billing_year"}, {Name: "billing_month"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"prev_electric", "curr_electric", "prev_water", "curr_water",
			"electricity_price", "water_price",
			"is_electric_reset", "is_water_reset",
			"updated_at",
		}),
	}).Create(model).Error
}

// Update persists changes to an existing reading
func (r *GormReadingRepository) Update(ctx context.Context, reading *metering.UtilityReading) error {
	model := models.ReadingModelFromDomain(reading)
	return dbFor(ctx, r.db).Save(model).Error
}

// FindUnbilledByBuildingPeriod returns readings of the period not yet linked
// to a bill
func (r *GormReadingRepository) FindUnbilledByBuildingPeriod(ctx context.Context, buildingID uuid.UUID, month, year int) ([]metering.UtilityReading, error) {
	var rows []models.UtilityReadingModel
	err := dbFor(ctx, r.db).
		Joins("JOIN rooms ON rooms.id = utility_readings.room_id").
		Where("rooms.building_id = ?", buildingID).
		Where("utility_readings.billing_year = ? AND utility_readings.billing_month = ?", year, month).
		Where("utility_readings.bill_id IS NULL").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainReadings(rows), nil
}

func toDomainReadings(rows []models.UtilityReadingModel) []metering.UtilityReading {
	readings := make([]metering.UtilityReading, 0, len(rows))
	for i := range rows {
		readings = append(readings, *rows[i].ToDomain())
	}
	return readings
}
