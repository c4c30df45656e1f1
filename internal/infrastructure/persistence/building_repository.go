package persistence

import (
	"context"
	"errors"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/tenancy"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBuildingRepository implements tenancy.BuildingRepository using GORM
type GormBuildingRepository struct {
	db *gorm.DB
}

// NewGormBuildingRepository creates a new GormBuildingRepository
func NewGormBuildingRepository(db *gorm.DB) *GormBuildingRepository {
	return &GormBuildingRepository{db: db}
}

var _ tenancy.BuildingRepository = (*GormBuildingRepository)(nil)

// FindByID finds a building by its ID
func (r *GormBuildingRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Building, error) {
	var model models.BuildingModel
	if err := dbFor(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all buildings
func (r *GormBuildingRepository) FindAll(ctx context.Context) ([]tenancy.Building, error) {
	var rows []models.BuildingModel
	if err := dbFor(ctx, r.db).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBuildings(rows), nil
}

// FindByClosingDay returns buildings whose utility period closes on the
// given day-of-month
func (r *GormBuildingRepository) FindByClosingDay(ctx context.Context, day int) ([]tenancy.Building, error) {
	var rows []models.BuildingModel
	err := dbFor(ctx, r.db).
		Where("closing_day = ?", day).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBuildings(rows), nil
}

func toDomainBuildings(rows []models.BuildingModel) []tenancy.Building {
	buildings := make([]tenancy.Building, 0, len(rows))
	for i := range rows {
		buildings = append(buildings, *rows[i].ToDomain())
	}
	return buildings
}
