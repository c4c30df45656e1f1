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

// GormRoomRepository implements tenancy.RoomRepository using GORM
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

var _ tenancy.RoomRepository = (*GormRoomRepository)(nil)

// FindByID finds a room by its ID
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Room, error) {
	var model models.RoomModel
	if err := dbFor(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBuilding returns all rooms of a building ordered by room number
func (r *GormRoomRepository) FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]tenancy.Room, error) {
	var rows []models.RoomModel
	err := dbFor(ctx, r.db).
		Where("building_id = ?", buildingID).
		Order("number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainRooms(rows), nil
}

// FindOccupiedByBuilding returns rooms of the building with an active tenancy
func (r *GormRoomRepository) FindOccupiedByBuilding(ctx context.Context, buildingID uuid.UUID) ([]tenancy.Room, error) {
	var rows []models.RoomModel
	err := dbFor(ctx, r.db).
		Where("building_id = ?", buildingID).
		Where("current_contract_id IS NOT NULL").
		Order("number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainRooms(rows), nil
}

func toDomainRooms(rows []models.RoomModel) []tenancy.Room {
	rooms := make([]tenancy.Room, 0, len(rows))
	for i := range rows {
		rooms = append(rooms, *rows[i].ToDomain())
	}
	return rooms
}
