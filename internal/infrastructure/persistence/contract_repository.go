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

// GormContractRepository implements tenancy.ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

var _ tenancy.ContractRepository = (*GormContractRepository)(nil)

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Contract, error) {
	var model models.ContractModel
	if err := dbFor(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns all currently active contracts
func (r *GormContractRepository) FindActive(ctx context.Context) ([]tenancy.Contract, error) {
	var rows []models.ContractModel
	err := dbFor(ctx, r.db).
		Where("status = ?", tenancy.ContractStatusActive).
		Order("start_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainContracts(rows), nil
}

// FindByRoom returns every contract ever bound to the room, any status
func (r *GormContractRepository) FindByRoom(ctx context.Context, roomID uuid.UUID) ([]tenancy.Contract, error) {
	var rows []models.ContractModel
	err := dbFor(ctx, r.db).
		Where("room_id = ?", roomID).
		Order("start_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainContracts(rows), nil
}

func toDomainContracts(rows []models.ContractModel) []tenancy.Contract {
	contracts := make([]tenancy.Contract, 0, len(rows))
	for i := range rows {
		contracts = append(contracts, *rows[i].ToDomain())
	}
	return contracts
}
