package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared/valueobject"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

var _ billing.BillRepository = (*GormBillRepository)(nil)

// Create persists a new bill together with its charge lines
func (r *GormBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	return dbFor(ctx, r.db).Create(model).Error
}

// Update persists changes to an existing bill. Charge lines are replaced
// wholesale: publication and edits may rewrite the line set.
func (r *GormBillRepository) Update(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bill_id = ?", bill.ID).
			Delete(&models.ServiceChargeLineModel{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(model).Error
	})
}

// FindByID finds a bill by its ID, including soft-deleted ones so that
// restore can reach them
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := dbFor(ctx, r.db).Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a bill by its published bill number
func (r *GormBillRepository) FindByNumber(ctx context.Context, billNumber string) (*billing.Bill, error) {
	var model models.BillModel
	if err := dbFor(ctx, r.db).Preload("Lines").
		Where("bill_number = ?", billNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all bills matching the filter with pagination
func (r *GormBillRepository) FindAll(ctx context.Context, filter billing.BillFilter) (shared.Paginated[billing.Bill], error) {
	query := dbFor(ctx, r.db).Model(&models.BillModel{})

	if !filter.IncludeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.RoomID != nil {
		query = query.Where("room_id = ?", *filter.RoomID)
	}
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PeriodFrom != nil {
		query = query.Where("period_end >= ?", *filter.PeriodFrom)
	}
	if filter.PeriodTo != nil {
		query = query.Where("period_start <= ?", *filter.PeriodTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[billing.Bill]{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var rows []models.BillModel
	if err := query.Preload("Lines").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return shared.Paginated[billing.Bill]{}, err
	}

	bills := make([]billing.Bill, 0, len(rows))
	for i := range rows {
		bills = append(bills, *rows[i].ToDomain())
	}
	return shared.NewPaginated(bills, total, page, pageSize), nil
}

// FindOverlapping returns non-deleted bills on the room whose status counts
// for overlap and whose period intersects the given range
func (r *GormBillRepository) FindOverlapping(
	ctx context.Context,
	roomID uuid.UUID,
	period valueobject.DateRange,
	billType *billing.BillType,
	excludeID *uuid.UUID,
) ([]billing.Bill, error) {
	query := dbFor(ctx, r.db).Model(&models.BillModel{}).
		Where("room_id = ?", roomID).
		Where("deleted_at IS NULL").
		Where("status IN ?", overlapStatuses()).
		Where("period_start <= ? AND period_end >= ?", period.End(), period.Start())
	if billType != nil {
		query = query.Where("type = ?", *billType)
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var rows []models.BillModel
	if err := query.Preload("Lines").Find(&rows).Error; err != nil {
		return nil, err
	}
	bills := make([]billing.Bill, 0, len(rows))
	for i := range rows {
		bills = append(bills, *rows[i].ToDomain())
	}
	return bills, nil
}

// FindLastRentBill returns the rent bill with the latest period end for the
// contract, or nil when the contract has no rent bills yet
func (r *GormBillRepository) FindLastRentBill(ctx context.Context, contractID uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	err := dbFor(ctx, r.db).Preload("Lines").
		Where("contract_id = ?", contractID).
		Where("type = ?", billing.BillTypeMonthlyRent).
		Where("status <> ?", billing.BillStatusCancelled).
		Where("deleted_at IS NULL").
		Order("period_end DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindIssuedDueBefore returns issued bills whose due date is strictly before
// the given day
func (r *GormBillRepository) FindIssuedDueBefore(ctx context.Context, day time.Time) ([]billing.Bill, error) {
	var rows []models.BillModel
	err := dbFor(ctx, r.db).Preload("Lines").
		Where("status = ?", billing.BillStatusIssued).
		Where("deleted_at IS NULL").
		Where("due_date < ?", day).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	bills := make([]billing.Bill, 0, len(rows))
	for i := range rows {
		bills = append(bills, *rows[i].ToDomain())
	}
	return bills, nil
}

// FindIssuedDueBetween returns issued bills due inside [from, to] inclusive
func (r *GormBillRepository) FindIssuedDueBetween(ctx context.Context, from, to time.Time) ([]billing.Bill, error) {
	var rows []models.BillModel
	err := dbFor(ctx, r.db).Preload("Lines").
		Where("status = ?", billing.BillStatusIssued).
		Where("deleted_at IS NULL").
		Where("due_date >= ? AND due_date <= ?", from, to).
		Order("due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	bills := make([]billing.Bill, 0, len(rows))
	for i := range rows {
		bills = append(bills, *rows[i].ToDomain())
	}
	return bills, nil
}

// overlapStatuses lists the statuses that occupy a billing period
func overlapStatuses() []billing.BillStatus {
	all := []billing.BillStatus{
		billing.BillStatusDraft,
		billing.BillStatusIssued,
		billing.BillStatusOverdue,
		billing.BillStatusPaid,
		billing.BillStatusPartiallyPaid,
		billing.BillStatusCancelled,
	}
	counted := make([]billing.BillStatus, 0, len(all))
	for _, s := range all {
		if s.CountsForOverlap() {
			counted = append(counted, s)
		}
	}
	return counted
}
