package billing

import (
	"context"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BillFilter narrows bill queries
type BillFilter struct {
	ContractID     *uuid.UUID
	RoomID         *uuid.UUID
	TenantID       *uuid.UUID
	Type           *BillType
	Status         *BillStatus
	PeriodFrom     *time.Time
	PeriodTo       *time.Time
	IncludeDeleted bool
	Page           int
	PageSize       int
}

// BillRepository persists bills together with their charge lines.
// Create and Update write the bill and its lines in one transaction.
type BillRepository interface {
	Create(ctx context.Context, bill *Bill) error
	Update(ctx context.Context, bill *Bill) error
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	FindByNumber(ctx context.Context, billNumber string) (*Bill, error)
	FindAll(ctx context.Context, filter BillFilter) (shared.Paginated[Bill], error)

	// FindOverlapping returns non-deleted bills on the room whose status
	// counts for overlap and whose period intersects the given range.
	// billType narrows to one type when non-nil; excludeID skips the bill
	// being edited.
	FindOverlapping(ctx context.Context, roomID uuid.UUID, period valueobject.DateRange, billType *BillType, excludeID *uuid.UUID) ([]Bill, error)

	// FindLastRentBill returns the rent bill with the latest period end for
	// the contract (any non-cancelled status), or nil when none exists.
	FindLastRentBill(ctx context.Context, contractID uuid.UUID) (*Bill, error)

	// FindIssuedDueBefore returns issued bills whose due date is strictly
	// before the given day, for the overdue scan.
	FindIssuedDueBefore(ctx context.Context, day time.Time) ([]Bill, error)

	// FindIssuedDueBetween returns issued bills due inside [from, to]
	// inclusive, for the reminder scan.
	FindIssuedDueBetween(ctx context.Context, from, to time.Time) ([]Bill, error)
}
