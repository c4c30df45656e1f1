package billing

import (
	"context"
	"fmt"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// OverlapGuard enforces the period non-overlap invariant: for one room, no
// two live bills of the same periodic type may cover intersecting billing
// periods. Scoping is per room lifetime, across every contract the room has
// ever had, so back-to-back tenancies cannot double-bill a day.
type OverlapGuard struct {
	bills billing.BillRepository
}

// NewOverlapGuard creates an overlap guard over the bill repository
func NewOverlapGuard(bills billing.BillRepository) *OverlapGuard {
	return &OverlapGuard{bills: bills}
}

// AssertNoOverlap returns a conflict error carrying the colliding bill's
// number when the candidate period intersects an existing live bill of the
// same type on the room. Ad-hoc ("other") bills are exempt and always pass.
// excludeID skips the bill currently being edited.
func (g *OverlapGuard) AssertNoOverlap(
	ctx context.Context,
	roomID uuid.UUID,
	period valueobject.DateRange,
	billType billing.BillType,
	excludeID *uuid.UUID,
) error {
	if billType.OverlapExempt() {
		return nil
	}
	colliding, err := g.bills.FindOverlapping(ctx, roomID, period, &billType, excludeID)
	if err != nil {
		return fmt.Errorf("failed to query overlapping bills: %w", err)
	}
	if len(colliding) > 0 {
		return shared.NewConflictError("PERIOD_OVERLAP",
			fmt.Sprintf("period %s collides with existing %s bill %s",
				period, colliding[0].Type, colliding[0].BillNumber))
	}
	return nil
}
