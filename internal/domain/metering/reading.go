package metering

import (
	"fmt"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Utility identifies one metered utility on a reading
type Utility string

const (
	UtilityElectricity Utility = "ELECTRICITY"
	UtilityWater       Utility = "WATER"
)

// UtilityReading is the meter ledger row for one room and billing month.
// There is exactly one reading per (room, month, year). A reading is mutable
// until it is linked to a bill; once linked it is frozen and can never be
// reassigned.
type UtilityReading struct {
	shared.BaseEntity
	RoomID       uuid.UUID
	BillingMonth int
	BillingYear  int

	PrevElectric decimal.Decimal
	CurrElectric decimal.Decimal
	PrevWater    decimal.Decimal
	CurrWater    decimal.Decimal

	// Tariff snapshot at recording time, so later tariff edits do not
	// retroactively change a period's cost.
	ElectricityPrice decimal.Decimal
	WaterPrice       decimal.Decimal

	// Reset flags mark a physical meter replacement. A set flag anchors the
	// period's baseline at the caller-supplied override instead of the
	// prior month's index, and shields the field from forward propagation.
	IsElectricReset bool
	IsWaterReset    bool

	// BillID is nil until the reading is consumed by a utility bill
	BillID *uuid.UUID
}

// NewUtilityReading creates a reading for the given room and period
func NewUtilityReading(roomID uuid.UUID, month, year int) (*UtilityReading, error) {
	if roomID == uuid.Nil {
		return nil, shared.NewValidationError("MISSING_ROOM", "reading requires a room reference")
	}
	if month < 1 || month > 12 {
		return nil, shared.NewValidationError("INVALID_MONTH", fmt.Sprintf("billing month %d out of range", month))
	}
	return &UtilityReading{
		BaseEntity:   shared.NewBaseEntity(),
		RoomID:       roomID,
		BillingMonth: month,
		BillingYear:  year,
	}, nil
}

// Validate enforces the non-decreasing invariant: the new index must never
// be below the resolved baseline, for either utility. Violations are never
// clamped, they abort the whole batch.
func (r *UtilityReading) Validate() error {
	if r.CurrElectric.LessThan(r.PrevElectric) {
		return shared.NewValidationError("NEGATIVE_USAGE",
			fmt.Sprintf("electric index %s is below baseline %s for room %s period %04d-%02d",
				r.CurrElectric, r.PrevElectric, r.RoomID, r.BillingYear, r.BillingMonth))
	}
	if r.CurrWater.LessThan(r.PrevWater) {
		return shared.NewValidationError("NEGATIVE_USAGE",
			fmt.Sprintf("water index %s is below baseline %s for room %s period %04d-%02d",
				r.CurrWater, r.PrevWater, r.RoomID, r.BillingYear, r.BillingMonth))
	}
	return nil
}

// ElectricUsed returns the electricity consumed in the period
func (r *UtilityReading) ElectricUsed() decimal.Decimal {
	return r.CurrElectric.Sub(r.PrevElectric)
}

// WaterUsed returns the water consumed in the period
func (r *UtilityReading) WaterUsed() decimal.Decimal {
	return r.CurrWater.Sub(r.PrevWater)
}

// HasUsage reports whether either utility registered consumption
func (r *UtilityReading) HasUsage() bool {
	return r.ElectricUsed().GreaterThan(decimal.Zero) || r.WaterUsed().GreaterThan(decimal.Zero)
}

// IsBilled reports whether the reading was already consumed by a bill
func (r *UtilityReading) IsBilled() bool {
	return r.BillID != nil
}

// LinkToBill marks the reading as consumed by the given bill, exactly once.
// A reading already linked rejects reuse with a data-integrity error.
func (r *UtilityReading) LinkToBill(billID uuid.UUID) error {
	if billID == uuid.Nil {
		return shared.NewValidationError("MISSING_BILL", "bill reference must not be empty")
	}
	if r.BillID != nil {
		if *r.BillID == billID {
			return nil
		}
		return shared.NewDataIntegrityError("READING_ALREADY_BILLED",
			fmt.Sprintf("reading for room %s period %04d-%02d is already linked to another bill",
				r.RoomID, r.BillingYear, r.BillingMonth))
	}
	r.BillID = &billID
	return nil
}

// EnsureMutable rejects edits to a reading frozen by bill linkage
func (r *UtilityReading) EnsureMutable() error {
	if r.IsBilled() {
		return shared.NewConflictError("READING_BILLED",
			fmt.Sprintf("reading for room %s period %04d-%02d is billed and frozen",
				r.RoomID, r.BillingYear, r.BillingMonth))
	}
	return nil
}

// PropagateBaseline cascades a corrected prior-month current index into this
// reading's baseline. A set reset flag wins over propagation: the shielded
// field keeps its override.
func (r *UtilityReading) PropagateBaseline(priorCurrElectric, priorCurrWater decimal.Decimal) {
	if !r.IsElectricReset {
		r.PrevElectric = priorCurrElectric
	}
	if !r.IsWaterReset {
		r.PrevWater = priorCurrWater
	}
}

// PrevPeriod returns the calendar month immediately before (month, year)
func PrevPeriod(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// NextPeriod returns the calendar month immediately after (month, year)
func NextPeriod(month, year int) (int, int) {
	if month == 12 {
		return 1, year + 1
	}
	return month + 1, year
}
