package tenancy

import (
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxClosingDay is the largest closing day with unambiguous semantics in
// every month. Buildings configured above it are skipped by the utility
// billing pass.
const maxClosingDay = 28

// Tariffs holds a building's utility pricing configuration
type Tariffs struct {
	ElectricityPrice decimal.Decimal // per metered unit
	WaterPrice       decimal.Decimal // per metered unit
	ServiceFee       decimal.Decimal // flat shared-service fee per period
}

// Building groups rooms and carries the tariff configuration used to price
// their utility bills
type Building struct {
	shared.BaseEntity
	Name       string
	Address    string
	ClosingDay int // day-of-month ending a utility billing period, 1-28
	Tariffs    Tariffs
}

// Validate checks the building's billing configuration
func (b *Building) Validate() error {
	if b.ClosingDay < 1 {
		return shared.NewValidationError("INVALID_CLOSING_DAY", "closing day must be at least 1")
	}
	if b.Tariffs.ElectricityPrice.IsNegative() || b.Tariffs.WaterPrice.IsNegative() || b.Tariffs.ServiceFee.IsNegative() {
		return shared.NewValidationError("INVALID_TARIFF", "tariff prices must not be negative")
	}
	return nil
}

// HasAmbiguousClosingDay reports whether the configured closing day does not
// exist in every month (29-31). Such buildings are excluded from automatic
// utility billing.
func (b *Building) HasAmbiguousClosingDay() bool {
	return b.ClosingDay > maxClosingDay
}

// Room is a rentable unit inside a Building. CurrentContractID points at the
// active tenancy when the room is occupied.
type Room struct {
	shared.BaseEntity
	BuildingID        uuid.UUID
	Number            string
	CurrentContractID *uuid.UUID
}

// IsOccupied reports whether the room has an active tenancy
func (r *Room) IsOccupied() bool {
	return r.CurrentContractID != nil
}
