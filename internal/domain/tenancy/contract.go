package tenancy

import (
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle status of a tenancy contract
type ContractStatus string

const (
	ContractStatusPending    ContractStatus = "PENDING"
	ContractStatusActive     ContractStatus = "ACTIVE"
	ContractStatusTerminated ContractStatus = "TERMINATED"
	ContractStatusExpired    ContractStatus = "EXPIRED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusPending, ContractStatusActive, ContractStatusTerminated, ContractStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// Contract is a tenancy agreement binding a tenant to a room. It is owned by
// the tenancy subsystem; the billing engine only reads it to decide when and
// how much to bill.
type Contract struct {
	shared.BaseEntity
	RoomID      uuid.UUID
	TenantID    uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	RentAmount  decimal.Decimal // monthly rent
	CycleMonths int             // months one rent bill covers
	PenaltyRate decimal.Decimal // late-payment penalty, percent
	Status      ContractStatus
}

// IsActive reports whether the contract is currently billable
func (c *Contract) IsActive() bool {
	return c.Status == ContractStatusActive
}

// RentPerCycle returns the rent owed for one full billing cycle.
// This is the hard cap on any rent bill issued under the contract.
func (c *Contract) RentPerCycle() decimal.Decimal {
	months := c.CycleMonths
	if months < 1 {
		months = 1
	}
	return c.RentAmount.Mul(decimal.NewFromInt(int64(months)))
}

// CoversDate reports whether the given calendar date falls within the
// contract's term (inclusive on both ends)
func (c *Contract) CoversDate(date time.Time) bool {
	d := shared.Midnight(date)
	return !d.Before(shared.Midnight(c.StartDate)) && !d.After(shared.Midnight(c.EndDate))
}
