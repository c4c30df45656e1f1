package billing

import (
	"fmt"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/metering"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared/valueobject"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/tenancy"
	"github.com/shopspring/decimal"
)

// UtilityCharge is the outcome of pricing one utility reading for one period
type UtilityCharge struct {
	Total            decimal.Decimal
	Lines            []billing.ServiceChargeLine
	BillableDays     int
	ServiceFeeWaived bool
}

// FairBillingCalculator prices utility periods: usage x snapshot unit price
// per metered utility, plus the building's shared service fee when the
// tenancy overlapped the period long enough to owe it.
type FairBillingCalculator struct {
	// MinStayDays is the minimum number of billable days before the flat
	// shared-service fee is owed in full; shorter stays have it waived.
	MinStayDays int
}

// NewFairBillingCalculator creates a calculator with the given waiver threshold
func NewFairBillingCalculator(minStayDays int) *FairBillingCalculator {
	return &FairBillingCalculator{MinStayDays: minStayDays}
}

// Compute prices the reading over the given billing period.
//
// A nil charge with nil error means zero-bill suppression: no usage on
// either utility and the service fee waived - no bill should exist at all.
// Negative usage is a data-integrity failure; the ledger should have
// rejected it, and billing never silently bills it.
func (c *FairBillingCalculator) Compute(
	reading *metering.UtilityReading,
	tariffs tenancy.Tariffs,
	period valueobject.DateRange,
) (*UtilityCharge, error) {
	electricUsed := reading.ElectricUsed()
	waterUsed := reading.WaterUsed()
	if electricUsed.IsNegative() || waterUsed.IsNegative() {
		return nil, shared.NewDataIntegrityError("NEGATIVE_USAGE",
			fmt.Sprintf("reading for room %s period %04d-%02d has negative usage (electric %s, water %s)",
				reading.RoomID, reading.BillingYear, reading.BillingMonth, electricUsed, waterUsed))
	}

	billableDays := period.Days()
	feeWaived := billableDays < c.MinStayDays

	if !reading.HasUsage() && feeWaived {
		return nil, nil
	}

	electricPrice := reading.ElectricityPrice
	if electricPrice.IsZero() {
		electricPrice = tariffs.ElectricityPrice
	}
	waterPrice := reading.WaterPrice
	if waterPrice.IsZero() {
		waterPrice = tariffs.WaterPrice
	}

	lines := []billing.ServiceChargeLine{
		billing.NewServiceChargeLine(billing.ServiceTypeElectricity, electricUsed, electricPrice,
			fmt.Sprintf("Electricity %s -> %s", reading.PrevElectric, reading.CurrElectric)),
		billing.NewServiceChargeLine(billing.ServiceTypeWater, waterUsed, waterPrice,
			fmt.Sprintf("Water %s -> %s", reading.PrevWater, reading.CurrWater)),
	}
	if !feeWaived {
		lines = append(lines, billing.NewServiceChargeLine(billing.ServiceTypeSharedFee,
			decimal.NewFromInt(1), tariffs.ServiceFee,
			fmt.Sprintf("Shared service fee (%d days)", billableDays)))
	}

	return &UtilityCharge{
		Total:            billing.LinesTotal(lines),
		Lines:            lines,
		BillableDays:     billableDays,
		ServiceFeeWaived: feeWaived,
	}, nil
}

// UtilityPeriod derives the billing period for (month, year) from a
// building's closing day: the period ends on the closing day of the billing
// month and starts the day after the previous period's end. Endpoints are
// midnights in loc, the engine's canonical calendar.
func UtilityPeriod(building *tenancy.Building, month, year int, loc *time.Location) valueobject.DateRange {
	end := time.Date(year, time.Month(month), building.ClosingDay, 0, 0, 0, 0, loc)
	start := end.AddDate(0, -1, 0).AddDate(0, 0, 1)
	return valueobject.MustDateRange(start, end)
}

// ValidateRentAmount enforces the rent cap: a rent bill may never charge
// more than the contract's monthly rent times its cycle length.
func ValidateRentAmount(contract *tenancy.Contract, amount decimal.Decimal) error {
	cap := contract.RentPerCycle()
	if amount.GreaterThan(cap) {
		return shared.NewValidationError("RENT_EXCEEDS_CAP",
			fmt.Sprintf("rent amount %s exceeds contract cap %s (%s x %d months)",
				amount, cap, contract.RentAmount, contract.CycleMonths))
	}
	return nil
}
