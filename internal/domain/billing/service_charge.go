package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceType identifies what a charge line bills for
type ServiceType string

const (
	ServiceTypeRent        ServiceType = "RENT"
	ServiceTypeElectricity ServiceType = "ELECTRICITY"
	ServiceTypeWater       ServiceType = "WATER"
	ServiceTypeSharedFee   ServiceType = "SHARED_FEE"
	ServiceTypeOther       ServiceType = "OTHER"
)

// IsValid checks if the service type is valid
func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceTypeRent, ServiceTypeElectricity, ServiceTypeWater, ServiceTypeSharedFee, ServiceTypeOther:
		return true
	}
	return false
}

// ServiceChargeLine is one transparent quantity x unit-price component of a
// bill's total. Non-draft bills require their lines to sum exactly to
// TotalAmount.
type ServiceChargeLine struct {
	ID          uuid.UUID
	BillID      uuid.UUID
	ServiceType ServiceType
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Description string
}

// NewServiceChargeLine creates a charge line with Amount = Quantity x UnitPrice
func NewServiceChargeLine(serviceType ServiceType, quantity, unitPrice decimal.Decimal, description string) ServiceChargeLine {
	return ServiceChargeLine{
		ID:          uuid.New(),
		ServiceType: serviceType,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice),
		Description: description,
	}
}

// LinesTotal sums the amounts of the given charge lines
func LinesTotal(lines []ServiceChargeLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}
	return total
}
