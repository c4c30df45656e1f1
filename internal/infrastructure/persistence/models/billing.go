package models

import (
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for the Bill aggregate. The billing
// period is stored as its two inclusive endpoints so overlap queries can run
// directly against indexed columns.
type BillModel struct {
	BaseModel
	BillNumber        string             `gorm:"type:varchar(40);uniqueIndex:idx_bills_number,where:bill_number <> ''"`
	ContractID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	RoomID            uuid.UUID          `gorm:"type:uuid;not null;index:idx_bills_room_period"`
	TenantID          uuid.UUID          `gorm:"type:uuid;not null;index"`
	Type              billing.BillType   `gorm:"type:varchar(20);not null"`
	PeriodStart       *time.Time         `gorm:"index:idx_bills_room_period"`
	PeriodEnd         *time.Time         `gorm:"index:idx_bills_room_period"`
	DueDate           *time.Time         `gorm:"index"`
	TotalAmount       decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PenaltyAmount     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Description       string             `gorm:"type:text"`
	Status            billing.BillStatus `gorm:"type:varchar(20);not null;index"`
	PendingPaymentRef *string            `gorm:"type:varchar(100)"`
	DeletedAt         *time.Time         `gorm:"index"`

	Lines []ServiceChargeLineModel `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ServiceChargeLineModel is the persistence model for one charge line of a bill
type ServiceChargeLineModel struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key"`
	BillID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	ServiceType billing.ServiceType `gorm:"type:varchar(20);not null"`
	Quantity    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Description string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ServiceChargeLineModel) TableName() string {
	return "service_charge_lines"
}

// ToDomain converts the persistence model to a domain Bill
func (m *BillModel) ToDomain() *billing.Bill {
	bill := &billing.Bill{
		BaseEntity:        m.BaseModel.ToDomain(),
		SoftDeletable:     shared.SoftDeletable{DeletedAt: m.DeletedAt},
		BillNumber:        m.BillNumber,
		ContractID:        m.ContractID,
		RoomID:            m.RoomID,
		TenantID:          m.TenantID,
		Type:              m.Type,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		PenaltyAmount:     m.PenaltyAmount,
		Description:       m.Description,
		Status:            m.Status,
		PendingPaymentRef: m.PendingPaymentRef,
		Lines:             make([]billing.ServiceChargeLine, 0, len(m.Lines)),
	}
	if m.PeriodStart != nil && m.PeriodEnd != nil {
		bill.Period = valueobject.MustDateRange(*m.PeriodStart, *m.PeriodEnd)
	}
	if m.DueDate != nil {
		bill.DueDate = *m.DueDate
	}
	for _, line := range m.Lines {
		bill.Lines = append(bill.Lines, billing.ServiceChargeLine{
			ID:          line.ID,
			BillID:      line.BillID,
			ServiceType: line.ServiceType,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
			Description: line.Description,
		})
	}
	return bill
}

// BillModelFromDomain converts a domain Bill to its persistence model
func BillModelFromDomain(bill *billing.Bill) *BillModel {
	m := &BillModel{
		BillNumber:        bill.BillNumber,
		ContractID:        bill.ContractID,
		RoomID:            bill.RoomID,
		TenantID:          bill.TenantID,
		Type:              bill.Type,
		TotalAmount:       bill.TotalAmount,
		PaidAmount:        bill.PaidAmount,
		PenaltyAmount:     bill.PenaltyAmount,
		Description:       bill.Description,
		Status:            bill.Status,
		PendingPaymentRef: bill.PendingPaymentRef,
		DeletedAt:         bill.DeletedAt,
		Lines:             make([]ServiceChargeLineModel, 0, len(bill.Lines)),
	}
	m.FromDomainBaseEntity(bill.BaseEntity)
	if !bill.Period.IsZero() {
		start := bill.Period.Start()
		end := bill.Period.End()
		m.PeriodStart = &start
		m.PeriodEnd = &end
	}
	if !bill.DueDate.IsZero() {
		due := bill.DueDate
		m.DueDate = &due
	}
	for _, line := range bill.Lines {
		m.Lines = append(m.Lines, ServiceChargeLineModel{
			ID:          line.ID,
			BillID:      bill.ID,
			ServiceType: line.ServiceType,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
			Description: line.Description,
		})
	}
	return m
}
