package models

import (
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for tenancy contracts. The billing
// engine only reads this table; contract mutation lives in the tenancy
// subsystem.
type ContractModel struct {
	BaseModel
	RoomID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	TenantID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	StartDate   time.Time              `gorm:"not null"`
	EndDate     time.Time              `gorm:"not null"`
	RentAmount  decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	CycleMonths int                    `gorm:"not null;default:1"`
	PenaltyRate decimal.Decimal        `gorm:"type:decimal(8,4);not null"`
	Status      tenancy.ContractStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract
func (m *ContractModel) ToDomain() *tenancy.Contract {
	return &tenancy.Contract{
		BaseEntity:  m.BaseModel.ToDomain(),
		RoomID:      m.RoomID,
		TenantID:    m.TenantID,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		RentAmount:  m.RentAmount,
		CycleMonths: m.CycleMonths,
		PenaltyRate: m.PenaltyRate,
		Status:      m.Status,
	}
}

// ContractModelFromDomain converts a domain Contract to its persistence model
func ContractModelFromDomain(c *tenancy.Contract) *ContractModel {
	m := &ContractModel{
		RoomID:      c.RoomID,
		TenantID:    c.TenantID,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		RentAmount:  c.RentAmount,
		CycleMonths: c.CycleMonths,
		PenaltyRate: c.PenaltyRate,
		Status:      c.Status,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// BuildingModel is the persistence model for buildings and their tariffs
type BuildingModel struct {
	BaseModel
	Name             string          `gorm:"type:varchar(200);not null"`
	Address          string          `gorm:"type:text"`
	ClosingDay       int             `gorm:"not null;index"`
	ElectricityPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WaterPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ServiceFee       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (BuildingModel) TableName() string {
	return "buildings"
}

// ToDomain converts the persistence model to a domain Building
func (m *BuildingModel) ToDomain() *tenancy.Building {
	return &tenancy.Building{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Address:    m.Address,
		ClosingDay: m.ClosingDay,
		Tariffs: tenancy.Tariffs{
			ElectricityPrice: m.ElectricityPrice,
			WaterPrice:       m.WaterPrice,
			ServiceFee:       m.ServiceFee,
		},
	}
}

// BuildingModelFromDomain converts a domain Building to its persistence model
func BuildingModelFromDomain(b *tenancy.Building) *BuildingModel {
	m := &BuildingModel{
		Name:             b.Name,
		Address:          b.Address,
		ClosingDay:       b.ClosingDay,
		ElectricityPrice: b.Tariffs.ElectricityPrice,
		WaterPrice:       b.Tariffs.WaterPrice,
		ServiceFee:       b.Tariffs.ServiceFee,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// RoomModel is the persistence model for rooms
type RoomModel struct {
	BaseModel
	BuildingID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Number            string     `gorm:"type:varchar(20);not null"`
	CurrentContractID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (RoomModel) TableName() string {
	return "rooms"
}

// ToDomain converts the persistence model to a domain Room
func (m *RoomModel) ToDomain() *tenancy.Room {
	return &tenancy.Room{
		BaseEntity:        m.BaseModel.ToDomain(),
		BuildingID:        m.BuildingID,
		Number:            m.Number,
		CurrentContractID: m.CurrentContractID,
	}
}

// RoomModelFromDomain converts a domain Room to its persistence model
func RoomModelFromDomain(r *tenancy.Room) *RoomModel {
	m := &RoomModel{
		BuildingID:        r.BuildingID,
		Number:            r.Number,
		CurrentContractID: r.CurrentContractID,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
