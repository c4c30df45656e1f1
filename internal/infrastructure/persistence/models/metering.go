package models

import (
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/metering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UtilityReadingModel is the persistence model for the meter ledger. The
// unique index over (room, year, month) backs the one-reading-per-period
// invariant at the storage level.
type UtilityReadingModel struct {
	BaseModel
	RoomID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_readings_room_period"`
	BillingYear  int       `gorm:"not null;uniqueIndex:idx_readings_room_period"`
	BillingMonth int       `gorm:"not null;uniqueIndex:idx_readings_room_period"`

	PrevElectric decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrElectric decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PrevWater    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrWater    decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	ElectricityPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WaterPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	IsElectricReset bool `gorm:"not null;default:false"`
	IsWaterReset    bool `gorm:"not null;default:false"`

	BillID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (UtilityReadingModel) TableName() string {
	return "utility_readings"
}

// ToDomain converts the persistence model to a domain UtilityReading
func (m *UtilityReadingModel) ToDomain() *metering.UtilityReading {
	return &metering.UtilityReading{
		BaseEntity:       m.BaseModel.ToDomain(),
		RoomID:           m.RoomID,
		BillingMonth:     m.BillingMonth,
		BillingYear:      m.BillingYear,
		PrevElectric:     m.PrevElectric,
		CurrElectric:     m.CurrElectric,
		PrevWater:        m.PrevWater,
		CurrWater:        m.CurrWater,
		ElectricityPrice: m.ElectricityPrice,
		WaterPrice:       m.WaterPrice,
		IsElectricReset:  m.IsElectricReset,
		IsWaterReset:     m.IsWaterReset,
		BillID:           m.BillID,
	}
}

// ReadingModelFromDomain converts a domain UtilityReading to its persistence model
func ReadingModelFromDomain(reading *metering.UtilityReading) *UtilityReadingModel {
	m := &UtilityReadingModel{
		RoomID:           reading.RoomID,
		BillingYear:      reading.BillingYear,
		BillingMonth:     reading.BillingMonth,
		PrevElectric:     reading.PrevElectric,
		CurrElectric:     reading.CurrElectric,
		PrevWater:        reading.PrevWater,
		CurrWater:        reading.CurrWater,
		ElectricityPrice: reading.ElectricityPrice,
		WaterPrice:       reading.WaterPrice,
		IsElectricReset:  reading.IsElectricReset,
		IsWaterReset:     reading.IsWaterReset,
		BillID:           reading.BillID,
	}
	m.FromDomainBaseEntity(reading.BaseEntity)
	return m
}
