package metering

import (
	"context"

	"github.com/google/uuid"
)

// ReadingRepository persists the meter ledger. Upsert and the cascade write
// issued by the recording service run inside one transaction supplied
// through ctx by the transaction manager.
type ReadingRepository interface {
	// FindByRoomPeriod returns the reading for (room, month, year), or nil
	// when the period has no row yet.
	FindByRoomPeriod(ctx context.Context, roomID uuid.UUID, month, year int) (*UtilityReading, error)

	// FindByBuildingPeriod returns all readings recorded for rooms of the
	// building in the given period.
	FindByBuildingPeriod(ctx context.Context, buildingID uuid.UUID, month, year int) ([]UtilityReading, error)

	// Upsert writes the reading row keyed by (room, month, year).
	Upsert(ctx context.Context, reading *UtilityReading) error

	// Update persists changes to an existing reading (cascade writes, bill
	// linkage).
	Update(ctx context.Context, reading *UtilityReading) error

	// FindUnbilledByBuildingPeriod returns readings of the period not yet
	// linked to a bill.
	FindUnbilledByBuildingPeriod(ctx context.Context, buildingID uuid.UUID, month, year int) ([]UtilityReading, error)
}
