package tenancy

import (
	"context"

	"github.com/google/uuid"
)

// ContractRepository provides read access to tenancy contracts.
// Contract mutation belongs to the tenancy subsystem, not billing.
type ContractRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	FindActive(ctx context.Context) ([]Contract, error)
	// FindByRoom returns every contract ever bound to the room, any status.
	// The overlap guard scopes billing periods per room lifetime, so it
	// needs the full history.
	FindByRoom(ctx context.Context, roomID uuid.UUID) ([]Contract, error)
}

// BuildingRepository provides read access to buildings and their tariffs
type BuildingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Building, error)
	FindAll(ctx context.Context) ([]Building, error)
	// FindByClosingDay returns buildings whose utility period closes on the
	// given day-of-month.
	FindByClosingDay(ctx context.Context, day int) ([]Building, error)
}

// RoomRepository provides read access to rooms
type RoomRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)
	FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]Room, error)
	FindOccupiedByBuilding(ctx context.Context, buildingID uuid.UUID) ([]Room, error)
}
