package billing

import (
	"context"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/metering"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared/valueobject"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBillRepository is a mock implementation of billing.BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) Update(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByNumber(ctx context.Context, billNumber string) (*billing.Bill, error) {
	args := m.Called(ctx, billNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAll(ctx context.Context, filter billing.BillFilter) (shared.Paginated[billing.Bill], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[billing.Bill]), args.Error(1)
}

func (m *MockBillRepository) FindOverlapping(ctx context.Context, roomID uuid.UUID, period valueobject.DateRange, billType *billing.BillType, excludeID *uuid.UUID) ([]billing.Bill, error) {
	args := m.Called(ctx, roomID, period, billType, excludeID)
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindLastRentBill(ctx context.Context, contractID uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindIssuedDueBefore(ctx context.Context, day time.Time) ([]billing.Bill, error) {
	args := m.Called(ctx, day)
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindIssuedDueBetween(ctx context.Context, from, to time.Time) ([]billing.Bill, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]billing.Bill), args.Error(1)
}

// MockContractRepository is a mock implementation of tenancy.ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.Contract), args.Error(1)
}

func (m *MockContractRepository) FindActive(ctx context.Context) ([]tenancy.Contract, error) {
	args := m.Called(ctx)
	return args.Get(0).([]tenancy.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByRoom(ctx context.Context, roomID uuid.UUID) ([]tenancy.Contract, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).([]tenancy.Contract), args.Error(1)
}

// MockBuildingRepository is a mock implementation of tenancy.BuildingRepository
type MockBuildingRepository struct {
	mock.Mock
}

func (m *MockBuildingRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Building, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.Building), args.Error(1)
}

func (m *MockBuildingRepository) FindAll(ctx context.Context) ([]tenancy.Building, error) {
	args := m.Called(ctx)
	return args.Get(0).([]tenancy.Building), args.Error(1)
}

func (m *MockBuildingRepository) FindByClosingDay(ctx context.Context, day int) ([]tenancy.Building, error) {
	args := m.Called(ctx, day)
	return args.Get(0).([]tenancy.Building), args.Error(1)
}

// MockRoomRepository is a mock implementation of tenancy.RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.Room), args.Error(1)
}

func (m *MockRoomRepository) FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]tenancy.Room, error) {
	args := m.Called(ctx, buildingID)
	return args.Get(0).([]tenancy.Room), args.Error(1)
}

func (m *MockRoomRepository) FindOccupiedByBuilding(ctx context.Context, buildingID uuid.UUID) ([]tenancy.Room, error) {
	args := m.Called(ctx, buildingID)
	return args.Get(0).([]tenancy.Room), args.Error(1)
}

// MockReadingRepository is a mock implementation of metering.ReadingRepository
type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) FindByRoomPeriod(ctx context.Context, roomID uuid.UUID, month, year int) (*metering.UtilityReading, error) {
	args := m.Called(ctx, roomID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.UtilityReading), args.Error(1)
}

func (m *MockReadingRepository) FindByBuildingPeriod(ctx context.Context, buildingID uuid.UUID, month, year int) ([]metering.UtilityReading, error) {
	args := m.Called(ctx, buildingID, month, year)
	return args.Get(0).([]metering.UtilityReading), args.Error(1)
}

func (m *MockReadingRepository) Upsert(ctx context.Context, reading *metering.UtilityReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockReadingRepository) Update(ctx context.Context, reading *metering.UtilityReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockReadingRepository) FindUnbilledByBuildingPeriod(ctx context.Context, buildingID uuid.UUID, month, year int) ([]metering.UtilityReading, error) {
	args := m.Called(ctx, buildingID, month, year)
	return args.Get(0).([]metering.UtilityReading), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyBillDueSoon(ctx context.Context, bill *billing.Bill, daysLeft int) error {
	args := m.Called(ctx, bill, daysLeft)
	return args.Error(0)
}

// passthroughTx runs the function directly, standing in for a database
// transaction in unit tests
type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
