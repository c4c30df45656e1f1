package billing

import (
	"context"
	"testing"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/metering"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared/valueobject"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type autoBillingFixture struct {
	bills     *MockBillRepository
	contracts *MockContractRepository
	buildings *MockBuildingRepository
	rooms     *MockRoomRepository
	readings  *MockReadingRepository
	service   *AutoBillingService
}

func newAutoBillingFixture(today time.Time) *autoBillingFixture {
	f := &autoBillingFixture{
		bills:     new(MockBillRepository),
		contracts: new(MockContractRepository),
		buildings: new(MockBuildingRepository),
		rooms:     new(MockRoomRepository),
		readings:  new(MockReadingRepository),
	}
	f.service = NewAutoBillingService(
		f.bills, f.contracts, f.buildings, f.rooms, f.readings,
		passthroughTx{}, shared.FixedClock{Instant: today},
		DefaultConfig(), zap.NewNop())
	return f
}

func (f *autoBillingFixture) noUtilityWork(today time.Time) {
	f.buildings.On("FindByClosingDay", mock.Anything, today.Day()).Return([]tenancy.Building{}, nil)
}

func TestAutoBilling_RentPass(t *testing.T) {
	today := time.Date(2026, 1, 15, 6, 0, 0, 0, time.UTC)

	t.Run("bills first period from contract anniversary", func(t *testing.T) {
		f := newAutoBillingFixture(today)
		contract := activeContract(3000000, 1)
		contract.StartDate = time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)
		contract.EndDate = time.Date(2026, 12, 14, 0, 0, 0, 0, time.UTC)

		f.contracts.On("FindActive", mock.Anything).Return([]tenancy.Contract{*contract}, nil)
		f.bills.On("FindLastRentBill", mock.Anything, contract.ID).Return(nil, nil)
		f.bills.On("FindOverlapping", mock.Anything, contract.RoomID, mock.Anything, mock.Anything, mock.Anything).
			Return([]billing.Bill{}, nil)

		var created *billing.Bill
		f.bills.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*billing.Bill) }).
			Return(nil)
		f.noUtilityWork(today)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.RentCreated)
		require.NotNil(t, created)
		assert.Equal(t, time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC), created.Period.Start())
		assert.Equal(t, time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC), created.Period.End())
		assert.Equal(t, time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC), created.DueDate)
		assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(3000000)))
	})

	t.Run("next period starts after last rent bill", func(t *testing.T) {
		f := newAutoBillingFixture(today)
		contract := activeContract(3000000, 1)
		contract.StartDate = time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)
		contract.EndDate = time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC)

		last, err := billing.NewIssuedBill(
			contract.ID, contract.RoomID, contract.TenantID,
			billing.BillTypeMonthlyRent,
			valueobject.MustDateRange(
				time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC)),
			time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC),
			decimal.NewFromInt(3000000), "Rent", nil)
		require.NoError(t, err)

		f.contracts.On("FindActive", mock.Anything).Return([]tenancy.Contract{*contract}, nil)
		f.bills.On("FindLastRentBill", mock.Anything, contract.ID).Return(last, nil)
		f.bills.On("FindOverlapping", mock.Anything, contract.RoomID, mock.Anything, mock.Anything, mock.Anything).
			Return([]billing.Bill{}, nil)

		var created *billing.Bill
		f.bills.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*billing.Bill) }).
			Return(nil)
		f.noUtilityWork(today)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.RentCreated)
		require.NotNil(t, created)
		assert.Equal(t, time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC), created.Period.Start())
		assert.Equal(t, time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC), created.Period.End())
	})

	t.Run("re-run is idempotent via overlap conflict", func(t *testing.T) {
		f := newAutoBillingFixture(today)
		contract := activeContract(3000000, 1)
		contract.StartDate = time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)
		contract.EndDate = time.Date(2026, 12, 14, 0, 0, 0, 0, time.UTC)

		existing, err := billing.NewIssuedBill(
			contract.ID, contract.RoomID, contract.TenantID,
			billing.BillTypeMonthlyRent,
			valueobject.MustDateRange(
				time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)),
			time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC),
			decimal.NewFromInt(3000000), "Rent", nil)
		require.NoError(t, err)

		f.contracts.On("FindActive", mock.Anything).Return([]tenancy.Contract{*contract}, nil)
		// scheduler sees no rent history on this replica but the overlap
		// guard still finds the existing bill
		f.bills.On("FindLastRentBill", mock.Anything, contract.ID).Return(nil, nil)
		f.bills.On("FindOverlapping", mock.Anything, contract.RoomID, mock.Anything, mock.Anything, mock.Anything).
			Return([]billing.Bill{*existing}, nil)
		f.noUtilityWork(today)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, report.RentCreated)
		assert.Equal(t, 1, report.RentSkipped)
		assert.Equal(t, 0, report.RentFailed)
		f.bills.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("skips contract not due and contract past term", func(t *testing.T) {
		f := newAutoBillingFixture(today)

		notDue := activeContract(3000000, 1)
		notDue.StartDate = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		notDue.EndDate = time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)

		expired := activeContract(3000000, 1)
		expired.StartDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		expired.EndDate = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
		lastForExpired, err := billing.NewIssuedBill(
			expired.ID, expired.RoomID, expired.TenantID,
			billing.BillTypeMonthlyRent,
			valueobject.MustDateRange(
				time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
			time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC),
			decimal.NewFromInt(3000000), "Rent", nil)
		require.NoError(t, err)

		f.contracts.On("FindActive", mock.Anything).Return([]tenancy.Contract{*notDue, *expired}, nil)
		f.bills.On("FindLastRentBill", mock.Anything, notDue.ID).Return(nil, nil)
		f.bills.On("FindLastRentBill", mock.Anything, expired.ID).Return(lastForExpired, nil)
		f.noUtilityWork(today)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, report.RentCreated)
		assert.Equal(t, 2, report.RentSkipped)
		f.bills.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("quarterly cycle bills three months at once", func(t *testing.T) {
		f := newAutoBillingFixture(today)
		contract := activeContract(3000000, 3)
		contract.StartDate = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
		contract.EndDate = time.Date(2027, 1, 14, 0, 0, 0, 0, time.UTC)

		f.contracts.On("FindActive", mock.Anything).Return([]tenancy.Contract{*contract}, nil)
		f.bills.On("FindLastRentBill", mock.Anything, contract.ID).Return(nil, nil)
		f.bills.On("FindOverlapping", mock.Anything, contract.RoomID, mock.Anything, mock.Anything, mock.Anything).
			Return([]billing.Bill{}, nil)

		var created *billing.Bill
		f.bills.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*billing.Bill) }).
			Return(nil)
		f.noUtilityWork(today)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.RentCreated)
		require.NotNil(t, created)
		assert.Equal(t, time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC), created.Period.End())
		assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(9000000)))
	})
}

// The scheduler runs on the deployment timezone while contract dates come
// back from the database as UTC instants. The anniversary gate has to
// compare calendar days, not instants, or early-morning runs east of UTC
// would push every first bill a day late.
func TestAutoBilling_RentPass_DeploymentTimezone(t *testing.T) {
	hcm := time.FixedZone("UTC+7", 7*60*60)
	today := time.Date(2026, 1, 1, 2, 0, 0, 0, hcm)

	t.Run("bills on anniversary day despite UTC start date", func(t *testing.T) {
		f := newAutoBillingFixture(today)
		contract := activeContract(3000000, 1)
		contract.StartDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		contract.EndDate = time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

		f.contracts.On("FindActive", mock.Anything).Return([]tenancy.Contract{*contract}, nil)
		f.bills.On("FindLastRentBill", mock.Anything, contract.ID).Return(nil, nil)
		f.bills.On("FindOverlapping", mock.Anything, contract.RoomID, mock.Anything, mock.Anything, mock.Anything).
			Return([]billing.Bill{}, nil)

		var created *billing.Bill
		f.bills.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*billing.Bill) }).
			Return(nil)
		f.noUtilityWork(today)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.RentCreated)
		assert.Equal(t, 0, report.RentSkipped)
		require.NotNil(t, created)
		assert.Equal(t, "2026-01-01..2026-01-31", created.Period.String())
		assert.True(t, created.DueDate.Equal(time.Date(2026, 1, 11, 0, 0, 0, 0, hcm)),
			"due date %s", created.DueDate)
	})

	t.Run("waits while the anniversary is still tomorrow locally", func(t *testing.T) {
		f := newAutoBillingFixture(today)
		contract := activeContract(3000000, 1)
		contract.StartDate = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
		contract.EndDate = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

		f.contracts.On("FindActive", mock.Anything).Return([]tenancy.Contract{*contract}, nil)
		f.bills.On("FindLastRentBill", mock.Anything, contract.ID).Return(nil, nil)
		f.noUtilityWork(today)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, report.RentCreated)
		assert.Equal(t, 1, report.RentSkipped)
		f.bills.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAutoBilling_UtilityPass(t *testing.T) {
	today := time.Date(2026, 3, 25, 6, 0, 0, 0, time.UTC)

	building := &tenancy.Building{
		BaseEntity: shared.NewBaseEntity(),
		Name:       "B1",
		ClosingDay: 25,
		Tariffs: tenancy.Tariffs{
			ElectricityPrice: decimal.NewFromInt(3500),
			WaterPrice:       decimal.NewFromInt(15000),
			ServiceFee:       decimal.NewFromInt(100000),
		},
	}

	setup := func(t *testing.T, contractStart time.Time) (*autoBillingFixture, *tenancy.Contract, *tenancy.Room, *metering.UtilityReading) {
		f := newAutoBillingFixture(today)
		f.contracts.On("FindActive", mock.Anything).Return([]tenancy.Contract{}, nil)

		contract := activeContract(3000000, 1)
		contract.StartDate = contractStart
		contract.EndDate = contractStart.AddDate(1, 0, 0)
		room := &tenancy.Room{BaseEntity: shared.NewBaseEntity(), BuildingID: building.ID, Number: "201"}
		room.CurrentContractID = &contract.ID
		contract.RoomID = room.ID

		reading, err := metering.NewUtilityReading(room.ID, 3, 2026)
		require.NoError(t, err)
		reading.PrevElectric = decimal.NewFromInt(500)
		reading.CurrElectric = decimal.NewFromInt(600)
		reading.PrevWater = decimal.NewFromInt(30)
		reading.CurrWater = decimal.NewFromInt(40)
		reading.ElectricityPrice = decimal.NewFromInt(3500)
		reading.WaterPrice = decimal.NewFromInt(15000)

		f.buildings.On("FindByClosingDay", mock.Anything, 25).Return([]tenancy.Building{*building}, nil)
		f.rooms.On("FindOccupiedByBuilding", mock.Anything, building.ID).Return([]tenancy.Room{*room}, nil)
		f.contracts.On("FindByID", mock.Anything, contract.ID).Return(contract, nil)
		return f, contract, room, reading
	}

	t.Run("bills full period with service fee", func(t *testing.T) {
		f, _, room, reading := setup(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		f.readings.On("FindByRoomPeriod", mock.Anything, room.ID, 3, 2026).Return(reading, nil)
		f.bills.On("FindOverlapping", mock.Anything, room.ID, mock.Anything, mock.Anything, mock.Anything).
			Return([]billing.Bill{}, nil)

		var created *billing.Bill
		f.bills.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*billing.Bill) }).
			Return(nil)
		f.readings.On("Update", mock.Anything, reading).Return(nil)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.UtilityCreated)
		require.NotNil(t, created)
		assert.Equal(t, time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC), created.Period.Start())
		assert.Equal(t, time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC), created.Period.End())
		// 100 x 3500 + 10 x 15000 + 100000 fee
		assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(600000)),
			"got total %s", created.TotalAmount)
		assert.Len(t, created.Lines, 3)
		require.NotNil(t, reading.BillID)
		assert.Equal(t, created.ID, *reading.BillID)
	})

	t.Run("mid-period move-in waives the service fee", func(t *testing.T) {
		// tenancy began 16 days before the closing day, under the threshold
		f, _, room, reading := setup(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
		f.readings.On("FindByRoomPeriod", mock.Anything, room.ID, 3, 2026).Return(reading, nil)
		f.bills.On("FindOverlapping", mock.Anything, room.ID, mock.Anything, mock.Anything, mock.Anything).
			Return([]billing.Bill{}, nil)

		var created *billing.Bill
		f.bills.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*billing.Bill) }).
			Return(nil)
		f.readings.On("Update", mock.Anything, reading).Return(nil)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, report.UtilityCreated)
		require.NotNil(t, created)
		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), created.Period.Start())
		// usage only, no shared fee
		assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(500000)),
			"got total %s", created.TotalAmount)
		assert.Len(t, created.Lines, 2)
	})

	t.Run("suppresses zero bill for short stay without usage", func(t *testing.T) {
		f, _, room, reading := setup(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
		reading.CurrElectric = reading.PrevElectric
		reading.CurrWater = reading.PrevWater
		f.readings.On("FindByRoomPeriod", mock.Anything, room.ID, 3, 2026).Return(reading, nil)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, report.UtilityCreated)
		assert.Equal(t, 1, report.UtilitySkipped)
		f.bills.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("skips reading already linked to a bill", func(t *testing.T) {
		f, _, room, reading := setup(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		billID := uuid.New()
		reading.BillID = &billID
		f.readings.On("FindByRoomPeriod", mock.Anything, room.ID, 3, 2026).Return(reading, nil)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, report.UtilityCreated)
		assert.Equal(t, 1, report.UtilitySkipped)
	})

	t.Run("skips room with no reading this period", func(t *testing.T) {
		f, _, room, _ := setup(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		f.readings.On("FindByRoomPeriod", mock.Anything, room.ID, 3, 2026).Return(nil, nil)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, report.UtilityCreated)
		assert.Equal(t, 1, report.UtilitySkipped)
	})

	t.Run("skips building with ambiguous closing day", func(t *testing.T) {
		f := newAutoBillingFixture(today)
		f.contracts.On("FindActive", mock.Anything).Return([]tenancy.Contract{}, nil)
		ambiguous := *building
		ambiguous.ClosingDay = 31
		f.buildings.On("FindByClosingDay", mock.Anything, 25).Return([]tenancy.Building{ambiguous}, nil)

		report, err := f.service.RunAutoBillingCycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, report.UtilityCreated)
		f.rooms.AssertNotCalled(t, "FindOccupiedByBuilding", mock.Anything, mock.Anything)
	})
}

// The period structure of rent billing guarantees no two cycles of one
// contract ever intersect: each next period starts the day after the
// previous period's end.
func TestAutoBilling_ConsecutivePeriodsNeverOverlap(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	var periods []valueobject.DateRange
	cursor := start
	for i := 0; i < 24; i++ {
		end := cursor.AddDate(0, 1, 0).AddDate(0, 0, -1)
		periods = append(periods, valueobject.MustDateRange(cursor, end))
		cursor = end.AddDate(0, 0, 1)
	}

	for i := range periods {
		for j := i + 1; j < len(periods); j++ {
			assert.False(t, periods[i].Overlaps(periods[j]),
				"period %s overlaps %s", periods[i], periods[j])
		}
		if i > 0 {
			gap := periods[i].Start().Sub(periods[i-1].End())
			assert.Equal(t, 24*time.Hour, gap, "gap between consecutive periods")
		}
	}
}
