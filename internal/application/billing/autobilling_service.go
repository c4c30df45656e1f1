package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/metering"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared/valueobject"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/tenancy"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CycleReport is the outcome of one auto-billing run. Skips are expected
// (already billed, not yet due, nothing to bill); failures need an operator.
type CycleReport struct {
	RentCreated    int `json:"rent_created"`
	RentSkipped    int `json:"rent_skipped"`
	RentFailed     int `json:"rent_failed"`
	UtilityCreated int `json:"utility_created"`
	UtilitySkipped int `json:"utility_skipped"`
	UtilityFailed  int `json:"utility_failed"`
}

// AutoBillingService decides, per active contract and per building, whether
// a new rent or utility bill is due today. Periods are anniversary-based:
// rent follows each contract's own cycle from its start date, utilities
// follow each building's closing day. Both passes are idempotent - the
// overlap guard and the reading linkage turn re-runs into skips.
type AutoBillingService struct {
	bills     billing.BillRepository
	contracts tenancy.ContractRepository
	buildings tenancy.BuildingRepository
	rooms     tenancy.RoomRepository
	readings  metering.ReadingRepository
	guard     *OverlapGuard
	calc      *FairBillingCalculator
	tx        shared.TxManager
	clock     shared.Clock
	cfg       Config
	logger    *zap.Logger
}

// NewAutoBillingService creates an AutoBillingService
func NewAutoBillingService(
	bills billing.BillRepository,
	contracts tenancy.ContractRepository,
	buildings tenancy.BuildingRepository,
	rooms tenancy.RoomRepository,
	readings metering.ReadingRepository,
	tx shared.TxManager,
	clock shared.Clock,
	cfg Config,
	logger *zap.Logger,
) *AutoBillingService {
	return &AutoBillingService{
		bills:     bills,
		contracts: contracts,
		buildings: buildings,
		rooms:     rooms,
		readings:  readings,
		guard:     NewOverlapGuard(bills),
		calc:      NewFairBillingCalculator(cfg.MinStayDays),
		tx:        tx,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// RunAutoBillingCycle runs the rent pass and the utility pass for today.
// Failures in one contract or room never abort the others.
func (s *AutoBillingService) RunAutoBillingCycle(ctx context.Context) (CycleReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "autobilling", "run_cycle")
	defer span.End()

	var report CycleReport
	if err := s.runRentPass(ctx, &report); err != nil {
		telemetry.RecordError(span, err)
		return report, err
	}
	if err := s.runUtilityPass(ctx, &report); err != nil {
		telemetry.RecordError(span, err)
		return report, err
	}

	telemetry.SetAttributes(span,
		"rent_created", report.RentCreated,
		"utility_created", report.UtilityCreated)
	s.logger.Info("auto-billing cycle finished",
		zap.Int("rent_created", report.RentCreated),
		zap.Int("rent_skipped", report.RentSkipped),
		zap.Int("rent_failed", report.RentFailed),
		zap.Int("utility_created", report.UtilityCreated),
		zap.Int("utility_skipped", report.UtilitySkipped),
		zap.Int("utility_failed", report.UtilityFailed))
	return report, nil
}

// runRentPass bills every active contract whose next rent period has begun
func (s *AutoBillingService) runRentPass(ctx context.Context, report *CycleReport) error {
	contracts, err := s.contracts.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active contracts: %w", err)
	}

	today := s.clock.Today()
	for i := range contracts {
		contract := &contracts[i]
		switch err := s.billRentForContract(ctx, contract, today); {
		case err == nil:
			report.RentCreated++
		case shared.IsConflict(err):
			// already billed for this window; re-runs land here
			report.RentSkipped++
		case err == errNotDueYet:
			report.RentSkipped++
		default:
			report.RentFailed++
			s.logger.Error("rent billing failed for contract",
				zap.String("contract_id", contract.ID.String()), zap.Error(err))
		}
	}
	return nil
}

// errNotDueYet marks contracts whose next period starts in the future or
// past their term; a skip, not a failure.
var errNotDueYet = fmt.Errorf("rent period not due")

func (s *AutoBillingService) billRentForContract(ctx context.Context, contract *tenancy.Contract, today time.Time) error {
	last, err := s.bills.FindLastRentBill(ctx, contract.ID)
	if err != nil {
		return err
	}

	// next period starts the day after the last rent bill's period, or at
	// the contract anniversary when nothing was billed yet. Persisted dates
	// are re-read in the clock's timezone so the gates compare calendar
	// days, not raw instants.
	loc := today.Location()
	var start time.Time
	if last != nil {
		start = shared.DateIn(last.Period.End(), loc).AddDate(0, 0, 1)
	} else {
		start = shared.DateIn(contract.StartDate, loc)
	}
	if start.After(today) {
		return errNotDueYet
	}
	if start.After(shared.DateIn(contract.EndDate, loc)) {
		// contract fully billed through its term; expiry, not an error
		return errNotDueYet
	}

	cycle := contract.CycleMonths
	if cycle < 1 {
		cycle = 1
	}
	end := start.AddDate(0, cycle, 0).AddDate(0, 0, -1)
	period, err := valueobject.NewDateRange(start, end)
	if err != nil {
		return err
	}

	if err := s.guard.AssertNoOverlap(ctx, contract.RoomID, period, billing.BillTypeMonthlyRent, nil); err != nil {
		return err
	}

	amount := contract.RentPerCycle()
	line := billing.NewServiceChargeLine(billing.ServiceTypeRent,
		decimal.NewFromInt(int64(cycle)), contract.RentAmount,
		fmt.Sprintf("Monthly rent %s", period))

	bill, err := billing.NewIssuedBill(
		contract.ID, contract.RoomID, contract.TenantID,
		billing.BillTypeMonthlyRent,
		period,
		today.AddDate(0, 0, s.cfg.DueInDays),
		amount,
		fmt.Sprintf("Rent %s", period),
		[]billing.ServiceChargeLine{line},
	)
	if err != nil {
		return err
	}
	if err := s.bills.Create(ctx, bill); err != nil {
		return fmt.Errorf("failed to save rent bill: %w", err)
	}
	return nil
}

// runUtilityPass bills every occupied room of every building whose closing
// day is today, from that room's current-month reading
func (s *AutoBillingService) runUtilityPass(ctx context.Context, report *CycleReport) error {
	today := s.clock.Today()
	buildings, err := s.buildings.FindByClosingDay(ctx, today.Day())
	if err != nil {
		return fmt.Errorf("failed to load buildings by closing day: %w", err)
	}

	for i := range buildings {
		building := &buildings[i]
		if building.HasAmbiguousClosingDay() {
			s.logger.Warn("skipping building with ambiguous closing day",
				zap.String("building", building.Name),
				zap.Int("closing_day", building.ClosingDay))
			continue
		}

		rooms, err := s.rooms.FindOccupiedByBuilding(ctx, building.ID)
		if err != nil {
			s.logger.Error("failed to load rooms for building",
				zap.String("building", building.Name), zap.Error(err))
			continue
		}

		for j := range rooms {
			room := &rooms[j]
			switch err := s.billUtilityForRoom(ctx, building, room, today); {
			case err == nil:
				report.UtilityCreated++
			case err == errNothingToBill || shared.IsConflict(err):
				report.UtilitySkipped++
			case shared.IsDataIntegrity(err):
				// negative usage or double linkage needs manual correction
				report.UtilityFailed++
				s.logger.Error("utility reading requires manual correction",
					zap.String("room", room.Number), zap.Error(err))
			default:
				report.UtilityFailed++
				s.logger.Error("utility billing failed for room",
					zap.String("room", room.Number), zap.Error(err))
			}
		}
	}
	return nil
}

// errNothingToBill marks rooms with no billable reading this period
var errNothingToBill = fmt.Errorf("nothing to bill")

func (s *AutoBillingService) billUtilityForRoom(ctx context.Context, building *tenancy.Building, room *tenancy.Room, today time.Time) error {
	month, year := int(today.Month()), today.Year()

	reading, err := s.readings.FindByRoomPeriod(ctx, room.ID, month, year)
	if err != nil {
		return err
	}
	if reading == nil || reading.IsBilled() {
		return errNothingToBill
	}

	contract, err := s.contracts.FindByID(ctx, *room.CurrentContractID)
	if err != nil {
		return err
	}

	loc := today.Location()
	period := UtilityPeriod(building, month, year, loc).
		ClipStart(shared.DateIn(contract.StartDate, loc))
	charge, err := s.calc.Compute(reading, building.Tariffs, period)
	if err != nil {
		return err
	}
	if charge == nil {
		// zero usage and waived fee: suppress the bill entirely
		return errNothingToBill
	}

	if err := s.guard.AssertNoOverlap(ctx, room.ID, period, billing.BillTypeUtilities, nil); err != nil {
		return err
	}

	bill, err := billing.NewIssuedBill(
		contract.ID, room.ID, contract.TenantID,
		billing.BillTypeUtilities,
		period,
		today.AddDate(0, 0, s.cfg.DueInDays),
		charge.Total,
		fmt.Sprintf("Utilities %s room %s", period, room.Number),
		charge.Lines,
	)
	if err != nil {
		return err
	}

	// bill row, charge lines and reading linkage commit or roll back as one
	return s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.bills.Create(ctx, bill); err != nil {
			return fmt.Errorf("failed to save utility bill: %w", err)
		}
		if err := reading.LinkToBill(bill.ID); err != nil {
			return err
		}
		if err := s.readings.Update(ctx, reading); err != nil {
			return fmt.Errorf("failed to link reading: %w", err)
		}
		return nil
	})
}
