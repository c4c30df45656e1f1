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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillService owns the bill lifecycle: drafting, publication, restricted
// edits, extension, cancellation, restoration, payment application and the
// daily overdue scan.
type BillService struct {
	bills     billing.BillRepository
	contracts tenancy.ContractRepository
	rooms     tenancy.RoomRepository
	buildings tenancy.BuildingRepository
	readings  metering.ReadingRepository
	guard     *OverlapGuard
	calc      *FairBillingCalculator
	tx        shared.TxManager
	clock     shared.Clock
	cfg       Config
	logger    *zap.Logger
}

// NewBillService creates a BillService
func NewBillService(
	bills billing.BillRepository,
	contracts tenancy.ContractRepository,
	rooms tenancy.RoomRepository,
	buildings tenancy.BuildingRepository,
	readings metering.ReadingRepository,
	tx shared.TxManager,
	clock shared.Clock,
	cfg Config,
	logger *zap.Logger,
) *BillService {
	return &BillService{
		bills:     bills,
		contracts: contracts,
		rooms:     rooms,
		buildings: buildings,
		readings:  readings,
		guard:     NewOverlapGuard(bills),
		calc:      NewFairBillingCalculator(cfg.MinStayDays),
		tx:        tx,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// CreateDraftBillRequest carries the minimal fields a draft needs
type CreateDraftBillRequest struct {
	ContractID  uuid.UUID
	Type        billing.BillType
	Description string
	Amount      decimal.Decimal
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	DueDate     *time.Time
}

// CreateDraftBill creates a bill in draft status. No bill number is
// assigned and the overlap guard does not run until publication.
func (s *BillService) CreateDraftBill(ctx context.Context, req CreateDraftBillRequest) (*billing.Bill, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "create_draft")
	defer span.End()

	contract, err := s.contracts.FindByID(ctx, req.ContractID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	bill, err := billing.NewDraftBill(contract.ID, contract.RoomID, contract.TenantID, req.Type)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	bill.Description = req.Description
	bill.TotalAmount = req.Amount
	if req.PeriodStart != nil && req.PeriodEnd != nil {
		period, err := valueobject.NewDateRange(*req.PeriodStart, *req.PeriodEnd)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		bill.Period = period
	}
	if req.DueDate != nil {
		bill.DueDate = shared.Midnight(*req.DueDate)
	}

	if err := s.bills.Create(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save draft bill: %w", err)
	}
	return bill, nil
}

// PublishDraftBill moves a draft to issued: core fields are validated, the
// overlap guard runs (hard failure on conflict) and a bill number is
// assigned. A utilities draft is re-derived from its live reading instead of
// trusting the stored draft amount, and the reading is linked in the same
// transaction.
func (s *BillService) PublishDraftBill(ctx context.Context, billID uuid.UUID) (*billing.Bill, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "publish_draft")
	defer span.End()
	telemetry.SetAttributes(span, "bill_id", billID.String())

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var reading *metering.UtilityReading
	if bill.Type == billing.BillTypeUtilities {
		reading, err = s.rederiveUtilityDraft(ctx, bill)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if bill.Type == billing.BillTypeMonthlyRent {
		contract, err := s.contracts.FindByID(ctx, bill.ContractID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := ValidateRentAmount(contract, bill.TotalAmount); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.guard.AssertNoOverlap(ctx, bill.RoomID, bill.Period, bill.Type, &bill.ID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := bill.Publish(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.bills.Update(ctx, bill); err != nil {
			return fmt.Errorf("failed to save published bill: %w", err)
		}
		if reading != nil {
			if err := reading.LinkToBill(bill.ID); err != nil {
				return err
			}
			if err := s.readings.Update(ctx, reading); err != nil {
				return fmt.Errorf("failed to link reading to bill: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("bill published",
		zap.String("bill_number", bill.BillNumber),
		zap.String("type", bill.Type.String()),
		zap.String("period", bill.Period.String()))
	return bill, nil
}

// rederiveUtilityDraft recomputes a utilities draft from the live reading of
// its period. Guards against stale drafts: the reading may have been
// corrected, or already consumed by another bill, since the draft was made.
func (s *BillService) rederiveUtilityDraft(ctx context.Context, bill *billing.Bill) (*metering.UtilityReading, error) {
	if bill.Period.IsZero() {
		return nil, shared.NewValidationError("MISSING_PERIOD", "utilities draft requires a billing period")
	}
	month := int(bill.Period.End().Month())
	year := bill.Period.End().Year()

	reading, err := s.readings.FindByRoomPeriod(ctx, bill.RoomID, month, year)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, shared.NewValidationError("NO_READING",
			fmt.Sprintf("no utility reading recorded for room %s period %04d-%02d", bill.RoomID, year, month))
	}
	if reading.IsBilled() && (reading.BillID == nil || *reading.BillID != bill.ID) {
		return nil, shared.NewDataIntegrityError("READING_ALREADY_BILLED",
			fmt.Sprintf("reading for period %04d-%02d is already linked to another bill", year, month))
	}

	room, err := s.rooms.FindByID(ctx, bill.RoomID)
	if err != nil {
		return nil, err
	}
	building, err := s.buildings.FindByID(ctx, room.BuildingID)
	if err != nil {
		return nil, err
	}

	charge, err := s.calc.Compute(reading, building.Tariffs, bill.Period)
	if err != nil {
		return nil, err
	}
	if charge == nil {
		return nil, shared.NewValidationError("ZERO_BILL",
			"reading has no usage and the service fee is waived; nothing to bill")
	}

	bill.TotalAmount = charge.Total
	bill.Lines = charge.Lines
	for i := range bill.Lines {
		bill.Lines[i].BillID = bill.ID
	}
	return reading, nil
}

// CreateIssuedBillRequest carries the full field set for direct issuance
type CreateIssuedBillRequest struct {
	ContractID  uuid.UUID
	Type        billing.BillType
	PeriodStart time.Time
	PeriodEnd   time.Time
	DueDate     time.Time
	Amount      decimal.Decimal
	Description string
}

// CreateIssuedBill creates and publishes a bill in one step, as manual
// issuance does for rent and ad-hoc charges. Utility bills are issued
// through the auto-billing pass or draft publication, which derive them
// from readings.
func (s *BillService) CreateIssuedBill(ctx context.Context, req CreateIssuedBillRequest) (*billing.Bill, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "create_issued")
	defer span.End()

	if req.Type == billing.BillTypeUtilities {
		return nil, shared.NewValidationError("UTILITIES_NEED_READING",
			"utility bills are derived from meter readings; record a reading and publish a draft instead")
	}

	contract, err := s.contracts.FindByID(ctx, req.ContractID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	period, err := valueobject.NewDateRange(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Type == billing.BillTypeMonthlyRent {
		if err := ValidateRentAmount(contract, req.Amount); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if err := s.guard.AssertNoOverlap(ctx, contract.RoomID, period, req.Type, nil); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	bill, err := billing.NewIssuedBill(
		contract.ID, contract.RoomID, contract.TenantID,
		req.Type, period, req.DueDate, req.Amount, req.Description, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.bills.Create(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// EditIssuedBillRequest is the restricted patch an issued bill accepts.
// Tenant, room, period, type and status are immutable after issuance.
type EditIssuedBillRequest struct {
	Description *string
	DueDate     *time.Time
	Amount      *decimal.Decimal
}

// EditIssuedBill applies a restricted edit to an issued bill. Bills with
// recorded or pending payments reject edits; utility amounts are derived
// from readings and cannot be overridden.
func (s *BillService) EditIssuedBill(ctx context.Context, billID uuid.UUID, req EditIssuedBillRequest) (*billing.Bill, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "edit_issued")
	defer span.End()
	telemetry.SetAttributes(span, "bill_id", billID.String())

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if bill.Status != billing.BillStatusIssued {
		err := shared.NewStateError("NOT_ISSUED", "only issued bills can be edited, current status: "+bill.Status.String())
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := bill.EnsureEditable(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Amount != nil {
		if bill.Type == billing.BillTypeUtilities {
			err := shared.NewValidationError("AMOUNT_DERIVED",
				"utility bill amounts are derived from meter readings and cannot be edited")
			telemetry.RecordError(span, err)
			return nil, err
		}
		if bill.Type == billing.BillTypeMonthlyRent {
			contract, err := s.contracts.FindByID(ctx, bill.ContractID)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
			if err := ValidateRentAmount(contract, *req.Amount); err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
		}
		bill.TotalAmount = *req.Amount
		bill.Lines = nil
	}
	if req.Description != nil {
		bill.Description = *req.Description
	}
	if req.DueDate != nil {
		bill.DueDate = shared.Midnight(*req.DueDate)
	}

	if err := s.bills.Update(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// ExtendOverdueBill reopens an overdue bill: the due date moves out by the
// configured grace period and the optional extra penalty accumulates.
func (s *BillService) ExtendOverdueBill(ctx context.Context, billID uuid.UUID, extraPenalty decimal.Decimal) (*billing.Bill, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "extend_overdue")
	defer span.End()
	telemetry.SetAttributes(span, "bill_id", billID.String(), "extra_penalty", extraPenalty.String())

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := bill.Extend(s.cfg.GraceDays, extraPenalty); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.bills.Update(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save extended bill: %w", err)
	}

	s.logger.Info("overdue bill extended",
		zap.String("bill_number", bill.BillNumber),
		zap.Time("new_due_date", bill.DueDate),
		zap.String("penalty_total", bill.PenaltyAmount.String()))
	return bill, nil
}

// CancelOrDeleteBill soft-deletes a draft or cancels an issued/overdue
// bill. Bills with any payment recorded are refused.
func (s *BillService) CancelOrDeleteBill(ctx context.Context, billID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "cancel_or_delete")
	defer span.End()
	telemetry.SetAttributes(span, "bill_id", billID.String())

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	now := s.clock.Now()
	if bill.Status == billing.BillStatusDraft {
		err = bill.SoftDelete(now)
	} else {
		err = bill.Cancel(now)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.bills.Update(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save bill: %w", err)
	}
	return nil
}

// RestoreBill clears the soft-delete mark on a deleted draft or cancelled
// bill. A cancelled bill stays cancelled after restore.
func (s *BillService) RestoreBill(ctx context.Context, billID uuid.UUID) (*billing.Bill, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "restore")
	defer span.End()
	telemetry.SetAttributes(span, "bill_id", billID.String())

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := bill.Restore(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.bills.Update(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// ApplyPayment records a settled payment from the payment collaborator and
// resolves the bill to paid or partially paid.
func (s *BillService) ApplyPayment(ctx context.Context, billID uuid.UUID, amount decimal.Decimal) (*billing.Bill, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "apply_payment")
	defer span.End()
	telemetry.SetAttributes(span, "bill_id", billID.String(), "amount", amount.String())

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := bill.ApplyPayment(amount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.bills.Update(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.logger.Info("payment applied",
		zap.String("bill_number", bill.BillNumber),
		zap.String("paid_amount", bill.PaidAmount.String()),
		zap.String("status", bill.Status.String()))
	return bill, nil
}

// RegisterPendingPayment marks an in-flight gateway payment on the bill,
// freezing it against edits and cancellation until settlement.
func (s *BillService) RegisterPendingPayment(ctx context.Context, billID uuid.UUID, ref string) error {
	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return err
	}
	if err := bill.MarkPaymentPending(ref); err != nil {
		return err
	}
	return s.bills.Update(ctx, bill)
}

// RunOverdueScan bulk-transitions issued bills whose due date is strictly
// before today to overdue. The scan is idempotent and may run arbitrarily
// often; one bill's failure does not abort the rest.
func (s *BillService) RunOverdueScan(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "overdue_scan")
	defer span.End()

	today := s.clock.Today()
	due, err := s.bills.FindIssuedDueBefore(ctx, today)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to query due bills: %w", err)
	}

	transitioned := 0
	for i := range due {
		bill := &due[i]
		if !bill.MarkOverdue(today) {
			continue
		}
		if err := s.bills.Update(ctx, bill); err != nil {
			s.logger.Error("failed to mark bill overdue",
				zap.String("bill_number", bill.BillNumber), zap.Error(err))
			continue
		}
		transitioned++
	}

	telemetry.SetAttributes(span, "transitioned", transitioned)
	s.logger.Info("overdue scan finished", zap.Int("transitioned", transitioned))
	return transitioned, nil
}

// GetBill returns one bill by id
func (s *BillService) GetBill(ctx context.Context, billID uuid.UUID) (*billing.Bill, error) {
	return s.bills.FindByID(ctx, billID)
}

// ListBills returns bills matching the filter
func (s *BillService) ListBills(ctx context.Context, filter billing.BillFilter) (shared.Paginated[billing.Bill], error) {
	return s.bills.FindAll(ctx, filter)
}
