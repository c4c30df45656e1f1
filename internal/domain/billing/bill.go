package billing

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus represents the lifecycle status of a bill
type BillStatus string

const (
	BillStatusDraft         BillStatus = "DRAFT"          // Created manually, not yet published
	BillStatusIssued        BillStatus = "ISSUED"         // Published, awaiting payment
	BillStatusOverdue       BillStatus = "OVERDUE"        // Due date passed without full payment
	BillStatusPaid          BillStatus = "PAID"           // Fully paid
	BillStatusPartiallyPaid BillStatus = "PARTIALLY_PAID" // Some payment received
	BillStatusCancelled     BillStatus = "CANCELLED"      // Voided before payment
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusDraft, BillStatusIssued, BillStatusOverdue,
		BillStatusPaid, BillStatusPartiallyPaid, BillStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the bill is in a terminal state
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusPaid || s == BillStatusCancelled
}

// CountsForOverlap reports whether a bill in this status occupies its
// billing period. Drafts and cancelled bills do not block other bills.
func (s BillStatus) CountsForOverlap() bool {
	switch s {
	case BillStatusIssued, BillStatusOverdue, BillStatusPaid, BillStatusPartiallyPaid:
		return true
	}
	return false
}

// CanReceivePayment returns true if payments can be applied in this status
func (s BillStatus) CanReceivePayment() bool {
	return s == BillStatusIssued || s == BillStatusOverdue || s == BillStatusPartiallyPaid
}

// Bill is one invoice covering a billing period. Lifecycle status and the
// soft-delete mark are orthogonal: status records where the bill is in its
// life, DeletedAt records whether it is visible.
type Bill struct {
	shared.BaseEntity
	shared.SoftDeletable
	BillNumber    string // empty until published
	ContractID    uuid.UUID
	RoomID        uuid.UUID
	TenantID      uuid.UUID
	Type          BillType
	Period        valueobject.DateRange
	DueDate       time.Time
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	PenaltyAmount decimal.Decimal
	Description   string
	Status        BillStatus
	Lines         []ServiceChargeLine
	// PendingPaymentRef is set while an online payment is in flight at the
	// gateway. Edits and cancellation are rejected until it clears.
	PendingPaymentRef *string
}

// NewDraftBill creates a bill in draft status with minimal required fields.
// No bill number is assigned and no overlap check runs until publication.
func NewDraftBill(contractID, roomID, tenantID uuid.UUID, billType BillType) (*Bill, error) {
	if !billType.IsValid() {
		return nil, shared.NewValidationError("INVALID_BILL_TYPE", "unknown bill type: "+billType.String())
	}
	if contractID == uuid.Nil || roomID == uuid.Nil || tenantID == uuid.Nil {
		return nil, shared.NewValidationError("MISSING_REFERENCE", "draft bill requires contract, room and tenant references")
	}
	return &Bill{
		BaseEntity:    shared.NewBaseEntity(),
		ContractID:    contractID,
		RoomID:        roomID,
		TenantID:      tenantID,
		Type:          billType,
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PenaltyAmount: decimal.Zero,
		Status:        BillStatusDraft,
	}, nil
}

// NewIssuedBill creates a published bill directly, as the auto-billing
// scheduler does. The caller is responsible for running the overlap guard
// before persisting.
func NewIssuedBill(
	contractID, roomID, tenantID uuid.UUID,
	billType BillType,
	period valueobject.DateRange,
	dueDate time.Time,
	total decimal.Decimal,
	description string,
	lines []ServiceChargeLine,
) (*Bill, error) {
	b := &Bill{
		BaseEntity:    shared.NewBaseEntity(),
		ContractID:    contractID,
		RoomID:        roomID,
		TenantID:      tenantID,
		Type:          billType,
		Period:        period,
		DueDate:       shared.Midnight(dueDate),
		TotalAmount:   total,
		PaidAmount:    decimal.Zero,
		PenaltyAmount: decimal.Zero,
		Description:   description,
		Status:        BillStatusIssued,
		Lines:         lines,
	}
	for i := range b.Lines {
		b.Lines[i].BillID = b.ID
	}
	if err := b.validateForIssue(); err != nil {
		return nil, err
	}
	b.BillNumber = GenerateBillNumber(billType, period.Start())
	return b, nil
}

// validateForIssue checks that every core field a published bill needs is present
func (b *Bill) validateForIssue() error {
	if !b.Type.IsValid() {
		return shared.NewValidationError("INVALID_BILL_TYPE", "unknown bill type: "+b.Type.String())
	}
	if b.ContractID == uuid.Nil || b.RoomID == uuid.Nil || b.TenantID == uuid.Nil {
		return shared.NewValidationError("MISSING_REFERENCE", "bill requires contract, room and tenant references")
	}
	if b.Period.IsZero() {
		return shared.NewValidationError("MISSING_PERIOD", "bill requires a billing period")
	}
	if b.DueDate.IsZero() {
		return shared.NewValidationError("MISSING_DUE_DATE", "bill requires a due date")
	}
	if b.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_AMOUNT", "bill amount must be positive")
	}
	if b.Description == "" {
		return shared.NewValidationError("MISSING_DESCRIPTION", "bill requires a description")
	}
	if len(b.Lines) > 0 && !LinesTotal(b.Lines).Equal(b.TotalAmount) {
		return shared.NewDataIntegrityError("LINES_MISMATCH",
			fmt.Sprintf("charge lines sum to %s but bill total is %s", LinesTotal(b.Lines), b.TotalAmount))
	}
	return nil
}

// Publish moves a draft to issued, assigning its bill number. The service
// layer runs the overlap guard before calling this.
func (b *Bill) Publish() error {
	if b.Status != BillStatusDraft {
		return shared.NewStateError("NOT_DRAFT", "only draft bills can be published, current status: "+b.Status.String())
	}
	if b.IsDeleted() {
		return shared.NewStateError("BILL_DELETED", "deleted draft must be restored before publishing")
	}
	if err := b.validateForIssue(); err != nil {
		return err
	}
	b.Status = BillStatusIssued
	b.BillNumber = GenerateBillNumber(b.Type, b.Period.Start())
	return nil
}

// MarkOverdue transitions issued -> overdue when the due date is strictly
// before today. The transition is idempotent: already-overdue bills are left
// alone, and nothing else changes state.
func (b *Bill) MarkOverdue(today time.Time) bool {
	if b.Status != BillStatusIssued || b.IsDeleted() {
		return false
	}
	if b.DueDate.Before(shared.Midnight(today)) {
		b.Status = BillStatusOverdue
		return true
	}
	return false
}

// Extend reopens an overdue bill: adds graceDays to the due date,
// accumulates extraPenalty, and returns to issued. Extension is manual-only
// and valid exclusively from overdue.
func (b *Bill) Extend(graceDays int, extraPenalty decimal.Decimal) error {
	if b.Status != BillStatusOverdue {
		return shared.NewStateError("NOT_OVERDUE", "only overdue bills can be extended, current status: "+b.Status.String())
	}
	if b.IsDeleted() {
		return shared.NewStateError("BILL_DELETED", "deleted bill cannot be extended")
	}
	if extraPenalty.IsNegative() {
		return shared.NewValidationError("INVALID_PENALTY", "extension penalty must not be negative")
	}
	b.DueDate = b.DueDate.AddDate(0, 0, graceDays)
	b.PenaltyAmount = b.PenaltyAmount.Add(extraPenalty)
	b.Status = BillStatusIssued
	return nil
}

// AmountDue returns the outstanding amount including penalties
func (b *Bill) AmountDue() decimal.Decimal {
	return b.TotalAmount.Add(b.PenaltyAmount).Sub(b.PaidAmount)
}

// HasPayment reports whether any payment has been recorded against the bill
func (b *Bill) HasPayment() bool {
	return b.PaidAmount.GreaterThan(decimal.Zero) ||
		b.Status == BillStatusPaid || b.Status == BillStatusPartiallyPaid
}

// ApplyPayment records a payment and resolves the status to paid or
// partially paid. Called on behalf of the external payment collaborator
// after its transaction settles.
func (b *Bill) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_AMOUNT", "payment amount must be positive")
	}
	if !b.Status.CanReceivePayment() {
		return shared.NewStateError("NOT_PAYABLE", "bill cannot receive payment in status "+b.Status.String())
	}
	if b.IsDeleted() {
		return shared.NewStateError("BILL_DELETED", "deleted bill cannot receive payment")
	}
	b.PaidAmount = b.PaidAmount.Add(amount)
	if b.PaidAmount.GreaterThanOrEqual(b.TotalAmount.Add(b.PenaltyAmount)) {
		b.Status = BillStatusPaid
	} else {
		b.Status = BillStatusPartiallyPaid
	}
	b.PendingPaymentRef = nil
	return nil
}

// MarkPaymentPending records an in-flight gateway payment reference.
// While set, edits and cancellation are rejected.
func (b *Bill) MarkPaymentPending(ref string) error {
	if !b.Status.CanReceivePayment() {
		return shared.NewStateError("NOT_PAYABLE", "bill cannot start payment in status "+b.Status.String())
	}
	if b.PendingPaymentRef != nil {
		return shared.NewConflictError("PAYMENT_PENDING", "another payment is already pending for bill "+b.BillNumber)
	}
	b.PendingPaymentRef = &ref
	return nil
}

// ClearPendingPayment drops the pending payment reference, e.g. when a cash
// payment confirmation cancels a conflicting online payment.
func (b *Bill) ClearPendingPayment() {
	b.PendingPaymentRef = nil
}

// EnsureEditable rejects mutation of bills that must stay frozen: bills
// with recorded or in-flight payments, terminal bills, and deleted bills.
func (b *Bill) EnsureEditable() error {
	if b.IsDeleted() {
		return shared.NewStateError("BILL_DELETED", "deleted bill cannot be edited")
	}
	if b.PendingPaymentRef != nil {
		return shared.NewConflictError("PAYMENT_PENDING", "bill has a pending payment and cannot be edited")
	}
	if b.HasPayment() {
		return shared.NewStateError("HAS_PAYMENT", "bill with recorded payment cannot be edited")
	}
	if b.Status == BillStatusCancelled {
		return shared.NewStateError("BILL_CANCELLED", "cancelled bill cannot be edited")
	}
	return nil
}

// SoftDelete removes a draft from view. Drafts only; published bills go
// through Cancel instead, and bills with payments are never deletable.
func (b *Bill) SoftDelete(at time.Time) error {
	if b.HasPayment() {
		return shared.NewStateError("HAS_PAYMENT", "bill with recorded payment can never be deleted")
	}
	if b.Status != BillStatusDraft {
		return shared.NewStateError("NOT_DRAFT", "only draft bills are deleted directly, current status: "+b.Status.String())
	}
	if b.IsDeleted() {
		return shared.NewStateError("ALREADY_DELETED", "bill is already deleted")
	}
	b.MarkDeleted(at)
	return nil
}

// Cancel voids an issued or overdue bill: status becomes cancelled and the
// bill is soft-deleted in the same step. Bills with any payment recorded can
// never be cancelled.
func (b *Bill) Cancel(at time.Time) error {
	if b.PendingPaymentRef != nil {
		return shared.NewConflictError("PAYMENT_PENDING", "bill has a pending payment and cannot be cancelled")
	}
	if b.HasPayment() {
		return shared.NewStateError("HAS_PAYMENT", "bill with recorded payment can never be cancelled")
	}
	if b.Status != BillStatusIssued && b.Status != BillStatusOverdue {
		return shared.NewStateError("NOT_CANCELLABLE", "only issued or overdue bills can be cancelled, current status: "+b.Status.String())
	}
	b.Status = BillStatusCancelled
	b.MarkDeleted(at)
	return nil
}

// Restore clears the soft-delete mark. A restored cancelled bill keeps its
// cancelled status; only a restored draft returns to the editable pool.
func (b *Bill) Restore() error {
	if !b.IsDeleted() {
		return shared.NewStateError("NOT_DELETED", "bill is not deleted")
	}
	b.ClearDeleted()
	return nil
}

// numberAlphabet excludes ambiguous characters (0/O, 1/I/L)
const numberAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// GenerateBillNumber builds a human-readable unique bill number encoding
// type, billing period and a short random suffix, e.g. "UT-202603-K7KQ".
func GenerateBillNumber(billType BillType, periodStart time.Time) string {
	suffix := make([]byte, 4)
	random := make([]byte, 4)
	if _, err := rand.Read(random); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	for i, v := range random {
		suffix[i] = numberAlphabet[int(v)%len(numberAlphabet)]
	}
	return fmt.Sprintf("%s-%d%02d-%s",
		billType.NumberPrefix(), periodStart.Year(), int(periodStart.Month()), string(suffix))
}
