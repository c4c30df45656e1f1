package handler

import (
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// ChargeLineResponse is one charge line on the wire
type ChargeLineResponse struct {
	ServiceType string          `json:"service_type"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// BillResponse is a bill on the wire
type BillResponse struct {
	ID            string               `json:"id"`
	BillNumber    string               `json:"bill_number,omitempty"`
	ContractID    string               `json:"contract_id"`
	RoomID        string               `json:"room_id"`
	TenantID      string               `json:"tenant_id"`
	Type          string               `json:"type"`
	Status        string               `json:"status"`
	PeriodStart   *time.Time           `json:"period_start,omitempty"`
	PeriodEnd     *time.Time           `json:"period_end,omitempty"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	PaidAmount    decimal.Decimal      `json:"paid_amount"`
	PenaltyAmount decimal.Decimal      `json:"penalty_amount"`
	AmountDue     decimal.Decimal      `json:"amount_due"`
	Description   string               `json:"description,omitempty"`
	Deleted       bool                 `json:"deleted"`
	Lines         []ChargeLineResponse `json:"lines"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// BillFromDomain converts a domain bill to its wire form
func BillFromDomain(bill *billing.Bill) BillResponse {
	resp := BillResponse{
		ID:            bill.ID.String(),
		BillNumber:    bill.BillNumber,
		ContractID:    bill.ContractID.String(),
		RoomID:        bill.RoomID.String(),
		TenantID:      bill.TenantID.String(),
		Type:          bill.Type.String(),
		Status:        bill.Status.String(),
		TotalAmount:   bill.TotalAmount,
		PaidAmount:    bill.PaidAmount,
		PenaltyAmount: bill.PenaltyAmount,
		AmountDue:     bill.AmountDue(),
		Description:   bill.Description,
		Deleted:       bill.IsDeleted(),
		Lines:         make([]ChargeLineResponse, 0, len(bill.Lines)),
		CreatedAt:     bill.CreatedAt,
		UpdatedAt:     bill.UpdatedAt,
	}
	if !bill.Period.IsZero() {
		start := bill.Period.Start()
		end := bill.Period.End()
		resp.PeriodStart = &start
		resp.PeriodEnd = &end
	}
	if !bill.DueDate.IsZero() {
		due := bill.DueDate
		resp.DueDate = &due
	}
	for _, line := range bill.Lines {
		resp.Lines = append(resp.Lines, ChargeLineResponse{
			ServiceType: string(line.ServiceType),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
			Description: line.Description,
		})
	}
	return resp
}

// BillsFromDomain converts a slice of domain bills to wire form
func BillsFromDomain(bills []billing.Bill) []BillResponse {
	out := make([]BillResponse, 0, len(bills))
	for i := range bills {
		out = append(out, BillFromDomain(&bills[i]))
	}
	return out
}
