package handler

import (
	"time"

	appbilling "github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/application/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillHandler exposes the bill lifecycle over HTTP
type BillHandler struct {
	BaseHandler
	bills *appbilling.BillService
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(bills *appbilling.BillService) *BillHandler {
	return &BillHandler{bills: bills}
}

// RegisterRoutes registers the bill routes
func (h *BillHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bills := rg.Group("/bills")
	{
		bills.GET("", h.List)
		bills.POST("", h.CreateIssued)
		bills.POST("/drafts", h.CreateDraft)
		bills.GET("/:id", h.Get)
		bills.PATCH("/:id", h.Edit)
		bills.DELETE("/:id", h.CancelOrDelete)
		bills.POST("/:id/publish", h.Publish)
		bills.POST("/:id/extend", h.Extend)
		bills.POST("/:id/restore", h.Restore)
		bills.POST("/:id/payments", h.ApplyPayment)
	}
}

type createDraftBillRequest struct {
	ContractID  string     `json:"contract_id" binding:"required,uuid"`
	Type        string     `json:"type" binding:"required"`
	Description string     `json:"description"`
	Amount      *string    `json:"amount"`
	PeriodStart *time.Time `json:"period_start"`
	PeriodEnd   *time.Time `json:"period_end"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateDraft creates a draft bill
func (h *BillHandler) CreateDraft(c *gin.Context) {
	var req createDraftBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	amount, ok := parseOptionalAmount(req.Amount)
	if !ok {
		h.BadRequest(c, "amount is not a valid decimal")
		return
	}

	bill, err := h.bills.CreateDraftBill(c.Request.Context(), appbilling.CreateDraftBillRequest{
		ContractID:  uuid.MustParse(req.ContractID),
		Type:        billing.BillType(req.Type),
		Description: req.Description,
		Amount:      amount,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, BillFromDomain(bill))
}

type createIssuedBillRequest struct {
	ContractID  string    `json:"contract_id" binding:"required,uuid"`
	Type        string    `json:"type" binding:"required"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
	DueDate     time.Time `json:"due_date" binding:"required"`
	Amount      string    `json:"amount" binding:"required"`
	Description string    `json:"description" binding:"required"`
}

// CreateIssued creates and publishes a bill in one step
func (h *BillHandler) CreateIssued(c *gin.Context) {
	var req createIssuedBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "amount is not a valid decimal")
		return
	}

	bill, err := h.bills.CreateIssuedBill(c.Request.Context(), appbilling.CreateIssuedBillRequest{
		ContractID:  uuid.MustParse(req.ContractID),
		Type:        billing.BillType(req.Type),
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		DueDate:     req.DueDate,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, BillFromDomain(bill))
}

// Publish publishes a draft bill
func (h *BillHandler) Publish(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid bill id")
		return
	}
	bill, err := h.bills.PublishDraftBill(c.Request.Context(), id)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, BillFromDomain(bill))
}

// Get returns one bill by ID
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid bill id")
		return
	}
	bill, err := h.bills.GetBill(c.Request.Context(), id)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, BillFromDomain(bill))
}

type listBillsRequest struct {
	dto.ListRequest
	ContractID     string `form:"contract_id" binding:"omitempty,uuid"`
	RoomID         string `form:"room_id" binding:"omitempty,uuid"`
	TenantID       string `form:"tenant_id" binding:"omitempty,uuid"`
	Type           string `form:"type"`
	Status         string `form:"status"`
	IncludeDeleted bool   `form:"include_deleted"`
}

// List returns bills matching the query filters, paginated
func (h *BillHandler) List(c *gin.Context) {
	req := listBillsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := billing.BillFilter{
		IncludeDeleted: req.IncludeDeleted,
		Page:           req.Page,
		PageSize:       req.PageSize,
	}
	if req.ContractID != "" {
		id := uuid.MustParse(req.ContractID)
		filter.ContractID = &id
	}
	if req.RoomID != "" {
		id := uuid.MustParse(req.RoomID)
		filter.RoomID = &id
	}
	if req.TenantID != "" {
		id := uuid.MustParse(req.TenantID)
		filter.TenantID = &id
	}
	if req.Type != "" {
		billType := billing.BillType(req.Type)
		filter.Type = &billType
	}
	if req.Status != "" {
		status := billing.BillStatus(req.Status)
		filter.Status = &status
	}

	result, err := h.bills.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, BillsFromDomain(result.Items), result.Total, result.Page, result.PageSize)
}

type editBillRequest struct {
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Amount      *string    `json:"amount"`
}

// Edit applies a restricted edit to an issued bill
func (h *BillHandler) Edit(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid bill id")
		return
	}
	var req editBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	patch := appbilling.EditIssuedBillRequest{
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			h.BadRequest(c, "amount is not a valid decimal")
			return
		}
		patch.Amount = &amount
	}

	bill, err := h.bills.EditIssuedBill(c.Request.Context(), id, patch)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, BillFromDomain(bill))
}

type extendBillRequest struct {
	ExtraPenalty string `json:"extra_penalty"`
}

// Extend extends an overdue bill back to issued, optionally adding a penalty
func (h *BillHandler) Extend(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid bill id")
		return
	}
	var req extendBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	penalty := decimal.Zero
	if req.ExtraPenalty != "" {
		parsed, err := decimal.NewFromString(req.ExtraPenalty)
		if err != nil {
			h.BadRequest(c, "extra_penalty is not a valid decimal")
			return
		}
		penalty = parsed
	}

	bill, err := h.bills.ExtendOverdueBill(c.Request.Context(), id, penalty)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, BillFromDomain(bill))
}

// CancelOrDelete soft-deletes a bill, cancelling it first when needed
func (h *BillHandler) CancelOrDelete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid bill id")
		return
	}
	if err := h.bills.CancelOrDeleteBill(c.Request.Context(), id); err != nil {
		h.DomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Restore clears the soft-delete mark of a bill
func (h *BillHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid bill id")
		return
	}
	bill, err := h.bills.RestoreBill(c.Request.Context(), id)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, BillFromDomain(bill))
}

type applyPaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// ApplyPayment records a payment against a bill
func (h *BillHandler) ApplyPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid bill id")
		return
	}
	var req applyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "amount is not a valid decimal")
		return
	}

	bill, err := h.bills.ApplyPayment(c.Request.Context(), id, amount)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, BillFromDomain(bill))
}

// parseOptionalAmount parses a nil-able decimal string; nil means zero
func parseOptionalAmount(s *string) (decimal.Decimal, bool) {
	if s == nil || *s == "" {
		return decimal.Zero, true
	}
	amount, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
