package handler

import (
	appmetering "github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/application/metering"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReadingHandler exposes the meter ledger over HTTP
type ReadingHandler struct {
	BaseHandler
	readings *appmetering.ReadingService
}

// NewReadingHandler creates a new ReadingHandler
func NewReadingHandler(readings *appmetering.ReadingService) *ReadingHandler {
	return &ReadingHandler{readings: readings}
}

// RegisterRoutes registers the reading routes
func (h *ReadingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	buildings := rg.Group("/buildings/:id")
	{
		buildings.PUT("/readings", h.RecordBatch)
		buildings.GET("/readings", h.List)
		buildings.GET("/readings/form", h.Form)
		buildings.GET("/unbilled-rooms", h.UnbilledRooms)
	}
}

type readingEntryRequest struct {
	RoomID       string `json:"room_id" binding:"required,uuid"`
	CurrElectric string `json:"curr_electric" binding:"required"`
	CurrWater    string `json:"curr_water" binding:"required"`

	ElectricReset         bool    `json:"electric_reset"`
	ElectricResetBaseline *string `json:"electric_reset_baseline"`
	WaterReset            bool    `json:"water_reset"`
	WaterResetBaseline    *string `json:"water_reset_baseline"`
}

type recordReadingsRequest struct {
	Month   int                   `json:"month" binding:"required,min=1,max=12"`
	Year    int                   `json:"year" binding:"required,min=2000"`
	Entries []readingEntryRequest `json:"entries" binding:"required"`
}

// RecordBatch records one batch of meter readings for a building and period
func (h *ReadingHandler) RecordBatch(c *gin.Context) {
	buildingID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid building id")
		return
	}
	var req recordReadingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	entries := make([]appmetering.ReadingEntry, 0, len(req.Entries))
	for i := range req.Entries {
		entry, ok := toReadingEntry(&req.Entries[i])
		if !ok {
			h.BadRequest(c, "meter index is not a valid decimal")
			return
		}
		entries = append(entries, entry)
	}

	err := h.readings.RecordReadings(c.Request.Context(), appmetering.RecordReadingsRequest{
		BuildingID: buildingID,
		Month:      req.Month,
		Year:       req.Year,
		Entries:    entries,
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.NoContent(c)
}

type periodQuery struct {
	Month int `form:"month" binding:"required,min=1,max=12"`
	Year  int `form:"year" binding:"required,min=2000"`
}

// Form returns the pre-filled recording form for a building and period
func (h *ReadingHandler) Form(c *gin.Context) {
	buildingID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid building id")
		return
	}
	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}

	rows, err := h.readings.GetReadingsForm(c.Request.Context(), buildingID, q.Month, q.Year)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, rows)
}

// List returns the raw readings of a building for a period
func (h *ReadingHandler) List(c *gin.Context) {
	buildingID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid building id")
		return
	}
	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}

	readings, err := h.readings.GetReadings(c.Request.Context(), buildingID, q.Month, q.Year)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, readings)
}

// UnbilledRooms reports occupied rooms without a utility bill for the period
func (h *ReadingHandler) UnbilledRooms(c *gin.Context) {
	buildingID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid building id")
		return
	}
	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}

	rows, err := h.readings.GetUnbilledRooms(c.Request.Context(), buildingID, q.Month, q.Year)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, rows)
}

func toReadingEntry(req *readingEntryRequest) (appmetering.ReadingEntry, bool) {
	electric, err := decimal.NewFromString(req.CurrElectric)
	if err != nil {
		return appmetering.ReadingEntry{}, false
	}
	water, err := decimal.NewFromString(req.CurrWater)
	if err != nil {
		return appmetering.ReadingEntry{}, false
	}

	entry := appmetering.ReadingEntry{
		RoomID:        uuid.MustParse(req.RoomID),
		CurrElectric:  electric,
		CurrWater:     water,
		ElectricReset: req.ElectricReset,
		WaterReset:    req.WaterReset,
	}
	if req.ElectricResetBaseline != nil {
		baseline, err := decimal.NewFromString(*req.ElectricResetBaseline)
		if err != nil {
			return appmetering.ReadingEntry{}, false
		}
		entry.ElectricResetBaseline = baseline
	}
	if req.WaterResetBaseline != nil {
		baseline, err := decimal.NewFromString(*req.WaterResetBaseline)
		if err != nil {
			return appmetering.ReadingEntry{}, false
		}
		entry.WaterResetBaseline = baseline
	}
	return entry, true
}
