package handler

import (
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/scheduler"
	"github.com/gin-gonic/gin"
)

// SystemHandler exposes health checks and manual runs of the daily billing
// passes, for operators and deployment probes.
type SystemHandler struct {
	BaseHandler
	jobs scheduler.BillingJobs
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(jobs scheduler.BillingJobs) *SystemHandler {
	return &SystemHandler{jobs: jobs}
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.POST("/overdue-scan", h.TriggerOverdueScan)
		system.POST("/billing-cycle", h.TriggerBillingCycle)
		system.POST("/reminder-scan", h.TriggerReminderScan)
	}
}

// TriggerOverdueScan runs the overdue scan immediately
func (h *SystemHandler) TriggerOverdueScan(c *gin.Context) {
	transitioned, err := h.jobs.RunOverdueScan(c.Request.Context())
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, gin.H{"transitioned": transitioned})
}

// TriggerBillingCycle runs the auto-billing cycle immediately
func (h *SystemHandler) TriggerBillingCycle(c *gin.Context) {
	report, err := h.jobs.RunAutoBillingCycle(c.Request.Context())
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, report)
}

// TriggerReminderScan runs the reminder scan immediately
func (h *SystemHandler) TriggerReminderScan(c *gin.Context) {
	report, err := h.jobs.RunReminderScan(c.Request.Context())
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, report)
}
