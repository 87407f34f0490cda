package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/dto"
	"github.com/SscSPs/transit_finance/internal/middleware"
	"github.com/gin-gonic/gin"
)

// receivableHandler handles HTTP requests for receivables, their schedules and installment payments.
type receivableHandler struct {
	receivableService portssvc.ReceivableSvcFacade
	paymentService    portssvc.PaymentSvc
}

func newReceivableHandler(rs portssvc.ReceivableSvcFacade, ps portssvc.PaymentSvc) *receivableHandler {
	return &receivableHandler{
		receivableService: rs,
		paymentService:    ps,
	}
}

// registerReceivableRoutes registers routes for receivables and installment payments.
func registerReceivableRoutes(rg *gin.RouterGroup, receivableService portssvc.ReceivableSvcFacade, paymentService portssvc.PaymentSvc) {
	h := newReceivableHandler(receivableService, paymentService)

	receivables := rg.Group("/receivables")
	{
		receivables.POST("", h.createReceivable)
		receivables.GET("", h.listReceivables)
		receivables.GET("/:id", h.getReceivable)
		receivables.PUT("/:id/schedule", h.updateSchedule)
		receivables.POST("/:id/status", h.changeStatus)
		receivables.GET("/:id/payments", h.listPayments)
	}

	rg.POST("/installments/:installmentID/payments", h.recordPayment)
}

// createReceivable godoc
// @Summary Create a receivable
// @Description Creates a receivable with its installment schedule. Without a schedule a single installment is created.
// @Tags receivables
// @Accept  json
// @Produce  json
// @Param   receivable body dto.CreateReceivableRequest true "Receivable and schedule"
// @Success 201 {object} domain.Receivable
// @Failure 400 {object} map[string]string "Invalid input or schedule does not match total"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create receivable"
// @Security BearerAuth
// @Router /receivables [post]
func (h *receivableHandler) createReceivable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateReceivableRequest
	if !bindJSON(c, logger, &req, "CreateReceivable") {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create receivable",
		slog.String("debtor_type", req.DebtorType),
		slog.String("debtor_id", req.DebtorID),
		slog.String("total_amount", req.TotalAmount.String()))

	receivable, err := h.receivableService.CreateWithSchedule(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create receivable")
		return
	}

	logger.Info("Receivable created successfully", slog.String("receivable_id", receivable.ReceivableID), slog.Int("installments", len(receivable.Installments)))
	c.JSON(http.StatusCreated, receivable)
}

// getReceivable godoc
// @Summary Get a receivable
// @Tags receivables
// @Produce  json
// @Param   id path string true "Receivable ID"
// @Success 200 {object} domain.Receivable
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Receivable not found"
// @Failure 500 {object} map[string]string "Failed to retrieve receivable"
// @Security BearerAuth
// @Router /receivables/{id} [get]
func (h *receivableHandler) getReceivable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	receivable, err := h.receivableService.GetReceivable(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve receivable")
		return
	}
	c.JSON(http.StatusOK, receivable)
}

// listReceivables godoc
// @Summary List receivables
// @Description Lists receivables by due date with token pagination
// @Tags receivables
// @Produce  json
// @Param   status query string false "Status filter"
// @Param   debtorType query string false "Debtor type filter"
// @Param   debtorID query string false "Debtor ID filter"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListReceivablesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list receivables"
// @Security BearerAuth
// @Router /receivables [get]
func (h *receivableHandler) listReceivables(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUserID(c, logger); !ok {
		return
	}
	var params dto.ListReceivablesParams
	if !bindQuery(c, logger, &params, "ListReceivables") {
		return
	}

	resp, err := h.receivableService.ListReceivables(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list receivables")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateSchedule godoc
// @Summary Replace a receivable's installment schedule
// @Description Allowed only while no payment has been recorded against the receivable
// @Tags receivables
// @Accept  json
// @Produce  json
// @Param   id path string true "Receivable ID"
// @Param   schedule body dto.UpdateScheduleRequest true "New schedule"
// @Success 200 {object} domain.Receivable
// @Failure 400 {object} map[string]string "Invalid schedule"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Receivable not found"
// @Failure 409 {object} map[string]string "Payments already recorded or receivable closed"
// @Failure 500 {object} map[string]string "Failed to update schedule"
// @Security BearerAuth
// @Router /receivables/{id}/schedule [put]
func (h *receivableHandler) updateSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receivableID := c.Param("id")
	var req dto.UpdateScheduleRequest
	if !bindJSON(c, logger, &req, "UpdateSchedule") {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("receivable_id", receivableID))
	logger.Info("Received request to replace schedule", slog.Int("installments", len(req.Schedule)))

	receivable, err := h.receivableService.UpdateSchedule(c.Request.Context(), receivableID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to update schedule")
		return
	}

	logger.Info("Schedule replaced successfully")
	c.JSON(http.StatusOK, receivable)
}

// changeStatus godoc
// @Summary Change a receivable's status
// @Description Marks a receivable OVERDUE, CANCELLED or WRITTEN_OFF
// @Tags receivables
// @Accept  json
// @Produce  json
// @Param   id path string true "Receivable ID"
// @Param   status body dto.ChangeReceivableStatusRequest true "Target status and reason"
// @Success 200 {object} domain.Receivable
// @Failure 400 {object} map[string]string "Transition not allowed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Receivable not found"
// @Failure 409 {object} map[string]string "Receivable already closed"
// @Failure 500 {object} map[string]string "Failed to change status"
// @Security BearerAuth
// @Router /receivables/{id}/status [post]
func (h *receivableHandler) changeStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receivableID := c.Param("id")
	var req dto.ChangeReceivableStatusRequest
	if !bindJSON(c, logger, &req, "ChangeReceivableStatus") {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("receivable_id", receivableID), slog.String("target_status", string(req.Status)))
	logger.Info("Received request to change receivable status")

	receivable, err := h.receivableService.ChangeStatus(c.Request.Context(), receivableID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to change status")
		return
	}

	logger.Info("Receivable status changed successfully")
	c.JSON(http.StatusOK, receivable)
}

// listPayments godoc
// @Summary List installment payments of a receivable
// @Tags receivables
// @Produce  json
// @Param   id path string true "Receivable ID"
// @Success 200 {array} domain.InstallmentPayment
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Receivable not found"
// @Failure 500 {object} map[string]string "Failed to list payments"
// @Security BearerAuth
// @Router /receivables/{id}/payments [get]
func (h *receivableHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	payments, err := h.receivableService.ListInstallmentPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, payments)
}

// recordPayment godoc
// @Summary Record a payment against an installment
// @Description Applies cash to the installment and cascades any excess into later installments
// @Tags receivables
// @Accept  json
// @Produce  json
// @Param   installmentID path string true "Installment ID"
// @Param   payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} domain.PaymentResult
// @Failure 400 {object} map[string]string "Invalid amount, settled installment, closed receivable or overpayment"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Installment not found"
// @Failure 409 {object} map[string]string "Receivable is locked by another payment"
// @Failure 500 {object} map[string]string "Failed to record payment"
// @Security BearerAuth
// @Router /installments/{installmentID}/payments [post]
func (h *receivableHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	installmentID := c.Param("installmentID")
	var req dto.RecordPaymentRequest
	if !bindJSON(c, logger, &req, "RecordPayment") {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("installment_id", installmentID))
	logger.Info("Received request to record payment", slog.String("amount_paid", req.AmountPaid.String()))

	result, err := h.paymentService.RecordPayment(c.Request.Context(), installmentID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to record payment")
		return
	}

	logger.Info("Payment recorded successfully",
		slog.Int("allocations", len(result.Allocations)),
		slog.String("revenue_id", result.RevenueID))
	c.JSON(http.StatusCreated, result)
}
