package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/dto"
	"github.com/SscSPs/transit_finance/internal/middleware"
	"github.com/gin-gonic/gin"
)

// revenueHandler handles HTTP requests for revenue sources and revenue records.
type revenueHandler struct {
	revenueService portssvc.RevenueSvcFacade
}

func newRevenueHandler(revenueService portssvc.RevenueSvcFacade) *revenueHandler {
	return &revenueHandler{revenueService: revenueService}
}

// registerRevenueRoutes registers routes for revenue sources and revenues.
func registerRevenueRoutes(rg *gin.RouterGroup, revenueService portssvc.RevenueSvcFacade) {
	h := newRevenueHandler(revenueService)

	sources := rg.Group("/revenue-sources")
	{
		sources.POST("", h.createSource)
		sources.GET("", h.listSources)
	}

	revenues := rg.Group("/revenues")
	{
		revenues.POST("", h.createRevenue)
		revenues.GET("", h.listRevenues)
		revenues.GET("/:id", h.getRevenue)
		revenues.POST("/:id/recognize", h.recognizeRevenue)
		revenues.POST("/:id/post", h.postRevenue)
		revenues.POST("/:id/reverse", h.reverseRevenue)
	}
}

// createSource godoc
// @Summary Create a revenue source
// @Tags revenues
// @Accept  json
// @Produce  json
// @Param   source body dto.CreateRevenueSourceRequest true "Source details"
// @Success 201 {object} domain.RevenueSource
// @Failure 400 {object} map[string]string "Invalid input or unknown account code"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Source code already exists"
// @Failure 500 {object} map[string]string "Failed to create revenue source"
// @Security BearerAuth
// @Router /revenue-sources [post]
func (h *revenueHandler) createSource(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRevenueSourceRequest
	if !bindJSON(c, logger, &req, "CreateRevenueSource") {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	source, err := h.revenueService.CreateRevenueSource(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create revenue source")
		return
	}

	logger.Info("Revenue source created successfully", slog.String("source_id", source.SourceID), slog.String("source_code", source.Code))
	c.JSON(http.StatusCreated, source)
}

// listSources godoc
// @Summary List revenue sources
// @Tags revenues
// @Produce  json
// @Success 200 {array} domain.RevenueSource
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list revenue sources"
// @Security BearerAuth
// @Router /revenue-sources [get]
func (h *revenueHandler) listSources(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	sources, err := h.revenueService.ListRevenueSources(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list revenue sources")
		return
	}
	c.JSON(http.StatusOK, sources)
}

// createRevenue godoc
// @Summary Record revenue
// @Description Records cash received and recognises it as a DRAFT journal entry
// @Tags revenues
// @Accept  json
// @Produce  json
// @Param   revenue body dto.CreateRevenueRequest true "Revenue details"
// @Success 201 {object} domain.Revenue
// @Failure 400 {object} map[string]string "Invalid input or unknown revenue source"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to record revenue"
// @Security BearerAuth
// @Router /revenues [post]
func (h *revenueHandler) createRevenue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRevenueRequest
	if !bindJSON(c, logger, &req, "CreateRevenue") {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to record revenue", slog.String("source_id", req.SourceID), slog.String("amount", req.Amount.String()))

	revenue, err := h.revenueService.CreateRevenue(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to record revenue")
		return
	}

	logger.Info("Revenue recorded successfully", slog.String("revenue_id", revenue.RevenueID))
	c.JSON(http.StatusCreated, revenue)
}

// getRevenue godoc
// @Summary Get a revenue record
// @Tags revenues
// @Produce  json
// @Param   id path string true "Revenue ID"
// @Success 200 {object} domain.Revenue
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Revenue not found"
// @Failure 500 {object} map[string]string "Failed to retrieve revenue"
// @Security BearerAuth
// @Router /revenues/{id} [get]
func (h *revenueHandler) getRevenue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	revenue, err := h.revenueService.GetRevenue(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve revenue")
		return
	}
	c.JSON(http.StatusOK, revenue)
}

// listRevenues godoc
// @Summary List revenue records
// @Tags revenues
// @Produce  json
// @Param   sourceID query string false "Revenue source filter"
// @Param   status query string false "Status filter"
// @Param   receivableID query string false "Receivable filter"
// @Param   fromDate query string false "Earliest revenue date (YYYY-MM-DD)"
// @Param   toDate query string false "Latest revenue date (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListRevenuesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list revenues"
// @Security BearerAuth
// @Router /revenues [get]
func (h *revenueHandler) listRevenues(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUserID(c, logger); !ok {
		return
	}
	var params dto.ListRevenuesParams
	if !bindQuery(c, logger, &params, "ListRevenues") {
		return
	}

	resp, err := h.revenueService.ListRevenues(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list revenues")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// recognizeRevenue godoc
// @Summary Recognise a revenue in the ledger
// @Description Creates and links the DRAFT journal entry of a RECORDED revenue that has none yet
// @Tags revenues
// @Produce  json
// @Param   id path string true "Revenue ID"
// @Success 200 {object} domain.Revenue
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Revenue not found"
// @Failure 409 {object} map[string]string "Revenue already recognised"
// @Failure 500 {object} map[string]string "Failed to recognise revenue"
// @Security BearerAuth
// @Router /revenues/{id}/recognize [post]
func (h *revenueHandler) recognizeRevenue(c *gin.Context) {
	h.ledgerAction(c, "recognise", "Failed to recognise revenue", h.revenueService.RecognizeRevenue)
}

// postRevenue godoc
// @Summary Post a revenue to the general ledger
// @Description Posts the revenue's journal entry, recognising the revenue first when it has no entry
// @Tags revenues
// @Produce  json
// @Param   id path string true "Revenue ID"
// @Success 200 {object} domain.Revenue
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Revenue not found"
// @Failure 409 {object} map[string]string "Revenue already posted or reversed"
// @Failure 500 {object} map[string]string "Failed to post revenue"
// @Security BearerAuth
// @Router /revenues/{id}/post [post]
func (h *revenueHandler) postRevenue(c *gin.Context) {
	h.ledgerAction(c, "post", "Failed to post revenue", h.revenueService.PostRevenueToGL)
}

// ledgerAction runs a body-less revenue ledger operation.
func (h *revenueHandler) ledgerAction(c *gin.Context, action, failMsg string,
	op func(ctx context.Context, revenueID, userID string) (*domain.Revenue, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	revenueID := c.Param("id")
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("revenue_id", revenueID), slog.String("action", action))
	logger.Info("Received revenue ledger request")

	revenue, err := op(c.Request.Context(), revenueID, userID)
	if err != nil {
		respondError(c, err, failMsg)
		return
	}

	logger.Info("Revenue ledger request completed", slog.String("status", string(revenue.Status)))
	c.JSON(http.StatusOK, revenue)
}

// reverseRevenue godoc
// @Summary Reverse a posted revenue
// @Description Reverses the revenue's posted journal entry and marks the revenue REVERSED
// @Tags revenues
// @Accept  json
// @Produce  json
// @Param   id path string true "Revenue ID"
// @Param   reversal body dto.ReverseRevenueRequest true "Reversal reason"
// @Success 200 {object} domain.Revenue
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Revenue not found"
// @Failure 409 {object} map[string]string "Revenue not POSTED"
// @Failure 500 {object} map[string]string "Failed to reverse revenue"
// @Security BearerAuth
// @Router /revenues/{id}/reverse [post]
func (h *revenueHandler) reverseRevenue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	revenueID := c.Param("id")
	var req dto.ReverseRevenueRequest
	if !bindJSON(c, logger, &req, "ReverseRevenue") {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("revenue_id", revenueID))
	logger.Info("Received request to reverse revenue")

	revenue, err := h.revenueService.ReverseRevenue(c.Request.Context(), revenueID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to reverse revenue")
		return
	}

	logger.Info("Revenue reversed successfully")
	c.JSON(http.StatusOK, revenue)
}
