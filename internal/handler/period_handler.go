package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	"github.com/noah-isme/matricula-api/pkg/response"
)

type periodService interface {
	Create(ctx context.Context, req dto.CreatePeriodRequest, actor *models.JWTClaims) (*models.AcademicPeriod, error)
	Get(ctx context.Context, id string) (*models.AcademicPeriod, error)
	List(ctx context.Context, filter models.PeriodFilter) ([]models.AcademicPeriod, *models.Pagination, error)
	Current(ctx context.Context) (*models.AcademicPeriod, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdatePeriodStatusRequest, actor *models.JWTClaims) (*models.AcademicPeriod, error)
}

// PeriodHandler exposes academic period endpoints.
type PeriodHandler struct {
	periods periodService
}

// NewPeriodHandler constructs handler.
func NewPeriodHandler(periods periodService) *PeriodHandler {
	return &PeriodHandler{periods: periods}
}

// List godoc
// @Summary List academic periods
// @Tags Periods
// @Produce json
// @Param status query string false "scheduled, in_progress or finished"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *PeriodHandler) List(c *gin.Context) {
	filter := models.PeriodFilter{
		Status: models.PeriodStatus(c.Query("status")),
		Active: boolQuery(c, "active"),
	}
	filter.Page, filter.PageSize = pageParams(c)
	periods, pagination, err := h.periods.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, pagination)
}

// Current godoc
// @Summary Active academic period
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods/current [get]
func (h *PeriodHandler) Current(c *gin.Context) {
	period, err := h.periods.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Get godoc
// @Summary Get academic period
// @Tags Periods
// @Produce json
// @Param id path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /periods/{id} [get]
func (h *PeriodHandler) Get(c *gin.Context) {
	period, err := h.periods.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Create godoc
// @Summary Create academic period
// @Tags Periods
// @Accept json
// @Produce json
// @Param payload body dto.CreatePeriodRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Router /periods [post]
func (h *PeriodHandler) Create(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if !bindJSON(c, &req, "invalid period payload") {
		return
	}
	period, err := h.periods.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// UpdateStatus godoc
// @Summary Change academic period status
// @Tags Periods
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param payload body dto.UpdatePeriodStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /periods/{id}/status [patch]
func (h *PeriodHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdatePeriodStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	period, err := h.periods.UpdateStatus(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}
