package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	"github.com/noah-isme/matricula-api/pkg/response"
)

type enrollmentLineService interface {
	AddLine(ctx context.Context, req dto.AddEnrollmentLineRequest, actor *models.JWTClaims) (*dto.EnrollmentLineResponse, error)
	WithdrawLine(ctx context.Context, lineID string, actor *models.JWTClaims) (*dto.EnrollmentLineResponse, error)
	GetLine(ctx context.Context, id string, actor *models.JWTClaims) (*models.EnrollmentLineDetail, error)
	ListLines(ctx context.Context, filter models.EnrollmentLineFilter, actor *models.JWTClaims) ([]models.EnrollmentLineDetail, *models.Pagination, error)
}

// EnrollmentLineHandler exposes the sections held by enrollments.
type EnrollmentLineHandler struct {
	lines enrollmentLineService
}

// NewEnrollmentLineHandler constructs EnrollmentLineHandler.
func NewEnrollmentLineHandler(lines enrollmentLineService) *EnrollmentLineHandler {
	return &EnrollmentLineHandler{lines: lines}
}

// Create godoc
// @Summary Add a section to an enrollment
// @Tags EnrollmentLines
// @Accept json
// @Produce json
// @Param payload body dto.AddEnrollmentLineRequest true "Line payload"
// @Success 201 {object} response.Envelope
// @Router /enrollment-lines [post]
func (h *EnrollmentLineHandler) Create(c *gin.Context) {
	var req dto.AddEnrollmentLineRequest
	if !bindJSON(c, &req, "invalid enrollment line payload") {
		return
	}
	line, err := h.lines.AddLine(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, line)
}

// List godoc
// @Summary List enrollment lines
// @Tags EnrollmentLines
// @Produce json
// @Param enrollmentId query string false "Filter by enrollment"
// @Param sectionId query string false "Filter by section"
// @Param status query string false "active or withdrawn"
// @Success 200 {object} response.Envelope
// @Router /enrollment-lines [get]
func (h *EnrollmentLineHandler) List(c *gin.Context) {
	filter := models.EnrollmentLineFilter{
		EnrollmentID: c.Query("enrollmentId"),
		SectionID:    c.Query("sectionId"),
		Status:       models.LineStatus(c.Query("status")),
	}
	filter.Page, filter.PageSize = pageParams(c)
	lines, pagination, err := h.lines.ListLines(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lines, pagination)
}

// Get godoc
// @Summary Get an enrollment line
// @Tags EnrollmentLines
// @Produce json
// @Param id path string true "Line ID"
// @Success 200 {object} response.Envelope
// @Router /enrollment-lines/{id} [get]
func (h *EnrollmentLineHandler) Get(c *gin.Context) {
	line, err := h.lines.GetLine(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, line, nil)
}

// Withdraw godoc
// @Summary Withdraw a section and release its seat
// @Tags EnrollmentLines
// @Produce json
// @Param id path string true "Line ID"
// @Success 200 {object} response.Envelope
// @Router /enrollment-lines/{id}/withdraw [patch]
func (h *EnrollmentLineHandler) Withdraw(c *gin.Context) {
	line, err := h.lines.WithdrawLine(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "section withdrawn", line)
}
