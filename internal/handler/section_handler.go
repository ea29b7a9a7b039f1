package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	"github.com/noah-isme/matricula-api/pkg/response"
)

type sectionService interface {
	Create(ctx context.Context, req dto.CreateSectionRequest, actor *models.JWTClaims) (*dto.SectionResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateSectionRequest, actor *models.JWTClaims) (*dto.SectionResponse, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	Get(ctx context.Context, id string) (*dto.SectionResponse, error)
	List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, *models.Pagination, error)
	ListByCourseAndPeriod(ctx context.Context, courseID, periodID string) ([]dto.SectionResponse, error)
}

// SectionHandler manages section endpoints.
type SectionHandler struct {
	sections sectionService
}

// NewSectionHandler constructs handler.
func NewSectionHandler(sections sectionService) *SectionHandler {
	return &SectionHandler{sections: sections}
}

// List godoc
// @Summary List sections
// @Tags Sections
// @Produce json
// @Param courseId query string false "Filter by course"
// @Param periodId query string false "Filter by period"
// @Param teacherId query string false "Filter by teacher"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *SectionHandler) List(c *gin.Context) {
	filter := models.SectionFilter{
		CourseID:  c.Query("courseId"),
		PeriodID:  c.Query("periodId"),
		TeacherID: c.Query("teacherId"),
		Active:    boolQuery(c, "active"),
	}
	filter.Page, filter.PageSize = pageParams(c)
	sections, pagination, err := h.sections.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, pagination)
}

// ListByCourseAndPeriod godoc
// @Summary Sections offered for a course in a period
// @Tags Sections
// @Produce json
// @Param courseId path string true "Course ID"
// @Param periodId path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /sections/course/{courseId}/period/{periodId} [get]
func (h *SectionHandler) ListByCourseAndPeriod(c *gin.Context) {
	sections, err := h.sections.ListByCourseAndPeriod(c.Request.Context(), c.Param("courseId"), c.Param("periodId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// Get godoc
// @Summary Get section
// @Tags Sections
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id} [get]
func (h *SectionHandler) Get(c *gin.Context) {
	section, err := h.sections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// Create godoc
// @Summary Create section
// @Tags Sections
// @Accept json
// @Produce json
// @Param payload body dto.CreateSectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Router /sections [post]
func (h *SectionHandler) Create(c *gin.Context) {
	var req dto.CreateSectionRequest
	if !bindJSON(c, &req, "invalid section payload") {
		return
	}
	section, err := h.sections.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// Update godoc
// @Summary Update section
// @Tags Sections
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body dto.UpdateSectionRequest true "Section payload"
// @Success 200 {object} response.Envelope
// @Router /sections/{id} [put]
func (h *SectionHandler) Update(c *gin.Context) {
	var req dto.UpdateSectionRequest
	if !bindJSON(c, &req, "invalid section payload") {
		return
	}
	section, err := h.sections.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// Delete godoc
// @Summary Delete section
// @Tags Sections
// @Param id path string true "Section ID"
// @Success 204
// @Router /sections/{id} [delete]
func (h *SectionHandler) Delete(c *gin.Context) {
	if err := h.sections.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
