package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	"github.com/noah-isme/matricula-api/pkg/response"
)

type prerequisiteService interface {
	Create(ctx context.Context, req dto.CreatePrerequisiteRequest, actor *models.JWTClaims) (*models.Prerequisite, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.PrerequisiteDetail, error)
}

// PrerequisiteHandler exposes course prerequisite endpoints.
type PrerequisiteHandler struct {
	prerequisites prerequisiteService
}

// NewPrerequisiteHandler constructs handler.
func NewPrerequisiteHandler(prerequisites prerequisiteService) *PrerequisiteHandler {
	return &PrerequisiteHandler{prerequisites: prerequisites}
}

// Create godoc
// @Summary Declare a prerequisite
// @Tags Prerequisites
// @Accept json
// @Produce json
// @Param payload body dto.CreatePrerequisiteRequest true "Prerequisite payload"
// @Success 201 {object} response.Envelope
// @Router /prerequisites [post]
func (h *PrerequisiteHandler) Create(c *gin.Context) {
	var req dto.CreatePrerequisiteRequest
	if !bindJSON(c, &req, "invalid prerequisite payload") {
		return
	}
	prerequisite, err := h.prerequisites.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, prerequisite)
}

// ListByCourse godoc
// @Summary Prerequisites of a course
// @Tags Prerequisites
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /prerequisites/course/{courseId} [get]
func (h *PrerequisiteHandler) ListByCourse(c *gin.Context) {
	items, err := h.prerequisites.ListByCourse(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
