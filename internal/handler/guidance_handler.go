package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-adp-api/internal/models"
	"github.com/noah-isme/uni-adp-api/internal/service"
	appErrors "github.com/noah-isme/uni-adp-api/pkg/errors"
	"github.com/noah-isme/uni-adp-api/pkg/response"
)

// GuidanceHandler wires guidance task services to HTTP routes.
type GuidanceHandler struct {
	guidance *service.GuidanceService
}

// NewGuidanceHandler constructs a new GuidanceHandler.
func NewGuidanceHandler(guidance *service.GuidanceService) *GuidanceHandler {
	return &GuidanceHandler{guidance: guidance}
}

// List godoc
// @Summary List guidance tasks
// @Tags Guidance
// @Produce json
// @Param lecturer_id query string false "Filter by lecturer"
// @Param academic_year query string false "Filter by academic year"
// @Param kind query string false "Filter by kind (GRADUATION_PROJECT/INTERNSHIP)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /guidance-tasks [get]
func (h *GuidanceHandler) List(c *gin.Context) {
	filter := models.GuidanceFilter{
		LecturerID:   c.Query("lecturer_id"),
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		Kind:         models.GuidanceKind(strings.ToUpper(c.Query("kind"))),
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	tasks, pagination, err := h.guidance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, pagination)
}

// Get godoc
// @Summary Get guidance task detail
// @Tags Guidance
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /guidance-tasks/{id} [get]
func (h *GuidanceHandler) Get(c *gin.Context) {
	task, err := h.guidance.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Create godoc
// @Summary Create guidance task
// @Description Computes supervision hours from credits, student count, and the policy factor table
// @Tags Guidance
// @Accept json
// @Produce json
// @Param payload body service.GuidanceTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /guidance-tasks [post]
func (h *GuidanceHandler) Create(c *gin.Context) {
	var req service.GuidanceTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid guidance payload"))
		return
	}
	task, err := h.guidance.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Update godoc
// @Summary Update guidance task
// @Tags Guidance
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body service.GuidanceTaskRequest true "Task payload"
// @Success 200 {object} response.Envelope
// @Router /guidance-tasks/{id} [put]
func (h *GuidanceHandler) Update(c *gin.Context) {
	var req service.GuidanceTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid guidance payload"))
		return
	}
	task, err := h.guidance.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Delete godoc
// @Summary Delete guidance task
// @Tags Guidance
// @Produce json
// @Param id path string true "Task ID"
// @Success 204 {object} response.Envelope
// @Router /guidance-tasks/{id} [delete]
func (h *GuidanceHandler) Delete(c *gin.Context) {
	if err := h.guidance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
