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

// TeachingClassHandler wires teaching class services to HTTP routes.
type TeachingClassHandler struct {
	classes *service.TeachingClassService
}

// NewTeachingClassHandler constructs a new TeachingClassHandler.
func NewTeachingClassHandler(classes *service.TeachingClassService) *TeachingClassHandler {
	return &TeachingClassHandler{classes: classes}
}

// List godoc
// @Summary List teaching classes
// @Tags TeachingClasses
// @Produce json
// @Param academic_year query string false "Filter by academic year"
// @Param search query string false "Search by name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *TeachingClassHandler) List(c *gin.Context) {
	filter := models.TeachingClassFilter{
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		Search:       strings.TrimSpace(c.Query("search")),
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	classes, pagination, err := h.classes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// Get godoc
// @Summary Get teaching class detail
// @Tags TeachingClasses
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *TeachingClassHandler) Get(c *gin.Context) {
	class, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create teaching class
// @Tags TeachingClasses
// @Accept json
// @Produce json
// @Param payload body service.CreateTeachingClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *TeachingClassHandler) Create(c *gin.Context) {
	var req service.CreateTeachingClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update teaching class
// @Tags TeachingClasses
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateTeachingClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *TeachingClassHandler) Update(c *gin.Context) {
	var req service.UpdateTeachingClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.classes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete teaching class
// @Tags TeachingClasses
// @Produce json
// @Param id path string true "Class ID"
// @Success 204 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *TeachingClassHandler) Delete(c *gin.Context) {
	if err := h.classes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Bulk import teaching classes
// @Description Upserts classes by name and academic year
// @Tags TeachingClasses
// @Accept json
// @Produce json
// @Param payload body []models.TeachingClassImportRow true "Class rows"
// @Success 200 {object} response.Envelope
// @Router /classes/import [post]
func (h *TeachingClassHandler) Import(c *gin.Context) {
	var rows []models.TeachingClassImportRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload"))
		return
	}
	count, err := h.classes.Import(c.Request.Context(), rows)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"imported": count}, nil)
}
