package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-adp-api/internal/service"
	appErrors "github.com/noah-isme/uni-adp-api/pkg/errors"
	"github.com/noah-isme/uni-adp-api/pkg/response"
)

// QuotaHandler wires quota services to HTTP routes.
type QuotaHandler struct {
	quotas *service.QuotaService
}

// NewQuotaHandler constructs a new QuotaHandler.
func NewQuotaHandler(quotas *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quotas: quotas}
}

// Get godoc
// @Summary Get a lecturer's quota
// @Description Returns the stored quota row, or the policy default when none exists
// @Tags Quotas
// @Produce json
// @Param lecturer_id path string true "Lecturer ID"
// @Param academic_year query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /quotas/{lecturer_id} [get]
func (h *QuotaHandler) Get(c *gin.Context) {
	academicYear := strings.TrimSpace(c.Query("academic_year"))
	if academicYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academic_year is required"))
		return
	}
	quota, err := h.quotas.Get(c.Request.Context(), c.Param("lecturer_id"), academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quota, nil)
}

// Set godoc
// @Summary Set a lecturer's quota
// @Description Upserts the quota and reduction hours for one academic year
// @Tags Quotas
// @Accept json
// @Produce json
// @Param payload body service.QuotaRequest true "Quota payload"
// @Success 200 {object} response.Envelope
// @Router /quotas [put]
func (h *QuotaHandler) Set(c *gin.Context) {
	var req service.QuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quota payload"))
		return
	}
	quota, err := h.quotas.Set(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quota, nil)
}

// Delete godoc
// @Summary Delete a lecturer's quota
// @Description Removes the stored row so the policy default applies again
// @Tags Quotas
// @Produce json
// @Param lecturer_id path string true "Lecturer ID"
// @Param academic_year query string true "Academic year"
// @Success 204 {object} response.Envelope
// @Router /quotas/{lecturer_id} [delete]
func (h *QuotaHandler) Delete(c *gin.Context) {
	academicYear := strings.TrimSpace(c.Query("academic_year"))
	if academicYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academic_year is required"))
		return
	}
	if err := h.quotas.Delete(c.Request.Context(), c.Param("lecturer_id"), academicYear); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
