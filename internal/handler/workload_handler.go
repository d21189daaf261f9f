package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-adp-api/internal/middleware"
	"github.com/noah-isme/uni-adp-api/internal/service"
	appErrors "github.com/noah-isme/uni-adp-api/pkg/errors"
	"github.com/noah-isme/uni-adp-api/pkg/response"
)

// WorkloadHandler wires workload summaries to HTTP routes.
type WorkloadHandler struct {
	workloads *service.WorkloadService
}

// NewWorkloadHandler constructs a new WorkloadHandler.
func NewWorkloadHandler(workloads *service.WorkloadService) *WorkloadHandler {
	return &WorkloadHandler{workloads: workloads}
}

// DepartmentReport godoc
// @Summary Department workload report
// @Description Quota-adjusted hour totals for every active lecturer of a department
// @Tags Workload
// @Produce json
// @Param id path string true "Department ID"
// @Param academic_year query string true "Academic year, e.g. 2025-2026"
// @Success 200 {object} response.Envelope
// @Router /departments/{id}/workload [get]
func (h *WorkloadHandler) DepartmentReport(c *gin.Context) {
	academicYear := strings.TrimSpace(c.Query("academic_year"))
	if academicYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academic_year is required"))
		return
	}
	report, err := h.workloads.DepartmentReport(c.Request.Context(), c.Param("id"), academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}
