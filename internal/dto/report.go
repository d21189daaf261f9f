package dto

import "github.com/noah-isme/uni-adp-api/internal/models"

// ReportRequest captures POST /reports payload.
type ReportRequest struct {
	Type         models.ReportType   `json:"type"`
	AcademicYear string              `json:"academicYear"`
	DepartmentID *string             `json:"departmentId,omitempty"`
	LecturerID   *string             `json:"lecturerId,omitempty"`
	Format       models.ReportFormat `json:"format"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
