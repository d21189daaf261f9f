package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adp-api/internal/models"
	"github.com/noah-isme/uni-adp-api/pkg/export"
	"github.com/noah-isme/uni-adp-api/pkg/storage"
)

type exportSectionsStub struct{}

func (exportSectionsStub) ListByLecturerYear(ctx context.Context, lecturerID, academicYear string) ([]models.SectionDetail, error) {
	return []models.SectionDetail{
		{
			CourseSection: models.CourseSection{
				ID:            "sec-1",
				LecturerID:    lecturerID,
				StudentCount:  45,
				Coefficient:   1.1,
				StandardHours: 94.5,
			},
			SubjectCode: "INT1234",
			SubjectName: "Nhập môn lập trình",
			ClassName:   "D21CQCN01",
		},
	}, nil
}

type exportGuidanceStub struct{}

func (exportGuidanceStub) ListByLecturerYear(ctx context.Context, lecturerID, academicYear string) ([]models.GuidanceTask, error) {
	return []models.GuidanceTask{
		{
			ID:            "gd-1",
			LecturerID:    lecturerID,
			AcademicYear:  academicYear,
			Kind:          models.GuidanceGraduationProject,
			Content:       "Hướng dẫn đồ án",
			Credits:       3,
			StudentCount:  5,
			ComputedHours: 30,
		},
	}, nil
}

func (exportGuidanceStub) ListDetailsByYear(ctx context.Context, academicYear string) ([]models.GuidanceTaskDetail, error) {
	return []models.GuidanceTaskDetail{
		{
			GuidanceTask: models.GuidanceTask{
				ID:            "gd-1",
				AcademicYear:  academicYear,
				Kind:          models.GuidanceInternship,
				Content:       "Thực tập doanh nghiệp",
				Credits:       1.5,
				StudentCount:  7,
				ComputedHours: 8.4,
			},
			LecturerName: "Nguyễn Văn A",
		},
	}, nil
}

type workloadStub struct{}

func (workloadStub) LecturerSummary(ctx context.Context, lecturerID, academicYear string) (*models.LecturerWorkloadSummary, error) {
	return &models.LecturerWorkloadSummary{
		LecturerID:    lecturerID,
		LecturerName:  "Nguyễn Văn A",
		AcademicYear:  academicYear,
		TeachingHours: 94.5,
		GuidanceHours: 30,
		StandardQuota: 270,
		TotalHours:    124.5,
		Balance:       -145.5,
	}, nil
}

func (workloadStub) DepartmentReport(ctx context.Context, departmentID, academicYear string) (*models.DepartmentWorkloadReport, error) {
	return &models.DepartmentWorkloadReport{
		DepartmentID:   departmentID,
		DepartmentName: "Công nghệ thông tin",
		AcademicYear:   academicYear,
		Lecturers: []models.LecturerWorkloadSummary{
			{LecturerName: "Nguyễn Văn A", TeachingHours: 94.5, GuidanceHours: 30, StandardQuota: 270, TotalHours: 124.5, Balance: -145.5},
		},
	}, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(exportSectionsStub{}, exportGuidanceStub{}, workloadStub{}, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store
}

func TestExportServiceGenerateWorkloadCSV(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	lecturerID := "lec-1"
	job := &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeWorkload,
		Params:    models.ReportJobParams{AcademicYear: "2025-2026", LecturerID: &lecturerID, Format: models.ReportFormatCSV},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/reports/download/")

	path := store.Path(result.RelativePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGenerateWorkloadRequiresLecturer(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:     "job-2",
		Type:   models.ReportTypeWorkload,
		Params: models.ReportJobParams{AcademicYear: "2025-2026", Format: models.ReportFormatCSV},
	}
	_, err := svc.Generate(context.Background(), job)
	require.Error(t, err)
}

func TestExportServiceGenerateDepartmentPDF(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	departmentID := "dep-1"
	job := &models.ReportJob{
		ID:        "job-3",
		Type:      models.ReportTypeDepartment,
		Params:    models.ReportJobParams{AcademicYear: "2025-2026", DepartmentID: &departmentID, Format: models.ReportFormatPDF},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, models.ReportFormatPDF, result.Format)

	path := filepath.Clean(store.Path(result.RelativePath))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGenerateGuidanceCSV(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:     "job-4",
		Type:   models.ReportTypeGuidance,
		Params: models.ReportJobParams{AcademicYear: "2025-2026", Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	file.Close()
}
