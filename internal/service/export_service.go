package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-adp-api/internal/models"
	"github.com/noah-isme/uni-adp-api/pkg/export"
	"github.com/noah-isme/uni-adp-api/pkg/storage"
)

type exportSectionRepository interface {
	ListByLecturerYear(ctx context.Context, lecturerID, academicYear string) ([]models.SectionDetail, error)
}

type exportGuidanceRepository interface {
	ListByLecturerYear(ctx context.Context, lecturerID, academicYear string) ([]models.GuidanceTask, error)
	ListDetailsByYear(ctx context.Context, academicYear string) ([]models.GuidanceTaskDetail, error)
}

type workloadSummarizer interface {
	LecturerSummary(ctx context.Context, lecturerID, academicYear string) (*models.LecturerWorkloadSummary, error)
	DepartmentReport(ctx context.Context, departmentID, academicYear string) (*models.DepartmentWorkloadReport, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	sections exportSectionRepository
	guidance exportGuidanceRepository
	workload workloadSummarizer
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(sections exportSectionRepository, guidance exportGuidanceRepository, workload workloadSummarizer, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		sections: sections,
		guidance: guidance,
		workload: workload,
		storage:  store,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Generate builds the dataset according to the job definition and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/reports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	yearPart := sanitizeFilename(job.Params.AcademicYear)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), yearPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeWorkload:
		return s.buildWorkloadDataset(ctx, job.Params)
	case models.ReportTypeDepartment:
		return s.buildDepartmentDataset(ctx, job.Params)
	case models.ReportTypeGuidance:
		return s.buildGuidanceDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

// buildWorkloadDataset lists a single lecturer's teaching sections and
// guidance tasks for the year, closing with the quota balance lines.
func (s *ExportService) buildWorkloadDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	lecturerID := deref(params.LecturerID)
	if lecturerID == "" {
		return export.Dataset{}, "", fmt.Errorf("workload report requires lecturerId")
	}
	summary, err := s.workload.LecturerSummary(ctx, lecturerID, params.AcademicYear)
	if err != nil {
		return export.Dataset{}, "", err
	}
	sections, err := s.sections.ListByLecturerYear(ctx, lecturerID, params.AcademicYear)
	if err != nil {
		return export.Dataset{}, "", err
	}
	tasks, err := s.guidance.ListByLecturerYear(ctx, lecturerID, params.AcademicYear)
	if err != nil {
		return export.Dataset{}, "", err
	}

	headers := []string{"Category", "Detail", "Students", "Coefficient", "Hours"}
	rows := make([]map[string]string, 0, len(sections)+len(tasks)+5)
	for _, sec := range sections {
		rows = append(rows, map[string]string{
			"Category":    "Giảng dạy",
			"Detail":      fmt.Sprintf("%s - %s (%s)", sec.SubjectCode, sec.SubjectName, sec.ClassName),
			"Students":    fmt.Sprintf("%d", sec.StudentCount),
			"Coefficient": fmt.Sprintf("%.2f", sec.Coefficient),
			"Hours":       fmt.Sprintf("%.2f", sec.StandardHours),
		})
	}
	for _, task := range tasks {
		rows = append(rows, map[string]string{
			"Category":    task.Kind.Label(),
			"Detail":      task.Content,
			"Students":    fmt.Sprintf("%d", task.StudentCount),
			"Coefficient": "",
			"Hours":       fmt.Sprintf("%.2f", task.ComputedHours),
		})
	}
	rows = append(rows,
		map[string]string{"Category": "Tổng giờ giảng dạy", "Detail": "", "Students": "", "Coefficient": "", "Hours": fmt.Sprintf("%.2f", summary.TeachingHours)},
		map[string]string{"Category": "Tổng giờ hướng dẫn", "Detail": "", "Students": "", "Coefficient": "", "Hours": fmt.Sprintf("%.2f", summary.GuidanceHours)},
		map[string]string{"Category": "Định mức giờ chuẩn", "Detail": "", "Students": "", "Coefficient": "", "Hours": fmt.Sprintf("%.2f", summary.StandardQuota)},
		map[string]string{"Category": "Giờ miễn giảm", "Detail": "", "Students": "", "Coefficient": "", "Hours": fmt.Sprintf("%.2f", summary.ReductionHours)},
		map[string]string{"Category": "Thừa/thiếu giờ", "Detail": "", "Students": "", "Coefficient": "", "Hours": fmt.Sprintf("%.2f", summary.Balance)},
	)

	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := fmt.Sprintf("Workload Report %s %s", summary.LecturerName, params.AcademicYear)
	return dataset, title, nil
}

func (s *ExportService) buildDepartmentDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	departmentID := deref(params.DepartmentID)
	if departmentID == "" {
		return export.Dataset{}, "", fmt.Errorf("department report requires departmentId")
	}
	report, err := s.workload.DepartmentReport(ctx, departmentID, params.AcademicYear)
	if err != nil {
		return export.Dataset{}, "", err
	}

	headers := []string{"Lecturer", "Teaching Hours", "Guidance Hours", "Quota", "Reduction", "Total Hours", "Balance"}
	rows := make([]map[string]string, 0, len(report.Lecturers))
	for _, lect := range report.Lecturers {
		rows = append(rows, map[string]string{
			"Lecturer":       lect.LecturerName,
			"Teaching Hours": fmt.Sprintf("%.2f", lect.TeachingHours),
			"Guidance Hours": fmt.Sprintf("%.2f", lect.GuidanceHours),
			"Quota":          fmt.Sprintf("%.2f", lect.StandardQuota),
			"Reduction":      fmt.Sprintf("%.2f", lect.ReductionHours),
			"Total Hours":    fmt.Sprintf("%.2f", lect.TotalHours),
			"Balance":        fmt.Sprintf("%.2f", lect.Balance),
		})
	}

	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := fmt.Sprintf("Department Workload Report %s %s", report.DepartmentName, params.AcademicYear)
	return dataset, title, nil
}

func (s *ExportService) buildGuidanceDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	tasks, err := s.guidance.ListDetailsByYear(ctx, params.AcademicYear)
	if err != nil {
		return export.Dataset{}, "", err
	}

	headers := []string{"Lecturer", "Kind", "Content", "Credits", "Students", "Hours"}
	rows := make([]map[string]string, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, map[string]string{
			"Lecturer": task.LecturerName,
			"Kind":     task.Kind.Label(),
			"Content":  task.Content,
			"Credits":  fmt.Sprintf("%.1f", task.Credits),
			"Students": fmt.Sprintf("%d", task.StudentCount),
			"Hours":    fmt.Sprintf("%.2f", task.ComputedHours),
		})
	}

	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := fmt.Sprintf("Guidance Report %s", params.AcademicYear)
	return dataset, title, nil
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
