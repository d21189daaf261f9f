package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adp-api/internal/models"
)

// QuotaRepository manages persistence for per-lecturer workload quotas.
type QuotaRepository struct {
	db *sqlx.DB
}

// NewQuotaRepository constructs a QuotaRepository.
func NewQuotaRepository(db *sqlx.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

const quotaColumns = "id, lecturer_id, academic_year, standard_quota, reduction_hours, reduction_reason, created_at, updated_at"

// Find returns the quota row for a lecturer and academic year, if present.
func (r *QuotaRepository) Find(ctx context.Context, lecturerID, academicYear string) (*models.WorkloadQuota, error) {
	query := fmt.Sprintf("SELECT %s FROM workload_quotas WHERE lecturer_id = $1 AND academic_year = $2", quotaColumns)
	var quota models.WorkloadQuota
	if err := r.db.GetContext(ctx, &quota, query, lecturerID, academicYear); err != nil {
		return nil, err
	}
	return &quota, nil
}

// ListByYear returns all quota rows of an academic year.
func (r *QuotaRepository) ListByYear(ctx context.Context, academicYear string) ([]models.WorkloadQuota, error) {
	query := fmt.Sprintf("SELECT %s FROM workload_quotas WHERE academic_year = $1", quotaColumns)
	var quotas []models.WorkloadQuota
	if err := r.db.SelectContext(ctx, &quotas, query, academicYear); err != nil {
		return nil, fmt.Errorf("list quotas by year: %w", err)
	}
	return quotas, nil
}

// Upsert writes the quota row for a (lecturer, year) pair, creating it on
// first write.
func (r *QuotaRepository) Upsert(ctx context.Context, quota *models.WorkloadQuota) error {
	if quota.ID == "" {
		quota.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if quota.CreatedAt.IsZero() {
		quota.CreatedAt = now
	}
	quota.UpdatedAt = now

	const query = `INSERT INTO workload_quotas (id, lecturer_id, academic_year, standard_quota, reduction_hours, reduction_reason, created_at, updated_at)
		VALUES (:id, :lecturer_id, :academic_year, :standard_quota, :reduction_hours, :reduction_reason, :created_at, :updated_at)
		ON CONFLICT (lecturer_id, academic_year)
		DO UPDATE SET standard_quota = EXCLUDED.standard_quota, reduction_hours = EXCLUDED.reduction_hours, reduction_reason = EXCLUDED.reduction_reason, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, quota); err != nil {
		return fmt.Errorf("upsert quota: %w", err)
	}
	return nil
}

// Delete removes the quota row for a (lecturer, year) pair.
func (r *QuotaRepository) Delete(ctx context.Context, lecturerID, academicYear string) error {
	const query = `DELETE FROM workload_quotas WHERE lecturer_id = $1 AND academic_year = $2`
	if _, err := r.db.ExecContext(ctx, query, lecturerID, academicYear); err != nil {
		return fmt.Errorf("delete quota: %w", err)
	}
	return nil
}
