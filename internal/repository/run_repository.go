package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/models"
)

// RunRepository tracks generation run lifecycles.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run in PENDING state.
func (r *RunRepository) Create(ctx context.Context, run *models.ScheduleRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.RunPending
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedule_runs (id, status, progress, message, total_hours, scheduled_hours, completion_rate, quality_score, error, started_at, finished_at)
		VALUES (:id, :status, :progress, :message, :total_hours, :scheduled_hours, :completion_rate, :quality_score, :error, :started_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FindByID fetches a run by ID.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*models.ScheduleRun, error) {
	const query = `SELECT id, status, progress, message, total_hours, scheduled_hours, completion_rate, quality_score, error, started_at, finished_at
		FROM schedule_runs WHERE id = $1`
	var run models.ScheduleRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRecent returns the newest runs first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]models.ScheduleRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT id, status, progress, message, total_hours, scheduled_hours, completion_rate, quality_score, error, started_at, finished_at
		FROM schedule_runs ORDER BY started_at DESC LIMIT %d`, limit)
	var runs []models.ScheduleRun
	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	return runs, nil
}

// UpdateProgress stores live progress while workers execute the run.
func (r *RunRepository) UpdateProgress(ctx context.Context, id string, progress float64, message string) error {
	const query = `UPDATE schedule_runs SET status = $2, progress = $3, message = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RunRunning, progress, message); err != nil {
		return fmt.Errorf("update run progress: %w", err)
	}
	return nil
}

// Complete finalises a run with its outcome summary.
func (r *RunRepository) Complete(ctx context.Context, run *models.ScheduleRun) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = models.RunCompleted
	run.Progress = 100
	const query = `UPDATE schedule_runs SET status = :status, progress = :progress, message = :message,
		total_hours = :total_hours, scheduled_hours = :scheduled_hours, completion_rate = :completion_rate,
		quality_score = :quality_score, finished_at = :finished_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// Fail marks a run failed with the error text.
func (r *RunRepository) Fail(ctx context.Context, id string, cause string) error {
	const query = `UPDATE schedule_runs SET status = $2, error = $3, finished_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RunFailed, cause, time.Now().UTC()); err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return nil
}

// ActiveExists reports whether a run is currently pending or running.
func (r *RunRepository) ActiveExists(ctx context.Context) (bool, error) {
	const query = `SELECT COUNT(*) FROM schedule_runs WHERE status IN ($1, $2)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.RunPending, models.RunRunning); err != nil {
		return false, fmt.Errorf("check active runs: %w", err)
	}
	return count > 0, nil
}
