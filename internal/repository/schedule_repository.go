package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/models"
)

// ScheduleRepository persists accepted timetable placements.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedule entries matching filters along with total count.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, int, error) {
	base := "FROM schedule_entries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Day != nil {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, *filter.Day)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, run_id, class_id, teacher_id, lesson_id, day, slot, block_id, block_position, placement_method, constraint_level, created_at %s ORDER BY day, slot, class_id LIMIT %d OFFSET %d", base, size, offset)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule entries: %w", err)
	}

	return entries, total, nil
}

// ListByRun returns every entry produced by one generation run.
func (r *ScheduleRepository) ListByRun(ctx context.Context, runID string) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, run_id, class_id, teacher_id, lesson_id, day, slot, block_id, block_position, placement_method, constraint_level, created_at
		FROM schedule_entries WHERE run_id = $1 ORDER BY day, slot, class_id`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, runID); err != nil {
		return nil, fmt.Errorf("list schedule entries for run %s: %w", runID, err)
	}
	return entries, nil
}

// ReplaceAll atomically swaps the published timetable: the previous entries
// go away and the new run's placements take their place.
func (r *ScheduleRepository) ReplaceAll(ctx context.Context, entries []models.ScheduleEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_entries`); err != nil {
		return fmt.Errorf("clear schedule entries: %w", err)
	}

	const insert = `INSERT INTO schedule_entries (id, run_id, class_id, teacher_id, lesson_id, day, slot, block_id, block_position, placement_method, constraint_level, created_at)
		VALUES (:id, :run_id, :class_id, :teacher_id, :lesson_id, :day, :slot, :block_id, :block_position, :placement_method, :constraint_level, :created_at)`
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
		if _, err = tx.NamedExecContext(ctx, insert, entries[i]); err != nil {
			return fmt.Errorf("insert schedule entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace schedule: %w", err)
	}
	return nil
}
