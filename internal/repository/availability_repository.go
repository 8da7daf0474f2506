package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/models"
)

// AvailabilityRepository manages teacher availability exceptions. The table
// only stores cells marked unavailable; absence of a row means available.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListBlocked returns every blocked cell across all teachers.
func (r *AvailabilityRepository) ListBlocked(ctx context.Context) ([]models.TeacherAvailability, error) {
	const query = `SELECT teacher_id, day, slot, available FROM teacher_availability WHERE available = FALSE ORDER BY teacher_id, day, slot`
	var cells []models.TeacherAvailability
	if err := r.db.SelectContext(ctx, &cells, query); err != nil {
		return nil, fmt.Errorf("list blocked availability: %w", err)
	}
	return cells, nil
}

// ListForTeacher returns all availability exceptions of one teacher.
func (r *AvailabilityRepository) ListForTeacher(ctx context.Context, teacherID string) ([]models.TeacherAvailability, error) {
	const query = `SELECT teacher_id, day, slot, available FROM teacher_availability WHERE teacher_id = $1 ORDER BY day, slot`
	var cells []models.TeacherAvailability
	if err := r.db.SelectContext(ctx, &cells, query, teacherID); err != nil {
		return nil, fmt.Errorf("list availability for teacher %s: %w", teacherID, err)
	}
	return cells, nil
}

// Set records one cell's availability, replacing any previous marking.
func (r *AvailabilityRepository) Set(ctx context.Context, cell models.TeacherAvailability) error {
	const query = `INSERT INTO teacher_availability (teacher_id, day, slot, available)
		VALUES (:teacher_id, :day, :slot, :available)
		ON CONFLICT (teacher_id, day, slot) DO UPDATE SET available = EXCLUDED.available`
	if _, err := r.db.NamedExecContext(ctx, query, cell); err != nil {
		return fmt.Errorf("set availability: %w", err)
	}
	return nil
}

// ClearForTeacher removes every exception of a teacher, restoring full availability.
func (r *AvailabilityRepository) ClearForTeacher(ctx context.Context, teacherID string) error {
	const query = `DELETE FROM teacher_availability WHERE teacher_id = $1`
	if _, err := r.db.ExecContext(ctx, query, teacherID); err != nil {
		return fmt.Errorf("clear availability for teacher %s: %w", teacherID, err)
	}
	return nil
}
