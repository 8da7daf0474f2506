package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/models"
)

// AssignmentRepository manages the class/teacher/lesson bindings the
// scheduler works from.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListForScheduling joins assignments with curriculum and lesson metadata.
// Assignments whose lesson has no curriculum row for the class's grade come
// back with zero hours so the caller can report them instead of dropping
// them silently.
func (r *AssignmentRepository) ListForScheduling(ctx context.Context) ([]models.AssignmentLoad, error) {
	const query = `SELECT a.id, a.class_id, a.teacher_id, a.lesson_id,
			COALESCE(cu.weekly_hours, 0) AS weekly_hours,
			l.importance
		FROM lesson_assignments a
		JOIN classes c ON c.id = a.class_id
		JOIN lessons l ON l.id = a.lesson_id
		LEFT JOIN curriculum cu ON cu.lesson_id = a.lesson_id AND cu.grade = c.grade
		ORDER BY a.class_id, a.lesson_id`
	var rows []models.AssignmentLoad
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list assignments for scheduling: %w", err)
	}
	return rows, nil
}

// List returns all assignments.
func (r *AssignmentRepository) List(ctx context.Context) ([]models.LessonAssignment, error) {
	const query = `SELECT id, class_id, teacher_id, lesson_id, created_at FROM lesson_assignments ORDER BY class_id, lesson_id`
	var assignments []models.LessonAssignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.LessonAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO lesson_assignments (id, class_id, teacher_id, lesson_id, created_at)
		VALUES (:id, :class_id, :teacher_id, :lesson_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM lesson_assignments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
