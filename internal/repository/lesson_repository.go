package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/models"
)

// LessonRepository manages lessons and their curriculum hour table.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns lessons matching filters along with total count.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	base := "FROM lessons WHERE 1=1"
	var args []interface{}

	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, importance, created_at, updated_at %s ORDER BY name %s LIMIT %d OFFSET %d", base, order, size, offset)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	return lessons, total, nil
}

// ListAll returns every lesson keyed by ID for scheduler input assembly.
func (r *LessonRepository) ListAll(ctx context.Context) ([]models.Lesson, error) {
	const query = `SELECT id, name, importance, created_at, updated_at FROM lessons ORDER BY name`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query); err != nil {
		return nil, fmt.Errorf("list all lessons: %w", err)
	}
	return lessons, nil
}

// FindByID fetches a lesson by ID.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	const query = `SELECT id, name, importance, created_at, updated_at FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Create inserts a new lesson record.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now

	const query = `INSERT INTO lessons (id, name, importance, created_at, updated_at)
		VALUES (:id, :name, :importance, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// WeeklyHoursFor resolves the curriculum hours of a lesson at a grade level.
// A missing curriculum row yields zero hours, not an error; the scheduler
// treats zero-hour assignments as structurally invalid and reports them.
func (r *LessonRepository) WeeklyHoursFor(ctx context.Context, lessonID string, grade int) (int, error) {
	const query = `SELECT weekly_hours FROM curriculum WHERE lesson_id = $1 AND grade = $2`
	var hours int
	if err := r.db.GetContext(ctx, &hours, query, lessonID, grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("curriculum hours for lesson %s grade %d: %w", lessonID, grade, err)
	}
	return hours, nil
}

// ListCurriculum returns the full curriculum table.
func (r *LessonRepository) ListCurriculum(ctx context.Context) ([]models.CurriculumEntry, error) {
	const query = `SELECT id, lesson_id, grade, weekly_hours FROM curriculum ORDER BY grade, lesson_id`
	var entries []models.CurriculumEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list curriculum: %w", err)
	}
	return entries, nil
}

// UpsertCurriculum inserts or replaces the weekly hours for a lesson/grade pair.
func (r *LessonRepository) UpsertCurriculum(ctx context.Context, entry *models.CurriculumEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO curriculum (id, lesson_id, grade, weekly_hours)
		VALUES (:id, :lesson_id, :grade, :weekly_hours)
		ON CONFLICT (lesson_id, grade) DO UPDATE SET weekly_hours = EXCLUDED.weekly_hours`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert curriculum: %w", err)
	}
	return nil
}
