package models

import "time"

// Lesson represents a subject taught at the school.
type Lesson struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Importance int       `db:"importance" json:"importance"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// LessonFilter captures filtering options for listing lessons.
type LessonFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CurriculumEntry fixes the weekly hours of a lesson for one grade level.
type CurriculumEntry struct {
	ID          string `db:"id" json:"id"`
	LessonID    string `db:"lesson_id" json:"lesson_id"`
	Grade       int    `db:"grade" json:"grade"`
	WeeklyHours int    `db:"weekly_hours" json:"weekly_hours"`
}

// LessonAssignment binds a teacher to a lesson in a class. Weekly hours come
// from the curriculum for the class's grade, not from the assignment itself.
type LessonAssignment struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	LessonID  string    `db:"lesson_id" json:"lesson_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AssignmentLoad is an assignment joined with its curriculum hours and the
// lesson's importance, the shape scheduler input is assembled from.
type AssignmentLoad struct {
	ID          string `db:"id" json:"id"`
	ClassID     string `db:"class_id" json:"class_id"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	LessonID    string `db:"lesson_id" json:"lesson_id"`
	WeeklyHours int    `db:"weekly_hours" json:"weekly_hours"`
	Importance  int    `db:"importance" json:"importance"`
}
