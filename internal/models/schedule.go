package models

import "time"

// RunStatus tracks the lifecycle of one generation run.
type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// ScheduleRun records one timetable generation attempt group: its lifecycle
// state, live progress while the workers run, and the outcome summary.
type ScheduleRun struct {
	ID             string     `db:"id" json:"id"`
	Status         RunStatus  `db:"status" json:"status"`
	Progress       float64    `db:"progress" json:"progress"`
	Message        string     `db:"message" json:"message"`
	TotalHours     int        `db:"total_hours" json:"total_hours"`
	ScheduledHours int        `db:"scheduled_hours" json:"scheduled_hours"`
	CompletionRate float64    `db:"completion_rate" json:"completion_rate"`
	QualityScore   *float64   `db:"quality_score" json:"quality_score,omitempty"`
	Error          *string    `db:"error" json:"error,omitempty"`
	StartedAt      time.Time  `db:"started_at" json:"started_at"`
	FinishedAt     *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// ScheduleEntry is one persisted placement: a class meets a teacher for a
// lesson in a fixed weekly grid cell.
type ScheduleEntry struct {
	ID              string    `db:"id" json:"id"`
	RunID           string    `db:"run_id" json:"run_id"`
	ClassID         string    `db:"class_id" json:"class_id"`
	TeacherID       string    `db:"teacher_id" json:"teacher_id"`
	LessonID        string    `db:"lesson_id" json:"lesson_id"`
	Day             int       `db:"day" json:"day"`
	Slot            int       `db:"slot" json:"slot"`
	BlockID         string    `db:"block_id" json:"block_id"`
	BlockPosition   int       `db:"block_position" json:"block_position"`
	PlacementMethod string    `db:"placement_method" json:"placement_method"`
	ConstraintLevel string    `db:"constraint_level" json:"constraint_level"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ScheduleFilter describes query params for listing schedule entries.
type ScheduleFilter struct {
	ClassID   string
	TeacherID string
	Day       *int
	Page      int
	PageSize  int
}
