package dto

import "github.com/DolphinLong/dersdagitimprogrami-sub001/internal/scheduler"

// StartRunRequest tunes one generation run. Every field is optional; zero
// values fall back to the server configuration.
type StartRunRequest struct {
	TimeBudgetSeconds int   `json:"timeBudgetSeconds" validate:"omitempty,min=1,max=600"`
	MaxAttempts       int   `json:"maxAttempts" validate:"omitempty,min=1,max=10"`
	MaxDepth          int   `json:"maxDepth" validate:"omitempty,min=1,max=50"`
	Seed              int64 `json:"seed"`
}

// StartRunResponse acknowledges an accepted run.
type StartRunResponse struct {
	RunID  string `json:"runId"`
	Status string `json:"status"`
}

// RunStatusResponse reports run lifecycle, live progress and, once finished,
// the outcome summary.
type RunStatusResponse struct {
	RunID          string   `json:"runId"`
	Status         string   `json:"status"`
	Progress       float64  `json:"progress"`
	Message        string   `json:"message"`
	TotalHours     int      `json:"totalHours"`
	ScheduledHours int      `json:"scheduledHours"`
	CompletionRate float64  `json:"completionRate"`
	QualityScore   *float64 `json:"qualityScore,omitempty"`
	Error          *string  `json:"error,omitempty"`
}

// RunReportResponse bundles the validation verdict with the run's
// failed-lesson diagnostics.
type RunReportResponse struct {
	RunID         string                   `json:"runId"`
	Report        *scheduler.Report        `json:"report"`
	FailedLessons []scheduler.FailureEntry `json:"failedLessons"`
	Stats         scheduler.RunStats       `json:"stats"`
}

// ScheduleQuery filters the persisted timetable.
type ScheduleQuery struct {
	ClassID   string `form:"classId" json:"classId"`
	TeacherID string `form:"teacherId" json:"teacherId"`
	Day       *int   `form:"day" json:"day" validate:"omitempty,min=0,max=4"`
	Page      int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" json:"pageSize" validate:"omitempty,min=1,max=500"`
}
