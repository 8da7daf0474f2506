package scheduler

import "time"

// FailureEntry records a lesson that could not be fully placed, with enough
// context for diagnostics. Failures never abort a run.
type FailureEntry struct {
	Assignment     LessonAssignment `json:"assignment"`
	RemainingHours int              `json:"remaining_hours"`
	Level          ConstraintLevel  `json:"constraint_level"`
	Reason         string           `json:"reason"`
	AttemptedSlots int              `json:"attempted_slots"`
	Violations     []string         `json:"violations,omitempty"`
}

// PhaseStats summarises one relaxation phase of an attempt.
type PhaseStats struct {
	Level       ConstraintLevel `json:"level"`
	HoursPlaced int             `json:"hours_placed"`
	Duration    time.Duration   `json:"duration"`
}

// RunStats aggregates search counters across the winning attempt.
type RunStats struct {
	Attempts            int          `json:"attempts"`
	Decisions           int          `json:"decisions"`
	Backtracks          int          `json:"backtracks"`
	DepthLimitHits      int          `json:"depth_limit_hits"`
	AlternativePatterns int          `json:"alternative_patterns"`
	AttemptedSlots      int          `json:"attempted_slots"`
	Relaxations         int          `json:"relaxations"`
	Phases              []PhaseStats `json:"phases"`
	RebalanceMoves      int          `json:"rebalance_moves"`
	CleanupDropped      int          `json:"cleanup_dropped"`
	EarlyTermination    string       `json:"early_termination,omitempty"`
}

// Result is the orchestrator's output: the best schedule found within the time
// budget plus full diagnostics. Success means every required hour was placed.
type Result struct {
	RunID              string              `json:"run_id"`
	Placements         []PlacementDecision `json:"placements"`
	TotalHours         int                 `json:"total_hours"`
	ScheduledHours     int                 `json:"scheduled_hours"`
	CompletionRate     float64             `json:"completion_rate"`
	Success            bool                `json:"success"`
	Elapsed            time.Duration       `json:"elapsed"`
	FailedLessons      []FailureEntry      `json:"failed_lessons"`
	TeacherUtilization map[string]int      `json:"teacher_utilization"`
	ClassUtilization   map[string]int      `json:"class_utilization"`
	Stats              RunStats            `json:"stats"`
}
