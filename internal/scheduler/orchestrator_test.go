package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallSchoolInput() Input {
	availability := NewAvailability()
	return Input{
		Days:         5,
		SlotsPerDay:  8,
		Availability: availability,
		Assignments: []LessonAssignment{
			{ClassID: "9A", TeacherID: "teacher-math", LessonID: "math", WeeklyHours: 5, Importance: 3},
			{ClassID: "9A", TeacherID: "teacher-sci", LessonID: "physics", WeeklyHours: 4, Importance: 3},
			{ClassID: "9A", TeacherID: "teacher-lang", LessonID: "english", WeeklyHours: 3, Importance: 2},
			{ClassID: "9B", TeacherID: "teacher-math", LessonID: "math", WeeklyHours: 5, Importance: 3},
			{ClassID: "9B", TeacherID: "teacher-sci", LessonID: "chemistry", WeeklyHours: 3, Importance: 2},
			{ClassID: "9B", TeacherID: "teacher-lang", LessonID: "english", WeeklyHours: 3, Importance: 2},
			{ClassID: "9A", TeacherID: "teacher-art", LessonID: "art", WeeklyHours: 2, Importance: 1},
			{ClassID: "9B", TeacherID: "teacher-art", LessonID: "art", WeeklyHours: 2, Importance: 1},
		},
	}
}

func TestScheduleSmallSchoolCompletes(t *testing.T) {
	o := NewOrchestrator(Config{TimeBudget: 20 * time.Second}, nil, nil)
	in := smallSchoolInput()

	result, err := o.Schedule(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, result.Success, "a loose grid must schedule fully, failures: %+v", result.FailedLessons)
	assert.InDelta(t, 100.0, result.CompletionRate, 0.001)
	assert.Equal(t, in.TotalHours(), result.ScheduledHours)
	assert.Empty(t, result.FailedLessons)
	assert.NotEmpty(t, result.RunID)

	report := Validate(in, result)
	assert.Zero(t, report.Critical, "no double-bookings: %+v", report.Violations)

	assert.Equal(t, in.TotalHours(), sumValues(result.TeacherUtilization))
	assert.Equal(t, in.TotalHours(), sumValues(result.ClassUtilization))
}

func TestScheduleParallelAttemptsAgree(t *testing.T) {
	o := NewOrchestrator(Config{TimeBudget: 20 * time.Second, Parallel: true, Randomize: true, Seed: 7}, nil, nil)
	in := smallSchoolInput()

	result, err := o.Schedule(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.GreaterOrEqual(t, result.Stats.Attempts, 1)

	report := Validate(in, result)
	assert.Zero(t, report.Critical)
}

func TestScheduleRelaxesForScarceAvailability(t *testing.T) {
	availability := NewAvailability()
	// The teacher can only teach on day 0; nine hours cannot fit into one
	// seven-slot day, so the run must climb the ladder to AVAILABILITY_FLEX.
	for day := 1; day < 5; day++ {
		for slot := 0; slot < 7; slot++ {
			availability.Block("teacher-1", day, slot)
		}
	}
	in := Input{
		Days:         5,
		SlotsPerDay:  7,
		Availability: availability,
		Assignments: []LessonAssignment{
			{ClassID: "9A", TeacherID: "teacher-1", LessonID: "math", WeeklyHours: 9},
		},
	}

	o := NewOrchestrator(Config{TimeBudget: 20 * time.Second}, nil, nil)
	result, err := o.Schedule(context.Background(), in)
	require.NoError(t, err)
	require.True(t, result.Success, "failures: %+v", result.FailedLessons)
	assert.GreaterOrEqual(t, result.Stats.Relaxations, 1)

	flexed := false
	for _, p := range result.Placements {
		if p.ConstraintLevel == LevelAvailabilityFlex {
			flexed = true
		}
	}
	assert.True(t, flexed, "some hours must have been placed under AVAILABILITY_FLEX")
}

func TestScheduleReachesFinalLevelAfterHeavyBacktracking(t *testing.T) {
	availability := NewAvailability()
	// Two teachers restricted to day 0 force the strict and block-flex phases
	// to exhaust thousands of dead-end branches. The phase-scoped backtrack
	// ceiling must not starve AVAILABILITY_FLEX of its placement attempts.
	for _, teacher := range []string{"teacher-1", "teacher-2"} {
		for day := 1; day < 5; day++ {
			for slot := 0; slot < 7; slot++ {
				availability.Block(teacher, day, slot)
			}
		}
	}
	in := Input{
		Days:         5,
		SlotsPerDay:  7,
		Availability: availability,
		Assignments: []LessonAssignment{
			{ClassID: "9A", TeacherID: "teacher-1", LessonID: "math", WeeklyHours: 9},
			{ClassID: "9B", TeacherID: "teacher-2", LessonID: "physics", WeeklyHours: 9},
		},
	}

	o := NewOrchestrator(Config{TimeBudget: 20 * time.Second}, nil, nil)
	result, err := o.Schedule(context.Background(), in)
	require.NoError(t, err)
	require.True(t, result.Success, "failures: %+v", result.FailedLessons)
	assert.Empty(t, result.Stats.EarlyTermination, "backtracking in early phases must not abort the attempt")

	require.NotEmpty(t, result.Stats.Phases)
	last := result.Stats.Phases[len(result.Stats.Phases)-1]
	assert.Equal(t, LevelAvailabilityFlex, last.Level)
	assert.Positive(t, last.HoursPlaced, "the most relaxed level must get real placement attempts")
}

func TestScheduleSkipsStructurallyInvalidAssignments(t *testing.T) {
	in := smallSchoolInput()
	in.Assignments = append(in.Assignments,
		LessonAssignment{ClassID: "", TeacherID: "teacher-x", LessonID: "ghost", WeeklyHours: 2},
		LessonAssignment{ClassID: "9C", TeacherID: "teacher-x", LessonID: "music", WeeklyHours: 0},
	)

	o := NewOrchestrator(Config{TimeBudget: 20 * time.Second}, nil, nil)
	result, err := o.Schedule(context.Background(), in)
	require.NoError(t, err)

	reasons := make([]string, 0, len(result.FailedLessons))
	for _, f := range result.FailedLessons {
		reasons = append(reasons, f.Reason)
	}
	assert.Len(t, result.FailedLessons, 2, "invalid assignments are reported, not fatal: %v", reasons)
}

func TestScheduleRejectsZeroSlotGrid(t *testing.T) {
	o := NewOrchestrator(Config{}, nil, nil)
	_, err := o.Schedule(context.Background(), Input{Days: 5, SlotsPerDay: 0})
	require.Error(t, err)
}

func TestScheduleEmptyInputSucceeds(t *testing.T) {
	o := NewOrchestrator(Config{}, nil, nil)
	result, err := o.Schedule(context.Background(), Input{Days: 5, SlotsPerDay: 8})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.InDelta(t, 100.0, result.CompletionRate, 0.001)
}

func TestScheduleHonoursTinyBudget(t *testing.T) {
	o := NewOrchestrator(Config{TimeBudget: time.Millisecond}, nil, nil)
	in := smallSchoolInput()

	start := time.Now()
	result, err := o.Schedule(context.Background(), in)
	require.NoError(t, err, "budget exhaustion is a defined outcome, not an error")
	require.NotNil(t, result)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestScheduleReportsProgress(t *testing.T) {
	var messages []string
	progress := ProgressFunc(func(message string, percent float64) {
		messages = append(messages, message)
	})
	o := NewOrchestrator(Config{TimeBudget: 20 * time.Second}, nil, progress)

	_, err := o.Schedule(context.Background(), smallSchoolInput())
	require.NoError(t, err)
	assert.NotEmpty(t, messages)
}

func sumValues(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}
