package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/dto"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/models"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/config"
	appErrors "github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/errors"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/jobs"
)

type stubClassRepo struct{ classes []models.Class }

func (s *stubClassRepo) ListAll(context.Context) ([]models.Class, error) { return s.classes, nil }

type stubTeacherRepo struct{ teachers []models.Teacher }

func (s *stubTeacherRepo) ListActive(context.Context) ([]models.Teacher, error) {
	return s.teachers, nil
}

type stubAssignmentRepo struct{ loads []models.AssignmentLoad }

func (s *stubAssignmentRepo) ListForScheduling(context.Context) ([]models.AssignmentLoad, error) {
	return s.loads, nil
}

type stubAvailabilityRepo struct{ blocked []models.TeacherAvailability }

func (s *stubAvailabilityRepo) ListBlocked(context.Context) ([]models.TeacherAvailability, error) {
	return s.blocked, nil
}

type stubEntryRepo struct {
	mu       sync.Mutex
	replaced []models.ScheduleEntry
}

func (s *stubEntryRepo) List(_ context.Context, _ models.ScheduleFilter) ([]models.ScheduleEntry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaced, len(s.replaced), nil
}

func (s *stubEntryRepo) ReplaceAll(_ context.Context, entries []models.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaced = entries
	return nil
}

type stubRunRepo struct {
	mu   sync.Mutex
	runs map[string]*models.ScheduleRun
}

func newStubRunRepo() *stubRunRepo {
	return &stubRunRepo{runs: make(map[string]*models.ScheduleRun)}
}

func (s *stubRunRepo) Create(_ context.Context, run *models.ScheduleRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == "" {
		run.ID = "run-1"
	}
	if run.Status == "" {
		run.Status = models.RunPending
	}
	copied := *run
	s.runs[run.ID] = &copied
	return nil
}

func (s *stubRunRepo) FindByID(_ context.Context, id string) (*models.ScheduleRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *run
	return &copied, nil
}

func (s *stubRunRepo) UpdateProgress(_ context.Context, id string, progress float64, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = models.RunRunning
		run.Progress = progress
		run.Message = message
	}
	return nil
}

func (s *stubRunRepo) Complete(_ context.Context, run *models.ScheduleRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	run.Status = models.RunCompleted
	run.FinishedAt = &now
	copied := *run
	s.runs[run.ID] = &copied
	return nil
}

func (s *stubRunRepo) Fail(_ context.Context, id string, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = models.RunFailed
		run.Error = &cause
	}
	return nil
}

func (s *stubRunRepo) ActiveExists(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, run := range s.runs {
		if run.Status == models.RunPending || run.Status == models.RunRunning {
			return true, nil
		}
	}
	return false, nil
}

type stubConfigRepo struct{ schoolType models.SchoolType }

func (s *stubConfigRepo) SchoolType(context.Context) (models.SchoolType, error) {
	if s.schoolType == "" {
		return models.SchoolHigh, nil
	}
	return s.schoolType, nil
}

func newTestScheduleService(t *testing.T) (*ScheduleService, *stubRunRepo, *stubEntryRepo) {
	t.Helper()
	runs := newStubRunRepo()
	entries := &stubEntryRepo{}
	repos := ScheduleRepos{
		Classes:  &stubClassRepo{},
		Teachers: &stubTeacherRepo{teachers: []models.Teacher{{ID: "t1", Active: true}, {ID: "t2", Active: true}}},
		Assignments: &stubAssignmentRepo{loads: []models.AssignmentLoad{
			{ID: "a1", ClassID: "9A", TeacherID: "t1", LessonID: "math", WeeklyHours: 4, Importance: 3},
			{ID: "a2", ClassID: "9A", TeacherID: "t2", LessonID: "english", WeeklyHours: 3, Importance: 2},
			{ID: "a3", ClassID: "9A", TeacherID: "ghost", LessonID: "music", WeeklyHours: 2, Importance: 1},
		}},
		Availability: &stubAvailabilityRepo{},
		Entries:      entries,
		Runs:         runs,
		Config:       &stubConfigRepo{},
	}
	cfg := config.SchedulerConfig{TimeBudget: 20 * time.Second, MaxAttempts: 1, MaxDepth: 10}
	svc := NewScheduleService(repos, nil, nil, nil, nil, cfg)
	return svc, runs, entries
}

func TestExecuteTaskPersistsScheduleAndReport(t *testing.T) {
	svc, runs, entries := newTestScheduleService(t)
	require.NoError(t, runs.Create(context.Background(), &models.ScheduleRun{ID: "run-1"}))

	err := svc.ExecuteTask(context.Background(), jobs.Task{ID: "run-1", Kind: "generate_schedule"})
	require.NoError(t, err)

	run, err := runs.FindByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, run.Status)
	assert.Equal(t, 7, run.TotalHours, "the inactive-teacher assignment is excluded from totals")
	assert.Equal(t, 7, run.ScheduledHours)
	require.NotNil(t, run.QualityScore)

	entries.mu.Lock()
	persisted := len(entries.replaced)
	entries.mu.Unlock()
	assert.Equal(t, 7, persisted)

	report, err := svc.RunReport(context.Background(), "run-1")
	require.NoError(t, err)
	require.NotNil(t, report.Report)
	// The skipped inactive-teacher assignment surfaces as a failure diagnostic.
	require.Len(t, report.FailedLessons, 1)
	assert.Equal(t, "ghost", report.FailedLessons[0].Assignment.TeacherID)
}

func TestStartRunRejectsConcurrentRuns(t *testing.T) {
	svc, runs, _ := newTestScheduleService(t)

	queue := jobs.NewQueue("generation", func(context.Context, jobs.Task) error { return nil }, jobs.QueueConfig{})
	queue.Start(context.Background())
	defer queue.Stop()
	svc.AttachQueue(queue)

	require.NoError(t, runs.Create(context.Background(), &models.ScheduleRun{ID: "busy", Status: models.RunRunning}))

	_, err := svc.StartRun(context.Background(), dto.StartRunRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrRunInProgress.Code, appErr.Code)
}

func TestStartRunRequiresQueue(t *testing.T) {
	svc, _, _ := newTestScheduleService(t)
	_, err := svc.StartRun(context.Background(), dto.StartRunRequest{})
	require.Error(t, err)
}

func TestRunStatusNotFound(t *testing.T) {
	svc, _, _ := newTestScheduleService(t)
	_, err := svc.RunStatus(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRunReportUnavailableAfterRestart(t *testing.T) {
	svc, runs, _ := newTestScheduleService(t)
	require.NoError(t, runs.Create(context.Background(), &models.ScheduleRun{ID: "old", Status: models.RunCompleted}))

	_, err := svc.RunReport(context.Background(), "old")
	require.Error(t, err, "reports are in-memory; a completed run without one reports not found")
}
