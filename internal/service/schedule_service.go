package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/dto"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/models"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/scheduler"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/config"
	appErrors "github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/errors"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/jobs"
)

type scheduleClassRepository interface {
	ListAll(ctx context.Context) ([]models.Class, error)
}

type scheduleTeacherRepository interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type scheduleAssignmentRepository interface {
	ListForScheduling(ctx context.Context) ([]models.AssignmentLoad, error)
}

type scheduleAvailabilityRepository interface {
	ListBlocked(ctx context.Context) ([]models.TeacherAvailability, error)
}

type scheduleEntryRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, int, error)
	ReplaceAll(ctx context.Context, entries []models.ScheduleEntry) error
}

type scheduleRunRepository interface {
	Create(ctx context.Context, run *models.ScheduleRun) error
	FindByID(ctx context.Context, id string) (*models.ScheduleRun, error)
	UpdateProgress(ctx context.Context, id string, progress float64, message string) error
	Complete(ctx context.Context, run *models.ScheduleRun) error
	Fail(ctx context.Context, id string, cause string) error
	ActiveExists(ctx context.Context) (bool, error)
}

type schoolConfigRepository interface {
	SchoolType(ctx context.Context) (models.SchoolType, error)
}

// ScheduleRepos bundles the persistence collaborators of the service.
type ScheduleRepos struct {
	Classes      scheduleClassRepository
	Teachers     scheduleTeacherRepository
	Assignments  scheduleAssignmentRepository
	Availability scheduleAvailabilityRepository
	Entries      scheduleEntryRepository
	Runs         scheduleRunRepository
	Config       schoolConfigRepository
}

// ScheduleService drives timetable generation: it assembles scheduler input
// from the database, executes runs on the jobs queue, persists accepted
// placements and serves run status, reports and the published timetable.
type ScheduleService struct {
	repos     ScheduleRepos
	cache     *redis.Client
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.SchedulerConfig

	queue *jobs.Queue

	mu      sync.RWMutex
	reports map[string]*dto.RunReportResponse
}

// NewScheduleService constructs a ScheduleService. The cache client may be
// nil; caching then degrades to no-ops.
func NewScheduleService(repos ScheduleRepos, cache *redis.Client, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg config.SchedulerConfig) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScheduleService{
		repos:     repos,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		reports:   make(map[string]*dto.RunReportResponse),
	}
}

// AttachQueue wires the jobs queue whose handler must be ExecuteTask.
func (s *ScheduleService) AttachQueue(queue *jobs.Queue) {
	s.queue = queue
}

// StartRun accepts a generation request, records a pending run and hands it
// to the worker pool. Only one run may be active at a time.
func (s *ScheduleService) StartRun(ctx context.Context, req dto.StartRunRequest) (*dto.StartRunResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid run request")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "generation queue is not running")
	}

	active, err := s.repos.Runs.ActiveExists(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active runs")
	}
	if active {
		return nil, appErrors.Clone(appErrors.ErrRunInProgress, "")
	}

	run := &models.ScheduleRun{Message: "queued"}
	if err := s.repos.Runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create run")
	}

	ok, err := s.queue.TryEnqueue(jobs.Task{ID: run.ID, Kind: "generate_schedule", Payload: req})
	if err != nil || !ok {
		cause := "generation queue unavailable"
		if err != nil {
			cause = err.Error()
		}
		if failErr := s.repos.Runs.Fail(ctx, run.ID, cause); failErr != nil {
			s.logger.Error("failed to mark run failed", zap.String("run_id", run.ID), zap.Error(failErr))
		}
		return nil, appErrors.Clone(appErrors.ErrRunInProgress, "generation queue is full")
	}

	s.logger.Info("generation run queued", zap.String("run_id", run.ID))
	return &dto.StartRunResponse{RunID: run.ID, Status: string(run.Status)}, nil
}

// ExecuteTask is the queue handler: it runs one generation end to end.
func (s *ScheduleService) ExecuteTask(ctx context.Context, task jobs.Task) error {
	req, _ := task.Payload.(dto.StartRunRequest)
	if err := s.executeRun(ctx, task.ID, req); err != nil {
		if failErr := s.repos.Runs.Fail(ctx, task.ID, err.Error()); failErr != nil {
			s.logger.Error("failed to record run failure", zap.String("run_id", task.ID), zap.Error(failErr))
		}
		s.metrics.ObserveRun(nil, 0, true)
		return err
	}
	return nil
}

func (s *ScheduleService) executeRun(ctx context.Context, runID string, req dto.StartRunRequest) error {
	input, skipped, err := s.buildInput(ctx)
	if err != nil {
		return err
	}
	if input.TotalHours() == 0 && len(skipped) == 0 {
		return appErrors.Clone(appErrors.ErrEmptyCurriculum, "")
	}

	runCfg := s.runConfig(req)
	progress := s.progressRecorder(ctx, runID)
	orchestrator := scheduler.NewOrchestrator(runCfg, s.logger.Named("scheduler"), progress)

	result, err := orchestrator.Schedule(ctx, input)
	if err != nil {
		return fmt.Errorf("generation run %s: %w", runID, err)
	}

	entries := placementsToEntries(runID, result.Placements)
	if err := s.repos.Entries.ReplaceAll(ctx, entries); err != nil {
		return fmt.Errorf("persist run %s: %w", runID, err)
	}

	report := scheduler.Validate(input, result)
	quality := report.QualityScore

	run := &models.ScheduleRun{
		ID:             runID,
		Message:        "completed",
		TotalHours:     result.TotalHours,
		ScheduledHours: result.ScheduledHours,
		CompletionRate: result.CompletionRate,
		QualityScore:   &quality,
	}
	if !result.Success {
		run.Message = fmt.Sprintf("completed with %d unplaced lessons", len(result.FailedLessons))
	}
	if err := s.repos.Runs.Complete(ctx, run); err != nil {
		return fmt.Errorf("finalise run %s: %w", runID, err)
	}

	failures := append(result.FailedLessons, skipped...)
	s.storeReport(ctx, runID, &dto.RunReportResponse{
		RunID:         runID,
		Report:        report,
		FailedLessons: failures,
		Stats:         result.Stats,
	})
	s.metrics.ObserveRun(result, quality, false)

	s.logger.Info("generation run finished",
		zap.String("run_id", runID),
		zap.Float64("completion_rate", result.CompletionRate),
		zap.Float64("quality_score", quality),
		zap.Int("failed_lessons", len(failures)),
		zap.Duration("elapsed", result.Elapsed))
	return nil
}

// buildInput loads all scheduling data up front; the engine never touches
// the database afterwards. Assignments referencing inactive or unknown
// teachers are skipped with a diagnostic instead of aborting the run.
func (s *ScheduleService) buildInput(ctx context.Context) (scheduler.Input, []scheduler.FailureEntry, error) {
	schoolType, err := s.repos.Config.SchoolType(ctx)
	if err != nil {
		return scheduler.Input{}, nil, fmt.Errorf("resolve school type: %w", err)
	}

	classes, err := s.repos.Classes.ListAll(ctx)
	if err != nil {
		return scheduler.Input{}, nil, err
	}

	teachers, err := s.repos.Teachers.ListActive(ctx)
	if err != nil {
		return scheduler.Input{}, nil, err
	}
	activeTeachers := make(map[string]bool, len(teachers))
	for _, t := range teachers {
		activeTeachers[t.ID] = true
	}

	loads, err := s.repos.Assignments.ListForScheduling(ctx)
	if err != nil {
		return scheduler.Input{}, nil, err
	}

	blocked, err := s.repos.Availability.ListBlocked(ctx)
	if err != nil {
		return scheduler.Input{}, nil, err
	}
	availability := scheduler.NewAvailability()
	for _, cell := range blocked {
		availability.Block(cell.TeacherID, cell.Day, cell.Slot)
	}

	input := scheduler.Input{
		Days:         models.SchoolDays,
		SlotsPerDay:  schoolType.SlotsPerDay(),
		Availability: availability,
	}

	var skipped []scheduler.FailureEntry
	for _, load := range loads {
		a := scheduler.LessonAssignment{
			ClassID:     load.ClassID,
			TeacherID:   load.TeacherID,
			LessonID:    load.LessonID,
			WeeklyHours: load.WeeklyHours,
			Importance:  load.Importance,
		}
		if !activeTeachers[load.TeacherID] {
			s.logger.Warn("skipping assignment with inactive teacher",
				zap.String("assignment_id", load.ID),
				zap.String("teacher_id", load.TeacherID))
			skipped = append(skipped, scheduler.FailureEntry{
				Assignment:     a,
				RemainingHours: load.WeeklyHours,
				Reason:         "teacher is inactive or unknown",
			})
			continue
		}
		input.Assignments = append(input.Assignments, a)
	}

	s.logger.Info("scheduler input assembled",
		zap.String("school_type", string(schoolType)),
		zap.Int("slots_per_day", input.SlotsPerDay),
		zap.Int("classes", len(classes)),
		zap.Int("teachers", len(teachers)),
		zap.Int("assignments", len(input.Assignments)),
		zap.Int("skipped", len(skipped)),
		zap.Int("total_hours", input.TotalHours()))
	return input, skipped, nil
}

func (s *ScheduleService) runConfig(req dto.StartRunRequest) scheduler.Config {
	cfg := scheduler.Config{
		TimeBudget:  s.cfg.TimeBudget,
		MaxAttempts: s.cfg.MaxAttempts,
		MaxDepth:    s.cfg.MaxDepth,
		Seed:        s.cfg.RandomSeed,
		Parallel:    s.cfg.Parallel,
	}
	if req.TimeBudgetSeconds > 0 {
		cfg.TimeBudget = time.Duration(req.TimeBudgetSeconds) * time.Second
	}
	if req.MaxAttempts > 0 {
		cfg.MaxAttempts = req.MaxAttempts
	}
	if req.MaxDepth > 0 {
		cfg.MaxDepth = req.MaxDepth
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	cfg.Randomize = cfg.MaxAttempts > 1 || cfg.Seed != 0
	return cfg
}

// progressRecorder persists engine progress so polling clients see live
// percentages. Updates are throttled to whole-percent steps.
func (s *ScheduleService) progressRecorder(ctx context.Context, runID string) scheduler.Progress {
	var mu sync.Mutex
	last := -1.0
	return scheduler.ProgressFunc(func(message string, percent float64) {
		mu.Lock()
		if percent-last < 1 && percent < 100 {
			mu.Unlock()
			return
		}
		last = percent
		mu.Unlock()
		if err := s.repos.Runs.UpdateProgress(ctx, runID, percent, message); err != nil {
			s.logger.Debug("progress update failed", zap.String("run_id", runID), zap.Error(err))
		}
	})
}

// RunStatus returns lifecycle and progress for one run.
func (s *ScheduleService) RunStatus(ctx context.Context, runID string) (*dto.RunStatusResponse, error) {
	run, err := s.repos.Runs.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch run")
	}
	return &dto.RunStatusResponse{
		RunID:          run.ID,
		Status:         string(run.Status),
		Progress:       run.Progress,
		Message:        run.Message,
		TotalHours:     run.TotalHours,
		ScheduledHours: run.ScheduledHours,
		CompletionRate: run.CompletionRate,
		QualityScore:   run.QualityScore,
		Error:          run.Error,
	}, nil
}

// RunReport returns the validation report of a completed run. Reports are
// held in memory and mirrored to Redis; a restart may lose them, in which
// case the run must be regenerated.
func (s *ScheduleService) RunReport(ctx context.Context, runID string) (*dto.RunReportResponse, error) {
	s.mu.RLock()
	report, ok := s.reports[runID]
	s.mu.RUnlock()
	if ok {
		return report, nil
	}

	if cached := s.loadCachedReport(ctx, runID); cached != nil {
		return cached, nil
	}

	if _, err := s.RunStatus(ctx, runID); err != nil {
		return nil, err
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "report is no longer available for this run")
}

// ListSchedule returns the published timetable with pagination metadata.
func (s *ScheduleService) ListSchedule(ctx context.Context, query dto.ScheduleQuery) ([]models.ScheduleEntry, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule query")
	}
	filter := models.ScheduleFilter{
		ClassID:   query.ClassID,
		TeacherID: query.TeacherID,
		Day:       query.Day,
		Page:      query.Page,
		PageSize:  query.PageSize,
	}
	entries, total, err := s.repos.Entries.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	return entries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *ScheduleService) storeReport(ctx context.Context, runID string, report *dto.RunReportResponse) {
	s.mu.Lock()
	s.reports[runID] = report
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	ttl := s.cfg.ReportCacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if err := s.cache.Set(ctx, reportCacheKey(runID), payload, ttl).Err(); err != nil {
		s.logger.Debug("report cache write failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func (s *ScheduleService) loadCachedReport(ctx context.Context, runID string) *dto.RunReportResponse {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, reportCacheKey(runID)).Bytes()
	if err != nil {
		return nil
	}
	var report dto.RunReportResponse
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil
	}
	return &report
}

func reportCacheKey(runID string) string {
	return "schedule:report:" + runID
}

func placementsToEntries(runID string, placements []scheduler.PlacementDecision) []models.ScheduleEntry {
	entries := make([]models.ScheduleEntry, 0, len(placements))
	for _, p := range placements {
		entries = append(entries, models.ScheduleEntry{
			RunID:           runID,
			ClassID:         p.ClassID,
			TeacherID:       p.TeacherID,
			LessonID:        p.LessonID,
			Day:             p.Day,
			Slot:            p.Slot,
			BlockID:         p.BlockID,
			BlockPosition:   p.BlockPosition,
			PlacementMethod: p.PlacementMethod,
			ConstraintLevel: p.ConstraintLevel.String(),
		})
	}
	return entries
}
