package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Config tunes an orchestration run.
type Config struct {
	TimeBudget  time.Duration
	MaxAttempts int
	MaxDepth    int
	Randomize   bool
	Seed        int64
	// Parallel runs the attempts on separate goroutines, each with fully
	// isolated state and a shared deadline.
	Parallel bool
}

func (c Config) withDefaults() Config {
	if c.TimeBudget <= 0 {
		c.TimeBudget = 60 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 10
	}
	return c
}

// Early-termination thresholds. Heuristic signals that continuing is unlikely to
// pay off before the deadline; none of them affect correctness. The backtrack
// ceiling is counted per relaxation phase and ends only that phase: each level
// of the ladder gets a fresh allowance, so the most relaxed level always runs.
const (
	lowBudgetWindow        = 10 * time.Second
	lowBudgetCompletion    = 50.0
	strictStallWindow      = 20 * time.Second
	strictStallCompletion  = 10.0
	backtrackCeiling       = 1000
	backtrackCeilingCutoff = 80.0
)

// Orchestrator drives prioritised lessons through the backtracking engine across
// the relaxation ladder and multiple randomized attempts, keeping the best result
// found within the wall-clock budget.
type Orchestrator struct {
	cfg      Config
	logger   *zap.Logger
	progress Progress
}

// NewOrchestrator wires an orchestrator with an injected logger and progress sink.
func NewOrchestrator(cfg Config, logger *zap.Logger, progress Progress) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = NopProgress{}
	}
	return &Orchestrator{cfg: cfg.withDefaults(), logger: logger, progress: progress}
}

// Schedule produces the best achievable schedule for the input within the time
// budget. Expected scheduling failures surface inside the Result; an error is
// returned only for genuinely invalid configuration.
func (o *Orchestrator) Schedule(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	if in.Days <= 0 || in.SlotsPerDay <= 0 {
		return nil, fmt.Errorf("scheduler: invalid grid configuration: days=%d slotsPerDay=%d", in.Days, in.SlotsPerDay)
	}
	if in.Availability == nil {
		in.Availability = NewAvailability()
	}

	valid, invalid := o.splitInvalid(in)
	total := 0
	for _, a := range valid {
		total += a.WeeklyHours
	}

	result := &Result{
		RunID:         uuid.NewString(),
		TotalHours:    total,
		FailedLessons: invalid,
	}
	if total == 0 {
		result.CompletionRate = 100
		result.Success = len(invalid) == 0
		result.Elapsed = time.Since(start)
		return result, nil
	}

	deadline := start.Add(o.cfg.TimeBudget)
	runCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	prioritized := Prioritize(valid, in.Availability, in.Days, in.SlotsPerDay)
	o.progress.Update(fmt.Sprintf("scheduling %d lessons (%d hours)", len(prioritized), total), 0)

	best := o.runAttempts(runCtx, in, prioritized, total, deadline)

	o.postPass(best, in)

	placements := best.engine.Placements()
	sort.SliceStable(placements, func(i, j int) bool {
		if placements[i].Day != placements[j].Day {
			return placements[i].Day < placements[j].Day
		}
		return placements[i].Slot < placements[j].Slot
	})

	result.Placements = placements
	result.ScheduledHours = len(placements)
	result.CompletionRate = completionRate(len(placements), total)
	result.Success = result.CompletionRate >= 100.0
	result.Elapsed = time.Since(start)
	result.FailedLessons = append(result.FailedLessons, best.failures...)
	result.TeacherUtilization = lo.CountValuesBy(placements, func(p PlacementDecision) string { return p.TeacherID })
	result.ClassUtilization = lo.CountValuesBy(placements, func(p PlacementDecision) string { return p.ClassID })
	result.Stats = best.stats
	result.Stats.Attempts = best.attemptsRun

	o.progress.Update(fmt.Sprintf("scheduling finished: %.1f%% placed", result.CompletionRate), 100)
	o.logger.Info("scheduling run finished",
		zap.String("run_id", result.RunID),
		zap.Float64("completion_rate", result.CompletionRate),
		zap.Int("scheduled_hours", result.ScheduledHours),
		zap.Int("total_hours", result.TotalHours),
		zap.Int("backtracks", result.Stats.Backtracks),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

func (o *Orchestrator) splitInvalid(in Input) ([]LessonAssignment, []FailureEntry) {
	var valid []LessonAssignment
	var invalid []FailureEntry
	capacity := in.Days * in.SlotsPerDay
	for _, a := range in.Assignments {
		switch {
		case a.ClassID == "" || a.TeacherID == "" || a.LessonID == "":
			o.logger.Warn("skipping assignment with missing identifiers",
				zap.String("class_id", a.ClassID), zap.String("lesson_id", a.LessonID))
			invalid = append(invalid, FailureEntry{Assignment: a, RemainingHours: a.WeeklyHours, Reason: "assignment is missing class, teacher or lesson identifiers"})
		case a.WeeklyHours <= 0 || a.WeeklyHours > capacity:
			o.logger.Warn("skipping assignment with unusable weekly hours",
				zap.String("class_id", a.ClassID), zap.String("lesson_id", a.LessonID), zap.Int("weekly_hours", a.WeeklyHours))
			invalid = append(invalid, FailureEntry{Assignment: a, RemainingHours: a.WeeklyHours, Reason: fmt.Sprintf("weekly hours %d outside usable range", a.WeeklyHours)})
		default:
			valid = append(valid, a)
		}
	}
	return valid, invalid
}

// attemptOutcome carries everything needed to compare attempts and post-process
// the winner.
type attemptOutcome struct {
	engine      *Engine
	completion  float64
	failures    []FailureEntry
	stats       RunStats
	attemptsRun int
}

func (o *Orchestrator) runAttempts(ctx context.Context, in Input, prioritized []LessonAssignment, total int, deadline time.Time) *attemptOutcome {
	attempts := o.cfg.MaxAttempts
	outcomes := make(chan *attemptOutcome, attempts)
	attemptCtx, stop := context.WithCancel(ctx)
	defer stop()

	launch := func(i int) *attemptOutcome {
		lessons := prioritized
		seed := o.cfg.Seed + int64(i)
		if i > 0 {
			rng := rand.New(rand.NewSource(seed))
			lessons = ShuffleWithinPriority(prioritized, rng)
		}
		return o.runAttempt(attemptCtx, in, lessons, total, deadline, seed, i)
	}

	var best *attemptOutcome
	ran := 0
	if o.cfg.Parallel {
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes <- launch(i)
			}(i)
		}
		go func() {
			wg.Wait()
			close(outcomes)
		}()
		for outcome := range outcomes {
			ran++
			if best == nil || outcome.completion > best.completion {
				best = outcome
			}
			if best.completion >= 100.0 {
				stop()
			}
		}
	} else {
		for i := 0; i < attempts; i++ {
			outcome := launch(i)
			ran++
			if best == nil || outcome.completion > best.completion {
				best = outcome
			}
			if best.completion >= 100.0 || time.Now().After(deadline) {
				break
			}
		}
	}
	best.attemptsRun = ran
	return best
}

// runAttempt owns one fully isolated engine and walks the relaxation ladder,
// feeding unfinished lessons back in at each level.
func (o *Orchestrator) runAttempt(ctx context.Context, in Input, lessons []LessonAssignment, total int, deadline time.Time, seed int64, attempt int) *attemptOutcome {
	grid, err := NewGrid(in.Days, in.SlotsPerDay)
	if err != nil {
		// Guarded in Schedule; keep the attempt total rather than panic.
		o.logger.Error("attempt grid construction failed", zap.Error(err))
		return &attemptOutcome{engine: &Engine{scheduled: map[AssignmentKey]int{}}, completion: 0}
	}
	constraints := NewConstraintState()
	engine := NewEngine(grid, in.Availability, constraints, EngineConfig{
		MaxDepth:  o.cfg.MaxDepth,
		Randomize: o.cfg.Randomize,
		Seed:      seed,
	}, o.logger)

	outcome := &attemptOutcome{engine: engine}
	failures := make(map[AssignmentKey]FailureEntry)
	attemptStart := time.Now()

	for _, level := range Levels {
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			break
		}
		if engine.TotalScheduled() >= total {
			break
		}
		if level != LevelStrict {
			constraints.Relax(level)
			outcome.stats.Relaxations++
			o.logger.Debug("relaxing constraints",
				zap.Int("attempt", attempt), zap.String("level", level.String()))
		}

		phaseStart := time.Now()
		phaseBase := engine.TotalScheduled()
		backtrackBase := engine.Stats().Backtracks
		terminated := o.runPhase(ctx, engine, lessons, failures, total, deadline, level, attempt, phaseStart, backtrackBase)
		outcome.stats.Phases = append(outcome.stats.Phases, PhaseStats{
			Level:       level,
			HoursPlaced: engine.TotalScheduled() - phaseBase,
			Duration:    time.Since(phaseStart),
		})
		if terminated != "" {
			outcome.stats.EarlyTermination = terminated
			break
		}
	}

	constraints.Restore()

	stats := engine.Stats()
	outcome.stats.Decisions = stats.Decisions
	outcome.stats.Backtracks = stats.Backtracks
	outcome.stats.DepthLimitHits = stats.DepthLimitHits
	outcome.stats.AlternativePatterns = stats.AlternativePatterns
	outcome.stats.AttemptedSlots = stats.AttemptedSlots
	outcome.completion = completionRate(engine.TotalScheduled(), total)
	outcome.failures = lo.Values(failures)
	sort.Slice(outcome.failures, func(i, j int) bool {
		a, b := outcome.failures[i].Assignment, outcome.failures[j].Assignment
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		return a.LessonID < b.LessonID
	})

	o.logger.Info("attempt finished",
		zap.Int("attempt", attempt),
		zap.Float64("completion", outcome.completion),
		zap.Int("backtracks", outcome.stats.Backtracks),
		zap.Duration("elapsed", time.Since(attemptStart)))
	return outcome
}

// runPhase feeds every unfinished lesson through the engine once: standard
// placement, then alternative block patterns, then one more backtracking retry at
// the current (possibly relaxed) level. Returns a non-empty reason when an
// attempt-wide early-termination heuristic fires; a phase backtrack ceiling ends
// the phase silently and lets the next relaxation level run.
func (o *Orchestrator) runPhase(ctx context.Context, engine *Engine, lessons []LessonAssignment, failures map[AssignmentKey]FailureEntry, total int, deadline time.Time, level ConstraintLevel, attempt int, phaseStart time.Time, backtrackBase int) string {
	for i, a := range lessons {
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			return ""
		}
		completion := completionRate(engine.TotalScheduled(), total)
		if reason := o.earlyTermination(completion, deadline, level, phaseStart); reason != "" {
			o.logger.Warn("early termination", zap.Int("attempt", attempt), zap.String("reason", reason))
			return reason
		}
		if phaseBacktracks := engine.Stats().Backtracks - backtrackBase; phaseBacktracks > backtrackCeiling && completion < backtrackCeilingCutoff {
			o.logger.Warn("phase backtrack ceiling reached",
				zap.Int("attempt", attempt),
				zap.String("level", level.String()),
				zap.Int("phase_backtracks", phaseBacktracks),
				zap.Float64("completion", completion))
			return ""
		}
		if engine.RemainingHours(a) == 0 {
			continue
		}

		report := engine.PlaceAssignment(a, MethodBacktracking)
		if !report.Complete {
			report = engine.PlaceWithAlternatives(a)
		}
		if !report.Complete {
			report = engine.PlaceAssignment(a, MethodRelaxedRetry)
		}

		key := a.Key()
		if report.Complete {
			delete(failures, key)
		} else {
			entry := FailureEntry{
				Assignment:     a,
				RemainingHours: engine.RemainingHours(a),
				Level:          level,
				Reason:         report.Reason,
				AttemptedSlots: report.AttemptedSlots,
			}
			if report.Pattern != nil {
				entry.Violations = append(entry.Violations, fmt.Sprintf("last pattern tried: %v", report.Pattern))
			}
			failures[key] = entry
		}

		if attempt == 0 {
			percent := float64(i+1) / float64(len(lessons)) * 100
			o.progress.Update(fmt.Sprintf("[%s] lesson %s for class %s", level, a.LessonID, a.ClassID), percent)
		}
	}
	return ""
}

func (o *Orchestrator) earlyTermination(completion float64, deadline time.Time, level ConstraintLevel, phaseStart time.Time) string {
	remaining := time.Until(deadline)
	if remaining < lowBudgetWindow && completion < lowBudgetCompletion {
		return fmt.Sprintf("only %s left with %.1f%% completion", remaining.Round(time.Second), completion)
	}
	if level == LevelStrict && time.Since(phaseStart) > strictStallWindow && completion < strictStallCompletion {
		return fmt.Sprintf("strict phase stalled at %.1f%% completion", completion)
	}
	return ""
}

// postPass runs the lightweight workload rebalance and the defensive duplicate
// cleanup on the winning attempt.
func (o *Orchestrator) postPass(best *attemptOutcome, in Input) {
	best.stats.RebalanceMoves = o.rebalanceWorkload(best.engine)
	best.stats.CleanupDropped = o.cleanupConflicts(best.engine)
}

// rebalanceWorkload moves lone single-hour placements off overloaded teacher days
// onto days the teacher does not work yet. Best effort only.
func (o *Orchestrator) rebalanceWorkload(engine *Engine) int {
	moves := 0
	grid := engine.grid
	blockSizes := lo.CountValuesBy(engine.placements, func(p PlacementDecision) string { return p.BlockID })

	for idx := 0; idx < len(engine.placements); idx++ {
		p := engine.placements[idx]
		if blockSizes[p.BlockID] != 1 {
			continue
		}
		if len(grid.TeacherSlotsOn(p.TeacherID, p.Day)) < 6 {
			continue
		}
		for day := 0; day < grid.Days(); day++ {
			if grid.TeacherTeachesOn(p.TeacherID, day) {
				continue
			}
			moved := false
			for slot := 0; slot < grid.SlotsPerDay(); slot++ {
				if ok, _ := engine.checker.CanPlace(p.ClassID, p.TeacherID, day, slot); !ok {
					continue
				}
				grid.Unmark(p.ClassID, p.TeacherID, p.Day, p.Slot)
				grid.Mark(p.ClassID, p.TeacherID, day, slot)
				engine.placements[idx].Day = day
				engine.placements[idx].Slot = slot
				moves++
				moved = true
				break
			}
			if moved {
				break
			}
		}
	}
	return moves
}

// cleanupConflicts drops any placement that duplicates an earlier one on a
// teacher or class cell. The engine's invariants make this a no-op in practice.
func (o *Orchestrator) cleanupConflicts(engine *Engine) int {
	dropped := 0
	type cell struct {
		id   string
		day  int
		slot int
	}
	seenTeacher := make(map[cell]bool)
	seenClass := make(map[cell]bool)
	for idx := 0; idx < len(engine.placements); {
		p := engine.placements[idx]
		tc := cell{id: p.TeacherID, day: p.Day, slot: p.Slot}
		cc := cell{id: p.ClassID, day: p.Day, slot: p.Slot}
		if seenTeacher[tc] || seenClass[cc] {
			o.logger.Warn("dropping conflicting placement in cleanup",
				zap.String("class_id", p.ClassID), zap.String("teacher_id", p.TeacherID),
				zap.Int("day", p.Day), zap.Int("slot", p.Slot))
			engine.removePlacement(idx)
			dropped++
			continue
		}
		seenTeacher[tc] = true
		seenClass[cc] = true
		idx++
	}
	return dropped
}

func completionRate(scheduled, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(scheduled) / float64(total) * 100
}
