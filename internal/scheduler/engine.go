package scheduler

import (
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlacementDecision is one scheduled hour. Decisions are created and destroyed
// freely during search; only the ones still committed when the run ends are
// persisted.
type PlacementDecision struct {
	ClassID         string          `json:"class_id"`
	TeacherID       string          `json:"teacher_id"`
	LessonID        string          `json:"lesson_id"`
	Day             int             `json:"day"`
	Slot            int             `json:"slot"`
	BlockID         string          `json:"block_id"`
	BlockPosition   int             `json:"block_position"`
	PlacementMethod string          `json:"placement_method"`
	ConstraintLevel ConstraintLevel `json:"constraint_level"`
	BacktrackDepth  int             `json:"backtrack_depth"`
}

// SolutionState is a snapshot taken before a placement attempt. The occupancy
// maps are a materialized index over Placements, never independent truth.
type SolutionState struct {
	Placements    []PlacementDecision
	TeacherSlots  map[string]map[slotKey]bool
	ClassSlots    map[string]map[slotKey]bool
	Depth         int
	DecisionCount int
}

// SearchStats accumulates counters that drive early-termination heuristics and
// end up in the run report. They never influence placement correctness.
type SearchStats struct {
	Decisions           int
	Backtracks          int
	DepthLimitHits      int
	AlternativePatterns int
	AttemptedSlots      int
}

// Placement methods recorded on decisions for diagnostics.
const (
	MethodBacktracking      = "backtracking"
	MethodAlternativeBlocks = "alternative_blocks"
	MethodRelaxedRetry      = "relaxed_retry"
)

// Branching cap per block: the engine tries at most this many candidate starts
// before giving up on a block and backtracking further.
const maxBranchPerBlock = 6

// EngineConfig tunes one engine instance.
type EngineConfig struct {
	MaxDepth  int
	Randomize bool
	Seed      int64
}

// Engine places the hours of one lesson at a time through bounded-depth
// backtracking. A failed lesson leaves the grid byte-for-byte as it found it.
type Engine struct {
	grid        *Grid
	checker     *Checker
	constraints *ConstraintState
	planner     *BlockPlanner
	gen         *slotGenerator
	logger      *zap.Logger

	maxDepth   int
	stack      []*SolutionState
	placements []PlacementDecision
	scheduled  map[AssignmentKey]int
	stats      SearchStats
}

// NewEngine builds an engine over its own grid and constraint state. Engines are
// single-goroutine; one per attempt.
func NewEngine(grid *Grid, availability *Availability, constraints *ConstraintState, cfg EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}
	checker := NewChecker(grid, availability, constraints)
	return &Engine{
		grid:        grid,
		checker:     checker,
		constraints: constraints,
		planner:     NewBlockPlanner(constraints),
		gen: &slotGenerator{
			grid:        grid,
			checker:     checker,
			constraints: constraints,
			rng:         rand.New(rand.NewSource(cfg.Seed)),
			randomize:   cfg.Randomize,
		},
		logger:    logger,
		maxDepth:  cfg.MaxDepth,
		scheduled: make(map[AssignmentKey]int),
	}
}

// Placements returns the committed decisions.
func (e *Engine) Placements() []PlacementDecision {
	out := make([]PlacementDecision, len(e.placements))
	copy(out, e.placements)
	return out
}

// ScheduledHours reports how many hours of the (class, lesson) pair are committed.
func (e *Engine) ScheduledHours(key AssignmentKey) int {
	return e.scheduled[key]
}

// RemainingHours reports how many hours of the assignment still need a slot.
func (e *Engine) RemainingHours(a LessonAssignment) int {
	remaining := a.WeeklyHours - e.scheduled[a.Key()]
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Stats returns a copy of the search counters.
func (e *Engine) Stats() SearchStats { return e.stats }

// TotalScheduled returns the number of committed hours across all lessons.
func (e *Engine) TotalScheduled() int { return len(e.placements) }

// Depth returns the current snapshot stack depth.
func (e *Engine) Depth() int { return len(e.stack) }

// PlacementReport describes the outcome of one lesson-placement attempt.
type PlacementReport struct {
	Placed         int
	Complete       bool
	Pattern        []int
	Method         string
	AttemptedSlots int
	Reason         string
}

// PlaceAssignment attempts the remaining hours of the assignment using the
// preferred block pattern. All-or-nothing: a partial placement is rolled back.
func (e *Engine) PlaceAssignment(a LessonAssignment, method string) PlacementReport {
	remaining := e.RemainingHours(a)
	if remaining == 0 {
		return PlacementReport{Complete: true, Method: method}
	}
	pattern := e.planner.Primary(remaining)
	return e.tryPattern(a, pattern, method)
}

// PlaceWithAlternatives retries the remaining hours through the planner's fallback
// decompositions, accepting the first one that places completely.
func (e *Engine) PlaceWithAlternatives(a LessonAssignment) PlacementReport {
	remaining := e.RemainingHours(a)
	if remaining == 0 {
		return PlacementReport{Complete: true, Method: MethodAlternativeBlocks}
	}
	var last PlacementReport
	for _, pattern := range e.planner.Alternatives(remaining) {
		e.stats.AlternativePatterns++
		report := e.tryPattern(a, pattern, MethodAlternativeBlocks)
		if report.Complete {
			return report
		}
		last = report
	}
	if last.Method == "" {
		last = PlacementReport{Method: MethodAlternativeBlocks, Reason: "no alternative block pattern available"}
	}
	return last
}

func (e *Engine) tryPattern(a LessonAssignment, pattern []int, method string) PlacementReport {
	report := PlacementReport{Pattern: pattern, Method: method}
	if len(pattern) == 0 || patternHours(pattern) != e.RemainingHours(a) {
		report.Reason = "block pattern does not cover remaining hours"
		return report
	}
	attempted := 0
	usedDays := make(map[int]bool)
	for _, p := range e.placementsFor(a.Key()) {
		usedDays[p.Day] = true
	}
	before := len(e.placements)
	if e.placeBlocks(a, pattern, 0, usedDays, method, &attempted) {
		report.Placed = len(e.placements) - before
		report.Complete = true
	} else {
		report.Reason = "no conflict-free slot combination for pattern"
	}
	report.AttemptedSlots = attempted
	e.stats.AttemptedSlots += attempted
	return report
}

// placeBlocks is the backtracking recursion. Each level snapshots the solution,
// commits one block at a candidate start and recurses for the rest; a failing
// tail pops the snapshot and moves to the next candidate.
func (e *Engine) placeBlocks(a LessonAssignment, pattern []int, idx int, usedDays map[int]bool, method string, attempted *int) bool {
	if idx == len(pattern) {
		return true
	}
	size := pattern[idx]
	candidates := e.gen.candidates(a, size)
	*attempted += len(candidates)

	if len(candidates) == 0 && size > 1 && e.constraints.AllowNonConsecutiveBlocks {
		// Non-consecutive fallback: scatter the block into single hours.
		split := make([]int, 0, len(pattern)+size-1)
		split = append(split, pattern[:idx]...)
		for i := 0; i < size; i++ {
			split = append(split, 1)
		}
		split = append(split, pattern[idx+1:]...)
		return e.placeBlocks(a, split, idx, usedDays, method, attempted)
	}

	tried := 0
	for _, c := range candidates {
		if tried >= maxBranchPerBlock {
			break
		}
		if e.constraints.StrictBlockRules && usedDays[c.Day] {
			// One block of a lesson per day while block rules are strict.
			continue
		}
		tried++
		if !e.push() {
			return false
		}
		e.commitBlock(a, c.Day, c.Slot, size, method)
		usedDays[c.Day] = true
		if e.placeBlocks(a, pattern, idx+1, usedDays, method, attempted) {
			e.discard()
			return true
		}
		e.pop()
		delete(usedDays, c.Day)
		e.stats.Backtracks++
	}
	return false
}

func (e *Engine) commitBlock(a LessonAssignment, day, slot, size int, method string) {
	blockID := uuid.NewString()
	for i := 0; i < size; i++ {
		e.grid.Mark(a.ClassID, a.TeacherID, day, slot+i)
		e.placements = append(e.placements, PlacementDecision{
			ClassID:         a.ClassID,
			TeacherID:       a.TeacherID,
			LessonID:        a.LessonID,
			Day:             day,
			Slot:            slot + i,
			BlockID:         blockID,
			BlockPosition:   i + 1,
			PlacementMethod: method,
			ConstraintLevel: e.constraints.Level,
			BacktrackDepth:  len(e.stack),
		})
		e.stats.Decisions++
	}
	e.scheduled[a.Key()] += size
}

// push snapshots the current solution. Refused once the stack is at max depth;
// the caller treats refusal as an immediate backtrack.
func (e *Engine) push() bool {
	if len(e.stack) >= e.maxDepth {
		e.stats.DepthLimitHits++
		e.logger.Warn("backtracking depth limit reached",
			zap.Int("max_depth", e.maxDepth),
			zap.Int("decisions", e.stats.Decisions))
		return false
	}
	teacher, class := e.grid.snapshot()
	placements := make([]PlacementDecision, len(e.placements))
	copy(placements, e.placements)
	e.stack = append(e.stack, &SolutionState{
		Placements:    placements,
		TeacherSlots:  teacher,
		ClassSlots:    class,
		Depth:         len(e.stack) + 1,
		DecisionCount: e.stats.Decisions,
	})
	return true
}

// pop restores the top snapshot, reverting grid and placements exactly.
func (e *Engine) pop() {
	if len(e.stack) == 0 {
		return
	}
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	e.grid.restore(top.TeacherSlots, top.ClassSlots)
	e.placements = top.Placements
	e.rebuildScheduled()
}

// discard drops the top snapshot after a successful subtree.
func (e *Engine) discard() {
	if len(e.stack) == 0 {
		return
	}
	e.stack = e.stack[:len(e.stack)-1]
}

func (e *Engine) rebuildScheduled() {
	scheduled := make(map[AssignmentKey]int, len(e.scheduled))
	for _, p := range e.placements {
		scheduled[AssignmentKey{ClassID: p.ClassID, LessonID: p.LessonID}]++
	}
	e.scheduled = scheduled
}

func (e *Engine) placementsFor(key AssignmentKey) []PlacementDecision {
	var out []PlacementDecision
	for _, p := range e.placements {
		if p.ClassID == key.ClassID && p.LessonID == key.LessonID {
			out = append(out, p)
		}
	}
	return out
}

// removePlacement drops one committed decision and releases its grid cell. Used
// only by the orchestrator's post-pass cleanup.
func (e *Engine) removePlacement(index int) {
	if index < 0 || index >= len(e.placements) {
		return
	}
	p := e.placements[index]
	e.grid.Unmark(p.ClassID, p.TeacherID, p.Day, p.Slot)
	e.placements = append(e.placements[:index], e.placements[index+1:]...)
	e.rebuildScheduled()
}
