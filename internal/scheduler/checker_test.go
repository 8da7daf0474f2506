package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T) (*Checker, *Grid, *Availability, *ConstraintState) {
	t.Helper()
	grid, err := NewGrid(5, 8)
	require.NoError(t, err)
	availability := NewAvailability()
	constraints := NewConstraintState()
	return NewChecker(grid, availability, constraints), grid, availability, constraints
}

func TestCheckerRejectsOutOfBounds(t *testing.T) {
	checker, _, _, _ := newTestChecker(t)
	ok, reason := checker.CanPlace("class-1", "teacher-1", 5, 0)
	assert.False(t, ok)
	assert.Contains(t, reason, "outside")
}

func TestCheckerShortCircuitOrder(t *testing.T) {
	checker, grid, availability, _ := newTestChecker(t)

	// Class conflict wins over teacher conflict and availability.
	grid.Mark("class-1", "teacher-2", 0, 0)
	availability.Block("teacher-1", 0, 0)

	ok, reason := checker.CanPlace("class-1", "teacher-1", 0, 0)
	assert.False(t, ok)
	assert.Contains(t, reason, "class class-1")

	// Teacher conflict reported before availability.
	grid.Mark("class-2", "teacher-1", 1, 0)
	availability.Block("teacher-1", 1, 0)
	ok, reason = checker.CanPlace("class-3", "teacher-1", 1, 0)
	assert.False(t, ok)
	assert.Contains(t, reason, "already teaches")
}

func TestCheckerHonoursAvailability(t *testing.T) {
	checker, _, availability, constraints := newTestChecker(t)
	availability.Block("teacher-1", 2, 3)

	ok, reason := checker.CanPlace("class-1", "teacher-1", 2, 3)
	assert.False(t, ok)
	assert.Contains(t, reason, "unavailable")

	constraints.Relax(LevelAvailabilityFlex)
	ok, _ = checker.CanPlace("class-1", "teacher-1", 2, 3)
	assert.True(t, ok, "availability check is skipped under AVAILABILITY_FLEX")
}

func TestCheckerIsSideEffectFree(t *testing.T) {
	checker, grid, _, _ := newTestChecker(t)
	ok, _ := checker.CanPlace("class-1", "teacher-1", 0, 0)
	require.True(t, ok)
	assert.False(t, grid.OccupiedByClass("class-1", 0, 0))
	assert.False(t, grid.OccupiedByTeacher("teacher-1", 0, 0))
}

func TestCheckerRun(t *testing.T) {
	checker, grid, _, _ := newTestChecker(t)
	grid.Mark("class-1", "teacher-1", 0, 2)

	ok, _ := checker.CanPlaceRun("class-1", "teacher-1", 0, 0, 2)
	assert.True(t, ok)
	ok, _ = checker.CanPlaceRun("class-1", "teacher-1", 0, 1, 2)
	assert.False(t, ok, "run crosses an occupied slot")
	ok, _ = checker.CanPlaceRun("class-1", "teacher-1", 0, 6, 3)
	assert.False(t, ok, "run leaves the grid")
}
