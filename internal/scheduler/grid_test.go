package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridRejectsInvalidDimensions(t *testing.T) {
	_, err := NewGrid(5, 0)
	require.Error(t, err)
	_, err = NewGrid(0, 8)
	require.Error(t, err)
}

func TestGridMarkUnmarkIsAtomic(t *testing.T) {
	grid, err := NewGrid(5, 8)
	require.NoError(t, err)

	grid.Mark("class-1", "teacher-1", 2, 3)
	assert.True(t, grid.OccupiedByClass("class-1", 2, 3))
	assert.True(t, grid.OccupiedByTeacher("teacher-1", 2, 3))

	grid.Unmark("class-1", "teacher-1", 2, 3)
	assert.False(t, grid.OccupiedByClass("class-1", 2, 3))
	assert.False(t, grid.OccupiedByTeacher("teacher-1", 2, 3))
}

func TestGridBounds(t *testing.T) {
	grid, err := NewGrid(5, 7)
	require.NoError(t, err)

	assert.True(t, grid.InBounds(0, 0))
	assert.True(t, grid.InBounds(4, 6))
	assert.False(t, grid.InBounds(5, 0))
	assert.False(t, grid.InBounds(0, 7))
	assert.False(t, grid.InBounds(-1, 0))
}

func TestGridDayHelpers(t *testing.T) {
	grid, err := NewGrid(5, 8)
	require.NoError(t, err)

	grid.Mark("class-1", "teacher-1", 0, 1)
	grid.Mark("class-1", "teacher-1", 0, 2)
	grid.Mark("class-2", "teacher-1", 3, 5)

	assert.Equal(t, []int{1, 2}, grid.TeacherSlotsOn("teacher-1", 0))
	assert.Equal(t, []int{1, 2}, grid.ClassSlotsOn("class-1", 0))
	assert.Equal(t, 2, grid.TeacherDaysUsed("teacher-1"))
	assert.True(t, grid.TeacherTeachesOn("teacher-1", 3))
	assert.False(t, grid.TeacherTeachesOn("teacher-1", 1))
	assert.True(t, grid.FreeForBoth("class-1", "teacher-1", 0, 3))
	assert.False(t, grid.FreeForBoth("class-1", "teacher-1", 0, 2))
}

func TestGridSnapshotRestore(t *testing.T) {
	grid, err := NewGrid(5, 8)
	require.NoError(t, err)

	grid.Mark("class-1", "teacher-1", 0, 0)
	teacher, class := grid.snapshot()

	grid.Mark("class-1", "teacher-1", 1, 1)
	grid.Mark("class-2", "teacher-2", 2, 2)
	grid.restore(teacher, class)

	assert.True(t, grid.OccupiedByClass("class-1", 0, 0))
	assert.False(t, grid.OccupiedByClass("class-1", 1, 1))
	assert.False(t, grid.OccupiedByTeacher("teacher-2", 2, 2))
}
