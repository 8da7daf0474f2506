package scheduler

import (
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrioritizeOrdersByHoursThenScarcity(t *testing.T) {
	availability := NewAvailability()
	// teacher-tight loses three full days, teacher-open loses nothing.
	for day := 0; day < 3; day++ {
		for slot := 0; slot < 8; slot++ {
			availability.Block("teacher-tight", day, slot)
		}
	}
	in := []LessonAssignment{
		{ClassID: "9A", TeacherID: "teacher-open", LessonID: "english", WeeklyHours: 3, Importance: 2},
		{ClassID: "9A", TeacherID: "teacher-open", LessonID: "math", WeeklyHours: 5, Importance: 3},
		{ClassID: "9B", TeacherID: "teacher-tight", LessonID: "physics", WeeklyHours: 3, Importance: 2},
		{ClassID: "9A", TeacherID: "teacher-open", LessonID: "art", WeeklyHours: 3, Importance: 1},
	}

	got := Prioritize(in, availability, 5, 8)
	require.Len(t, got, 4)
	assert.Equal(t, "math", got[0].LessonID, "heaviest weekly load comes first")
	assert.Equal(t, "physics", got[1].LessonID, "within equal hours the scarce teacher wins")
	assert.Equal(t, "english", got[2].LessonID, "importance breaks the remaining tie")
	assert.Equal(t, "art", got[3].LessonID)
	assert.Equal(t, in[0].LessonID, "english", "input order is untouched")
}

func TestPrioritizeIsDeterministic(t *testing.T) {
	availability := NewAvailability()
	in := smallSchoolInput().Assignments

	first := Prioritize(in, availability, 5, 8)
	second := Prioritize(in, availability, 5, 8)
	assert.Equal(t, first, second)
}

func TestShuffleWithinPriorityKeepsGroupOrder(t *testing.T) {
	availability := NewAvailability()
	in := Prioritize(smallSchoolInput().Assignments, availability, 5, 8)

	shuffled := ShuffleWithinPriority(in, rand.New(rand.NewSource(42)))
	require.Len(t, shuffled, len(in))

	hours := lo.Map(shuffled, func(a LessonAssignment, _ int) int { return a.WeeklyHours })
	for i := 1; i < len(hours); i++ {
		assert.GreaterOrEqual(t, hours[i-1], hours[i], "descending hour groups survive the shuffle")
	}
	assert.ElementsMatch(t, in, shuffled, "shuffling permutes, never drops or duplicates")
}
