package scheduler

import (
	"math/rand"
	"sort"

	"github.com/samber/lo"
)

// Prioritize orders assignments for placement: heavier weekly loads first, then the
// hardest-to-place (teachers with the fewest theoretically open slots), then subject
// importance, with a stable identifier tie-break for reproducibility.
func Prioritize(assignments []LessonAssignment, availability *Availability, days, slotsPerDay int) []LessonAssignment {
	out := make([]LessonAssignment, len(assignments))
	copy(out, assignments)
	capacity := days * slotsPerDay
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.WeeklyHours != b.WeeklyHours {
			return a.WeeklyHours > b.WeeklyHours
		}
		openA := capacity - availability.BlockedCount(a.TeacherID)
		openB := capacity - availability.BlockedCount(b.TeacherID)
		if openA != openB {
			return openA < openB
		}
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		return a.LessonID < b.LessonID
	})
	return out
}

// ShuffleWithinPriority permutes assignments inside equal-weekly-hour groups so
// later attempts walk a different region of the search space while keeping the
// overall priority order intact.
func ShuffleWithinPriority(assignments []LessonAssignment, rng *rand.Rand) []LessonAssignment {
	groups := lo.GroupBy(assignments, func(a LessonAssignment) int { return a.WeeklyHours })
	hours := lo.Keys(groups)
	sort.Sort(sort.Reverse(sort.IntSlice(hours)))

	out := make([]LessonAssignment, 0, len(assignments))
	for _, h := range hours {
		group := groups[h]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		out = append(out, group...)
	}
	return out
}
