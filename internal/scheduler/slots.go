package scheduler

import (
	"math/rand"
	"sort"
)

// Candidate generation merges four strategies in priority order and keeps the
// composite score for ranking. Collection stops once maxCandidates distinct cells
// have been gathered.
const (
	maxCandidates = 24

	morningSlotLimit  = 4
	optimalScoreFloor = 10

	teacherAdjacencyBonus = 5
	classAdjacencyBonus   = 3
	newDayBonus           = 4
)

type candidate struct {
	Day      int
	Slot     int
	Score    int
	Strategy string
}

type slotGenerator struct {
	grid        *Grid
	checker     *Checker
	constraints *ConstraintState
	rng         *rand.Rand
	randomize   bool
}

// candidates returns ranked starting cells for a block of `length` consecutive
// hours of the assignment. Cells are deduplicated across strategies and sorted by
// descending score with a (day, slot) tie-break; with randomisation enabled the
// top max(3, 20%) entries are shuffled to escape local optima across repeat runs.
func (s *slotGenerator) candidates(a LessonAssignment, length int) []candidate {
	seen := make(map[slotKey]bool)
	var out []candidate

	add := func(day, slot int, strategy string, bonus int) {
		if len(out) >= maxCandidates {
			return
		}
		key := slotKey{Day: day, Slot: slot}
		if seen[key] {
			return
		}
		if ok, _ := s.checker.CanPlaceRun(a.ClassID, a.TeacherID, day, slot, length); !ok {
			return
		}
		seen[key] = true
		out = append(out, candidate{
			Day:      day,
			Slot:     slot,
			Score:    s.compositeScore(a, day, slot) + bonus,
			Strategy: strategy,
		})
	}

	// 1. Optimal: unoccupied morning slots that score well on their own.
	for day := 0; day < s.grid.Days() && len(out) < maxCandidates; day++ {
		for slot := 0; slot < morningSlotLimit && slot < s.grid.SlotsPerDay(); slot++ {
			if s.compositeScore(a, day, slot) < optimalScoreFloor {
				continue
			}
			add(day, slot, "optimal", 0)
		}
	}

	// 2. Continuity: cells adjacent to existing teacher or class placements.
	for day := 0; day < s.grid.Days() && len(out) < maxCandidates; day++ {
		for _, occupied := range s.grid.TeacherSlotsOn(a.TeacherID, day) {
			add(day, occupied-length, "continuity", teacherAdjacencyBonus)
			add(day, occupied+1, "continuity", teacherAdjacencyBonus)
		}
		for _, occupied := range s.grid.ClassSlotsOn(a.ClassID, day) {
			add(day, occupied-length, "continuity", classAdjacencyBonus)
			add(day, occupied+1, "continuity", classAdjacencyBonus)
		}
	}

	// 3. Workload balance: fresh days while the teacher still has spread headroom.
	spreadTarget := s.grid.Days() - s.constraints.MaxEmptyDays
	if spreadTarget > 4 {
		spreadTarget = 4
	}
	if s.grid.TeacherDaysUsed(a.TeacherID) < spreadTarget {
		for day := 0; day < s.grid.Days() && len(out) < maxCandidates; day++ {
			if s.grid.TeacherTeachesOn(a.TeacherID, day) {
				continue
			}
			for slot := 0; slot+length <= s.grid.SlotsPerDay(); slot++ {
				add(day, slot, "workload", newDayBonus)
			}
		}
	}

	// 4. Fallback: any remaining conflict-free cell.
	for day := 0; day < s.grid.Days() && len(out) < maxCandidates; day++ {
		for slot := 0; slot+length <= s.grid.SlotsPerDay(); slot++ {
			add(day, slot, "fallback", 0)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Slot < out[j].Slot
	})

	if s.randomize && len(out) > 1 {
		top := len(out) / 5
		if top < 3 {
			top = 3
		}
		if top > len(out) {
			top = len(out)
		}
		s.rng.Shuffle(top, func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out
}

// compositeScore combines the time-of-day preference with teacher continuity,
// class crowding, workload distribution and block-formation terms.
func (s *slotGenerator) compositeScore(a LessonAssignment, day, slot int) int {
	return timeOfDayScore(slot) +
		s.teacherScheduleScore(a.TeacherID, day, slot) +
		s.classScheduleScore(a.ClassID, day, slot) +
		s.workloadScore(a.TeacherID, day) +
		s.blockFormationScore(a, day, slot)
}

var slotPreference = []int{15, 12, 10, 8, 6, 3}

func timeOfDayScore(slot int) int {
	if slot >= 0 && slot < len(slotPreference) {
		return slotPreference[slot]
	}
	return 1
}

func (s *slotGenerator) teacherScheduleScore(teacherID string, day, slot int) int {
	occupied := s.grid.TeacherSlotsOn(teacherID, day)
	if len(occupied) == 0 {
		return 0
	}
	score := 0
	before, after := false, false
	nearest := -1
	for _, o := range occupied {
		if o == slot-1 {
			before = true
		}
		if o == slot+1 {
			after = true
		}
		d := o - slot
		if d < 0 {
			d = -d
		}
		if nearest < 0 || d < nearest {
			nearest = d
		}
	}
	if before || after {
		score += 8
	}
	if before && after {
		// Slot sits between two occupied hours: filling it removes a gap.
		score += 5
	}
	if !before && !after && nearest == 2 {
		score -= 3
	}
	return score
}

func (s *slotGenerator) classScheduleScore(classID string, day, slot int) int {
	occupied := s.grid.ClassSlotsOn(classID, day)
	score := 0
	for _, o := range occupied {
		if o == slot-1 || o == slot+1 {
			score += 5
			break
		}
	}
	switch {
	case len(occupied) >= 6:
		score -= 8
	case len(occupied) >= 4:
		score -= 3
	}
	return score
}

func (s *slotGenerator) workloadScore(teacherID string, day int) int {
	score := 0
	sameDay := len(s.grid.TeacherSlotsOn(teacherID, day))
	switch {
	case sameDay >= 5:
		score -= 10
	case sameDay >= 3:
		score -= 2
	}
	if !s.grid.TeacherTeachesOn(teacherID, day) && s.grid.TeacherDaysUsed(teacherID) < 4 {
		score += 4
	}
	return score
}

func (s *slotGenerator) blockFormationScore(a LessonAssignment, day, slot int) int {
	two := s.grid.FreeForBoth(a.ClassID, a.TeacherID, day, slot+1)
	three := two && s.grid.FreeForBoth(a.ClassID, a.TeacherID, day, slot+2)
	switch {
	case three:
		return 5
	case two:
		return 3
	default:
		return 0
	}
}
