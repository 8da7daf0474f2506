package scheduler

import (
	"fmt"
	"sort"
)

type slotKey struct {
	Day  int
	Slot int
}

// Grid tracks per-teacher and per-class occupancy over the weekly (day, slot)
// coordinate space. It is the single source of occupancy truth during search;
// snapshots copy it wholesale and restore it on backtrack.
type Grid struct {
	days        int
	slotsPerDay int

	teacherSlots map[string]map[slotKey]bool
	classSlots   map[string]map[slotKey]bool
}

// NewGrid builds an empty grid. A grid with zero slots per day is the one truly
// invalid configuration in the engine.
func NewGrid(days, slotsPerDay int) (*Grid, error) {
	if days <= 0 || slotsPerDay <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions: days=%d slotsPerDay=%d", days, slotsPerDay)
	}
	return &Grid{
		days:         days,
		slotsPerDay:  slotsPerDay,
		teacherSlots: make(map[string]map[slotKey]bool),
		classSlots:   make(map[string]map[slotKey]bool),
	}, nil
}

// Days returns the number of school days in the grid.
func (g *Grid) Days() int { return g.days }

// SlotsPerDay returns the number of time slots per day.
func (g *Grid) SlotsPerDay() int { return g.slotsPerDay }

// InBounds reports whether (day, slot) lies inside the grid.
func (g *Grid) InBounds(day, slot int) bool {
	return day >= 0 && day < g.days && slot >= 0 && slot < g.slotsPerDay
}

// OccupiedByClass reports whether the class already has a lesson at (day, slot).
func (g *Grid) OccupiedByClass(classID string, day, slot int) bool {
	return g.classSlots[classID][slotKey{Day: day, Slot: slot}]
}

// OccupiedByTeacher reports whether the teacher already teaches at (day, slot).
func (g *Grid) OccupiedByTeacher(teacherID string, day, slot int) bool {
	return g.teacherSlots[teacherID][slotKey{Day: day, Slot: slot}]
}

// Mark occupies (day, slot) for both the class and the teacher. The two sets are
// always mutated together so Unmark restores them together.
func (g *Grid) Mark(classID, teacherID string, day, slot int) {
	key := slotKey{Day: day, Slot: slot}
	if g.classSlots[classID] == nil {
		g.classSlots[classID] = make(map[slotKey]bool)
	}
	if g.teacherSlots[teacherID] == nil {
		g.teacherSlots[teacherID] = make(map[slotKey]bool)
	}
	g.classSlots[classID][key] = true
	g.teacherSlots[teacherID][key] = true
}

// Unmark releases (day, slot) for both the class and the teacher.
func (g *Grid) Unmark(classID, teacherID string, day, slot int) {
	key := slotKey{Day: day, Slot: slot}
	delete(g.classSlots[classID], key)
	delete(g.teacherSlots[teacherID], key)
}

// TeacherSlotsOn returns the sorted slot indexes the teacher occupies on a day.
func (g *Grid) TeacherSlotsOn(teacherID string, day int) []int {
	return slotsOn(g.teacherSlots[teacherID], day)
}

// ClassSlotsOn returns the sorted slot indexes the class occupies on a day.
func (g *Grid) ClassSlotsOn(classID string, day int) []int {
	return slotsOn(g.classSlots[classID], day)
}

// TeacherDaysUsed counts distinct days on which the teacher already teaches.
func (g *Grid) TeacherDaysUsed(teacherID string) int {
	days := make(map[int]bool)
	for key := range g.teacherSlots[teacherID] {
		days[key.Day] = true
	}
	return len(days)
}

// TeacherTeachesOn reports whether the teacher has any lesson on the day.
func (g *Grid) TeacherTeachesOn(teacherID string, day int) bool {
	for key := range g.teacherSlots[teacherID] {
		if key.Day == day {
			return true
		}
	}
	return false
}

// FreeForBoth reports whether neither the class nor the teacher occupies (day, slot).
func (g *Grid) FreeForBoth(classID, teacherID string, day, slot int) bool {
	return g.InBounds(day, slot) &&
		!g.OccupiedByClass(classID, day, slot) &&
		!g.OccupiedByTeacher(teacherID, day, slot)
}

// snapshot deep-copies the occupancy sets.
func (g *Grid) snapshot() (teacher, class map[string]map[slotKey]bool) {
	return copyOccupancy(g.teacherSlots), copyOccupancy(g.classSlots)
}

// restore replaces the occupancy sets with a previously taken snapshot.
func (g *Grid) restore(teacher, class map[string]map[slotKey]bool) {
	g.teacherSlots = copyOccupancy(teacher)
	g.classSlots = copyOccupancy(class)
}

func copyOccupancy(src map[string]map[slotKey]bool) map[string]map[slotKey]bool {
	dst := make(map[string]map[slotKey]bool, len(src))
	for id, slots := range src {
		if len(slots) == 0 {
			continue
		}
		inner := make(map[slotKey]bool, len(slots))
		for key := range slots {
			inner[key] = true
		}
		dst[id] = inner
	}
	return dst
}

func slotsOn(occupied map[slotKey]bool, day int) []int {
	var slots []int
	for key := range occupied {
		if key.Day == day {
			slots = append(slots, key.Slot)
		}
	}
	sort.Ints(slots)
	return slots
}
