package scheduler

import "fmt"

// Checker answers whether a lesson hour may legally occupy a grid cell. It never
// mutates anything; callers mark the grid only after a positive answer.
type Checker struct {
	grid         *Grid
	availability *Availability
	constraints  *ConstraintState
}

// NewChecker wires the checker against a grid, an availability map and the live
// constraint state of the attempt.
func NewChecker(grid *Grid, availability *Availability, constraints *ConstraintState) *Checker {
	return &Checker{grid: grid, availability: availability, constraints: constraints}
}

// CanPlace validates (class, teacher, day, slot) in order: grid bounds, class
// occupancy, teacher occupancy, teacher availability. The first failure
// short-circuits and yields a human-readable reason for diagnostics.
func (c *Checker) CanPlace(classID, teacherID string, day, slot int) (bool, string) {
	if !c.grid.InBounds(day, slot) {
		return false, fmt.Sprintf("slot (%d,%d) outside the %dx%d grid", day, slot, c.grid.Days(), c.grid.SlotsPerDay())
	}
	if c.grid.OccupiedByClass(classID, day, slot) {
		return false, fmt.Sprintf("class %s already has a lesson on day %d slot %d", classID, day, slot)
	}
	if c.grid.OccupiedByTeacher(teacherID, day, slot) {
		return false, fmt.Sprintf("teacher %s already teaches on day %d slot %d", teacherID, day, slot)
	}
	if !c.constraints.AllowAvailabilityViolations && !c.availability.Available(teacherID, day, slot) {
		return false, fmt.Sprintf("teacher %s is unavailable on day %d slot %d", teacherID, day, slot)
	}
	return true, ""
}

// CanPlaceRun validates `length` consecutive slots starting at (day, slot).
func (c *Checker) CanPlaceRun(classID, teacherID string, day, slot, length int) (bool, string) {
	for i := 0; i < length; i++ {
		if ok, reason := c.CanPlace(classID, teacherID, day, slot+i); !ok {
			return false, reason
		}
	}
	return true, ""
}
