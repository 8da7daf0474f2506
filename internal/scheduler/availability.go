package scheduler

// Availability records when teachers cannot teach. Slots without an entry are
// considered available, mirroring how availability rows are stored.
type Availability struct {
	blocked map[string]map[slotKey]bool
}

// NewAvailability returns an empty availability map (everyone available everywhere).
func NewAvailability() *Availability {
	return &Availability{blocked: make(map[string]map[slotKey]bool)}
}

// Block marks a (day, slot) as unavailable for the teacher.
func (a *Availability) Block(teacherID string, day, slot int) {
	if a.blocked[teacherID] == nil {
		a.blocked[teacherID] = make(map[slotKey]bool)
	}
	a.blocked[teacherID][slotKey{Day: day, Slot: slot}] = true
}

// Available reports whether the teacher may teach at (day, slot).
func (a *Availability) Available(teacherID string, day, slot int) bool {
	if a == nil || a.blocked == nil {
		return true
	}
	slots := a.blocked[teacherID]
	if slots == nil {
		return true
	}
	return !slots[slotKey{Day: day, Slot: slot}]
}

// BlockedCount returns how many slots are blocked for the teacher. Used by lesson
// prioritisation: teachers with little room get scheduled first.
func (a *Availability) BlockedCount(teacherID string) int {
	if a == nil || a.blocked == nil {
		return 0
	}
	return len(a.blocked[teacherID])
}
