package scheduler

// LessonAssignment is one curriculum fact to fulfil: a class takes a lesson from a
// teacher for a fixed number of weekly hours. Immutable input for a scheduling run.
type LessonAssignment struct {
	ClassID     string
	TeacherID   string
	LessonID    string
	WeeklyHours int
	// Importance biases prioritisation: core subjects rank above electives.
	Importance int
}

// Key identifies the (class, lesson) pair the assignment belongs to.
func (a LessonAssignment) Key() AssignmentKey {
	return AssignmentKey{ClassID: a.ClassID, LessonID: a.LessonID}
}

// AssignmentKey is the identity of an assignment within a run.
type AssignmentKey struct {
	ClassID  string
	LessonID string
}

// Input is everything a scheduling run needs, loaded upfront. The engine performs no
// I/O during search.
type Input struct {
	Assignments  []LessonAssignment
	Availability *Availability
	Days         int
	SlotsPerDay  int
}

// TotalHours sums the weekly hours of all assignments.
func (in Input) TotalHours() int {
	total := 0
	for _, a := range in.Assignments {
		total += a.WeeklyHours
	}
	return total
}
