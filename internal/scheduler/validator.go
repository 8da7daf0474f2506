package scheduler

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Severity classifies validation findings.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Violation is one finding from the post-hoc schedule validation.
type Violation struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
}

// Bottleneck ranks the entities most involved in scheduling trouble.
type Bottleneck struct {
	Kind   string  `json:"kind"`
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// Report is the validator's read-only verdict on a completed schedule.
type Report struct {
	Violations   []Violation  `json:"violations"`
	Critical     int          `json:"critical"`
	Major        int          `json:"major"`
	Minor        int          `json:"minor"`
	QualityScore float64      `json:"quality_score"`
	Bottlenecks  []Bottleneck `json:"bottlenecks"`
	Suggestions  []string     `json:"suggestions"`
}

// Validate re-checks a finished schedule against every invariant, independently
// of the engine that produced it. It never mutates the result; running it twice
// on the same input yields the identical report.
func Validate(in Input, res *Result) *Report {
	report := &Report{}

	checkConflicts(res.Placements, report)
	checkBounds(in, res.Placements, report)
	checkHours(in, res.Placements, report)
	checkAvailability(in, res.Placements, report)
	checkBlocks(res.Placements, report)
	checkWorkload(in, res.Placements, report)

	sort.SliceStable(report.Violations, func(i, j int) bool {
		if report.Violations[i].Severity != report.Violations[j].Severity {
			return severityRank(report.Violations[i].Severity) < severityRank(report.Violations[j].Severity)
		}
		if report.Violations[i].Kind != report.Violations[j].Kind {
			return report.Violations[i].Kind < report.Violations[j].Kind
		}
		return report.Violations[i].Message < report.Violations[j].Message
	})
	for _, v := range report.Violations {
		switch v.Severity {
		case SeverityCritical:
			report.Critical++
		case SeverityMajor:
			report.Major++
		default:
			report.Minor++
		}
	}
	report.QualityScore = qualityScore(report.Critical, report.Major, report.Minor)
	report.Bottlenecks = rankBottlenecks(res)
	report.Suggestions = buildSuggestions(report, res)
	return report
}

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityMajor:
		return 1
	default:
		return 2
	}
}

func qualityScore(critical, major, minor int) float64 {
	score := 100 - float64(10*critical) - float64(5*major) - float64(minor)
	if score < 0 {
		return 0
	}
	return score
}

func checkConflicts(placements []PlacementDecision, report *Report) {
	type cell struct {
		id   string
		day  int
		slot int
	}
	teacher := make(map[cell]int)
	class := make(map[cell]int)
	for _, p := range placements {
		teacher[cell{p.TeacherID, p.Day, p.Slot}]++
		class[cell{p.ClassID, p.Day, p.Slot}]++
	}
	for c, n := range teacher {
		if n > 1 {
			report.Violations = append(report.Violations, Violation{
				Severity: SeverityCritical, Kind: "teacher_conflict",
				Message: fmt.Sprintf("teacher %s is double-booked on day %d slot %d (%d placements)", c.id, c.day, c.slot, n),
			})
		}
	}
	for c, n := range class {
		if n > 1 {
			report.Violations = append(report.Violations, Violation{
				Severity: SeverityCritical, Kind: "class_conflict",
				Message: fmt.Sprintf("class %s is double-booked on day %d slot %d (%d placements)", c.id, c.day, c.slot, n),
			})
		}
	}
}

func checkBounds(in Input, placements []PlacementDecision, report *Report) {
	for _, p := range placements {
		if p.Day < 0 || p.Day >= in.Days || p.Slot < 0 || p.Slot >= in.SlotsPerDay {
			report.Violations = append(report.Violations, Violation{
				Severity: SeverityCritical, Kind: "out_of_bounds",
				Message: fmt.Sprintf("placement for class %s lesson %s at (%d,%d) is outside the %dx%d grid", p.ClassID, p.LessonID, p.Day, p.Slot, in.Days, in.SlotsPerDay),
			})
		}
	}
}

func checkHours(in Input, placements []PlacementDecision, report *Report) {
	placed := lo.CountValuesBy(placements, func(p PlacementDecision) AssignmentKey {
		return AssignmentKey{ClassID: p.ClassID, LessonID: p.LessonID}
	})
	for _, a := range in.Assignments {
		got := placed[a.Key()]
		switch {
		case got > a.WeeklyHours:
			report.Violations = append(report.Violations, Violation{
				Severity: SeverityMajor, Kind: "hour_excess",
				Message: fmt.Sprintf("class %s lesson %s has %d hours placed, curriculum requires %d", a.ClassID, a.LessonID, got, a.WeeklyHours),
			})
		case got < a.WeeklyHours:
			report.Violations = append(report.Violations, Violation{
				Severity: SeverityMajor, Kind: "hour_shortfall",
				Message: fmt.Sprintf("class %s lesson %s has %d of %d required hours", a.ClassID, a.LessonID, got, a.WeeklyHours),
			})
		}
	}
}

func checkAvailability(in Input, placements []PlacementDecision, report *Report) {
	for _, p := range placements {
		if in.Availability.Available(p.TeacherID, p.Day, p.Slot) {
			continue
		}
		severity := SeverityMajor
		if p.ConstraintLevel == LevelAvailabilityFlex {
			// Deliberate relaxation, not an engine defect.
			severity = SeverityMinor
		}
		report.Violations = append(report.Violations, Violation{
			Severity: severity, Kind: "availability_violation",
			Message: fmt.Sprintf("teacher %s placed on day %d slot %d despite unavailability (level %s)", p.TeacherID, p.Day, p.Slot, p.ConstraintLevel),
		})
	}
}

func checkBlocks(placements []PlacementDecision, report *Report) {
	blocks := lo.GroupBy(placements, func(p PlacementDecision) string { return p.BlockID })
	for id, members := range blocks {
		if id == "" || len(members) < 2 {
			continue
		}
		slots := lo.Map(members, func(p PlacementDecision, _ int) int { return p.Slot })
		sort.Ints(slots)
		fragmented := false
		for i := 1; i < len(members); i++ {
			if members[i].Day != members[0].Day || slots[i] != slots[i-1]+1 {
				fragmented = true
				break
			}
		}
		if fragmented {
			report.Violations = append(report.Violations, Violation{
				Severity: SeverityMinor, Kind: "block_fragmented",
				Message: fmt.Sprintf("block for class %s lesson %s is not a consecutive run", members[0].ClassID, members[0].LessonID),
			})
		}
	}
}

func checkWorkload(in Input, placements []PlacementDecision, report *Report) {
	perTeacherDay := make(map[string]map[int]int)
	for _, p := range placements {
		if perTeacherDay[p.TeacherID] == nil {
			perTeacherDay[p.TeacherID] = make(map[int]int)
		}
		perTeacherDay[p.TeacherID][p.Day]++
	}
	for teacherID, days := range perTeacherDay {
		for day, count := range days {
			if count > 6 {
				report.Violations = append(report.Violations, Violation{
					Severity: SeverityMinor, Kind: "workload_overload",
					Message: fmt.Sprintf("teacher %s has %d lessons on day %d", teacherID, count, day),
				})
			}
		}
		if empty := in.Days - len(days); empty > 2 && len(days) > 0 {
			report.Violations = append(report.Violations, Violation{
				Severity: SeverityMinor, Kind: "workload_compressed",
				Message: fmt.Sprintf("teacher %s teaches on only %d of %d days", teacherID, len(days), in.Days),
			})
		}
	}
}

// rankBottlenecks weighs teachers, classes, slots and lessons by how often they
// appear in failed lessons. Heavier weight means a stronger scheduling chokepoint.
func rankBottlenecks(res *Result) []Bottleneck {
	weights := make(map[Bottleneck]float64)
	bump := func(kind, id string, w float64) {
		if id == "" {
			return
		}
		weights[Bottleneck{Kind: kind, ID: id}] += w
	}
	for _, f := range res.FailedLessons {
		w := float64(f.RemainingHours)
		if w <= 0 {
			w = 1
		}
		bump("teacher", f.Assignment.TeacherID, w*2)
		bump("class", f.Assignment.ClassID, w)
		bump("lesson", f.Assignment.LessonID, w)
	}
	slotLoad := lo.CountValuesBy(res.Placements, func(p PlacementDecision) string {
		return fmt.Sprintf("day %d slot %d", p.Day, p.Slot)
	})
	for slot, n := range slotLoad {
		if n > 0 {
			bump("slot", slot, float64(n)*0.5)
		}
	}

	out := make([]Bottleneck, 0, len(weights))
	for b, w := range weights {
		b.Weight = w
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

func buildSuggestions(report *Report, res *Result) []string {
	var out []string
	if report.Critical > 0 {
		out = append(out, "resolve double-bookings before publishing: rerun generation or remove the conflicting entries")
	}
	if len(res.FailedLessons) > 0 {
		out = append(out, fmt.Sprintf("%d lessons could not be fully placed: widen the availability of the listed bottleneck teachers or reduce their load", len(res.FailedLessons)))
	}
	if report.Major > 0 && len(res.FailedLessons) == 0 {
		out = append(out, "curriculum hour mismatches found: verify weekly hour entries against placements")
	}
	for _, v := range report.Violations {
		if v.Kind == "workload_compressed" {
			out = append(out, "some teachers are compressed into few days: consider raising their availability or relaxing the empty-day limit")
			break
		}
	}
	if res.Stats.DepthLimitHits > 0 {
		out = append(out, "the search hit its backtracking depth limit: a larger limit may improve completion at the cost of runtime")
	}
	return out
}
