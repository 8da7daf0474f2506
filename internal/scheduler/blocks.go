package scheduler

// BlockPlanner decides how a lesson's weekly hours decompose into consecutive-hour
// blocks. Every lesson has one preferred decomposition; when standard placement
// fails the planner offers ordered alternatives, loosened further once the
// constraint ladder allows non-consecutive blocks.
type BlockPlanner struct {
	constraints *ConstraintState
}

// NewBlockPlanner binds the planner to the attempt's constraint state.
func NewBlockPlanner(constraints *ConstraintState) *BlockPlanner {
	return &BlockPlanner{constraints: constraints}
}

// Primary returns the preferred block pattern for the given weekly hours.
// Double hours dominate: 5 hours teach best as 2+2+1, 6 as 2+2+2.
func (p *BlockPlanner) Primary(hours int) []int {
	if hours <= 0 {
		return nil
	}
	switch hours {
	case 1:
		return []int{1}
	case 2:
		return []int{2}
	case 3:
		return []int{2, 1}
	case 4:
		return []int{2, 2}
	case 5:
		return []int{2, 2, 1}
	case 6:
		return []int{2, 2, 2}
	case 7:
		return []int{2, 2, 2, 1}
	case 8:
		return []int{2, 2, 2, 2}
	default:
		pattern := make([]int, 0, hours/2+1)
		remaining := hours
		for remaining >= 2 {
			pattern = append(pattern, 2)
			remaining -= 2
		}
		if remaining == 1 {
			pattern = append(pattern, 1)
		}
		return pattern
	}
}

// Alternatives returns fallback decompositions in preference order. Under strict
// block rules only patterns with at most one single hour qualify; once
// non-consecutive blocks are allowed the fully fragmented pattern joins the list.
func (p *BlockPlanner) Alternatives(hours int) [][]int {
	if hours <= 1 {
		return nil
	}
	var raw [][]int
	switch hours {
	case 2:
		raw = [][]int{{1, 1}}
	case 3:
		raw = [][]int{{3}, {1, 1, 1}}
	case 4:
		raw = [][]int{{3, 1}, {2, 1, 1}, {1, 1, 1, 1}}
	case 5:
		raw = [][]int{{3, 2}, {3, 1, 1}, {2, 1, 1, 1}}
	case 6:
		raw = [][]int{{3, 3}, {2, 2, 1, 1}, {3, 2, 1}, {2, 1, 1, 1, 1}}
	case 7:
		raw = [][]int{{3, 2, 2}, {2, 2, 1, 1, 1}}
	case 8:
		raw = [][]int{{3, 3, 2}, {2, 2, 2, 1, 1}}
	default:
		raw = [][]int{fragmented(hours)}
	}

	var out [][]int
	for _, pattern := range raw {
		if p.constraints.StrictBlockRules && countSingles(pattern) > 1 {
			continue
		}
		out = append(out, pattern)
	}
	if p.constraints.AllowNonConsecutiveBlocks && hours > 2 && countSingles(raw[len(raw)-1]) != hours {
		out = append(out, fragmented(hours))
	}
	return out
}

func fragmented(hours int) []int {
	pattern := make([]int, hours)
	for i := range pattern {
		pattern[i] = 1
	}
	return pattern
}

func countSingles(pattern []int) int {
	count := 0
	for _, size := range pattern {
		if size == 1 {
			count++
		}
	}
	return count
}

func patternHours(pattern []int) int {
	total := 0
	for _, size := range pattern {
		total += size
	}
	return total
}
