package scheduler

import (
	"encoding/json"
	"fmt"
)

// ConstraintLevel enumerates the relaxation ladder, from strictest to loosest.
// Within a run the level only ever moves forward; Restore resets to strict once
// the run is over.
type ConstraintLevel int

const (
	LevelStrict ConstraintLevel = iota
	LevelWorkloadFlex
	LevelBlockFlex
	LevelAvailabilityFlex
)

// Levels lists the ladder in relaxation order.
var Levels = []ConstraintLevel{LevelStrict, LevelWorkloadFlex, LevelBlockFlex, LevelAvailabilityFlex}

func (l ConstraintLevel) String() string {
	switch l {
	case LevelStrict:
		return "STRICT"
	case LevelWorkloadFlex:
		return "WORKLOAD_FLEX"
	case LevelBlockFlex:
		return "BLOCK_FLEX"
	case LevelAvailabilityFlex:
		return "AVAILABILITY_FLEX"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON encodes the level by name.
func (l ConstraintLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts either the level name or its numeric form.
func (l *ConstraintLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		for _, level := range Levels {
			if level.String() == name {
				*l = level
				return nil
			}
		}
		return fmt.Errorf("unknown constraint level %q", name)
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*l = ConstraintLevel(n)
	return nil
}

// ConstraintState is the current strictness configuration consulted by the checker
// and the search engine. One instance per attempt; never shared across attempts.
type ConstraintState struct {
	Level                       ConstraintLevel
	MaxEmptyDays                int
	AllowNonConsecutiveBlocks   bool
	AllowAvailabilityViolations bool
	StrictBlockRules            bool

	original *ConstraintState
}

// NewConstraintState returns the strict configuration.
func NewConstraintState() *ConstraintState {
	s := &ConstraintState{}
	s.apply(LevelStrict)
	return s
}

func (s *ConstraintState) apply(level ConstraintLevel) {
	s.Level = level
	switch level {
	case LevelStrict:
		s.MaxEmptyDays = 1
		s.AllowNonConsecutiveBlocks = false
		s.AllowAvailabilityViolations = false
		s.StrictBlockRules = true
	case LevelWorkloadFlex:
		s.MaxEmptyDays = 2
		s.AllowNonConsecutiveBlocks = false
		s.AllowAvailabilityViolations = false
		s.StrictBlockRules = true
	case LevelBlockFlex:
		s.MaxEmptyDays = 2
		s.AllowNonConsecutiveBlocks = true
		s.AllowAvailabilityViolations = false
		s.StrictBlockRules = false
	case LevelAvailabilityFlex:
		s.MaxEmptyDays = 2
		s.AllowNonConsecutiveBlocks = true
		s.AllowAvailabilityViolations = true
		s.StrictBlockRules = false
	}
}

// Relax moves the state to the given level. Moving to the current level is a no-op;
// moving backward mid-run is refused. The pristine strict state is snapshotted on
// the first relaxation so Restore can bring it back exactly.
func (s *ConstraintState) Relax(level ConstraintLevel) {
	if level <= s.Level {
		return
	}
	if s.original == nil {
		snapshot := *s
		s.original = &snapshot
	}
	s.apply(level)
}

// Restore reverts to the pre-relaxation strict state. No-op if Relax was never called.
func (s *ConstraintState) Restore() {
	if s.original == nil {
		return
	}
	original := *s.original
	*s = original
	s.original = nil
}

// Relaxed reports whether the state has left the strict level.
func (s *ConstraintState) Relaxed() bool {
	return s.original != nil
}
