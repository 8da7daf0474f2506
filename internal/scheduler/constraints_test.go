package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintLadderSettings(t *testing.T) {
	cases := []struct {
		level            ConstraintLevel
		maxEmptyDays     int
		nonConsecutive   bool
		availabilityFlex bool
		strictBlocks     bool
	}{
		{LevelStrict, 1, false, false, true},
		{LevelWorkloadFlex, 2, false, false, true},
		{LevelBlockFlex, 2, true, false, false},
		{LevelAvailabilityFlex, 2, true, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.level.String(), func(t *testing.T) {
			s := NewConstraintState()
			s.Relax(tc.level)
			assert.Equal(t, tc.level, s.Level)
			assert.Equal(t, tc.maxEmptyDays, s.MaxEmptyDays)
			assert.Equal(t, tc.nonConsecutive, s.AllowNonConsecutiveBlocks)
			assert.Equal(t, tc.availabilityFlex, s.AllowAvailabilityViolations)
			assert.Equal(t, tc.strictBlocks, s.StrictBlockRules)
		})
	}
}

func TestConstraintRelaxOnlyMovesForward(t *testing.T) {
	s := NewConstraintState()
	s.Relax(LevelBlockFlex)
	s.Relax(LevelWorkloadFlex)
	assert.Equal(t, LevelBlockFlex, s.Level, "relaxing backward must be refused")

	s.Relax(LevelBlockFlex)
	assert.Equal(t, LevelBlockFlex, s.Level, "relaxing to the current level is a no-op")
}

func TestConstraintRestore(t *testing.T) {
	s := NewConstraintState()
	s.Restore()
	assert.Equal(t, LevelStrict, s.Level, "restore before any relaxation is a no-op")

	s.Relax(LevelWorkloadFlex)
	s.Relax(LevelAvailabilityFlex)
	assert.True(t, s.Relaxed())

	s.Restore()
	assert.Equal(t, LevelStrict, s.Level)
	assert.Equal(t, 1, s.MaxEmptyDays)
	assert.False(t, s.AllowAvailabilityViolations)
	assert.False(t, s.Relaxed())
}
