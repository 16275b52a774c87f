package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundHours(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want float64
	}{
		{15*time.Minute + 30*time.Second, 0.26},
		{6*time.Hour + 30*time.Minute, 6.5},
		{time.Hour, 1},
		{17 * time.Second, 0},
		{-2 * time.Hour, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundHours(tt.d), tt.d.String())
	}
}

func TestApplyCap(t *testing.T) {
	total, flagged := ApplyCap(5.0, DefaultSessionCap)
	assert.Equal(t, 5.0, total)
	assert.False(t, flagged)

	total, flagged = ApplyCap(5.01, DefaultSessionCap)
	assert.Equal(t, 5.0, total)
	assert.True(t, flagged)

	total, flagged = ApplyCap(0.26, DefaultSessionCap)
	assert.Equal(t, 0.26, total)
	assert.False(t, flagged)
}

func TestValidHours(t *testing.T) {
	assert.True(t, validHours(0))
	assert.True(t, validHours(7.5))
	assert.True(t, validHours(MaxHours))
	assert.False(t, validHours(-0.01))
	assert.False(t, validHours(math.NaN()))
	assert.False(t, validHours(math.Inf(1)))
	assert.False(t, validHours(100000))
}

func TestAdjustNote(t *testing.T) {
	assert.Equal(t, "Hours adjusted from 6.50 to 5.00 by 10101", adjustNote(6.5, 5, "10101"))
}
