package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeSessionClone(t *testing.T) {
	out := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	h := 2.5
	s := &TimeSession{MemberCode: "12345", CheckOutTime: &out, TotalHours: &h}

	cp := s.Clone()
	*cp.TotalHours = 4
	*cp.CheckOutTime = out.Add(time.Hour)

	assert.Equal(t, 2.5, s.Hours())
	assert.Equal(t, out, *s.CheckOutTime)
	assert.False(t, s.IsOpen())
	assert.True(t, (&TimeSession{}).IsOpen())
	assert.Equal(t, 0.0, (&TimeSession{}).Hours())
}
