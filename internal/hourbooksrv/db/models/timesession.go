package models

import (
	"time"

	"github.com/hourbook/hourbook/internal/common/uuid"
)

// TimeSession is one sign-in/sign-out interval of a member. A nil
// CheckOutTime means the session is open.
type TimeSession struct {
	ID           uuid.UUID  `db:"id"`
	MemberCode   string     `db:"member_code"`
	CheckInTime  time.Time  `db:"check_in_time"`
	CheckOutTime *time.Time `db:"check_out_time"`
	TotalHours   *float64   `db:"total_hours"`
	IsFlagged    bool       `db:"is_flagged"`
	AdminNotes   string     `db:"admin_notes"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`

	// MemberName is filled from members by listings that join it.
	MemberName string `db:"-"`
}

func (s *TimeSession) IsOpen() bool {
	return s.CheckOutTime == nil
}

// Hours returns the recorded total or 0 when none has been recorded.
func (s *TimeSession) Hours() float64 {
	if s.TotalHours == nil {
		return 0
	}
	return *s.TotalHours
}

// Clone returns a deep copy.
func (s *TimeSession) Clone() *TimeSession {
	cp := *s
	if s.CheckOutTime != nil {
		t := *s.CheckOutTime
		cp.CheckOutTime = &t
	}
	if s.TotalHours != nil {
		h := *s.TotalHours
		cp.TotalHours = &h
	}
	return &cp
}
