package models

import "time"

type Member struct {
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	IsAdmin   bool      `db:"is_admin"`
	CreatedAt time.Time `db:"created_at"`
}

// UserHoursSummary is one row of the per-member hours aggregate.
type UserHoursSummary struct {
	MemberCode      string     `db:"code"`
	Name            string     `db:"name"`
	Role            string     `db:"role"`
	TotalHours      float64    `db:"total_hours"`
	FlaggedSessions int        `db:"flagged_sessions"`
	LastActivity    *time.Time `db:"last_activity"`
}
