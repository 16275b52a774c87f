// Package api defines the request and response bodies of the hourbook HTTP API.
package api

import "time"

// ApiVersionHeader carries the API version a client was built against.
const ApiVersionHeader = "X-Hourbook-Api-Version"

// MaskedCode replaces member codes in summaries when ID visibility is off.
const MaskedCode = "*****"

type LoginReq struct {
	Code string `json:"code" validate:"required,membercode"`
}

type LoginRsp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Member    Member    `json:"member"`
}

type Member struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
	IsRoot  bool   `json:"is_root"`
}

type SignInReq struct {
	MemberCode string `json:"member_code" validate:"required,membercode"`
}

// ManualAddReq carries hours as a pointer so a missing value is told apart
// from zero.
type ManualAddReq struct {
	MemberCode string   `json:"member_code" validate:"required,membercode"`
	Hours      *float64 `json:"hours" validate:"required,gte=0,lte=99999.99"`
	Notes      string   `json:"notes" validate:"max=1000"`
}

type AdjustHoursReq struct {
	Hours *float64 `json:"hours" validate:"required,gte=0,lte=99999.99"`
	Notes string   `json:"notes" validate:"max=1000"`
}

type TimeSession struct {
	ID           string     `json:"id"`
	MemberCode   string     `json:"member_code"`
	MemberName   string     `json:"member_name,omitempty"`
	CheckInTime  time.Time  `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	TotalHours   *float64   `json:"total_hours,omitempty"`
	IsFlagged    bool       `json:"is_flagged"`
	AdminNotes   string     `json:"admin_notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type TimeSessionList struct {
	Sessions []TimeSession `json:"sessions"`
}

type UserHoursSummary struct {
	MemberCode      string     `json:"member_code"`
	Name            string     `json:"name"`
	Role            string     `json:"role"`
	TotalHours      float64    `json:"total_hours"`
	FlaggedSessions int        `json:"flagged_sessions"`
	LastActivity    *time.Time `json:"last_activity,omitempty"`
}

type HoursSummaryRsp struct {
	Members []UserHoursSummary `json:"members"`
	// IDsVisible reports whether member codes are shown unmasked.
	IDsVisible bool `json:"ids_visible"`
}

type Settings struct {
	ShowIDs     bool `json:"show_ids"`
	KioskLocked bool `json:"kiosk_locked"`
}

type IDVisibilityReq struct {
	Show *bool `json:"show" validate:"required"`
}

type KioskUnlockReq struct {
	ExitCode string `json:"exit_code" validate:"required"`
}

type VersionRsp struct {
	ServerVersion string `json:"server_version"`
	ApiVersion    string `json:"api_version"`
}
