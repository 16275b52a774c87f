package ledger

import (
	"math"
	"sort"

	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
)

// Summarize aggregates sessions per member. Every member gets a row, members
// without sessions included. Only closed sessions contribute hours; flagged
// sessions and the last check-in are counted over all sessions. Rows are
// ordered by total hours, highest first, then by name.
func Summarize(members []*models.Member, sessions []*models.TimeSession) []*models.UserHoursSummary {
	rows := make(map[string]*models.UserHoursSummary, len(members))
	out := make([]*models.UserHoursSummary, 0, len(members))
	for _, m := range members {
		r := &models.UserHoursSummary{MemberCode: m.Code, Name: m.Name, Role: m.Role}
		rows[m.Code] = r
		out = append(out, r)
	}
	for _, s := range sessions {
		r, ok := rows[s.MemberCode]
		if !ok {
			continue
		}
		if !s.IsOpen() {
			r.TotalHours += s.Hours()
		}
		if s.IsFlagged {
			r.FlaggedSessions++
		}
		if r.LastActivity == nil || s.CheckInTime.After(*r.LastActivity) {
			t := s.CheckInTime
			r.LastActivity = &t
		}
	}
	for _, r := range out {
		r.TotalHours = math.Round(r.TotalHours*100) / 100
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalHours != out[j].TotalHours {
			return out[i].TotalHours > out[j].TotalHours
		}
		return out[i].Name < out[j].Name
	})
	return out
}
