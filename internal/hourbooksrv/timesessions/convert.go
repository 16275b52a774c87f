package timesessions

import (
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
	"github.com/hourbook/hourbook/pkg/api"
)

func toAPISession(s *models.TimeSession) api.TimeSession {
	out := api.TimeSession{
		ID:          s.ID.String(),
		MemberCode:  s.MemberCode,
		MemberName:  s.MemberName,
		CheckInTime: s.CheckInTime,
		IsFlagged:   s.IsFlagged,
		AdminNotes:  s.AdminNotes,
		CreatedAt:   s.CreatedAt,
	}
	if s.CheckOutTime != nil {
		t := *s.CheckOutTime
		out.CheckOutTime = &t
	}
	if s.TotalHours != nil {
		h := *s.TotalHours
		out.TotalHours = &h
	}
	return out
}

func toAPISessionList(sessions []*models.TimeSession) *api.TimeSessionList {
	list := &api.TimeSessionList{Sessions: make([]api.TimeSession, 0, len(sessions))}
	for _, s := range sessions {
		list.Sessions = append(list.Sessions, toAPISession(s))
	}
	return list
}

// toAPISummary converts summary rows, masking member codes unless showIDs.
func toAPISummary(rows []*models.UserHoursSummary, showIDs bool) *api.HoursSummaryRsp {
	rsp := &api.HoursSummaryRsp{
		Members:    make([]api.UserHoursSummary, 0, len(rows)),
		IDsVisible: showIDs,
	}
	for _, r := range rows {
		code := r.MemberCode
		if !showIDs {
			code = api.MaskedCode
		}
		rsp.Members = append(rsp.Members, api.UserHoursSummary{
			MemberCode:      code,
			Name:            r.Name,
			Role:            r.Role,
			TotalHours:      r.TotalHours,
			FlaggedSessions: r.FlaggedSessions,
			LastActivity:    r.LastActivity,
		})
	}
	return rsp
}
