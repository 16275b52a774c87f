package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hourbook/hourbook/pkg/api"
)

var numbers = message.NewPrinter(language.English)

// timeNow is replaced in tests.
var timeNow = time.Now

// formatHours prints hours with two decimals and thousands separators.
func formatHours(h float64) string {
	return numbers.Sprintf("%.2f", h)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "%s:\n", cases.Title(language.English).String(title))
}

func newTable(w io.Writer, columns ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	return tw
}

func printSessions(w io.Writer, title string, sessions []api.TimeSession) {
	heading(w, title)
	if len(sessions) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	tw := newTable(w, "ID", "MEMBER", "CHECK-IN", "CHECK-OUT", "HOURS", "FLAGGED", "NOTES")
	for _, s := range sessions {
		out, hours, flagged := "-", "-", ""
		if s.CheckOutTime != nil {
			out = formatTime(*s.CheckOutTime)
		}
		if s.TotalHours != nil {
			hours = formatHours(*s.TotalHours)
		}
		if s.IsFlagged {
			flagged = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.MemberCode, formatTime(s.CheckInTime), out, hours, flagged, s.AdminNotes)
	}
	tw.Flush()
}

// formatElapsed prints d as h:mm.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

func memberName(s api.TimeSession) string {
	if s.MemberName != "" {
		return s.MemberName
	}
	return "User " + s.MemberCode
}

// printOpenSessions lists signed-in members with the time since check-in.
func printOpenSessions(w io.Writer, sessions []api.TimeSession) {
	heading(w, "open sessions")
	if len(sessions) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	now := timeNow()
	tw := newTable(w, "ID", "NAME", "MEMBER", "CHECK-IN", "ELAPSED")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, memberName(s), s.MemberCode, formatTime(s.CheckInTime), formatElapsed(now.Sub(s.CheckInTime)))
	}
	tw.Flush()
}

func printSummary(w io.Writer, rsp *api.HoursSummaryRsp) {
	heading(w, "hours summary")
	if len(rsp.Members) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	tw := newTable(w, "NAME", "ROLE", "CODE", "HOURS", "FLAGGED", "LAST ACTIVITY")
	for _, m := range rsp.Members {
		last := "-"
		if m.LastActivity != nil {
			last = formatTime(*m.LastActivity)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			m.Name, m.Role, m.MemberCode, formatHours(m.TotalHours), m.FlaggedSessions, last)
	}
	tw.Flush()
}

func printSession(w io.Writer, s *api.TimeSession) {
	fmt.Fprintf(w, "Session: %s\n", s.ID)
	fmt.Fprintf(w, "Member: %s\n", s.MemberCode)
	fmt.Fprintf(w, "Check-in: %s\n", formatTime(s.CheckInTime))
	if s.CheckOutTime != nil {
		fmt.Fprintf(w, "Check-out: %s\n", formatTime(*s.CheckOutTime))
	}
	if s.TotalHours != nil {
		fmt.Fprintf(w, "Hours: %s\n", formatHours(*s.TotalHours))
	}
	if s.AdminNotes != "" {
		fmt.Fprintf(w, "Notes: %s\n", s.AdminNotes)
	}
}
