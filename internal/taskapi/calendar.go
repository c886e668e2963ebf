package taskapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"tasknest/internal/model"
)

const icsDateLayout = "20060102"

// BuildCalendarICS renders the given tasks as an iCalendar feed, one
// all-day VEVENT per task dated by its creation day. Completed tasks
// carry a STATUS:COMPLETED line so calendar clients can grey them out.
func BuildCalendarICS(tasks []model.Task, now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Tasknest//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	stamp := now.UTC().Format("20060102T150405Z")
	for _, t := range tasks {
		start := t.CreatedAt.UTC()
		end := start.AddDate(0, 0, 1)

		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+escapeICSText(fmt.Sprintf("task-%d@tasknest", t.ID)),
			"DTSTAMP:"+stamp,
			"SUMMARY:"+escapeICSText(t.Title),
			"DTSTART;VALUE=DATE:"+start.Format(icsDateLayout),
			"DTEND;VALUE=DATE:"+end.Format(icsDateLayout),
		)
		if desc := strings.TrimSpace(t.Description); desc != "" {
			lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
		}
		if t.Completed {
			lines = append(lines, "STATUS:COMPLETED")
		}
		lines = append(lines, "END:VEVENT")
	}

	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}

// GET /api/tasks/export.ics
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasknest.ics"`)
	_, _ = w.Write([]byte(BuildCalendarICS(h.store.List(owner), time.Now())))
}
