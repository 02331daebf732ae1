package task

import (
	"fmt"
	"strings"
	"time"

	"gtdone/internal/model"
)

const icsDateLayout = "20060102"

var icsWeekdays = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// BuildTaskCalendarICS builds a single-event iCalendar feed for a task.
// A due date is required so the exported event has a concrete start date.
func BuildTaskCalendarICS(t model.Task, now time.Time) (string, error) {
	dueRaw := ""
	if t.DueDate != nil {
		dueRaw = strings.TrimSpace(*t.DueDate)
	}
	if dueRaw == "" {
		return "", fmt.Errorf("task due date required for calendar export")
	}

	due, err := time.ParseInLocation(model.DateLayout, dueRaw, time.Local)
	if err != nil {
		return "", fmt.Errorf("task due date must be YYYY-MM-DD")
	}
	end := due.AddDate(0, 0, 1)

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Task"
	}
	desc := strings.TrimSpace(t.Description)

	uid := fmt.Sprintf("task-%s@gtdone", strings.TrimSpace(string(t.ID)))
	if strings.TrimSpace(string(t.ID)) == "" {
		uid = fmt.Sprintf("task-export-%d@gtdone", now.UnixNano())
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//gtdone//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(uid),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICSText(title),
		"DTSTART;VALUE=DATE:" + due.Format(icsDateLayout),
		"DTEND;VALUE=DATE:" + end.Format(icsDateLayout),
	}
	if desc != "" {
		lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
	}
	if rrule := recurrenceToICSRRULE(t.Recurrence); rrule != "" {
		lines = append(lines, "RRULE:"+rrule)
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n"), nil
}

func recurrenceToICSRRULE(rec *model.Recurrence) string {
	if rec == nil || !rec.Valid() {
		return ""
	}

	var parts []string
	switch rec.Type {
	case model.RecurDaily:
		parts = append(parts, "FREQ=DAILY")
	case model.RecurWeekly:
		parts = append(parts, "FREQ=WEEKLY")
		if len(rec.DaysOfWeek) > 0 {
			days := make([]string, 0, len(rec.DaysOfWeek))
			for _, d := range rec.DaysOfWeek {
				days = append(days, icsWeekdays[d])
			}
			parts = append(parts, "BYDAY="+strings.Join(days, ","))
		}
	case model.RecurMonthly:
		parts = append(parts, "FREQ=MONTHLY")
		if rec.NthWeekday != nil {
			nth := rec.NthWeekday.Nth
			if nth >= 5 {
				nth = -1
			}
			parts = append(parts, fmt.Sprintf("BYDAY=%d%s", nth, icsWeekdays[rec.NthWeekday.Weekday]))
		} else if rec.DayOfMonth > 0 {
			parts = append(parts, fmt.Sprintf("BYMONTHDAY=%d", rec.DayOfMonth))
		}
	case model.RecurYearly:
		parts = append(parts, "FREQ=YEARLY")
		parts = append(parts, fmt.Sprintf("BYMONTH=%d", rec.Month))
		parts = append(parts, fmt.Sprintf("BYMONTHDAY=%d", rec.Day))
	default:
		return ""
	}

	if rec.EndDate != nil && strings.TrimSpace(*rec.EndDate) != "" {
		if until, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(*rec.EndDate), time.Local); err == nil {
			parts = append(parts, "UNTIL="+until.Format(icsDateLayout))
		}
	}

	return strings.Join(parts, ";")
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
