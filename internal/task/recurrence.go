package task

import (
	"strings"
	"time"

	"gtdone/internal/model"
)

// NextDueDate computes the due date of the next instance of a recurring
// task completed at completedAt. The returned date is always strictly after
// the completion day.
func NextDueDate(rec *model.Recurrence, completedAt time.Time) (string, bool) {
	if rec == nil || !rec.Valid() {
		return "", false
	}

	day := time.Date(completedAt.Year(), completedAt.Month(), completedAt.Day(), 0, 0, 0, 0, completedAt.Location())

	var next time.Time
	switch rec.Type {
	case model.RecurDaily:
		next = day.AddDate(0, 0, 1)

	case model.RecurWeekly:
		next = nextWeekday(day, rec.DaysOfWeek)

	case model.RecurMonthly:
		firstOfNext := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location()).AddDate(0, 1, 0)
		if rec.NthWeekday != nil {
			next = nthWeekdayOfMonth(firstOfNext, rec.NthWeekday.Nth, time.Weekday(rec.NthWeekday.Weekday))
		} else {
			next = clampToMonth(firstOfNext, rec.DayOfMonth)
		}

	case model.RecurYearly:
		next = time.Date(day.Year(), time.Month(rec.Month), rec.Day, 0, 0, 0, 0, day.Location())
		if !next.After(day) {
			next = time.Date(day.Year()+1, time.Month(rec.Month), rec.Day, 0, 0, 0, 0, day.Location())
		}

	default:
		return "", false
	}

	return next.Format(model.DateLayout), true
}

// ShouldEnd reports whether the recurrence stops before producing an
// instance due on nextDue.
func ShouldEnd(rec *model.Recurrence, nextDue string) bool {
	if rec == nil || rec.EndDate == nil {
		return false
	}
	end := strings.TrimSpace(*rec.EndDate)
	if end == "" {
		return false
	}
	return nextDue > end
}

// NextInstance builds the regenerated task for a completed recurring one.
// The copy keeps the task's attributes, resets completion state and subtask
// checkmarks, and carries the advanced due date. Returns false when the
// task does not recur or the recurrence has ended.
func NextInstance(t model.Task, completedAt time.Time) (model.Task, bool) {
	nextDue, ok := NextDueDate(t.Recurrence, completedAt)
	if !ok || ShouldEnd(t.Recurrence, nextDue) {
		return model.Task{}, false
	}

	next := t
	next.ID = ""
	next.Completed = false
	next.CompletedAt = nil
	next.DueDate = &nextDue
	next.DeferDate = nil
	next.TimeSpent = 0
	next.WaitingForTaskIDs = nil
	next.WaitingForDescription = ""
	if next.Status == model.StatusWaiting {
		next.Status = model.StatusNext
	}

	next.Contexts = append([]string(nil), t.Contexts...)
	next.Subtasks = make([]model.Subtask, 0, len(t.Subtasks))
	for _, st := range t.Subtasks {
		next.Subtasks = append(next.Subtasks, model.Subtask{Title: st.Title})
	}

	return next, true
}

// nextWeekday returns the nearest day strictly after from whose weekday is
// in days. With no days given it falls back to one week later.
func nextWeekday(from time.Time, days []int) time.Time {
	if len(days) == 0 {
		return from.AddDate(0, 0, 7)
	}
	allowed := map[int]bool{}
	for _, d := range days {
		allowed[d] = true
	}
	for i := 1; i <= 7; i++ {
		cand := from.AddDate(0, 0, i)
		if allowed[int(cand.Weekday())] {
			return cand
		}
	}
	return from.AddDate(0, 0, 7)
}

// clampToMonth returns day-of-month dom within the month of firstOfMonth,
// clamped to the month's length (Jan 31 -> Feb 28).
func clampToMonth(firstOfMonth time.Time, dom int) time.Time {
	lastDay := firstOfMonth.AddDate(0, 1, -1).Day()
	if dom > lastDay {
		dom = lastDay
	}
	if dom < 1 {
		dom = 1
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), dom, 0, 0, 0, 0, firstOfMonth.Location())
}

// nthWeekdayOfMonth finds the nth given weekday within the month starting
// at firstOfMonth. nth of 5 means the last occurrence.
func nthWeekdayOfMonth(firstOfMonth time.Time, nth int, weekday time.Weekday) time.Time {
	first := time.Date(firstOfMonth.Year(), firstOfMonth.Month(), 1, 0, 0, 0, 0, firstOfMonth.Location())

	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	cand := first.AddDate(0, 0, offset+(nth-1)*7)
	if cand.Month() != first.Month() || nth >= 5 {
		// walk back to the last occurrence in the month
		cand = first.AddDate(0, 0, offset)
		for {
			nextWeek := cand.AddDate(0, 0, 7)
			if nextWeek.Month() != first.Month() {
				break
			}
			cand = nextWeek
		}
	}
	return cand
}
