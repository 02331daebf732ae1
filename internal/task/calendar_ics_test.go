package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtdone/internal/model"
)

func TestBuildTaskCalendarICS_RequiresDueDate(t *testing.T) {
	_, err := BuildTaskCalendarICS(model.Task{ID: "task_1", Title: "x"}, time.Now())
	assert.Error(t, err)
}

func TestBuildTaskCalendarICS_BasicEvent(t *testing.T) {
	due := "2026-06-01"
	ics, err := BuildTaskCalendarICS(model.Task{
		ID:          "task_1",
		Title:       "dentist; 9am",
		Description: "bring card",
		DueDate:     &due,
	}, time.Now())
	require.NoError(t, err)

	assert.Contains(t, ics, "SUMMARY:dentist\\; 9am")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20260601")
	assert.Contains(t, ics, "DTEND;VALUE=DATE:20260602")
	assert.Contains(t, ics, "DESCRIPTION:bring card")
	assert.Contains(t, ics, "UID:task-task_1@gtdone")
	assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
}

func TestRecurrenceToICSRRULE(t *testing.T) {
	end := "2026-12-31"

	assert.Equal(t, "FREQ=DAILY", recurrenceToICSRRULE(&model.Recurrence{Type: model.RecurDaily}))
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO,WE",
		recurrenceToICSRRULE(&model.Recurrence{Type: model.RecurWeekly, DaysOfWeek: []int{1, 3}}))
	assert.Equal(t, "FREQ=MONTHLY;BYMONTHDAY=15",
		recurrenceToICSRRULE(&model.Recurrence{Type: model.RecurMonthly, DayOfMonth: 15}))
	assert.Equal(t, "FREQ=MONTHLY;BYDAY=2TU",
		recurrenceToICSRRULE(&model.Recurrence{Type: model.RecurMonthly, NthWeekday: &model.NthWeekday{Nth: 2, Weekday: 2}}))
	assert.Equal(t, "FREQ=MONTHLY;BYDAY=-1FR",
		recurrenceToICSRRULE(&model.Recurrence{Type: model.RecurMonthly, NthWeekday: &model.NthWeekday{Nth: 5, Weekday: 5}}))
	assert.Equal(t, "FREQ=YEARLY;BYMONTH=4;BYMONTHDAY=15",
		recurrenceToICSRRULE(&model.Recurrence{Type: model.RecurYearly, Month: 4, Day: 15}))
	assert.Equal(t, "FREQ=DAILY;UNTIL=20261231",
		recurrenceToICSRRULE(&model.Recurrence{Type: model.RecurDaily, EndDate: &end}))
	assert.Empty(t, recurrenceToICSRRULE(nil))
}
