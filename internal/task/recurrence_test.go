package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtdone/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestNextDueDate_Daily(t *testing.T) {
	rec := &model.Recurrence{Type: model.RecurDaily}
	got, ok := NextDueDate(rec, date(2026, time.March, 10))
	require.True(t, ok)
	assert.Equal(t, "2026-03-11", got)
}

func TestNextDueDate_WeeklyPicksNextListedWeekday(t *testing.T) {
	// Monday and Wednesday; completing on Monday 2026-03-09 lands on Wednesday.
	rec := &model.Recurrence{Type: model.RecurWeekly, DaysOfWeek: []int{1, 3}}
	got, ok := NextDueDate(rec, date(2026, time.March, 9))
	require.True(t, ok)
	assert.Equal(t, "2026-03-11", got)

	// Completing on Wednesday wraps to the following Monday.
	got, ok = NextDueDate(rec, date(2026, time.March, 11))
	require.True(t, ok)
	assert.Equal(t, "2026-03-16", got)
}

func TestNextDueDate_WeeklySameWeekdayGoesToNextWeek(t *testing.T) {
	// Only Monday; completing on a Monday must not return the same day.
	rec := &model.Recurrence{Type: model.RecurWeekly, DaysOfWeek: []int{1}}
	got, ok := NextDueDate(rec, date(2026, time.March, 9))
	require.True(t, ok)
	assert.Equal(t, "2026-03-16", got)
}

func TestNextDueDate_WeeklyNoDaysFallsBackToWeekLater(t *testing.T) {
	rec := &model.Recurrence{Type: model.RecurWeekly}
	got, ok := NextDueDate(rec, date(2026, time.March, 9))
	require.True(t, ok)
	assert.Equal(t, "2026-03-16", got)
}

func TestNextDueDate_MonthlyClampsShortMonths(t *testing.T) {
	rec := &model.Recurrence{Type: model.RecurMonthly, DayOfMonth: 31}
	got, ok := NextDueDate(rec, date(2026, time.January, 31))
	require.True(t, ok)
	assert.Equal(t, "2026-02-28", got)

	got, ok = NextDueDate(rec, date(2026, time.February, 28))
	require.True(t, ok)
	assert.Equal(t, "2026-03-31", got)
}

func TestNextDueDate_MonthlyNthWeekday(t *testing.T) {
	// 2nd Tuesday. Completed mid-March 2026; April's 2nd Tuesday is the 14th.
	rec := &model.Recurrence{
		Type:       model.RecurMonthly,
		NthWeekday: &model.NthWeekday{Nth: 2, Weekday: 2},
	}
	got, ok := NextDueDate(rec, date(2026, time.March, 15))
	require.True(t, ok)
	assert.Equal(t, "2026-04-14", got)
}

func TestNextDueDate_MonthlyLastWeekday(t *testing.T) {
	// nth of 5 means the last occurrence. Last Friday of April 2026 is the 24th.
	rec := &model.Recurrence{
		Type:       model.RecurMonthly,
		NthWeekday: &model.NthWeekday{Nth: 5, Weekday: 5},
	}
	got, ok := NextDueDate(rec, date(2026, time.March, 15))
	require.True(t, ok)
	assert.Equal(t, "2026-04-24", got)
}

func TestNextDueDate_Yearly(t *testing.T) {
	rec := &model.Recurrence{Type: model.RecurYearly, Month: 4, Day: 15}
	got, ok := NextDueDate(rec, date(2026, time.March, 1))
	require.True(t, ok)
	assert.Equal(t, "2026-04-15", got)

	// Completing on the day itself moves to next year.
	got, ok = NextDueDate(rec, date(2026, time.April, 15))
	require.True(t, ok)
	assert.Equal(t, "2027-04-15", got)
}

func TestNextDueDate_InvalidRecurrence(t *testing.T) {
	_, ok := NextDueDate(nil, date(2026, time.March, 1))
	assert.False(t, ok)

	_, ok = NextDueDate(&model.Recurrence{Type: "hourly"}, date(2026, time.March, 1))
	assert.False(t, ok)
}

func TestShouldEnd(t *testing.T) {
	end := "2026-03-31"
	rec := &model.Recurrence{Type: model.RecurDaily, EndDate: &end}

	assert.False(t, ShouldEnd(rec, "2026-03-31"))
	assert.True(t, ShouldEnd(rec, "2026-04-01"))
	assert.False(t, ShouldEnd(&model.Recurrence{Type: model.RecurDaily}, "2099-01-01"))
}

func TestNextInstance_ResetsCompletionState(t *testing.T) {
	due := "2026-03-10"
	deferDate := "2026-03-05"
	completedAt := date(2026, time.March, 10)
	src := model.Task{
		ID:          "task_recurring",
		Title:       "water plants",
		Status:      model.StatusWaiting,
		Contexts:    []string{"@home"},
		DueDate:     &due,
		DeferDate:   &deferDate,
		Completed:   true,
		CompletedAt: &completedAt,
		TimeSpent:   30,
		Recurrence:  &model.Recurrence{Type: model.RecurDaily},
		Subtasks: []model.Subtask{
			{Title: "front porch", Completed: true},
			{Title: "kitchen", Completed: false},
		},
		WaitingForTaskIDs:     []model.TaskID{"task_other"},
		WaitingForDescription: "hose repair",
	}

	next, ok := NextInstance(src, completedAt)
	require.True(t, ok)

	assert.Empty(t, next.ID)
	assert.False(t, next.Completed)
	assert.Nil(t, next.CompletedAt)
	assert.Nil(t, next.DeferDate)
	assert.Zero(t, next.TimeSpent)
	require.NotNil(t, next.DueDate)
	assert.Equal(t, "2026-03-11", *next.DueDate)

	// a fresh instance is not waiting on anything
	assert.Empty(t, next.WaitingForTaskIDs)
	assert.Empty(t, next.WaitingForDescription)
	assert.Equal(t, model.StatusNext, next.Status)

	// subtask checkmarks reset, titles survive
	require.Len(t, next.Subtasks, 2)
	assert.Equal(t, "front porch", next.Subtasks[0].Title)
	assert.False(t, next.Subtasks[0].Completed)
	assert.False(t, next.Subtasks[1].Completed)
}

func TestNextInstance_StopsAtEndDate(t *testing.T) {
	end := "2026-03-10"
	src := model.Task{
		ID:         "task_recurring",
		Title:      "standup notes",
		Recurrence: &model.Recurrence{Type: model.RecurDaily, EndDate: &end},
	}

	_, ok := NextInstance(src, date(2026, time.March, 10))
	assert.False(t, ok)
}

func TestNextInstance_NonRecurring(t *testing.T) {
	_, ok := NextInstance(model.Task{ID: "task_plain"}, date(2026, time.March, 10))
	assert.False(t, ok)
}
