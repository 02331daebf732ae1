package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusInbox, StatusNext, StatusWaiting, StatusSomeday, StatusReference} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("doing").Valid())
	assert.False(t, Status("").Valid())
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	past := "2026-03-09"
	today := "2026-03-10"

	assert.True(t, (&Task{DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{DueDate: &today}).IsOverdue(now))
	assert.False(t, (&Task{}).IsOverdue(now))
	assert.False(t, (&Task{DueDate: &past, Completed: true}).IsOverdue(now))
}

func TestTask_IsDeferred(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	future := "2026-03-11"
	today := "2026-03-10"

	assert.True(t, (&Task{DeferDate: &future}).IsDeferred(now))
	assert.False(t, (&Task{DeferDate: &today}).IsDeferred(now))
	assert.False(t, (&Task{}).IsDeferred(now))
}

func TestTask_AddContextDedupes(t *testing.T) {
	task := &Task{}
	task.AddContext("@home")
	task.AddContext("@home")
	task.AddContext("")
	assert.Equal(t, []string{"@home"}, task.Contexts)
}

func TestTask_MarkCompleteAndReopen(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	task := &Task{Status: StatusNext}

	task.MarkComplete(now)
	assert.True(t, task.Completed)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)
	assert.Equal(t, now, task.UpdatedAt)

	later := now.Add(time.Hour)
	task.Reopen(later)
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, later, task.UpdatedAt)
}

func TestTask_SubtaskProgress(t *testing.T) {
	task := &Task{Subtasks: []Subtask{
		{Title: "a", Completed: true},
		{Title: "b"},
		{Title: "c", Completed: true},
	}}
	done, total := task.SubtaskProgress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 3, total)
}

func TestRecurrence_UnmarshalLegacyString(t *testing.T) {
	var r Recurrence
	require.NoError(t, json.Unmarshal([]byte(`"weekly"`), &r))
	assert.Equal(t, RecurWeekly, r.Type)
	assert.Empty(t, r.DaysOfWeek)

	require.NoError(t, json.Unmarshal([]byte(`"Daily"`), &r))
	assert.Equal(t, RecurDaily, r.Type)

	assert.Error(t, json.Unmarshal([]byte(`"fortnightly"`), &r))
}

func TestRecurrence_UnmarshalObject(t *testing.T) {
	var r Recurrence
	raw := `{"type":"monthly","nthWeekday":{"nth":2,"weekday":2},"endDate":"2026-12-31"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	assert.Equal(t, RecurMonthly, r.Type)
	require.NotNil(t, r.NthWeekday)
	assert.Equal(t, 2, r.NthWeekday.Nth)
	require.NotNil(t, r.EndDate)
	assert.Equal(t, "2026-12-31", *r.EndDate)
}

func TestRecurrence_MarshalAlwaysObjectForm(t *testing.T) {
	var r Recurrence
	require.NoError(t, json.Unmarshal([]byte(`"yearly"`), &r))

	b, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"yearly"}`, string(b))
}

func TestRecurrence_Valid(t *testing.T) {
	assert.True(t, (&Recurrence{Type: RecurDaily}).Valid())
	assert.True(t, (&Recurrence{Type: RecurWeekly, DaysOfWeek: []int{0, 6}}).Valid())
	assert.False(t, (&Recurrence{Type: RecurWeekly, DaysOfWeek: []int{7}}).Valid())
	assert.True(t, (&Recurrence{Type: RecurMonthly, DayOfMonth: 31}).Valid())
	assert.False(t, (&Recurrence{Type: RecurMonthly, DayOfMonth: 0}).Valid())
	assert.True(t, (&Recurrence{Type: RecurMonthly, NthWeekday: &NthWeekday{Nth: 5, Weekday: 5}}).Valid())
	assert.False(t, (&Recurrence{Type: RecurMonthly, NthWeekday: &NthWeekday{Nth: 6, Weekday: 5}}).Valid())
	assert.True(t, (&Recurrence{Type: RecurYearly, Month: 4, Day: 15}).Valid())
	assert.False(t, (&Recurrence{Type: RecurYearly, Month: 13, Day: 1}).Valid())
	var nilRec *Recurrence
	assert.False(t, nilRec.Valid())
}
