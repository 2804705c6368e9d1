package task_test

import (
	"encoding/json"
	"testing"
	"time"
	"todoKeeper/internal/models/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task task.Task
		want bool
	}{
		{name: "no due date", task: task.Task{}, want: false},
		{name: "due in past", task: task.Task{DueDate: &past}, want: true},
		{name: "due in past but completed", task: task.Task{DueDate: &past, Completed: true}, want: false},
		{name: "due in future", task: task.Task{DueDate: &future}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsOverdue(now))
		})
	}
}

func TestPriority_Valid(t *testing.T) {
	assert.True(t, task.PriorityNone.Valid())
	assert.True(t, task.PriorityHigh.Valid())
	assert.False(t, task.Priority("urgent").Valid())
}

func TestPatch_Apply(t *testing.T) {
	due := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	original := task.Task{
		ID:           "t1",
		Text:         "Report",
		DueDate:      &due,
		Priority:     task.PriorityHigh,
		FolderID:     "work",
		ParentTaskID: "p1",
	}

	t.Run("empty patch keeps everything", func(t *testing.T) {
		p := task.NewPatch()
		assert.True(t, p.IsEmpty())
		assert.Equal(t, original, p.Apply(original))
	})

	t.Run("sets only named fields", func(t *testing.T) {
		got := task.NewPatch(task.WithText("Draft"), task.WithCompleted(true)).Apply(original)

		assert.Equal(t, "Draft", got.Text)
		assert.True(t, got.Completed)
		assert.Equal(t, task.PriorityHigh, got.Priority)
		assert.Equal(t, "work", got.FolderID)
		assert.Equal(t, "t1", got.ID)
		assert.Equal(t, "p1", got.ParentTaskID)
	})

	t.Run("clears optional fields", func(t *testing.T) {
		got := task.NewPatch(
			task.WithDueDate(nil),
			task.WithPriority(task.PriorityNone),
			task.WithFolder(""),
		).Apply(original)

		assert.Nil(t, got.DueDate)
		assert.Equal(t, task.PriorityNone, got.Priority)
		assert.Empty(t, got.FolderID)
		assert.NotNil(t, original.DueDate)
	})

	t.Run("due date is copied", func(t *testing.T) {
		d := due
		got := task.NewPatch(task.WithDueDate(&d)).Apply(task.Task{})
		d = d.Add(time.Hour)

		require.NotNil(t, got.DueDate)
		assert.True(t, got.DueDate.Equal(due))
	})
}

func TestTask_JSONRoundTrip(t *testing.T) {
	due := time.Date(2024, 3, 15, 9, 30, 0, 250*int(time.Millisecond), time.FixedZone("MSK", 3*3600))
	original := []task.Task{
		{ID: "a", Text: "Report", DueDate: &due, Priority: task.PriorityMedium, FolderID: "work"},
		{ID: "b", Text: "Draft", Completed: true, ParentTaskID: "a"},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dueDate":"2024-03-15T06:30:00.250Z"`)
	assert.NotContains(t, string(data), `"folderId":""`)

	var revived []task.Task
	require.NoError(t, json.Unmarshal(data, &revived))
	require.Len(t, revived, 2)
	require.NotNil(t, revived[0].DueDate)
	assert.True(t, revived[0].DueDate.Equal(due))
	assert.Nil(t, revived[1].DueDate)
	assert.Equal(t, "a", revived[1].ParentTaskID)
}

func TestReviveDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{name: "js toJSON", input: "2024-01-02T03:04:05.678Z", want: ptr(time.Date(2024, 1, 2, 3, 4, 5, 678000000, time.UTC))},
		{name: "offset", input: "2024-01-02T03:04:05+03:00", want: ptr(time.Date(2024, 1, 2, 0, 4, 5, 0, time.UTC))},
		{name: "no zone", input: "2024-01-02T03:04:05", want: ptr(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))},
		{name: "date only", input: "2024-01-02", want: ptr(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))},
		{name: "empty", input: "", want: nil},
		{name: "garbage", input: "завтра", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := task.ReviveDate(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestStatsOf(t *testing.T) {
	sub := func(done ...bool) []task.Task {
		res := make([]task.Task, len(done))
		for i, d := range done {
			res[i] = task.Task{ID: "s", ParentTaskID: "p", Completed: d}
		}
		return res
	}

	tests := []struct {
		name     string
		subtasks []task.Task
		want     task.SubtaskStats
	}{
		{name: "no subtasks", subtasks: nil, want: task.SubtaskStats{}},
		{name: "none done", subtasks: sub(false, false), want: task.SubtaskStats{Total: 2}},
		{name: "one of three rounds down", subtasks: sub(true, false, false), want: task.SubtaskStats{Total: 3, Completed: 1, Percentage: 33}},
		{name: "two of three rounds up", subtasks: sub(true, true, false), want: task.SubtaskStats{Total: 3, Completed: 2, Percentage: 67}},
		{name: "half", subtasks: sub(true, false), want: task.SubtaskStats{Total: 2, Completed: 1, Percentage: 50}},
		{name: "one of eight rounds half up", subtasks: sub(true, false, false, false, false, false, false, false), want: task.SubtaskStats{Total: 8, Completed: 1, Percentage: 13}},
		{name: "all done", subtasks: sub(true, true, true), want: task.SubtaskStats{Total: 3, Completed: 3, Percentage: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, task.StatsOf(tt.subtasks))
		})
	}
}
