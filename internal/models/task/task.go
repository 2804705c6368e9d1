package task

import (
	"math"
	"time"
)

// Task - задача или подзадача (если задан ParentTaskID)
type Task struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	Completed    bool       `json:"completed"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Priority     Priority   `json:"priority,omitempty"`
	FolderID     string     `json:"folderId,omitempty"`
	ParentTaskID string     `json:"parentTaskId,omitempty"`
}

type Priority string

const PriorityNone Priority = ""
const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// NewTask - поля новой задачи без идентификатора
type NewTask struct {
	Text      string
	Completed bool
	DueDate   *time.Time
	Priority  Priority
	FolderID  string
}

func (t Task) IsSubtask() bool {
	return t.ParentTaskID != ""
}

func (t Task) IsTopLevel() bool {
	return t.ParentTaskID == ""
}

// просрочена: срок раньше now и задача не выполнена
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.Completed && t.DueDate.Before(now)
}

// SubtaskStats - прогресс по подзадачам; Percentage округлён до целого
type SubtaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// StatsOf считает прогресс; без подзадач процент равен 0
func StatsOf(subtasks []Task) SubtaskStats {
	stats := SubtaskStats{Total: len(subtasks)}
	for _, t := range subtasks {
		if t.Completed {
			stats.Completed++
		}
	}
	if stats.Total > 0 {
		stats.Percentage = int(math.Round(float64(stats.Completed) * 100 / float64(stats.Total)))
	}
	return stats
}
