package dto

import (
	"bytes"
	"encoding/json"
	"time"
	"todoKeeper/internal/models/folder"
	"todoKeeper/internal/models/task"
	"todoKeeper/internal/service"
)

// OptionalDate отличает отсутствующее поле от явного null
type OptionalDate struct {
	Set   bool
	Value *string
}

func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type CreateTaskRequest struct {
	Text     string  `json:"text"`
	DueDate  *string `json:"dueDate,omitempty"`
	Priority string  `json:"priority,omitempty"`
	FolderID string  `json:"folderId,omitempty"`
}

type UpdateTaskRequest struct {
	Text      *string      `json:"text,omitempty"`
	Completed *bool        `json:"completed,omitempty"`
	DueDate   OptionalDate `json:"dueDate"`
	Priority  *string      `json:"priority,omitempty"`
	FolderID  *string      `json:"folderId,omitempty"`
}

type CreateSubtaskRequest struct {
	Text string `json:"text"`
}

type FolderRequest struct {
	Name string `json:"name"`
}

type SelectFolderRequest struct {
	FolderID string `json:"folderId"`
}

type TextRequest struct {
	Text string `json:"text"`
}

type TaskResponse struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	Completed    bool       `json:"completed"`
	DueDate      *time.Time `json:"dueDate"`
	Priority     string     `json:"priority,omitempty"`
	FolderID     string     `json:"folderId,omitempty"`
	ParentTaskID string     `json:"parentTaskId,omitempty"`
	IsOverdue    bool       `json:"isOverdue"`
	// только у задач верхнего уровня
	Subtasks *task.SubtaskStats `json:"subtasks,omitempty"`
}

type FolderResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	TaskCount int    `json:"taskCount"`
}

type FolderListResponse struct {
	Folders []FolderResponse `json:"folders"`
	// невыполненные задачи без папки
	NoFolderCount int `json:"noFolderCount"`
	Remaining     int `json:"remaining"`
}

type SessionResponse struct {
	service.State
	VisibleTasks []TaskResponse `json:"visibleTasks"`
	Remaining    int            `json:"remaining"`
}

// StatsFunc отдаёт прогресс подзадач по id родителя
type StatsFunc func(parentID string) task.SubtaskStats

// FromTask при stats == nil прогресс не заполняет
func FromTask(t task.Task, now time.Time, stats StatsFunc) TaskResponse {
	resp := TaskResponse{
		ID:           t.ID,
		Text:         t.Text,
		Completed:    t.Completed,
		DueDate:      t.DueDate,
		Priority:     string(t.Priority),
		FolderID:     t.FolderID,
		ParentTaskID: t.ParentTaskID,
		IsOverdue:    t.IsOverdue(now),
	}
	if stats != nil && t.IsTopLevel() {
		st := stats(t.ID)
		resp.Subtasks = &st
	}
	return resp
}

func FromTaskList(tasks []task.Task, now time.Time, stats StatsFunc) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now, stats)
	}
	return result
}

func FromFolder(f folder.Folder, count int) FolderResponse {
	return FolderResponse{
		ID:        f.ID,
		Name:      f.Name,
		Color:     f.Color,
		TaskCount: count,
	}
}

func FromFolderList(folders []folder.Folder, counts map[string]int, remaining int) FolderListResponse {
	result := make([]FolderResponse, len(folders))
	for i, f := range folders {
		result[i] = FromFolder(f, counts[f.ID])
	}
	return FolderListResponse{Folders: result, NoFolderCount: counts[""], Remaining: remaining}
}
