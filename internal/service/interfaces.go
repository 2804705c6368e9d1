package service

import (
	"time"
	"todoKeeper/internal/models/folder"
	"todoKeeper/internal/models/task"
)

type TaskRepository interface {
	Tasks() []task.Task
	Get(id string) (task.Task, error)
	AddTask(nt task.NewTask) (string, error)
	UpdateTask(id string, patch task.Patch) error
	DeleteTask(id string) ([]string, error)
	ToggleComplete(id string) (bool, error)
	AddSubtask(parentID, text string) (string, error)
	GetSubtasks(parentID string) []task.Task
	HasSubtasks(id string) bool
	GetSubtaskStats(parentID string) task.SubtaskStats
	GetRemainingCount() int
	GetFilteredTasks(folderID string) []task.Task
	GetTaskCountForFolder(folderID string) int
	GetOverdue(now time.Time) []task.Task
	SetDueDate(id string, dueDate *time.Time) error
	SetPriority(id string, priority task.Priority) error
	MoveToFolder(id, folderID string) error
	ReassignFolder(from, to string) int
	Err() error
	Flush() error
}

type FolderRepository interface {
	Folders() []folder.Folder
	Get(id string) (folder.Folder, error)
	Exists(id string) bool
	AddFolder(name string) (string, error)
	UpdateFolder(id string, patch folder.Patch) error
	RenameFolder(id, name string) error
	DeleteFolder(id string) error
	Err() error
	Flush() error
}
