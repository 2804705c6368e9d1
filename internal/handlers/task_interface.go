package handlers

import (
	"time"
	"todoKeeper/internal/models/folder"
	"todoKeeper/internal/models/task"
	"todoKeeper/internal/service"
)

// Service - операции координатора, которые нужны HTTP слою
type Service interface {
	Tasks() []task.Task
	Task(id string) (task.Task, error)
	AddTask(nt task.NewTask) (string, error)
	UpdateTask(id string, patch task.Patch) error
	DeleteTask(id string) error
	ToggleComplete(id string) (bool, error)
	AddSubtask(parentID, text string) (string, error)
	Subtasks(parentID string) []task.Task
	FilteredTasks(folderID string) []task.Task
	VisibleTasks() []task.Task
	Overdue(now time.Time) []task.Task
	SubtaskStats(parentID string) task.SubtaskStats
	RemainingCount() int

	Folders() []folder.Folder
	Folder(id string) (folder.Folder, error)
	AddFolder(name string) (string, error)
	RenameFolder(id, name string) error
	DeleteFolderCascade(folderID string) error
	FolderCounts() map[string]int

	SelectFolder(folderID string) error
	ToggleExpanded(id string) bool

	StartEditTask(id string) error
	SetEditText(text string)
	SaveEditTask() error
	CancelEditTask()

	StartEditFolder(id string) error
	SetEditFolderText(text string)
	SaveEditFolder() error
	CancelEditFolder()

	StartAddSubtask(parentID string) error
	SetNewSubtaskText(text string)
	SaveSubtask() (string, error)
	CancelAddSubtask()

	State() service.State
	PersistenceErrors() error
}

var _ Service = (*service.Coordinator)(nil)
