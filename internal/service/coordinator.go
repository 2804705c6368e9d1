package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"todoKeeper/internal/logger"
	"todoKeeper/internal/models/folder"
	"todoKeeper/internal/models/task"
	repo "todoKeeper/internal/repository"

	"go.uber.org/zap"
)

// Coordinator связывает репозитории задач и папок и хранит состояние интерфейса:
// выбранную папку, буферы редактирования, раскрытые задачи и добавление подзадачи.
type Coordinator struct {
	tasks   TaskRepository
	folders FolderRepository

	mtx             sync.Mutex
	selectedFolder  string
	editingTaskID   string
	editText        string
	editingFolderID string
	editFolderText  string
	expanded        map[string]struct{}
	addingSubtaskTo string
	newSubtaskText  string
}

// State - снимок состояния интерфейса
type State struct {
	SelectedFolder  string   `json:"selectedFolder"`
	EditingTaskID   string   `json:"editingTaskId"`
	EditText        string   `json:"editText"`
	EditingFolderID string   `json:"editingFolderId"`
	EditFolderText  string   `json:"editFolderText"`
	ExpandedTasks   []string `json:"expandedTasks"`
	AddingSubtaskTo string   `json:"addingSubtaskTo"`
	NewSubtaskText  string   `json:"newSubtaskText"`
}

func NewCoordinator(tasks TaskRepository, folders FolderRepository) *Coordinator {
	return &Coordinator{
		tasks:    tasks,
		folders:  folders,
		expanded: make(map[string]struct{}),
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ---- задачи ----

func (c *Coordinator) Tasks() []task.Task {
	return c.tasks.Tasks()
}

func (c *Coordinator) Task(id string) (task.Task, error) {
	t, err := c.tasks.Get(id)
	return t, toBusinessError(err, ResourceTask, id)
}

func (c *Coordinator) AddTask(nt task.NewTask) (string, error) {
	if nt.FolderID != "" && !c.folders.Exists(nt.FolderID) {
		return "", NewNotFound(ResourceFolder, nt.FolderID, nil)
	}

	id, err := c.tasks.AddTask(nt)
	if err != nil {
		return "", toBusinessError(err, ResourceTask, "")
	}

	logger.Info("Service: Задача создана", zap.String("task_id", id), zap.String("folder_id", nt.FolderID))
	return id, nil
}

func (c *Coordinator) UpdateTask(id string, patch task.Patch) error {
	if patch.FolderID.Set && patch.FolderID.Value != "" && !c.folders.Exists(patch.FolderID.Value) {
		return NewNotFound(ResourceFolder, patch.FolderID.Value, nil)
	}
	return toBusinessError(c.tasks.UpdateTask(id, patch), ResourceTask, id)
}

// DeleteTask удаляет задачу с подзадачами и сбрасывает ссылающееся на них состояние
func (c *Coordinator) DeleteTask(id string) error {
	removed, err := c.tasks.DeleteTask(id)
	if err != nil {
		return toBusinessError(err, ResourceTask, id)
	}

	c.mtx.Lock()
	for _, removedID := range removed {
		delete(c.expanded, removedID)
		if c.editingTaskID == removedID {
			c.editingTaskID, c.editText = "", ""
		}
		if c.addingSubtaskTo == removedID {
			c.addingSubtaskTo, c.newSubtaskText = "", ""
		}
	}
	c.mtx.Unlock()

	logger.Info("Service: Задача удалена", zap.String("task_id", id), zap.Int("removed", len(removed)))
	return nil
}

func (c *Coordinator) ToggleComplete(id string) (bool, error) {
	completed, err := c.tasks.ToggleComplete(id)
	if err != nil {
		return false, toBusinessError(err, ResourceTask, id)
	}
	return completed, nil
}

func (c *Coordinator) AddSubtask(parentID, text string) (string, error) {
	id, err := c.tasks.AddSubtask(parentID, text)
	if err != nil {
		return "", toBusinessError(err, ResourceTask, parentID)
	}
	logger.Info("Service: Подзадача создана", zap.String("task_id", id), zap.String("parent_id", parentID))
	return id, nil
}

func (c *Coordinator) Subtasks(parentID string) []task.Task {
	return c.tasks.GetSubtasks(parentID)
}

func (c *Coordinator) HasSubtasks(id string) bool {
	return c.tasks.HasSubtasks(id)
}

func (c *Coordinator) SubtaskStats(parentID string) task.SubtaskStats {
	return c.tasks.GetSubtaskStats(parentID)
}

// RemainingCount - невыполненные задачи верхнего уровня во всех папках
func (c *Coordinator) RemainingCount() int {
	return c.tasks.GetRemainingCount()
}

func (c *Coordinator) FilteredTasks(folderID string) []task.Task {
	return c.tasks.GetFilteredTasks(folderID)
}

// VisibleTasks - задачи верхнего уровня выбранной папки
func (c *Coordinator) VisibleTasks() []task.Task {
	return c.tasks.GetFilteredTasks(c.SelectedFolder())
}

func (c *Coordinator) TaskCountForFolder(folderID string) int {
	return c.tasks.GetTaskCountForFolder(folderID)
}

func (c *Coordinator) Overdue(now time.Time) []task.Task {
	return c.tasks.GetOverdue(now)
}

func (c *Coordinator) SetDueDate(id string, dueDate *time.Time) error {
	return toBusinessError(c.tasks.SetDueDate(id, dueDate), ResourceTask, id)
}

func (c *Coordinator) SetPriority(id string, priority task.Priority) error {
	return toBusinessError(c.tasks.SetPriority(id, priority), ResourceTask, id)
}

func (c *Coordinator) MoveToFolder(id, folderID string) error {
	if folderID != "" && !c.folders.Exists(folderID) {
		return NewNotFound(ResourceFolder, folderID, nil)
	}
	return toBusinessError(c.tasks.MoveToFolder(id, folderID), ResourceTask, id)
}

// ---- папки ----

func (c *Coordinator) Folders() []folder.Folder {
	return c.folders.Folders()
}

func (c *Coordinator) Folder(id string) (folder.Folder, error) {
	f, err := c.folders.Get(id)
	return f, toBusinessError(err, ResourceFolder, id)
}

func (c *Coordinator) AddFolder(name string) (string, error) {
	id, err := c.folders.AddFolder(name)
	if err != nil {
		return "", toBusinessError(err, ResourceFolder, "")
	}
	logger.Info("Service: Папка создана", zap.String("folder_id", id))
	return id, nil
}

func (c *Coordinator) RenameFolder(id, name string) error {
	return toBusinessError(c.folders.RenameFolder(id, name), ResourceFolder, id)
}

// DeleteFolderCascade переносит задачи папки в "без папки", удаляет папку
// и сбрасывает выбор, если была выбрана эта папка
func (c *Coordinator) DeleteFolderCascade(folderID string) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.folders.Exists(folderID) {
		return NewNotFound(ResourceFolder, folderID, nil)
	}

	moved := c.tasks.ReassignFolder(folderID, "")
	if err := c.folders.DeleteFolder(folderID); err != nil {
		return toBusinessError(err, ResourceFolder, folderID)
	}

	if c.selectedFolder == folderID {
		c.selectedFolder = ""
	}
	if c.editingFolderID == folderID {
		c.editingFolderID, c.editFolderText = "", ""
	}

	logger.Info("Service: Папка удалена", zap.String("folder_id", folderID), zap.Int("moved_tasks", moved))
	return nil
}

// FolderCounts - невыполненные задачи верхнего уровня по папкам, ключ "" - без папки
func (c *Coordinator) FolderCounts() map[string]int {
	counts := map[string]int{"": c.tasks.GetTaskCountForFolder("")}
	for _, f := range c.folders.Folders() {
		counts[f.ID] = c.tasks.GetTaskCountForFolder(f.ID)
	}
	return counts
}

// ---- выбор папки ----

// SelectFolder - пустая строка выбирает задачи без папки
func (c *Coordinator) SelectFolder(folderID string) error {
	if folderID != "" && !c.folders.Exists(folderID) {
		return NewNotFound(ResourceFolder, folderID, nil)
	}
	c.mtx.Lock()
	c.selectedFolder = folderID
	c.mtx.Unlock()
	return nil
}

func (c *Coordinator) SelectedFolder() string {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.selectedFolder
}

// ---- редактирование задачи ----

func (c *Coordinator) StartEditTask(id string) error {
	t, err := c.tasks.Get(id)
	if err != nil {
		return toBusinessError(err, ResourceTask, id)
	}
	c.mtx.Lock()
	c.editingTaskID, c.editText = t.ID, t.Text
	c.mtx.Unlock()
	return nil
}

func (c *Coordinator) SetEditText(text string) {
	c.mtx.Lock()
	c.editText = text
	c.mtx.Unlock()
}

// SaveEditTask сохраняет буфер; пустой текст отклоняется и буфер остаётся
func (c *Coordinator) SaveEditTask() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.editingTaskID == "" {
		return NewNoActiveEdit("редактирование задачи")
	}
	if isBlank(c.editText) {
		return NewValidationError("text", "не может быть пустым", nil)
	}

	err := c.tasks.UpdateTask(c.editingTaskID, task.NewPatch(task.WithText(c.editText)))
	if err != nil {
		return toBusinessError(err, ResourceTask, c.editingTaskID)
	}
	c.editingTaskID, c.editText = "", ""
	return nil
}

func (c *Coordinator) CancelEditTask() {
	c.mtx.Lock()
	c.editingTaskID, c.editText = "", ""
	c.mtx.Unlock()
}

// ---- редактирование папки ----

func (c *Coordinator) StartEditFolder(id string) error {
	f, err := c.folders.Get(id)
	if err != nil {
		return toBusinessError(err, ResourceFolder, id)
	}
	c.mtx.Lock()
	c.editingFolderID, c.editFolderText = f.ID, f.Name
	c.mtx.Unlock()
	return nil
}

func (c *Coordinator) SetEditFolderText(text string) {
	c.mtx.Lock()
	c.editFolderText = text
	c.mtx.Unlock()
}

func (c *Coordinator) SaveEditFolder() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.editingFolderID == "" {
		return NewNoActiveEdit("редактирование папки")
	}
	if isBlank(c.editFolderText) {
		return NewValidationError("name", "не может быть пустым", nil)
	}

	if err := c.folders.RenameFolder(c.editingFolderID, c.editFolderText); err != nil {
		return toBusinessError(err, ResourceFolder, c.editingFolderID)
	}
	c.editingFolderID, c.editFolderText = "", ""
	return nil
}

func (c *Coordinator) CancelEditFolder() {
	c.mtx.Lock()
	c.editingFolderID, c.editFolderText = "", ""
	c.mtx.Unlock()
}

// ---- раскрытые задачи ----

// ToggleExpanded возвращает новое состояние
func (c *Coordinator) ToggleExpanded(id string) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, ok := c.expanded[id]; ok {
		delete(c.expanded, id)
		return false
	}
	c.expanded[id] = struct{}{}
	return true
}

func (c *Coordinator) IsExpanded(id string) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	_, ok := c.expanded[id]
	return ok
}

func (c *Coordinator) Expanded() []string {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.expandedLocked()
}

func (c *Coordinator) expandedLocked() []string {
	res := make([]string, 0, len(c.expanded))
	for id := range c.expanded {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}

// ---- добавление подзадачи ----

// StartAddSubtask занимает единственный слот добавления подзадачи.
// Подзадача родителем быть не может, поэтому слот для неё не открывается.
func (c *Coordinator) StartAddSubtask(parentID string) error {
	parent, err := c.tasks.Get(parentID)
	if err != nil {
		return toBusinessError(err, ResourceTask, parentID)
	}
	if parent.IsSubtask() {
		return toBusinessError(repo.ErrNestedSubtask, ResourceTask, parentID)
	}
	c.mtx.Lock()
	c.addingSubtaskTo = parentID
	c.mtx.Unlock()
	return nil
}

func (c *Coordinator) SetNewSubtaskText(text string) {
	c.mtx.Lock()
	c.newSubtaskText = text
	c.mtx.Unlock()
}

// SaveSubtask создаёт подзадачу из буфера и раскрывает родителя
func (c *Coordinator) SaveSubtask() (string, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.addingSubtaskTo == "" {
		return "", NewNoActiveEdit("добавление подзадачи")
	}
	if isBlank(c.newSubtaskText) {
		return "", NewValidationError("text", "не может быть пустым", nil)
	}

	parentID := c.addingSubtaskTo
	id, err := c.tasks.AddSubtask(parentID, c.newSubtaskText)
	if err != nil {
		return "", toBusinessError(err, ResourceTask, parentID)
	}

	c.addingSubtaskTo, c.newSubtaskText = "", ""
	c.expanded[parentID] = struct{}{}

	logger.Info("Service: Подзадача создана", zap.String("task_id", id), zap.String("parent_id", parentID))
	return id, nil
}

func (c *Coordinator) CancelAddSubtask() {
	c.mtx.Lock()
	c.addingSubtaskTo, c.newSubtaskText = "", ""
	c.mtx.Unlock()
}

// ---- общее ----

func (c *Coordinator) State() State {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return State{
		SelectedFolder:  c.selectedFolder,
		EditingTaskID:   c.editingTaskID,
		EditText:        c.editText,
		EditingFolderID: c.editingFolderID,
		EditFolderText:  c.editFolderText,
		ExpandedTasks:   c.expandedLocked(),
		AddingSubtaskTo: c.addingSubtaskTo,
		NewSubtaskText:  c.newSubtaskText,
	}
}

// PersistenceErrors - последние ошибки чтения/записи хранилища
func (c *Coordinator) PersistenceErrors() error {
	var errs []error
	if err := c.tasks.Err(); err != nil {
		errs = append(errs, fmt.Errorf("задачи: %w", err))
	}
	if err := c.folders.Err(); err != nil {
		errs = append(errs, fmt.Errorf("папки: %w", err))
	}
	return errors.Join(errs...)
}

// Flush немедленно записывает отложенные изменения
func (c *Coordinator) Flush() error {
	return errors.Join(c.tasks.Flush(), c.folders.Flush())
}
