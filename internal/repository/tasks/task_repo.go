package tasks

import (
	"strings"
	"time"
	"todoKeeper/internal/logger"
	"todoKeeper/internal/models/task"
	repo "todoKeeper/internal/repository"
	"todoKeeper/internal/persist"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository - единственный владелец коллекции задач.
// Коллекция не меняется на месте: каждая мутация строит новый срез.
type Repository struct {
	data  *persist.Adapter[[]task.Task]
	newID func() string
}

type Option func(*Repository)

func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) {
		r.newID = gen
	}
}

func New(data *persist.Adapter[[]task.Task], options ...Option) *Repository {
	r := &Repository{
		data:  data,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Tasks - копия коллекции в порядке хранения (новые первыми)
func (r *Repository) Tasks() []task.Task {
	current := r.data.Value()
	res := make([]task.Task, len(current))
	copy(res, current)
	return res
}

func (r *Repository) Get(id string) (task.Task, error) {
	for _, t := range r.data.Value() {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, repo.ErrNotFound
}

func (r *Repository) AddTask(nt task.NewTask) (string, error) {
	if isBlank(nt.Text) {
		return "", repo.ErrEmptyText
	}
	if !nt.Priority.Valid() {
		return "", repo.ErrInvalidPriority
	}

	created := task.Task{
		ID:        r.newID(),
		Text:      nt.Text,
		Completed: nt.Completed,
		Priority:  nt.Priority,
		FolderID:  nt.FolderID,
	}
	if nt.DueDate != nil {
		due := *nt.DueDate
		created.DueDate = &due
	}

	r.data.Update(func(current []task.Task) ([]task.Task, bool) {
		return prepend(current, created), true
	})

	logger.Debug("Repository: Задача создана", zap.String("task_id", created.ID))
	return created.ID, nil
}

// UpdateTask сливает патч с задачей; для неизвестного id ничего не меняет
func (r *Repository) UpdateTask(id string, patch task.Patch) error {
	if patch.Text.Set && isBlank(patch.Text.Value) {
		return repo.ErrEmptyText
	}
	if patch.Priority.Set && !patch.Priority.Value.Valid() {
		return repo.ErrInvalidPriority
	}

	found := false
	r.data.Update(func(current []task.Task) ([]task.Task, bool) {
		idx := indexOf(current, id)
		if idx < 0 {
			return current, false
		}
		found = true
		next := clone(current)
		next[idx] = patch.Apply(next[idx])
		return next, true
	})

	if !found {
		return repo.ErrNotFound
	}
	return nil
}

// DeleteTask удаляет задачу и её подзадачи, возвращает id всех удалённых
func (r *Repository) DeleteTask(id string) ([]string, error) {
	var removed []string
	r.data.Update(func(current []task.Task) ([]task.Task, bool) {
		if indexOf(current, id) < 0 {
			return current, false
		}
		next := make([]task.Task, 0, len(current))
		for _, t := range current {
			if t.ID == id || t.ParentTaskID == id {
				removed = append(removed, t.ID)
				continue
			}
			next = append(next, t)
		}
		return next, true
	})

	if len(removed) == 0 {
		return nil, repo.ErrNotFound
	}
	logger.Debug("Repository: Задача удалена", zap.String("task_id", id), zap.Int("removed", len(removed)))
	return removed, nil
}

// ToggleComplete переключает выполнение. Если задача становится выполненной,
// все её подзадачи тоже отмечаются выполненными; обратное не действует.
func (r *Repository) ToggleComplete(id string) (bool, error) {
	var completed, found bool
	r.data.Update(func(current []task.Task) ([]task.Task, bool) {
		idx := indexOf(current, id)
		if idx < 0 {
			return current, false
		}
		found = true
		next := clone(current)
		completed = !next[idx].Completed
		next[idx].Completed = completed

		if completed && next[idx].IsTopLevel() {
			for i := range next {
				if next[i].ParentTaskID == id {
					next[i].Completed = true
				}
			}
		}
		return next, true
	})

	if !found {
		return false, repo.ErrNotFound
	}
	return completed, nil
}

// AddSubtask создаёт подзадачу с папкой родителя на момент создания
func (r *Repository) AddSubtask(parentID, text string) (string, error) {
	if isBlank(text) {
		return "", repo.ErrEmptyText
	}

	var id string
	var err error
	r.data.Update(func(current []task.Task) ([]task.Task, bool) {
		idx := indexOf(current, parentID)
		if idx < 0 {
			err = repo.ErrParentNotFound
			return current, false
		}
		parent := current[idx]
		if parent.IsSubtask() {
			err = repo.ErrNestedSubtask
			return current, false
		}

		id = r.newID()
		return prepend(current, task.Task{
			ID:           id,
			Text:         text,
			ParentTaskID: parentID,
			FolderID:     parent.FolderID,
		}), true
	})

	if err != nil {
		return "", err
	}
	logger.Debug("Repository: Подзадача создана", zap.String("task_id", id), zap.String("parent_id", parentID))
	return id, nil
}

func (r *Repository) GetSubtasks(parentID string) []task.Task {
	current := r.data.Value()
	res := []task.Task{}

	if idx := indexOf(current, parentID); idx >= 0 && current[idx].IsSubtask() {
		return res
	}
	for _, t := range current {
		if t.ParentTaskID == parentID {
			res = append(res, t)
		}
	}
	return res
}

func (r *Repository) HasSubtasks(id string) bool {
	return len(r.GetSubtasks(id)) > 0
}

func (r *Repository) GetSubtaskStats(parentID string) task.SubtaskStats {
	return task.StatsOf(r.GetSubtasks(parentID))
}

// GetRemainingCount - число невыполненных задач верхнего уровня во всех папках
func (r *Repository) GetRemainingCount() int {
	count := 0
	for _, t := range r.data.Value() {
		if t.IsTopLevel() && !t.Completed {
			count++
		}
	}
	return count
}

// GetFilteredTasks - задачи верхнего уровня в папке; пустой folderID - задачи без папки
func (r *Repository) GetFilteredTasks(folderID string) []task.Task {
	res := []task.Task{}
	for _, t := range r.data.Value() {
		if t.IsTopLevel() && t.FolderID == folderID {
			res = append(res, t)
		}
	}
	return res
}

// GetTaskCountForFolder - число невыполненных задач верхнего уровня в папке
func (r *Repository) GetTaskCountForFolder(folderID string) int {
	count := 0
	for _, t := range r.data.Value() {
		if t.IsTopLevel() && !t.Completed && t.FolderID == folderID {
			count++
		}
	}
	return count
}

func (r *Repository) GetOverdue(now time.Time) []task.Task {
	res := []task.Task{}
	for _, t := range r.data.Value() {
		if t.IsOverdue(now) {
			res = append(res, t)
		}
	}
	return res
}

// nil снимает срок
func (r *Repository) SetDueDate(id string, dueDate *time.Time) error {
	return r.UpdateTask(id, task.NewPatch(task.WithDueDate(dueDate)))
}

func (r *Repository) SetPriority(id string, priority task.Priority) error {
	return r.UpdateTask(id, task.NewPatch(task.WithPriority(priority)))
}

// пустой folderID - "без папки"
func (r *Repository) MoveToFolder(id, folderID string) error {
	return r.UpdateTask(id, task.NewPatch(task.WithFolder(folderID)))
}

// ReassignFolder переносит все задачи (включая подзадачи) из папки from в to
func (r *Repository) ReassignFolder(from, to string) int {
	if from == "" || from == to {
		return 0
	}
	moved := 0
	r.data.Update(func(current []task.Task) ([]task.Task, bool) {
		var next []task.Task
		for i, t := range current {
			if t.FolderID != from {
				continue
			}
			if next == nil {
				next = clone(current)
			}
			next[i].FolderID = to
			moved++
		}
		if next == nil {
			return current, false
		}
		return next, true
	})
	return moved
}

func (r *Repository) Err() error {
	return r.data.Err()
}

func (r *Repository) Flush() error {
	return r.data.Flush()
}

func indexOf(tasks []task.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clone(tasks []task.Task) []task.Task {
	next := make([]task.Task, len(tasks))
	copy(next, tasks)
	return next
}

func prepend(tasks []task.Task, t task.Task) []task.Task {
	next := make([]task.Task, 0, len(tasks)+1)
	next = append(next, t)
	return append(next, tasks...)
}
