package handlers

import (
	"net/http"
	"time"
	"todoKeeper/internal/handlers/dto"
	"todoKeeper/internal/logger"
	"todoKeeper/internal/models/task"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GetTasks - задачи верхнего уровня папки из ?folder=, без параметра - выбранной папки
func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var tasks []task.Task
	if query.Has("folder") {
		tasks = h.Service.FilteredTasks(query.Get("folder"))
	} else {
		tasks = h.Service.VisibleTasks()
	}

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks, h.now(), h.Service.SubtaskStats))
}

func (h *Handler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, dto.FromTaskList(h.Service.Tasks(), h.now(), h.Service.SubtaskStats))
}

func (h *Handler) GetOverdueTasks(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	responseWithBody(w, http.StatusOK, dto.FromTaskList(h.Service.Overdue(now), now, h.Service.SubtaskStats))
}

func (h *Handler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	dueDate, ok := parseDueDate(request.DueDate)
	if !ok {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "dueDate"),
			zap.String("error", "wrong_value"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверный формат dueDate")
		return
	}

	id, err := h.Service.AddTask(task.NewTask{
		Text:     request.Text,
		DueDate:  dueDate,
		Priority: task.Priority(request.Priority),
		FolderID: request.FolderID,
	})
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	h.respondTask(w, r, id, http.StatusCreated)
	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)))
}

func (h *Handler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	h.respondTask(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) PatchTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	var options []task.PatchOption
	if request.Text != nil {
		options = append(options, task.WithText(*request.Text))
	}
	if request.Completed != nil {
		options = append(options, task.WithCompleted(*request.Completed))
	}
	if request.DueDate.Set {
		dueDate, ok := parseDueDate(request.DueDate.Value)
		if !ok {
			responseWithError(w, http.StatusBadRequest, "неверный формат dueDate")
			return
		}
		options = append(options, task.WithDueDate(dueDate))
	}
	if request.Priority != nil {
		options = append(options, task.WithPriority(task.Priority(*request.Priority)))
	}
	if request.FolderID != nil {
		options = append(options, task.WithFolder(*request.FolderID))
	}

	if err := h.Service.UpdateTask(id, task.NewPatch(options...)); err != nil {
		handleError(w, r, err, "update_task")
		return
	}
	h.respondTask(w, r, id, http.StatusOK)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.DeleteTask(id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.Service.ToggleComplete(id); err != nil {
		handleError(w, r, err, "toggle_task")
		return
	}
	h.respondTask(w, r, id, http.StatusOK)
}

func (h *Handler) GetSubtasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.Service.Task(id); err != nil {
		handleError(w, r, err, "get_subtasks")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTaskList(h.Service.Subtasks(id), h.now(), h.Service.SubtaskStats))
}

func (h *Handler) PostSubtask(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "id")

	var request dto.CreateSubtaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	id, err := h.Service.AddSubtask(parentID, request.Text)
	if err != nil {
		handleError(w, r, err, "create_subtask")
		return
	}
	h.respondTask(w, r, id, http.StatusCreated)
}

func (h *Handler) respondTask(w http.ResponseWriter, r *http.Request, id string, code int) {
	t, err := h.Service.Task(id)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}
	responseWithBody(w, code, dto.FromTask(t, h.now(), h.Service.SubtaskStats))
}
