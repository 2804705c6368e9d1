package handlers

import (
	"net/http"
	"todoKeeper/internal/handlers/dto"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respondSession(w)
}

func (h *Handler) SelectFolder(w http.ResponseWriter, r *http.Request) {
	var request dto.SelectFolderRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if err := h.Service.SelectFolder(request.FolderID); err != nil {
		handleError(w, r, err, "select_folder")
		return
	}
	h.respondSession(w)
}

func (h *Handler) ToggleExpanded(w http.ResponseWriter, r *http.Request) {
	h.Service.ToggleExpanded(chi.URLParam(r, "id"))
	h.respondSession(w)
}

func (h *Handler) StartEditTask(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "start_edit_task", func() error {
		return h.Service.StartEditTask(chi.URLParam(r, "id"))
	})
}

func (h *Handler) SetEditText(w http.ResponseWriter, r *http.Request) {
	h.sessionText(w, r, h.Service.SetEditText)
}

func (h *Handler) SaveEditTask(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "save_edit_task", h.Service.SaveEditTask)
}

func (h *Handler) CancelEditTask(w http.ResponseWriter, r *http.Request) {
	h.Service.CancelEditTask()
	h.respondSession(w)
}

func (h *Handler) StartEditFolder(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "start_edit_folder", func() error {
		return h.Service.StartEditFolder(chi.URLParam(r, "id"))
	})
}

func (h *Handler) SetEditFolderText(w http.ResponseWriter, r *http.Request) {
	h.sessionText(w, r, h.Service.SetEditFolderText)
}

func (h *Handler) SaveEditFolder(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "save_edit_folder", h.Service.SaveEditFolder)
}

func (h *Handler) CancelEditFolder(w http.ResponseWriter, r *http.Request) {
	h.Service.CancelEditFolder()
	h.respondSession(w)
}

func (h *Handler) StartAddSubtask(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "start_add_subtask", func() error {
		return h.Service.StartAddSubtask(chi.URLParam(r, "id"))
	})
}

func (h *Handler) SetNewSubtaskText(w http.ResponseWriter, r *http.Request) {
	h.sessionText(w, r, h.Service.SetNewSubtaskText)
}

func (h *Handler) SaveSubtask(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "save_subtask", func() error {
		_, err := h.Service.SaveSubtask()
		return err
	})
}

func (h *Handler) CancelAddSubtask(w http.ResponseWriter, r *http.Request) {
	h.Service.CancelAddSubtask()
	h.respondSession(w)
}

func (h *Handler) sessionAction(w http.ResponseWriter, r *http.Request, operation string, action func() error) {
	if err := action(); err != nil {
		handleError(w, r, err, operation)
		return
	}
	h.respondSession(w)
}

func (h *Handler) sessionText(w http.ResponseWriter, r *http.Request, set func(string)) {
	var request dto.TextRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	set(request.Text)
	h.respondSession(w)
}

func (h *Handler) respondSession(w http.ResponseWriter) {
	responseWithBody(w, http.StatusOK, dto.SessionResponse{
		State:        h.Service.State(),
		VisibleTasks: dto.FromTaskList(h.Service.VisibleTasks(), h.now(), h.Service.SubtaskStats),
		Remaining:    h.Service.RemainingCount(),
	})
}
