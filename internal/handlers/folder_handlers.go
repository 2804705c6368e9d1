package handlers

import (
	"net/http"
	"todoKeeper/internal/handlers/dto"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetFolders(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, dto.FromFolderList(h.Service.Folders(), h.Service.FolderCounts(), h.Service.RemainingCount()))
}

func (h *Handler) PostFolder(w http.ResponseWriter, r *http.Request) {
	var request dto.FolderRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	id, err := h.Service.AddFolder(request.Name)
	if err != nil {
		handleError(w, r, err, "create_folder")
		return
	}
	h.respondFolder(w, r, id, http.StatusCreated)
}

func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var request dto.FolderRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if err := h.Service.RenameFolder(id, request.Name); err != nil {
		handleError(w, r, err, "rename_folder")
		return
	}
	h.respondFolder(w, r, id, http.StatusOK)
}

// DeleteFolder переносит задачи папки в "без папки"
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteFolderCascade(chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err, "delete_folder")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondFolder(w http.ResponseWriter, r *http.Request, id string, code int) {
	f, err := h.Service.Folder(id)
	if err != nil {
		handleError(w, r, err, "get_folder")
		return
	}
	responseWithBody(w, code, dto.FromFolder(f, h.Service.FolderCounts()[id]))
}
