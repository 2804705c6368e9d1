package handlers

import (
	"net/http"
	"todoKeeper/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	// 0 - без ограничения
	RateLimit int
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.RateLimit > 0 {
		r.Use(middleware.RateLimit(opts.RateLimit))
	}

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.GetTasks)               // GET /tasks?folder=
		r.Post("/", h.PostTask)              // POST /tasks
		r.Get("/all", h.GetAllTasks)         // GET /tasks/all
		r.Get("/overdue", h.GetOverdueTasks) // GET /tasks/overdue

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTaskByID)       // GET /tasks/{id}
			r.Patch("/", h.PatchTask)       // PATCH /tasks/{id}
			r.Delete("/", h.DeleteTask)     // DELETE /tasks/{id}
			r.Post("/toggle", h.ToggleTask) // POST /tasks/{id}/toggle

			r.Get("/subtasks", h.GetSubtasks)  // GET /tasks/{id}/subtasks
			r.Post("/subtasks", h.PostSubtask) // POST /tasks/{id}/subtasks
		})
	})

	r.Route("/folders", func(r chi.Router) {
		r.Get("/", h.GetFolders)          // GET /folders
		r.Post("/", h.PostFolder)         // POST /folders
		r.Patch("/{id}", h.RenameFolder)  // PATCH /folders/{id}
		r.Delete("/{id}", h.DeleteFolder) // DELETE /folders/{id}
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Put("/folder", h.SelectFolder)
		r.Post("/expanded/{id}", h.ToggleExpanded)

		r.Post("/edit/task/{id}", h.StartEditTask)
		r.Put("/edit/task", h.SetEditText)
		r.Post("/edit/task/save", h.SaveEditTask)
		r.Delete("/edit/task", h.CancelEditTask)

		r.Post("/edit/folder/{id}", h.StartEditFolder)
		r.Put("/edit/folder", h.SetEditFolderText)
		r.Post("/edit/folder/save", h.SaveEditFolder)
		r.Delete("/edit/folder", h.CancelEditFolder)

		r.Post("/subtask/{id}", h.StartAddSubtask)
		r.Put("/subtask", h.SetNewSubtaskText)
		r.Post("/subtask/save", h.SaveSubtask)
		r.Delete("/subtask", h.CancelAddSubtask)
	})

	r.Get("/health", h.HealthCheck)

	return middleware.Tracing("todo-api")(r)
}
