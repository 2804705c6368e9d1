package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"todoKeeper/internal/handlers"
	"todoKeeper/internal/handlers/dto"
	"todoKeeper/internal/models/folder"
	"todoKeeper/internal/models/task"
	"todoKeeper/internal/persist"
	"todoKeeper/internal/repository/folders"
	"todoKeeper/internal/repository/tasks"
	"todoKeeper/internal/service"
	"todoKeeper/internal/storage"
	"todoKeeper/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type failingStore struct {
	*inmemory.Store
}

func (s failingStore) SetItem(ctx context.Context, key, value string) error {
	return errors.New("disk full")
}

type testServer struct {
	coordinator *service.Coordinator
	router      http.Handler
}

func newTestServer(t *testing.T, store storage.Store) *testServer {
	t.Helper()

	ctx := context.Background()
	opts := persist.Options{Debounce: time.Hour}
	taskRepo := tasks.New(persist.Load(ctx, store, "todoApp.tasks", []task.Task{}, opts))
	folderRepo := folders.New(persist.Load(ctx, store, "todoApp.folders", []folder.Folder{}, opts))
	coordinator := service.NewCoordinator(taskRepo, folderRepo)

	h := handlers.NewHandler(coordinator, handlers.WithClock(func() time.Time { return fixedNow }))
	return &testServer{
		coordinator: coordinator,
		router:      handlers.NewRouter(h, handlers.RouterOptions{}),
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["error"].(string)
}

func TestHandler_HealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(t, inmemory.NewStore())

		w := s.do(t, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "todo-keeper")
	})

	t.Run("degraded after failed write", func(t *testing.T) {
		s := newTestServer(t, failingStore{inmemory.NewStore()})
		_, err := s.coordinator.AddTask(task.NewTask{Text: "a"})
		require.NoError(t, err)
		require.Error(t, s.coordinator.Flush())

		w := s.do(t, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "disk full")
	})
}

func TestHandler_PostTask(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		contentType    string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "success",
			body:           `{"text": "Report", "priority": "high", "dueDate": "2024-02-01"}`,
			contentType:    "application/json",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "blank text",
			body:           `{"text": "   "}`,
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:           "invalid priority",
			body:           `{"text": "a", "priority": "urgent"}`,
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:           "unknown folder",
			body:           `{"text": "a", "folderId": "missing"}`,
			contentType:    "application/json",
			expectedStatus: http.StatusNotFound,
			expectedError:  service.CodeNotFound,
		},
		{
			name:           "bad due date",
			body:           `{"text": "a", "dueDate": "tomorrow-ish"}`,
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid content type",
			body:           `{}`,
			contentType:    "text/plain",
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "invalid JSON",
			body:           `{invalid json}`,
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, inmemory.NewStore())

			req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				response := decode[dto.TaskResponse](t, w)
				assert.Equal(t, "Report", response.Text)
				assert.Equal(t, "high", response.Priority)
				assert.True(t, response.IsOverdue)
				assert.Len(t, s.coordinator.Tasks(), 1)
			} else {
				assert.Empty(t, s.coordinator.Tasks())
			}
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(t, w))
			}
		})
	}
}

func TestHandler_GetTasksByFolder(t *testing.T) {
	s := newTestServer(t, inmemory.NewStore())
	work, _ := s.coordinator.AddFolder("Work")
	_, _ = s.coordinator.AddTask(task.NewTask{Text: "inbox"})
	_, _ = s.coordinator.AddTask(task.NewTask{Text: "report", FolderID: work})

	w := s.do(t, http.MethodGet, "/tasks?folder="+work, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]dto.TaskResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "report", list[0].Text)

	w = s.do(t, http.MethodGet, "/tasks", "")
	list = decode[[]dto.TaskResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "inbox", list[0].Text, "без параметра - выбранная папка")

	w = s.do(t, http.MethodGet, "/tasks/all", "")
	assert.Len(t, decode[[]dto.TaskResponse](t, w), 2)
}

func TestHandler_PatchTask(t *testing.T) {
	s := newTestServer(t, inmemory.NewStore())
	due := fixedNow.Add(-time.Hour)
	id, err := s.coordinator.AddTask(task.NewTask{Text: "a", DueDate: &due, Priority: task.PriorityLow})
	require.NoError(t, err)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/tasks/"+id, `{"text": "b"}`)

		require.Equal(t, http.StatusOK, w.Code)
		response := decode[dto.TaskResponse](t, w)
		assert.Equal(t, "b", response.Text)
		assert.Equal(t, "low", response.Priority)
		require.NotNil(t, response.DueDate)
		assert.True(t, due.Equal(*response.DueDate))
	})

	t.Run("null clears due date", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/tasks/"+id, `{"dueDate": null}`)

		require.Equal(t, http.StatusOK, w.Code)
		response := decode[dto.TaskResponse](t, w)
		assert.Nil(t, response.DueDate)
		assert.False(t, response.IsOverdue)
	})

	t.Run("blank text rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/tasks/"+id, `{"text": ""}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		got, _ := s.coordinator.Task(id)
		assert.Equal(t, "b", got.Text)
	})

	t.Run("unknown task", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/tasks/missing", `{"text": "x"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, service.CodeNotFound, errorCode(t, w))
	})
}

func TestHandler_DeleteTask(t *testing.T) {
	s := newTestServer(t, inmemory.NewStore())
	parent, _ := s.coordinator.AddTask(task.NewTask{Text: "a"})
	_, _ = s.coordinator.AddSubtask(parent, "b")

	w := s.do(t, http.MethodDelete, "/tasks/"+parent, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, s.coordinator.Tasks(), "подзадачи удаляются вместе с родителем")

	w = s.do(t, http.MethodDelete, "/tasks/"+parent, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ToggleAndSubtasks(t *testing.T) {
	s := newTestServer(t, inmemory.NewStore())
	parent, _ := s.coordinator.AddTask(task.NewTask{Text: "Report"})

	w := s.do(t, http.MethodPost, "/tasks/"+parent+"/subtasks", `{"text": "Draft"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sub := decode[dto.TaskResponse](t, w)
	assert.Equal(t, parent, sub.ParentTaskID)

	w = s.do(t, http.MethodPost, "/tasks/"+sub.ID+"/subtasks", `{"text": "Deeper"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, service.CodeNestedSubtask, errorCode(t, w))

	_, _ = s.coordinator.AddSubtask(parent, "Review")
	_, _ = s.coordinator.AddSubtask(parent, "Send")
	_, err := s.coordinator.ToggleComplete(sub.ID)
	require.NoError(t, err)

	w = s.do(t, http.MethodGet, "/tasks/all", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]dto.TaskResponse](t, w)
	require.Len(t, all, 4)
	for _, got := range all {
		if got.ID != parent {
			assert.Nil(t, got.Subtasks, "у подзадачи нет прогресса")
			continue
		}
		require.NotNil(t, got.Subtasks)
		assert.Equal(t, task.SubtaskStats{Total: 3, Completed: 1, Percentage: 33}, *got.Subtasks)
	}

	w = s.do(t, http.MethodPost, "/tasks/"+parent+"/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	toggled := decode[dto.TaskResponse](t, w)
	assert.True(t, toggled.Completed)
	require.NotNil(t, toggled.Subtasks)
	assert.Equal(t, 100, toggled.Subtasks.Percentage)

	w = s.do(t, http.MethodGet, "/tasks/"+parent+"/subtasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	subs := decode[[]dto.TaskResponse](t, w)
	require.Len(t, subs, 3)
	for _, got := range subs {
		assert.True(t, got.Completed)
	}

	w = s.do(t, http.MethodGet, "/tasks/missing/subtasks", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GetOverdueTasks(t *testing.T) {
	s := newTestServer(t, inmemory.NewStore())
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)
	_, _ = s.coordinator.AddTask(task.NewTask{Text: "late", DueDate: &past})
	_, _ = s.coordinator.AddTask(task.NewTask{Text: "soon", DueDate: &future})

	w := s.do(t, http.MethodGet, "/tasks/overdue", "")

	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]dto.TaskResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "late", list[0].Text)
	assert.True(t, list[0].IsOverdue)
}

func TestHandler_Folders(t *testing.T) {
	s := newTestServer(t, inmemory.NewStore())

	w := s.do(t, http.MethodPost, "/folders", `{"name": "Work"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[dto.FolderResponse](t, w)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, created.Color)

	taskID, _ := s.coordinator.AddTask(task.NewTask{Text: "Report", FolderID: created.ID})
	_, _ = s.coordinator.AddTask(task.NewTask{Text: "inbox"})

	w = s.do(t, http.MethodGet, "/folders", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.FolderListResponse](t, w)
	require.Len(t, list.Folders, 1)
	assert.Equal(t, 1, list.Folders[0].TaskCount)
	assert.Equal(t, 1, list.NoFolderCount)
	assert.Equal(t, 2, list.Remaining)

	w = s.do(t, http.MethodPatch, "/folders/"+created.ID, `{"name": " "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/folders/"+created.ID, `{"name": "Office"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Office", decode[dto.FolderResponse](t, w).Name)

	w = s.do(t, http.MethodDelete, "/folders/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	got, err := s.coordinator.Task(taskID)
	require.NoError(t, err)
	assert.Empty(t, got.FolderID)

	w = s.do(t, http.MethodDelete, "/folders/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_SessionEditFlow(t *testing.T) {
	s := newTestServer(t, inmemory.NewStore())
	id, _ := s.coordinator.AddTask(task.NewTask{Text: "Report"})

	w := s.do(t, http.MethodPost, "/session/edit/task/save", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, service.CodeNoActiveEdit, errorCode(t, w))

	w = s.do(t, http.MethodPost, "/session/edit/task/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	session := decode[dto.SessionResponse](t, w)
	assert.Equal(t, id, session.EditingTaskID)
	assert.Equal(t, "Report", session.EditText)

	w = s.do(t, http.MethodPut, "/session/edit/task", `{"text": "Final"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/session/edit/task/save", "")
	require.Equal(t, http.StatusOK, w.Code)
	session = decode[dto.SessionResponse](t, w)
	assert.Empty(t, session.EditingTaskID)
	require.Len(t, session.VisibleTasks, 1)
	assert.Equal(t, "Final", session.VisibleTasks[0].Text)
}

func TestHandler_SessionSubtaskSlot(t *testing.T) {
	s := newTestServer(t, inmemory.NewStore())
	parent, _ := s.coordinator.AddTask(task.NewTask{Text: "Report"})

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/session/subtask/"+parent, "").Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/session/subtask", `{"text": "Draft"}`).Code)

	w := s.do(t, http.MethodPost, "/session/subtask/save", "")
	require.Equal(t, http.StatusOK, w.Code)
	session := decode[dto.SessionResponse](t, w)
	assert.Empty(t, session.AddingSubtaskTo)
	assert.Equal(t, []string{parent}, session.ExpandedTasks)
	assert.Equal(t, 1, session.Remaining)
	require.Len(t, session.VisibleTasks, 1)
	require.NotNil(t, session.VisibleTasks[0].Subtasks)
	assert.Equal(t, 1, session.VisibleTasks[0].Subtasks.Total)

	sub := s.coordinator.Subtasks(parent)
	require.Len(t, sub, 1)

	w = s.do(t, http.MethodPost, "/session/subtask/"+sub[0].ID, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, service.CodeNestedSubtask, errorCode(t, w))
}

func TestHandler_SessionSelectFolder(t *testing.T) {
	s := newTestServer(t, inmemory.NewStore())
	work, _ := s.coordinator.AddFolder("Work")
	_, _ = s.coordinator.AddTask(task.NewTask{Text: "report", FolderID: work})

	w := s.do(t, http.MethodPut, "/session/folder", `{"folderId": "missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/session/folder", `{"folderId": "`+work+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	session := decode[dto.SessionResponse](t, w)
	assert.Equal(t, work, session.SelectedFolder)
	require.Len(t, session.VisibleTasks, 1)

	w = s.do(t, http.MethodPost, "/session/expanded/abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"abc"}, decode[dto.SessionResponse](t, w).ExpandedTasks)
}
