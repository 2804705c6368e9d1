package task

import (
	"encoding/json"
	"strings"
	"time"
)

// формат, в котором дата сохраняется в хранилище (как Date.toJSON)
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

var reviveLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type taskJSON struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Completed    bool     `json:"completed"`
	DueDate      *string  `json:"dueDate,omitempty"`
	Priority     Priority `json:"priority,omitempty"`
	FolderID     string   `json:"folderId,omitempty"`
	ParentTaskID string   `json:"parentTaskId,omitempty"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	raw := taskJSON{
		ID:           t.ID,
		Text:         t.Text,
		Completed:    t.Completed,
		Priority:     t.Priority,
		FolderID:     t.FolderID,
		ParentTaskID: t.ParentTaskID,
	}
	if t.DueDate != nil {
		s := t.DueDate.UTC().Format(DateLayout)
		raw.DueDate = &s
	}
	return json.Marshal(raw)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = Task{
		ID:           raw.ID,
		Text:         raw.Text,
		Completed:    raw.Completed,
		Priority:     raw.Priority,
		FolderID:     raw.FolderID,
		ParentTaskID: raw.ParentTaskID,
	}
	if raw.DueDate != nil {
		t.DueDate = ReviveDate(*raw.DueDate)
	}
	return nil
}

// ReviveDate восстанавливает дату из строки; нераспознанная строка даёт nil
func ReviveDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range reviveLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return &parsed
		}
	}
	return nil
}
