package task

import (
	"time"
)

// Field - необязательное поле патча; Set=false означает "не менять"
type Field[T any] struct {
	Set   bool
	Value T
}

func Some[T any](value T) Field[T] {
	return Field[T]{Set: true, Value: value}
}

func (f Field[T]) apply(target *T) {
	if f.Set {
		*target = f.Value
	}
}

// Patch - частичное обновление задачи. ID и ParentTaskID не изменяются.
type Patch struct {
	Text      Field[string]
	Completed Field[bool]
	DueDate   Field[*time.Time]
	Priority  Field[Priority]
	FolderID  Field[string]
}

// Apply возвращает копию задачи с применёнными полями
func (p Patch) Apply(t Task) Task {
	p.Text.apply(&t.Text)
	p.Completed.apply(&t.Completed)
	if p.DueDate.Set {
		t.DueDate = copyTime(p.DueDate.Value)
	}
	p.Priority.apply(&t.Priority)
	p.FolderID.apply(&t.FolderID)
	return t
}

func (p Patch) IsEmpty() bool {
	return !p.Text.Set && !p.Completed.Set && !p.DueDate.Set && !p.Priority.Set && !p.FolderID.Set
}

type PatchOption func(*Patch)

func NewPatch(options ...PatchOption) Patch {
	var p Patch
	for _, opt := range options {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

func WithText(text string) PatchOption {
	return func(p *Patch) {
		p.Text = Some(text)
	}
}

func WithCompleted(completed bool) PatchOption {
	return func(p *Patch) {
		p.Completed = Some(completed)
	}
}

// nil снимает срок
func WithDueDate(dueDate *time.Time) PatchOption {
	return func(p *Patch) {
		p.DueDate = Some(copyTime(dueDate))
	}
}

// PriorityNone снимает приоритет
func WithPriority(priority Priority) PatchOption {
	return func(p *Patch) {
		p.Priority = Some(priority)
	}
}

// пустая строка переносит задачу в "без папки"
func WithFolder(folderID string) PatchOption {
	return func(p *Patch) {
		p.FolderID = Some(folderID)
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
