package service

import (
	"errors"
	"fmt"
	repo "todoKeeper/internal/repository"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

const CodeNotFound = "NOT_FOUND"
const CodeValidation = "VALIDATION_ERROR"
const CodeNoActiveEdit = "NO_ACTIVE_EDIT"
const CodeNestedSubtask = "NESTED_SUBTASK"

var ErrNoActiveEdit = errors.New("нет активного редактирования")

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewNotFound(resource Resource, id string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
		Err: err,
	}
}

func NewValidationError(field, reason string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
		Err: err,
	}
}

func NewNoActiveEdit(what string) *BusinessError {
	return &BusinessError{
		Code:    CodeNoActiveEdit,
		Message: fmt.Sprintf("%s: нечего сохранять", what),
		Details: map[string]any{"edit": what},
		Err:     ErrNoActiveEdit,
	}
}

type Resource string

const ResourceTask Resource = "задача"
const ResourceFolder Resource = "папка"

// toBusinessError переводит ошибки репозитория в бизнес-ошибки
func toBusinessError(err error, resource Resource, id string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, repo.ErrNotFound):
		return NewNotFound(resource, id, err)
	case errors.Is(err, repo.ErrParentNotFound):
		return NewNotFound(ResourceTask, id, err)
	case errors.Is(err, repo.ErrEmptyText):
		field := "text"
		if resource == ResourceFolder {
			field = "name"
		}
		return NewValidationError(field, "не может быть пустым", err)
	case errors.Is(err, repo.ErrInvalidPriority):
		return NewValidationError("priority", "допустимы low, medium, high", err)
	case errors.Is(err, repo.ErrNestedSubtask):
		return &BusinessError{
			Code:    CodeNestedSubtask,
			Message: "поддерживается только один уровень подзадач",
			Details: map[string]any{"parent_id": id},
			Err:     err,
		}
	}
	return fmt.Errorf("%s %s: %w", resource, id, err)
}
