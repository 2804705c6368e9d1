package repository

import "errors"

var ErrNotFound = errors.New("не найдено")
var ErrEmptyText = errors.New("пустой текст")
var ErrParentNotFound = errors.New("родительская задача не найдена")
var ErrNestedSubtask = errors.New("подзадача не может иметь своих подзадач")
var ErrInvalidPriority = errors.New("неизвестный приоритет")
