// File: pkg/storage/errors.go

package storage

import "errors"

// ErrNotFound возвращается операциями, которым требуемая запись нужна,
// а не опциональна (например, удаление профиля).
var ErrNotFound = errors.New("record not found")

// ErrNotImplemented помечает задел на будущее: операция описана в
// интерфейсе хранилища, но её реализация ещё не написана.
var ErrNotImplemented = errors.New("not implemented")
