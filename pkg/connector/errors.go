// File: pkg/connector/errors.go

package connector

import "errors"

// ErrShutdown возвращается всеми публичными методами после Shutdown.
// Компонент после остановки никогда не трогает сеть: это жёсткий барьер.
var ErrShutdown = errors.New("connector is shut down")

// StorageError оборачивает любой сбой подключения, подготовки,
// исполнения или разбора запроса. Фатальна для вызвавшей операции.
type StorageError struct {
	Op  string // операция, на которой произошёл сбой
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
