package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage marks failures of the persistence layer itself.
	ErrStorage = errors.New("storage_unavailable")
)

// StorageError reports a failed store call. Unless the store guarantees write
// atomicity the caller must treat the operation as maybe applied.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// WrapStorage returns nil for a nil err and never double-wraps.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
