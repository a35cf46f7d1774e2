package storage

import "fmt"

// StorageError marks an underlying store I/O failure. Write operations never
// report success when the store reported failure; callers branch with
// errors.As to distinguish I/O trouble from validation errors.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
