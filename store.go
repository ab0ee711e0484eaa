package main

import (
	"errors"
	"fmt"
)

// ValidationError rejects bad caller input before anything is classified
// or persisted.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// StorageError wraps a durable-store failure. A record is not committed
// if the underlying write did not complete.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ExternalServiceError marks a failed call to the hosted-AI collaborator.
// It degrades to a visible verdict at the interaction boundary, it never
// terminates the process.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// DiagnosisStore is the whole-collection persistence abstraction for
// diagnosis records. Append must persist the full updated collection
// before returning; All returns every record in insertion order.
type DiagnosisStore interface {
	Append(rec DiagnosisRecord) error
	All() ([]DiagnosisRecord, error)
	ByCategory(c Category) ([]DiagnosisRecord, error)
}

// WallStore persists community posts. List order is insertion order;
// the wall view reverses it.
type WallStore interface {
	Append(post CommunityPost) error
	All() ([]CommunityPost, error)
}

// CredentialStore is the plaintext credential table behind the login gate.
// First run bootstraps it with a fixed seed row.
type CredentialStore interface {
	Lookup(username string) (password string, ok bool, err error)
	Add(username, password string) error
}
