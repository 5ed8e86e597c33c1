package storage

import "errors"

// Common client storage errors
var (
	// ErrRecordNotFound indicates that record was not found in the collection
	ErrRecordNotFound = errors.New("record not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrEmptyRecordID indicates that a record without id was passed to storage
	ErrEmptyRecordID = errors.New("record id is empty")
)
