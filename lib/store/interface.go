package store

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IRecordStore is the interface for interacting with the phonebook records.
// Implementations keep the records in insertion order. All methods return a
// *Error (nil on success) when the underlying medium fails.
type IRecordStore interface {
	// Enumerate returns every record in store order.
	// A store that was never written to is empty, not an error.
	Enumerate() (records []Record, err error)
	// Search returns all records whose value for field contains substr.
	// The match is case-sensitive. An empty result is not an error.
	Search(field Field, substr string) (records []Record, err error)
	// Add appends a record to the end of the store.
	Add(record Record) (err error)
	// Delete removes the first record (in store order) that has any field
	// exactly equal to target. The boolean reports whether a record was removed.
	Delete(target string) (deleted bool, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("RecordStoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new record store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// IsStorageError reports whether err (or any error it wraps) is a store error
// caused by the storage medium.
func IsStorageError(err error) bool {
	var storeErr *Error
	return errors.As(err, &storeErr) && storeErr.Code == RetCStorageError
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Command executed successfully.
	RetCInternalError                // 1: Command failed due to an internal error.
	RetCStorageError                 // 2: The store file could not be read, parsed or written.
	RetCInvalidField                 // 3: The field is not part of the record schema.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCStorageError:
		return "StorageError"
	case RetCInvalidField:
		return "InvalidField"
	default:
		return "Unknown"
	}
}
