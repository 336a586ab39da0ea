package simpleitem

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPropertyNotFound indicates a property key resolved to no stored value
	ErrPropertyNotFound = errors.New("property not found")

	// ErrParserNotAvailable indicates no registered variant matches a format tag
	ErrParserNotAvailable = errors.New("parser not available")

	// ErrDuplicateFormat indicates a format tag was registered more than once
	ErrDuplicateFormat = errors.New("format already registered")

	// ErrItemNotFound indicates an item was not found by an access point
	ErrItemNotFound = errors.New("item not found")
)

// FormatError represents an error related to format dispatch
type FormatError struct {
	Tag string
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format operation %s failed for tag %q: %v", e.Op, e.Tag, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// StoreError represents an error related to access point operations
type StoreError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
