package domain

import "fmt"

// FetchError reports a transport failure or non-2xx status on the source page.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a page whose structure no longer matches the expected
// table layout. Row is the 1-based table row, or 0 for table-level problems.
type ParseError struct {
	Row    int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("parse row %d: %s", e.Row, e.Reason)
	}
	return "parse: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// TypeCoercionError reports a field that could not be converted to its final type.
type TypeCoercionError struct {
	Rank  int
	Field string
	Value string
	Err   error
}

func (e *TypeCoercionError) Error() string {
	if e.Rank > 0 {
		return fmt.Sprintf("rank %d: %s %q is not a non-negative integer", e.Rank, e.Field, e.Value)
	}
	return fmt.Sprintf("%s %q is not a non-negative integer", e.Field, e.Value)
}

func (e *TypeCoercionError) Unwrap() error { return e.Err }

// PersistenceError reports an authentication or write failure on the output store.
type PersistenceError struct {
	Object string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Object, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
