package discovery

import "fmt"

// ValidationError reports malformed search input. No directory query is
// executed when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DirectoryError reports a failed directory read. The search yields no
// partial results when it is returned.
type DirectoryError struct {
	Op  string
	Err error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("worker directory %s: %v", e.Op, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }
