package catalogue

import "fmt"

// TransportError reports a failed catalogue fetch: a network error or a
// non-2xx response. The store is untouched when a run fails with one.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalogue fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("catalogue fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PersistenceError reports a failed store write. It aborts the remainder
// of the run; writes that already happened are not rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("catalogue store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
