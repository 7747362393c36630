package migrate

import "fmt"

// FetchError wraps a transport or store error raised while paginating. It
// is fatal to the fetch phase only: the run proceeds with whatever was
// collected before it.
type FetchError struct {
	Cursor string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page at cursor %q: %v", e.Cursor, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CommitError wraps a failed durability commit. An uncommitted run gives no
// guarantee that successfully written chunks are durable or visible.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
