package thread

// Entry is one row of the root interpreter's thread map: the word a thread
// runs, its input/output queues, and a deleted-flag used to defer reaping
// while output remains unread.
type Entry struct {
	ID        int64
	WordIndex int

	// Deleted is set once the thread's goroutine has returned; the entry
	// itself is only removed from the Registry once Out is also empty
	// ("reaped when the last output is drained").
	Deleted bool

	In  *Queue
	Out *Queue

	// Err holds the thread's terminal error, if any. The parent otherwise
	// only sees a failed sub-thread through the absence of expected
	// outputs -- Err is a diagnostic extra, not part of that contract.
	Err error
}
