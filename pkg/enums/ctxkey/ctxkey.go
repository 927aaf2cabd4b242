package ctxkey

type ContextKey string

const (
	// ContentLength carries the expected size (int64) of a stream handed to a storage.
	ContentLength ContextKey = "content_length"
	// RunID identifies one pull run in logs.
	RunID ContextKey = "run_id"
)
