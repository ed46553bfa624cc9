package vecstore

import "errors"

var (
	// ErrStoreNotFound means the index file does not exist.
	ErrStoreNotFound = errors.New("vector store not found")

	// ErrStoreCorrupt means the file exists but does not deserialize to a
	// valid index.
	ErrStoreCorrupt = errors.New("vector store corrupt")

	// ErrRetrievalUnavailable wraps embedding or query failures. Callers
	// treat it as "no grounding available" for the turn, never as fatal.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
)
