package media

import "errors"

// Sentinel errors for the ingestion and storage pipeline. Call sites wrap
// these with fmt.Errorf and %w, adding the actual and ceiling byte counts so
// the caller can decide whether cleaning up and retrying is worthwhile.
var (
	// ErrUnsupportedType indicates a declared MIME type outside image/* and video/*.
	ErrUnsupportedType = errors.New("unsupported media type")

	// ErrSizeExceeded indicates a source or processed payload over its per-kind ceiling.
	ErrSizeExceeded = errors.New("size ceiling exceeded")

	// ErrCapacity indicates aggregate storage over the soft capacity threshold.
	ErrCapacity = errors.New("storage capacity exhausted")

	// ErrEncoding indicates an image that could not be decoded or re-encoded.
	ErrEncoding = errors.New("image encoding failed")

	// ErrProcessingFailed indicates the post-processing invariant check failed:
	// a processed payload came back over its ceiling and must not be stored.
	ErrProcessingFailed = errors.New("processed payload failed validation")

	// ErrStoreUnavailable indicates the embedded database or filesystem
	// backing the store could not be opened or transacted.
	ErrStoreUnavailable = errors.New("asset store unavailable")

	// ErrStoreQuota indicates the underlying store engine reported quota
	// exhaustion on a write. Ingestion retries exactly once after a cleanup
	// pass when it sees this.
	ErrStoreQuota = errors.New("store quota exhausted")

	// ErrNotFound indicates a lookup on an id that is not in the store.
	ErrNotFound = errors.New("asset not found")
)
