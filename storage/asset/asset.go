// Package asset defines the store contract shared by the embedded-database
// and directory-backed asset store variants.
package asset

import (
	"context"

	"github.com/agrovista/mediavault/media"
)

// Store is a durable keyed store for media assets.
//
// Implementations wrap errors from the underlying engine with
// media.ErrStoreUnavailable (or media.ErrStoreQuota for write-side quota
// exhaustion). Every operation is individually atomic; there is no
// multi-operation transaction contract.
type Store interface {
	// Put upserts an asset by id. Metadata and payload are written together;
	// a reader never observes a partially written record.
	Put(ctx context.Context, a *media.Asset) error

	// GetAll returns a snapshot of all live assets with complete metadata.
	// Variants that keep the payload out-of-band reconstruct a usable URL per
	// asset at call time rather than persisting one.
	GetAll(ctx context.Context) ([]media.Asset, error)

	// GetByID returns the asset or an error wrapping media.ErrNotFound.
	GetByID(ctx context.Context, id string) (*media.Asset, error)

	// Remove deletes the record and releases any resource tied to it, such as
	// an out-of-band payload file. Removing a nonexistent id is a no-op.
	Remove(ctx context.Context, id string) error

	// Touch updates lastUsedAt to now and increments usageCount. Touching an
	// id that no longer exists is a no-op, since a concurrent eviction may
	// have just removed it.
	Touch(ctx context.Context, id string) error

	// Close releases the store's underlying resources.
	Close() error
}
