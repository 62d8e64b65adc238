// Package badgerstore persists media assets in an embedded BadgerDB database,
// payload included. It is the per-device store behind the presentation
// editor's asset library.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/agrovista/mediavault/media"
)

// Asset records live under the "a:" prefix, keyed by the asset id. The value
// is one JSON-encoded record holding metadata and payload together, so a put
// is a single atomic set and a reader never sees a half-written asset.
const prefixAsset = "a:"

func keyAsset(id string) []byte {
	return []byte(prefixAsset + id)
}

// Store is a BadgerDB-backed asset store.
type Store struct {
	db *badger.DB

	// onRemove, when set, is invoked after a record is deleted so the owner
	// can release any transient handle tied to the asset.
	onRemove func(id string)
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger database at %q: %v", media.ErrStoreUnavailable, path, err)
	}

	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral database. Used by tests and throwaway
// sessions that must not leave state on disk.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open in-memory badger database: %v", media.ErrStoreUnavailable, err)
	}

	return &Store{db: db}, nil
}

// SetOnRemove registers a hook invoked with the id of every removed asset.
func (s *Store) SetOnRemove(hook func(id string)) {
	s.onRemove = hook
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put upserts the asset by id in a single transaction.
func (s *Store) Put(ctx context.Context, a *media.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	val, err := encodeAsset(a)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyAsset(a.ID), val)
	})
	if err != nil {
		return wrapStoreErr("put asset", err)
	}

	return nil
}

// GetAll returns a snapshot of every stored asset.
func (s *Store) GetAll(ctx context.Context) ([]media.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assets := []media.Asset{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixAsset)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				a, err := decodeAsset(val)
				if err != nil {
					return err
				}
				assets = append(assets, *a)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, wrapStoreErr("enumerate assets", err)
	}

	return assets, nil
}

// GetByID returns one asset, or media.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*media.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var a *media.Asset
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyAsset(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", media.ErrNotFound, id)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			a, err = decodeAsset(val)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			return nil, err
		}
		return nil, wrapStoreErr("get asset", err)
	}

	return a, nil
}

// Remove deletes the record. Deleting an id that is not present is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(keyAsset(id))
	})
	if err != nil {
		return wrapStoreErr("remove asset", err)
	}

	if s.onRemove != nil {
		s.onRemove(id)
	}

	return nil
}

// Touch sets lastUsedAt to now and increments usageCount. An id that no
// longer exists is left alone without error; a concurrent cleanup may have
// just evicted it.
func (s *Store) Touch(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(keyAsset(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var a *media.Asset
		err = item.Value(func(val []byte) error {
			a, err = decodeAsset(val)
			return err
		})
		if err != nil {
			return err
		}

		a.LastUsedAt = time.Now().UTC()
		a.UsageCount++

		val, err := encodeAsset(a)
		if err != nil {
			return err
		}

		return txn.Set(keyAsset(id), val)
	})
	if err != nil {
		return wrapStoreErr("touch asset", err)
	}

	return nil
}

// wrapStoreErr maps engine failures onto the pipeline's error kinds. Badger
// reporting no room left is surfaced as a quota error so ingestion can run
// one cleanup-and-retry pass; everything else is a store availability fault.
func wrapStoreErr(op string, err error) error {
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("%w: %s: %v", media.ErrStoreQuota, op, err)
	}
	return fmt.Errorf("%w: %s: %v", media.ErrStoreUnavailable, op, err)
}
