// Package eviction removes the least-recently-used slice of the stored asset
// set when capacity pressure calls for it. It runs only when asked, either by
// the maintenance endpoint or by the ingestion retry path; nothing triggers
// it on a timer.
package eviction

import (
	"context"
	"fmt"
	"sort"

	"github.com/agrovista/mediavault/media"
	"github.com/agrovista/mediavault/storage/asset"
)

// cleanupFraction is the share of assets removed per cleanup pass.
const cleanupFraction = 0.2

// Cleanup removes the 20% least-recently-used assets and returns their ids.
//
// Ordering is lastUsedAt ascending with ties broken by id ascending, so a
// given asset set always produces the same removals. With fewer than five
// assets the floor comes out at zero and nothing is removed; in particular a
// single remaining asset is never evicted on a rounding artifact.
func Cleanup(ctx context.Context, store asset.Store) ([]string, error) {
	assets, err := store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate assets for cleanup: %w", err)
	}

	victims := SelectVictims(assets)

	removed := make([]string, 0, len(victims))
	for _, id := range victims {
		if err := store.Remove(ctx, id); err != nil {
			return removed, fmt.Errorf("remove asset %s during cleanup: %w", id, err)
		}
		removed = append(removed, id)
	}

	return removed, nil
}

// SelectVictims returns the ids a cleanup pass over the given snapshot would
// remove, without mutating anything.
func SelectVictims(assets []media.Asset) []string {
	toRemove := int(cleanupFraction * float64(len(assets)))
	if toRemove == 0 {
		return nil
	}

	ordered := make([]media.Asset, len(assets))
	copy(ordered, assets)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].LastUsedAt.Equal(ordered[j].LastUsedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].LastUsedAt.Before(ordered[j].LastUsedAt)
	})

	ids := make([]string, 0, toRemove)
	for _, a := range ordered[:toRemove] {
		ids = append(ids, a.ID)
	}

	return ids
}
