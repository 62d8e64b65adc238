package badgerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/agrovista/mediavault/media"
)

// legacyAsset matches the flat serialization the presentation editor used
// before per-record storage: the whole library as one JSON array under a
// single key, payloads inlined as base64 (Go's encoding/json reads those
// directly into []byte).
type legacyAsset struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	MIMEType     string    `json:"mimeType"`
	Data         []byte    `json:"data"`
	IsCompressed bool      `json:"isCompressed"`
	CreatedAt    time.Time `json:"createdAt"`
	LastUsedAt   time.Time `json:"lastUsedAt"`
	UsageCount   int64     `json:"usageCount"`
}

// ImportLegacy reads the legacy flat-blob serialization from r and converts
// it record by record into the store. It is a one-time migration: the caller
// discards the source after a successful import.
//
// Records keep their original ids and timestamps so external references and
// eviction ordering survive the migration. Records without a lastUsedAt fall
// back to their creation time, preserving the lastUsedAt >= createdAt
// invariant.
func (s *Store) ImportLegacy(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read legacy blob: %w", err)
	}

	var records []legacyAsset
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("parse legacy blob: %w", err)
	}

	imported := 0
	for _, rec := range records {
		kind := media.Kind(rec.Kind)
		if kind != media.KindImage && kind != media.KindVideo {
			return imported, fmt.Errorf("%w: legacy record %q has kind %q", media.ErrUnsupportedType, rec.ID, rec.Kind)
		}

		lastUsed := rec.LastUsedAt
		if lastUsed.Before(rec.CreatedAt) {
			lastUsed = rec.CreatedAt
		}

		a := &media.Asset{
			ID:           rec.ID,
			Name:         rec.Name,
			Kind:         kind,
			MIMEType:     rec.MIMEType,
			Payload:      rec.Data,
			SizeBytes:    int64(len(rec.Data)),
			IsCompressed: rec.IsCompressed,
			CreatedAt:    rec.CreatedAt,
			LastUsedAt:   lastUsed,
			UsageCount:   rec.UsageCount,
		}

		if err := s.Put(ctx, a); err != nil {
			return imported, fmt.Errorf("import legacy record %q: %w", rec.ID, err)
		}
		imported++
	}

	return imported, nil
}
