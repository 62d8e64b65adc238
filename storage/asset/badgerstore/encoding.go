package badgerstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agrovista/mediavault/media"
)

// assetRecord is the on-disk shape of an asset. It is kept separate from
// media.Asset so the database layout survives changes to the API type, and so
// the payload (excluded from media.Asset's JSON) is serialized here.
type assetRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	MIMEType     string    `json:"mime_type"`
	Payload      []byte    `json:"payload"`
	SizeBytes    int64     `json:"size_bytes"`
	IsCompressed bool      `json:"is_compressed"`
	CreatedAt    time.Time `json:"created_at"`
	LastUsedAt   time.Time `json:"last_used_at"`
	UsageCount   int64     `json:"usage_count"`
}

func encodeAsset(a *media.Asset) ([]byte, error) {
	rec := assetRecord{
		ID:           a.ID,
		Name:         a.Name,
		Kind:         string(a.Kind),
		MIMEType:     a.MIMEType,
		Payload:      a.Payload,
		SizeBytes:    a.SizeBytes,
		IsCompressed: a.IsCompressed,
		CreatedAt:    a.CreatedAt,
		LastUsedAt:   a.LastUsedAt,
		UsageCount:   a.UsageCount,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode asset %s: %w", a.ID, err)
	}

	return data, nil
}

func decodeAsset(val []byte) (*media.Asset, error) {
	var rec assetRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("decode asset record: %w", err)
	}

	return &media.Asset{
		ID:           rec.ID,
		Name:         rec.Name,
		Kind:         media.Kind(rec.Kind),
		MIMEType:     rec.MIMEType,
		Payload:      rec.Payload,
		SizeBytes:    rec.SizeBytes,
		IsCompressed: rec.IsCompressed,
		CreatedAt:    rec.CreatedAt,
		LastUsedAt:   rec.LastUsedAt,
		UsageCount:   rec.UsageCount,
	}, nil
}
