// Package ingest is the single entry point through which new assets reach
// the store. Steps run in a fixed order so each failure short-circuits the
// rest: validate the declared type, check capacity, process the payload,
// re-validate the processed size, persist.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agrovista/mediavault/bytesize"
	"github.com/agrovista/mediavault/media"
	"github.com/agrovista/mediavault/media/capacity"
	"github.com/agrovista/mediavault/media/codec"
	"github.com/agrovista/mediavault/media/eviction"
	"github.com/agrovista/mediavault/storage/asset"
)

// capacityThreshold is the usage percentage above which ingestion refuses new
// uploads. Ingestion does not evict on its own; the caller decides whether to
// run a cleanup and retry, so an unrelated upload never silently destroys
// older assets.
const capacityThreshold = 95.0

// Compressor re-encodes an image payload into a size-bounded one. It is an
// interface so tests can observe whether the codec was invoked at all.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// CodecCompressor is the production Compressor backed by the codec package.
type CodecCompressor struct {
	Opts codec.Options
}

func (c CodecCompressor) Compress(data []byte) ([]byte, error) {
	return codec.Compress(data, c.Opts)
}

// Ingestor validates, processes and persists uploads against one store.
type Ingestor struct {
	store      asset.Store
	compressor Compressor
	limits     media.Limits
}

// New builds an Ingestor. When compressor is nil the production codec is used
// with the image ceiling from limits.
func New(store asset.Store, compressor Compressor, limits media.Limits) *Ingestor {
	if compressor == nil {
		compressor = CodecCompressor{Opts: codec.Options{Ceiling: limits.ImageCeiling}}
	}

	return &Ingestor{
		store:      store,
		compressor: compressor,
		limits:     limits,
	}
}

// Ingest runs the full pipeline for one uploaded file and returns the
// persisted asset.
//
// The capacity check runs before any processing so a full store fails fast
// without burning CPU on an encode. Videos are stored verbatim after a
// size-only check; images go through the compressor. Either way the processed
// payload is re-checked against its per-kind ceiling before the store sees
// it, so a codec bug cannot break the stored-size invariant.
func (in *Ingestor) Ingest(ctx context.Context, f *media.UploadedFile) (*media.Asset, error) {
	kind, ok := media.KindFromContentType(f.ContentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", media.ErrUnsupportedType, f.ContentType)
	}

	assets, err := in.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := capacity.ComputeStats(assets, in.limits.TotalCeiling)
	if stats.Percentage > capacityThreshold {
		return nil, fmt.Errorf("%w: %s of %s used (%.1f%%)",
			media.ErrCapacity, bytesize.Format(stats.Used), bytesize.Format(stats.Total), stats.Percentage)
	}

	payload := f.Data
	mimeType := f.ContentType
	compressed := false

	switch kind {
	case media.KindImage:
		payload, err = in.compressor.Compress(f.Data)
		if err != nil {
			return nil, err
		}
		mimeType = "image/jpeg"
		compressed = true

	case media.KindVideo:
		if int64(len(payload)) > in.limits.VideoCeiling {
			return nil, fmt.Errorf("%w: video is %s, ceiling is %s",
				media.ErrSizeExceeded, bytesize.Format(int64(len(payload))), bytesize.Format(in.limits.VideoCeiling))
		}
	}

	ceiling := in.limits.CeilingFor(kind)
	if int64(len(payload)) > ceiling {
		return nil, fmt.Errorf("%w: processed payload is %s, ceiling is %s",
			media.ErrProcessingFailed, bytesize.Format(int64(len(payload))), bytesize.Format(ceiling))
	}

	now := time.Now().UTC()
	a := &media.Asset{
		ID:           uuid.New().String(),
		Name:         f.Name,
		Kind:         kind,
		MIMEType:     mimeType,
		Payload:      payload,
		SizeBytes:    int64(len(payload)),
		IsCompressed: compressed,
		CreatedAt:    now,
		LastUsedAt:   now,
		UsageCount:   0,
	}

	if err := in.put(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// put persists the asset, retrying exactly once after a cleanup pass when the
// store reports quota exhaustion. If the retry fails too, the original error
// is surfaced rather than the retry's.
func (in *Ingestor) put(ctx context.Context, a *media.Asset) error {
	err := in.store.Put(ctx, a)
	if err == nil || !errors.Is(err, media.ErrStoreQuota) {
		return err
	}

	if _, cleanupErr := eviction.Cleanup(ctx, in.store); cleanupErr != nil {
		return err
	}

	if retryErr := in.store.Put(ctx, a); retryErr != nil {
		return err
	}

	return nil
}
