package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/agrovista/mediavault/media"
)

// fakeStore is an in-memory asset.Store with programmable Put failures.
type fakeStore struct {
	assets  map[string]media.Asset
	putErrs []error // consumed one per Put call; nil means success
	puts    int
	removes []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{assets: map[string]media.Asset{}}
}

func (f *fakeStore) Put(ctx context.Context, a *media.Asset) error {
	f.puts++
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return err
		}
	}
	f.assets[a.ID] = *a
	return nil
}

func (f *fakeStore) GetAll(ctx context.Context) ([]media.Asset, error) {
	out := make([]media.Asset, 0, len(f.assets))
	for _, a := range f.assets {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*media.Asset, error) {
	a, ok := f.assets[id]
	if !ok {
		return nil, media.ErrNotFound
	}
	return &a, nil
}

func (f *fakeStore) Remove(ctx context.Context, id string) error {
	delete(f.assets, id)
	f.removes = append(f.removes, id)
	return nil
}

func (f *fakeStore) Touch(ctx context.Context, id string) error { return nil }

func (f *fakeStore) Close() error { return nil }

// fakeCompressor records whether it ran and returns a fixed payload.
type fakeCompressor struct {
	calls int
	out   []byte
	err   error
}

func (c *fakeCompressor) Compress(data []byte) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.out, nil
}

func testLimits() media.Limits {
	return media.Limits{
		ImageCeiling: 500,
		VideoCeiling: 2000,
		TotalCeiling: 10_000,
	}
}

func fillStore(f *fakeStore, used int64) {
	f.assets["existing"] = media.Asset{
		ID:         "existing",
		Kind:       media.KindVideo,
		SizeBytes:  used,
		LastUsedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestIngest_Image(t *testing.T) {
	store := newFakeStore()
	comp := &fakeCompressor{out: []byte("jpeg-bytes")}
	in := New(store, comp, testLimits())

	a, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "photo.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes-much-larger"),
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if comp.calls != 1 {
		t.Fatalf("compressor ran %d times, want 1", comp.calls)
	}
	if a.Kind != media.KindImage || !a.IsCompressed {
		t.Fatalf("asset not marked as compressed image: %+v", a)
	}
	if a.MIMEType != "image/jpeg" {
		t.Fatalf("re-encoded image must report image/jpeg, got %q", a.MIMEType)
	}
	if !bytes.Equal(a.Payload, []byte("jpeg-bytes")) || a.SizeBytes != int64(len("jpeg-bytes")) {
		t.Fatalf("payload not the compressor output: %+v", a)
	}
	if a.ID == "" {
		t.Fatal("asset has no id")
	}
	if !a.LastUsedAt.Equal(a.CreatedAt) || a.UsageCount != 0 {
		t.Fatalf("fresh asset metadata wrong: %+v", a)
	}
	if _, ok := store.assets[a.ID]; !ok {
		t.Fatal("asset not persisted")
	}
}

func TestIngest_VideoStoredVerbatim(t *testing.T) {
	store := newFakeStore()
	comp := &fakeCompressor{out: []byte("never used")}
	in := New(store, comp, testLimits())

	raw := []byte("raw-video-bytes")
	a, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "clip.mp4",
		ContentType: "video/mp4",
		Data:        raw,
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if comp.calls != 0 {
		t.Fatal("compressor must not run for video")
	}
	if !bytes.Equal(a.Payload, raw) {
		t.Fatalf("video payload altered: %x", a.Payload)
	}
	if a.IsCompressed {
		t.Fatal("video must not be marked compressed")
	}
	if a.MIMEType != "video/mp4" {
		t.Fatalf("video MIME type altered: %q", a.MIMEType)
	}
}

func TestIngest_UnsupportedType(t *testing.T) {
	store := newFakeStore()
	in := New(store, &fakeCompressor{}, testLimits())

	_, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "notes.txt",
		ContentType: "text/plain",
		Data:        []byte("hello"),
	})
	if !errors.Is(err, media.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if store.puts != 0 {
		t.Fatal("nothing should be persisted for an unsupported type")
	}
}

func TestIngest_CapacityCheckBeforeProcessing(t *testing.T) {
	store := newFakeStore()
	fillStore(store, 9600) // 96% of the 10,000 ceiling
	comp := &fakeCompressor{out: []byte("x")}
	in := New(store, comp, testLimits())

	_, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "photo.png",
		ContentType: "image/png",
		Data:        []byte("payload"),
	})
	if !errors.Is(err, media.ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if comp.calls != 0 {
		t.Fatal("capacity rejection must happen before any processing")
	}
	if store.puts != 0 {
		t.Fatal("nothing should be persisted when over capacity")
	}
}

func TestIngest_AtThresholdStillAccepts(t *testing.T) {
	store := newFakeStore()
	fillStore(store, 9500) // exactly 95%, boundary is exclusive
	in := New(store, &fakeCompressor{out: []byte("x")}, testLimits())

	if _, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "photo.png",
		ContentType: "image/png",
		Data:        []byte("payload"),
	}); err != nil {
		t.Fatalf("95%% exactly should still be accepted: %v", err)
	}
}

func TestIngest_OversizedVideo(t *testing.T) {
	store := newFakeStore()
	in := New(store, &fakeCompressor{}, testLimits())

	_, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "huge.mp4",
		ContentType: "video/mp4",
		Data:        bytes.Repeat([]byte("v"), 2001),
	})
	if !errors.Is(err, media.ErrSizeExceeded) {
		t.Fatalf("expected ErrSizeExceeded, got %v", err)
	}
	if store.puts != 0 {
		t.Fatal("oversized video must not reach the store")
	}
}

func TestIngest_CompressorFailurePropagates(t *testing.T) {
	store := newFakeStore()
	comp := &fakeCompressor{err: fmt.Errorf("%w: bad jpeg", media.ErrEncoding)}
	in := New(store, comp, testLimits())

	_, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "photo.png",
		ContentType: "image/png",
		Data:        []byte("payload"),
	})
	if !errors.Is(err, media.ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}

func TestIngest_OversizedCompressorOutputRejected(t *testing.T) {
	store := newFakeStore()
	comp := &fakeCompressor{out: bytes.Repeat([]byte("j"), 501)}
	in := New(store, comp, testLimits())

	_, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "photo.png",
		ContentType: "image/png",
		Data:        []byte("payload"),
	})
	if !errors.Is(err, media.ErrProcessingFailed) {
		t.Fatalf("expected ErrProcessingFailed, got %v", err)
	}
	if store.puts != 0 {
		t.Fatal("over-ceiling payload must not reach the store")
	}
}

func TestIngest_QuotaRetryAfterCleanup(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("old-%d", i)
		store.assets[id] = media.Asset{
			ID:         id,
			Kind:       media.KindImage,
			SizeBytes:  10,
			LastUsedAt: time.Date(2025, time.January, 1, i, 0, 0, 0, time.UTC),
		}
	}
	quotaErr := fmt.Errorf("%w: no room", media.ErrStoreQuota)
	store.putErrs = []error{quotaErr, nil}

	in := New(store, &fakeCompressor{out: []byte("x")}, testLimits())

	a, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "photo.png",
		ContentType: "image/png",
		Data:        []byte("payload"),
	})
	if err != nil {
		t.Fatalf("retry after cleanup should succeed: %v", err)
	}

	if store.puts != 2 {
		t.Fatalf("expected exactly one retry (2 puts), got %d", store.puts)
	}
	if len(store.removes) != 1 || store.removes[0] != "old-0" {
		t.Fatalf("cleanup did not evict the least recently used asset: %v", store.removes)
	}
	if _, ok := store.assets[a.ID]; !ok {
		t.Fatal("asset not persisted after retry")
	}
}

func TestIngest_QuotaRetryFailsWithOriginalError(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("old-%d", i)
		store.assets[id] = media.Asset{
			ID:         id,
			Kind:       media.KindImage,
			SizeBytes:  10,
			LastUsedAt: time.Date(2025, time.January, 1, i, 0, 0, 0, time.UTC),
		}
	}
	quotaErr := fmt.Errorf("%w: no room", media.ErrStoreQuota)
	retryErr := errors.New("still no room")
	store.putErrs = []error{quotaErr, retryErr}

	in := New(store, &fakeCompressor{out: []byte("x")}, testLimits())

	_, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "photo.png",
		ContentType: "image/png",
		Data:        []byte("payload"),
	})
	if !errors.Is(err, media.ErrStoreQuota) {
		t.Fatalf("retry failure must surface the original quota error, got %v", err)
	}
	if store.puts != 2 {
		t.Fatalf("expected exactly one retry (2 puts), got %d", store.puts)
	}
}

func TestIngest_NonQuotaPutErrorNotRetried(t *testing.T) {
	store := newFakeStore()
	store.putErrs = []error{fmt.Errorf("%w: disk gone", media.ErrStoreUnavailable)}

	in := New(store, &fakeCompressor{out: []byte("x")}, testLimits())

	_, err := in.Ingest(context.Background(), &media.UploadedFile{
		Name:        "photo.png",
		ContentType: "image/png",
		Data:        []byte("payload"),
	})
	if !errors.Is(err, media.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if store.puts != 1 {
		t.Fatalf("availability errors must not trigger a retry, got %d puts", store.puts)
	}
}
