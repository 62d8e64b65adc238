// Package fsindex stores media assets as files in a type-partitioned
// directory tree, with metadata kept in a single JSON sidecar index. It is
// the server-side counterpart of the embedded per-device store.
//
// The index is read, modified and rewritten per operation. A per-process
// mutex serializes those read-modify-write cycles so concurrent requests
// cannot lose updates; the index file itself is replaced atomically via a
// temp file and rename.
package fsindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/agrovista/mediavault/media"
	storageutil "github.com/agrovista/mediavault/storage/util"
)

const indexFilename = "index.json"

// Store keeps asset payloads on disk under basePath, partitioned into
// images/ and videos/ subtrees, and metadata in basePath/index.json.
type Store struct {
	basePath  string
	publicURL string
	mu        sync.Mutex // serializes index read-modify-write cycles
}

// indexRecord is one entry of the JSON index. The payload lives on disk at
// Path (relative to the base directory); no URL is persisted.
type indexRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Filename     string    `json:"filename"`
	Kind         string    `json:"kind"`
	MIMEType     string    `json:"mimeType"`
	Path         string    `json:"path"`
	SizeBytes    int64     `json:"sizeBytes"`
	IsCompressed bool      `json:"isCompressed"`
	CreatedAt    time.Time `json:"createdAt"`
	LastUsedAt   time.Time `json:"lastUsedAt"`
	UsageCount   int64     `json:"usageCount"`
}

// New creates a directory-backed store rooted at basePath. The base and the
// per-kind subdirectories are created if missing.
func New(basePath, publicURL string) (*Store, error) {
	for _, dir := range []string{basePath, filepath.Join(basePath, "images"), filepath.Join(basePath, "videos")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create media directory %q: %v", media.ErrStoreUnavailable, dir, err)
		}
	}

	return &Store{
		basePath:  basePath,
		publicURL: storageutil.NormalizeBaseURL(publicURL),
	}, nil
}

// BasePath returns the directory the store writes under, for static serving.
func (s *Store) BasePath() string {
	return s.basePath
}

// Close is a no-op; the store holds no long-lived handles.
func (s *Store) Close() error {
	return nil
}

// Put writes the payload to the kind's subtree and upserts the index entry.
// Re-putting an existing id replaces both payload and metadata.
func (s *Store) Put(ctx context.Context, a *media.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadIndex()
	if err != nil {
		return err
	}

	relPath := a.Path
	if a.Payload != nil {
		filename := storedFilename(a)
		relPath = filepath.Join(kindDir(a.Kind), filename)

		// Replacing an existing record also replaces its file.
		for _, rec := range records {
			if rec.ID == a.ID {
				_ = os.Remove(filepath.Join(s.basePath, rec.Path))
				break
			}
		}

		absPath := filepath.Join(s.basePath, relPath)
		if err := os.WriteFile(absPath, a.Payload, 0644); err != nil {
			return fmt.Errorf("%w: write payload file %q: %v", media.ErrStoreUnavailable, absPath, err)
		}
	}

	rec := indexRecord{
		ID:           a.ID,
		Name:         a.Name,
		Filename:     filepath.Base(relPath),
		Kind:         string(a.Kind),
		MIMEType:     a.MIMEType,
		Path:         relPath,
		SizeBytes:    a.SizeBytes,
		IsCompressed: a.IsCompressed,
		CreatedAt:    a.CreatedAt,
		LastUsedAt:   a.LastUsedAt,
		UsageCount:   a.UsageCount,
	}

	replaced := false
	for i := range records {
		if records[i].ID == a.ID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	if err := s.writeIndex(records); err != nil {
		return err
	}

	a.Path = relPath
	a.URL = s.publicURL + filepath.ToSlash(relPath)
	return nil
}

// GetAll returns all index entries. URLs are rebuilt from the current public
// base at call time, never read from disk.
func (s *Store) GetAll(ctx context.Context) ([]media.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	assets := make([]media.Asset, 0, len(records))
	for _, rec := range records {
		assets = append(assets, s.toAsset(rec))
	}

	return assets, nil
}

// GetByID returns one asset, or media.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*media.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec.ID == id {
			a := s.toAsset(rec)
			return &a, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", media.ErrNotFound, id)
}

// Remove deletes the payload file and the index entry. The file removal is
// the scoped release of the asset's out-of-band resource. A missing id is a
// no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadIndex()
	if err != nil {
		return err
	}

	var victim indexRecord
	found := false
	kept := make([]indexRecord, 0, len(records))
	for _, rec := range records {
		if rec.ID == id {
			victim = rec
			found = true
			continue
		}
		kept = append(kept, rec)
	}

	if !found {
		return nil
	}

	absPath := filepath.Join(s.basePath, victim.Path)
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove payload file %q: %v", media.ErrStoreUnavailable, absPath, err)
	}

	return s.writeIndex(kept)
}

// Touch bumps lastUsedAt and usageCount for the given id; missing ids are
// left alone without error.
func (s *Store) Touch(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadIndex()
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].ID == id {
			records[i].LastUsedAt = time.Now().UTC()
			records[i].UsageCount++
			return s.writeIndex(records)
		}
	}

	return nil
}

func (s *Store) toAsset(rec indexRecord) media.Asset {
	return media.Asset{
		ID:           rec.ID,
		Name:         rec.Name,
		Kind:         media.Kind(rec.Kind),
		MIMEType:     rec.MIMEType,
		Path:         rec.Path,
		URL:          s.publicURL + filepath.ToSlash(rec.Path),
		SizeBytes:    rec.SizeBytes,
		IsCompressed: rec.IsCompressed,
		CreatedAt:    rec.CreatedAt,
		LastUsedAt:   rec.LastUsedAt,
		UsageCount:   rec.UsageCount,
	}
}

// loadIndex reads the index file. A missing index means an empty store.
// Callers must hold s.mu.
func (s *Store) loadIndex() ([]indexRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, indexFilename))
	if errors.Is(err, os.ErrNotExist) {
		return []indexRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read index: %v", media.ErrStoreUnavailable, err)
	}

	var records []indexRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse index: %v", media.ErrStoreUnavailable, err)
	}

	return records, nil
}

// writeIndex replaces the index file atomically. Callers must hold s.mu.
func (s *Store) writeIndex(records []indexRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode index: %v", media.ErrStoreUnavailable, err)
	}

	indexPath := filepath.Join(s.basePath, indexFilename)
	tmpPath := indexPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("%w: write index: %v", media.ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpPath, indexPath); err != nil {
		return fmt.Errorf("%w: replace index: %v", media.ErrStoreUnavailable, err)
	}

	return nil
}

func kindDir(kind media.Kind) string {
	if kind == media.KindVideo {
		return "videos"
	}
	return "images"
}

// storedFilename builds a collision-free on-disk name: the slugged original
// basename, a short unique suffix, and an extension derived from the name or
// the MIME type.
func storedFilename(a *media.Asset) string {
	ext := filepath.Ext(a.Name)
	if ext == "" && a.MIMEType != "" {
		if exts, err := mime.ExtensionsByType(a.MIMEType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}

	base := slug.Make(strings.TrimSuffix(a.Name, ext))
	if base == "" {
		base = uuid.New().String()
	}

	return fmt.Sprintf("%s-%s%s", base, uuid.New().String()[:8], ext)
}
