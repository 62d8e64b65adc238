package media

import (
	"strings"
	"time"
)

// Kind partitions assets into the two supported media families. The kind
// decides which size ceiling applies and whether the payload is re-encoded
// (images) or stored verbatim (video).
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// KindFromContentType maps a declared MIME type onto a Kind. Only image/* and
// video/* are accepted; anything else returns false.
func KindFromContentType(contentType string) (Kind, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return KindImage, true
	case strings.HasPrefix(contentType, "video/"):
		return KindVideo, true
	default:
		return "", false
	}
}

// Asset is the canonical stored unit: one image or video plus its metadata.
//
// Exactly one of Payload and Path is set, depending on the store variant:
// the embedded database keeps the bytes in-band, the directory-backed store
// keeps a relative file path and leaves Payload nil. URL is reconstructed by
// the store at read time and never persisted.
type Asset struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         Kind      `json:"kind"`
	MIMEType     string    `json:"mimeType"`
	Payload      []byte    `json:"-"`
	Path         string    `json:"path,omitempty"`
	URL          string    `json:"url,omitempty"`
	SizeBytes    int64     `json:"sizeBytes"`
	IsCompressed bool      `json:"isCompressed"`
	CreatedAt    time.Time `json:"createdAt"`
	LastUsedAt   time.Time `json:"lastUsedAt"`
	UsageCount   int64     `json:"usageCount"`
}

// UploadedFile carries a raw upload into the ingestion pipeline.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Limits holds the configured byte ceilings for the pipeline. The image
// ceiling is expected to be below the video ceiling.
type Limits struct {
	ImageCeiling int64
	VideoCeiling int64
	TotalCeiling int64
}

// CeilingFor returns the per-kind payload ceiling.
func (l Limits) CeilingFor(kind Kind) int64 {
	if kind == KindVideo {
		return l.VideoCeiling
	}
	return l.ImageCeiling
}
