package util

import (
	"fmt"
	"mime"
	"net/http"
	"slices"

	"github.com/agrovista/mediavault/server/resp"
)

func RequireValidUploadContentType(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	return requireValidContentType(w, r, []string{"multipart/form-data"})
}

func ExtractMediaType(w http.ResponseWriter, r *http.Request) (string, bool) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		resp.WriteUnsupportedMediaType(w, "Content-Type must be specified")
		return "", false
	}

	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		resp.WriteUnsupportedMediaType(w, fmt.Errorf("invalid Content-Type: %w", err).Error())
		return "", false
	}

	return mediaType, true
}

func requireValidContentType(w http.ResponseWriter, r *http.Request, valid []string) (string, string, bool) {
	mediaType, ok := ExtractMediaType(w, r)
	if !ok {
		return r.Method, "", false
	}

	if slices.Contains(valid, mediaType) {
		return r.Method, mediaType, true
	}

	resp.WriteUnsupportedMediaType(w, fmt.Sprintf("invalid Content-Type: only %v allowed", valid))
	return r.Method, mediaType, false
}
