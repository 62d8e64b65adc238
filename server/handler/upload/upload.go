package upload

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/agrovista/mediavault/media"
	"github.com/agrovista/mediavault/metrics"
	"github.com/agrovista/mediavault/server/handler/common"
	"github.com/agrovista/mediavault/server/resp"
	"github.com/agrovista/mediavault/server/state"
	"github.com/agrovista/mediavault/server/util"
)

// UploadResponse is the body returned for a stored upload.
type UploadResponse struct {
	Success bool         `json:"success"`
	File    *media.Asset `json:"file"`
}

// HandleUpload accepts one multipart file under the "file" field and runs it
// through the ingestion pipeline.
func HandleUpload(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := util.RequireValidUploadContentType(w, r)
		if !ok {
			return
		}

		maxMemory := st.Cfg.Server.Limits.MaxMultipartMem.Int64()
		maxRequest := st.Cfg.Server.Limits.MaxRequestSize.Int64()

		parsed, err := util.ParseMultipart(w, r, maxMemory, maxRequest, 0)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				resp.WritePayloadTooLarge(w, "file too large: request exceeds the upload ceiling")
				return
			}
			resp.WriteInvalidRequest(w, "could not parse multipart form")
			return
		}
		defer parsed.CloseFiles()

		mf := parsed.FileByKey("file")
		if mf == nil {
			resp.WriteInvalidRequest(w, "multipart field \"file\" is required")
			return
		}

		data, err := io.ReadAll(mf.File)
		if err != nil {
			resp.WriteInvalidRequest(w, "could not read uploaded file")
			return
		}

		f := &media.UploadedFile{
			Name:        mf.Header.Filename,
			ContentType: declaredContentType(mf.Header.Filename, mf.Header.Header.Get("Content-Type")),
			Data:        data,
		}

		a, err := st.Ingestor.Ingest(r.Context(), f)
		if err != nil {
			metrics.IngestsTotal.WithLabelValues(kindLabel(f.ContentType), "error").Inc()
			common.LogAndWriteError(w, r, "upload", err)
			return
		}

		metrics.IngestsTotal.WithLabelValues(string(a.Kind), "ok").Inc()
		resp.WriteCreated(w, UploadResponse{Success: true, File: a})
	}
}

// declaredContentType prefers the part's own Content-Type header and falls
// back to the filename extension.
func declaredContentType(filename, headerType string) string {
	if headerType != "" && headerType != "application/octet-stream" {
		return headerType
	}

	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}

	return headerType
}

func kindLabel(contentType string) string {
	if kind, ok := media.KindFromContentType(contentType); ok {
		return string(kind)
	}
	return "unknown"
}
