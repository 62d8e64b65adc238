package assets

import (
	"errors"
	"net/http"

	"github.com/agrovista/mediavault/media"
	"github.com/agrovista/mediavault/server/handler/common"
	"github.com/agrovista/mediavault/server/resp"
	"github.com/agrovista/mediavault/server/state"
)

// ListResponse is the body of the listing endpoint.
type ListResponse struct {
	Files []media.Asset `json:"files"`
}

// GetResponse is the body of the single-asset endpoint.
type GetResponse struct {
	File *media.Asset `json:"file"`
}

// DeleteResponse is the body of a successful deletion.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// HandleList returns every stored asset record.
func HandleList(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := st.Store.GetAll(r.Context())
		if err != nil {
			common.LogAndWriteError(w, r, "list media", err)
			return
		}

		resp.WriteOK(w, ListResponse{Files: files})
	}
}

// HandleGet returns one asset record. Every fetch counts as a use: the
// asset's recency metadata is touched as a side effect.
func HandleGet(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		a, err := st.Store.GetByID(r.Context(), id)
		if err != nil {
			common.LogAndWriteError(w, r, "get media", err)
			return
		}

		if err := st.Store.Touch(r.Context(), id); err != nil {
			common.LogAndWriteError(w, r, "touch media", err)
			return
		}

		resp.WriteOK(w, GetResponse{File: a})
	}
}

// HandleDelete removes one asset. Unlike the store contract, a missing id is
// a 404 here: this is an explicit user-facing API, not an internal cache
// operation.
func HandleDelete(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		if _, err := st.Store.GetByID(r.Context(), id); err != nil {
			if errors.Is(err, media.ErrNotFound) {
				resp.WriteNotFound(w, "not found")
				return
			}
			common.LogAndWriteError(w, r, "delete media", err)
			return
		}

		if err := st.Store.Remove(r.Context(), id); err != nil {
			common.LogAndWriteError(w, r, "delete media", err)
			return
		}

		resp.WriteOK(w, DeleteResponse{Success: true})
	}
}
