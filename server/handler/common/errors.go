package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/agrovista/mediavault/media"
	"github.com/agrovista/mediavault/server/resp"
	"github.com/agrovista/mediavault/server/util"
)

// LogAndWriteError logs an error with request context and maps the pipeline's
// error kinds onto client responses. Size and capacity errors pass their
// message through so the caller sees the actual-versus-ceiling numbers.
func LogAndWriteError(w http.ResponseWriter, r *http.Request, op string, err error) {
	rl := util.FromContext(r.Context())
	if rl == nil {
		rl = util.WithRequest(log.Default(), r)
	}
	rl.Errorf("media %s failed: %v", op, err)

	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		resp.WriteUnsupportedMediaType(w, err.Error())
	case errors.Is(err, media.ErrSizeExceeded):
		resp.WritePayloadTooLarge(w, err.Error())
	case errors.Is(err, media.ErrCapacity):
		resp.WriteInsufficientStorage(w, err.Error())
	case errors.Is(err, media.ErrEncoding):
		resp.WriteUnprocessable(w, err.Error())
	case errors.Is(err, media.ErrNotFound):
		resp.WriteNotFound(w, "not found")
	case errors.Is(err, media.ErrStoreUnavailable), errors.Is(err, media.ErrStoreQuota):
		resp.WriteServiceUnavailable(w, fmt.Sprintf("%s failed: storage unavailable", op))
	default:
		resp.WriteInternalServerError(w, fmt.Sprintf("%s failed", op))
	}
}
