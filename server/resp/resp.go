package resp

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteOK(w http.ResponseWriter, object any) {
	writeResp(w, http.StatusOK, object)
}

func WriteCreated(w http.ResponseWriter, object any) {
	writeResp(w, http.StatusCreated, object)
}

func WriteInvalidRequest(w http.ResponseWriter, description string) {
	writeError(w, http.StatusBadRequest, description)
}

func WriteNotFound(w http.ResponseWriter, description string) {
	writeError(w, http.StatusNotFound, description)
}

func WritePayloadTooLarge(w http.ResponseWriter, description string) {
	writeError(w, http.StatusRequestEntityTooLarge, description)
}

func WriteUnsupportedMediaType(w http.ResponseWriter, description string) {
	writeError(w, http.StatusUnsupportedMediaType, description)
}

func WriteUnprocessable(w http.ResponseWriter, description string) {
	writeError(w, http.StatusUnprocessableEntity, description)
}

func WriteInsufficientStorage(w http.ResponseWriter, description string) {
	writeError(w, http.StatusInsufficientStorage, description)
}

func WriteServiceUnavailable(w http.ResponseWriter, description string) {
	writeError(w, http.StatusServiceUnavailable, description)
}

func WriteInternalServerError(w http.ResponseWriter, description string) {
	writeError(w, http.StatusInternalServerError, description)
}

func writeError(w http.ResponseWriter, status int, description string) {
	writeResp(w, status, ErrorResponse{Error: description})
}

func writeResp(w http.ResponseWriter, status int, object any) {
	haveObject := object != nil

	if haveObject {
		w.Header().Add("Content-Type", "application/json")
	}

	w.WriteHeader(status)

	if haveObject {
		err := json.NewEncoder(w).Encode(object)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to write standard HTTP response: %v", err), http.StatusInternalServerError)
		}
	}
}
