package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/keyflow/keyflow/pkg/server"
	"github.com/keyflow/keyflow/pkg/server/store"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithDomainError maps the error taxonomy onto status codes and, for
// connection-class failures, reports the error to the server supervisor after
// the response is written. Connection loss is fatal by design; the caller
// still gets a well-formed 500 first.
func respondWithDomainError(w http.ResponseWriter, s *server.Server, err error) {
	var validationErr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrFlowNotAllowed):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error())
	case store.IsConnectionError(err):
		respondWithError(w, http.StatusInternalServerError, "persistence failure")
		s.ReportFatal(err)
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
