package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/keyflow/keyflow/pkg/audit"
	"github.com/keyflow/keyflow/pkg/model"
	"github.com/keyflow/keyflow/pkg/server"
)

var validate = validator.New()

// RegisterKeysEndpoints registers the flow key read and submission endpoints.
func RegisterKeysEndpoints(s *server.Server) {
	// GET /{flow}/keys - Current key set of a flow
	s.Router.HandleFunc("/{flow}/keys", handleGetKeys(s)).Methods("GET")

	// POST /{flow}/keys - Submit a host's key set for reconciliation
	s.Router.HandleFunc("/{flow}/keys", handleSubmitKeys(s)).Methods("POST")
}

func handleGetKeys(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow := mux.Vars(r)["flow"]
		if !s.Config.FlowAllowed(flow) {
			respondWithError(w, http.StatusForbidden, "flow is not allowed")
			return
		}

		includeDeprecated := r.URL.Query().Get("include_deprecated") == "true"
		respondWithJSON(w, http.StatusOK, s.Snapshot.Flow(flow, includeDeprecated))
	}
}

func handleSubmitKeys(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow := mux.Vars(r)["flow"]

		var entries []model.SSHKeyEntry
		if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		defer func() { _ = r.Body.Close() }()

		for _, entry := range entries {
			if err := validate.Struct(entry); err != nil {
				respondWithError(w, http.StatusBadRequest, "server and public_key are required on every entry")
				return
			}
		}

		stats, err := s.Engine.Submit(flow, entries)
		if err != nil {
			respondWithDomainError(w, s, err)
			return
		}

		audit.Log(audit.SubmitEvent{
			Flow:              flow,
			ClientIP:          clientIP(r),
			Total:             stats.Total,
			Inserted:          stats.Inserted,
			Unchanged:         stats.Unchanged,
			IgnoredDeprecated: stats.IgnoredDeprecated,
		})

		// Post-submission state of the flow, deprecated entries included so
		// the caller sees the whole picture. The snapshot was rebuilt by the
		// engine before Submit returned.
		respondWithJSON(w, http.StatusOK, s.Snapshot.Flow(flow, true))
	}
}
