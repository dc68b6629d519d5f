package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/keyflow/keyflow/pkg/audit"
	"github.com/keyflow/keyflow/pkg/server"
)

// BulkRequest is the body of the bulk lifecycle endpoints.
type BulkRequest struct {
	Servers []string `json:"servers" validate:"required,min=1"`
}

// RegisterLifecycleEndpoints registers the deprecate/restore/delete
// endpoints. The fixed-suffix routes are registered before the bare
// "/{flow}/keys/{server}" route so they win the match.
func RegisterLifecycleEndpoints(s *server.Server) {
	// POST /{flow}/keys/{server}/restore - Restore a deprecated host
	s.Router.HandleFunc("/{flow}/keys/{server:.+}/restore", handleRestore(s)).Methods("POST")

	// DELETE /{flow}/keys/{server}/delete - Permanently delete a host from a flow
	s.Router.HandleFunc("/{flow}/keys/{server:.+}/delete", handlePermanentDelete(s)).Methods("DELETE")

	// DELETE /{flow}/keys/{server} - Deprecate a host
	s.Router.HandleFunc("/{flow}/keys/{server:.+}", handleDeprecate(s)).Methods("DELETE")

	// POST /{flow}/bulk-deprecate, POST /{flow}/bulk-restore
	s.Router.HandleFunc("/{flow}/bulk-deprecate", handleBulk(s, true)).Methods("POST")
	s.Router.HandleFunc("/{flow}/bulk-restore", handleBulk(s, false)).Methods("POST")
}

func lifecycleVars(r *http.Request) (flow, host string, err error) {
	vars := mux.Vars(r)
	host, err = url.PathUnescape(vars["server"])
	return vars["flow"], host, err
}

func handleDeprecate(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow, host, err := lifecycleVars(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		affected, err := s.Lifecycle.Deprecate(host, flow)
		if err != nil {
			respondWithDomainError(w, s, err)
			return
		}
		if affected == 0 {
			respondWithJSON(w, http.StatusNotFound, map[string]interface{}{
				"message":        fmt.Sprintf("no active keys for server %q in flow %q", host, flow),
				"affected_count": 0,
			})
			return
		}

		audit.Log(audit.DeprecateEvent{Flow: flow, Host: host, ClientIP: clientIP(r), Affected: affected})
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":        fmt.Sprintf("deprecated %d keys for server %q", affected, host),
			"affected_count": affected,
		})
	}
}

func handleRestore(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow, host, err := lifecycleVars(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		affected, err := s.Lifecycle.Restore(host, flow)
		if err != nil {
			respondWithDomainError(w, s, err)
			return
		}
		if affected == 0 {
			respondWithJSON(w, http.StatusNotFound, map[string]interface{}{
				"message":        fmt.Sprintf("no deprecated keys for server %q in flow %q", host, flow),
				"affected_count": 0,
			})
			return
		}

		audit.Log(audit.RestoreEvent{Flow: flow, Host: host, ClientIP: clientIP(r), Affected: affected})
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":        fmt.Sprintf("restored %d keys for server %q", affected, host),
			"affected_count": affected,
		})
	}
}

func handlePermanentDelete(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow, host, err := lifecycleVars(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := s.Lifecycle.PermanentlyDelete(host, flow)
		if err != nil {
			respondWithDomainError(w, s, err)
			return
		}
		if result.AssociationsRemoved == 0 && result.RecordsRemoved == 0 {
			respondWithJSON(w, http.StatusNotFound, map[string]interface{}{
				"message":        fmt.Sprintf("no keys for server %q in flow %q", host, flow),
				"affected_count": 0,
			})
			return
		}

		audit.Log(audit.DeleteEvent{
			Flow:                flow,
			Host:                host,
			ClientIP:            clientIP(r),
			AssociationsRemoved: result.AssociationsRemoved,
			RecordsRemoved:      result.RecordsRemoved,
		})
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":              fmt.Sprintf("deleted server %q from flow %q", host, flow),
			"affected_count":       result.AffectedCount(),
			"associations_removed": result.AssociationsRemoved,
			"records_removed":      result.RecordsRemoved,
		})
	}
}

func handleBulk(s *server.Server, deprecate bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow := mux.Vars(r)["flow"]

		var req BulkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		defer func() { _ = r.Body.Close() }()
		if err := validate.Struct(req); err != nil {
			respondWithError(w, http.StatusBadRequest, "servers is required and must not be empty")
			return
		}

		var (
			affected int64
			err      error
			verb     string
		)
		if deprecate {
			verb = "bulk-deprecate"
			affected, err = s.Lifecycle.BulkDeprecate(req.Servers, flow)
		} else {
			verb = "bulk-restore"
			affected, err = s.Lifecycle.BulkRestore(req.Servers, flow)
		}
		if err != nil {
			respondWithDomainError(w, s, err)
			return
		}

		audit.Log(audit.BulkLifecycleEvent{
			Verb:     verb,
			Flow:     flow,
			ClientIP: clientIP(r),
			Hosts:    len(req.Servers),
			Affected: affected,
		})
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":        fmt.Sprintf("%s touched %d keys across %d servers", verb, affected, len(req.Servers)),
			"affected_count": affected,
		})
	}
}
