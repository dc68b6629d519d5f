package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/keyflow/keyflow/pkg/server"
)

// RegisterStatsEndpoint registers the per-flow statistics read.
func RegisterStatsEndpoint(s *server.Server) {
	// GET /{flow}/stats - Statistics derived from the current snapshot
	s.Router.HandleFunc("/{flow}/stats", handleStats(s)).Methods("GET")
}

func handleStats(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow := mux.Vars(r)["flow"]
		if !s.Config.FlowAllowed(flow) {
			respondWithError(w, http.StatusForbidden, "flow is not allowed")
			return
		}
		respondWithJSON(w, http.StatusOK, s.Snapshot.Stats(flow))
	}
}
