package endpoints

import (
	"net/http"

	"github.com/keyflow/keyflow/pkg/server"
)

// RegisterFlowListEndpoint registers the flow discovery endpoint.
func RegisterFlowListEndpoint(s *server.Server) {
	// GET /api/flows - The flow allow-list, for client discovery
	s.Router.HandleFunc("/api/flows", handleListFlows(s)).Methods("GET")
}

func handleListFlows(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Config.Flows())
	}
}
