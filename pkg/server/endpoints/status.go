package endpoints

import (
	"net/http"

	"github.com/keyflow/keyflow/pkg/server"
	"github.com/keyflow/keyflow/pkg/server/store"
)

// StatusResponse represents the response from /
type StatusResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// RegisterStatusEndpoints registers the status endpoint
func RegisterStatusEndpoints(s *server.Server) {
	healthStore := s.HealthStore

	// GET / - Status page (no auth required)
	s.Router.HandleFunc("/", handleStatus(s, healthStore)).Methods("GET")
}

func handleStatus(s *server.Server, healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := StatusResponse{
			Status:   "ok",
			Version:  server.Version,
			Database: "ok",
		}

		if err := healthStore.CheckConnectivity(); err != nil {
			response.Status = "degraded"
			response.Database = "unreachable"
			respondWithJSON(w, http.StatusServiceUnavailable, response)
			if store.IsConnectionError(err) {
				s.ReportFatal(err)
			}
			return
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}
