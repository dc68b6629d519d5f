package endpoints

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keyflow/keyflow/pkg/server"
	"github.com/keyflow/keyflow/pkg/server/middleware"
)

// RegisterAll registers every API endpoint on the server. Flow-scoped routes
// go last: gorilla/mux matches in registration order, and "/{flow}/..."
// would otherwise swallow the fixed paths.
func RegisterAll(s *server.Server) {
	s.Router.Use(middleware.Metrics)

	RegisterStatusEndpoints(s)
	s.Router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	RegisterFlowListEndpoint(s)

	RegisterKeysEndpoints(s)
	RegisterLifecycleEndpoints(s)
	RegisterStatsEndpoint(s)
}
