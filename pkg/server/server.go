// Package server wires the HTTP surface: the router, the engine and
// lifecycle manager behind it, the shared flow snapshot, and the fail-fast
// supervisor for broken database connections.
package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/keyflow/keyflow/pkg/config"
	"github.com/keyflow/keyflow/pkg/lifecycle"
	"github.com/keyflow/keyflow/pkg/model"
	"github.com/keyflow/keyflow/pkg/reconcile"
	"github.com/keyflow/keyflow/pkg/server/store"
	"github.com/keyflow/keyflow/pkg/snapshot"
)

// Version is reported by the status endpoint.
const Version = "0.1.0"

// Submitter is the reconciliation engine as the endpoints see it.
type Submitter interface {
	Submit(flow string, entries []model.SSHKeyEntry) (reconcile.SubmissionStats, error)
}

// LifecycleManager is the lifecycle state machine as the endpoints see it.
type LifecycleManager interface {
	Deprecate(host, flow string) (int64, error)
	Restore(host, flow string) (int64, error)
	PermanentlyDelete(host, flow string) (lifecycle.DeleteResult, error)
	BulkDeprecate(hosts []string, flow string) (int64, error)
	BulkRestore(hosts []string, flow string) (int64, error)
}

// Server carries everything the handlers need.
type Server struct {
	Router      *mux.Router
	Engine      Submitter
	Lifecycle   LifecycleManager
	Snapshot    *snapshot.Snapshot
	Config      *config.Config
	HealthStore store.HealthStore

	srv    *http.Server
	fatalc chan error
}

// NewServer assembles a Server listening on host:port.
func NewServer(
	cfg *config.Config,
	engine Submitter,
	manager LifecycleManager,
	snap *snapshot.Snapshot,
	health store.HealthStore,
	host string,
	port string,
) *Server {
	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler:      handlers.LoggingHandler(os.Stdout, router),
		Addr:         host + ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:      router,
		Engine:      engine,
		Lifecycle:   manager,
		Snapshot:    snap,
		Config:      cfg,
		HealthStore: health,
		srv:         srv,
		fatalc:      make(chan error, 1),
	}
}

// ReportFatal records a connection-class persistence failure. The first
// report wins; the supervisor in Run picks it up and stops the process. A
// broken database connection must surface as a hard failure, never as a
// silently stale read.
func (s *Server) ReportFatal(err error) {
	select {
	case s.fatalc <- err:
	default:
	}
}

// Run starts the listener and supervises it. It returns when the listener
// fails or when a handler reports a fatal store error; in the latter case
// in-flight requests get a short grace period before the listener shuts
// down, and the fatal error is returned to the caller for a non-zero exit.
func (s *Server) Run() error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		return err
	case err := <-s.fatalc:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(ctx)
		return err
	}
}
