package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keyflow/keyflow/pkg/lifecycle"
	"github.com/keyflow/keyflow/pkg/server/store"
)

func TestDeprecateEndpoint(t *testing.T) {
	t.Run("deprecating an active server reports the affected count", func(t *testing.T) {
		manager := NewMockLifecycleManager()
		manager.On("Deprecate", "web01.example.com", "prod").Return(int64(2), nil)

		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), manager, NewMockHealthStore())

		req := httptest.NewRequest("DELETE", "/prod/keys/web01.example.com", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(2), resp["affected_count"])
		manager.AssertExpectations(t)
	})

	t.Run("unknown server yields 404 with a zero count", func(t *testing.T) {
		manager := NewMockLifecycleManager()
		manager.On("Deprecate", "ghost.example.com", "prod").Return(int64(0), nil)

		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), manager, NewMockHealthStore())

		req := httptest.NewRequest("DELETE", "/prod/keys/ghost.example.com", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(0), resp["affected_count"])
	})

	t.Run("encoded server names are unescaped before dispatch", func(t *testing.T) {
		manager := NewMockLifecycleManager()
		manager.On("Deprecate", "web01,10.0.0.5", "prod").Return(int64(1), nil)

		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), manager, NewMockHealthStore())

		req := httptest.NewRequest("DELETE", "/prod/keys/web01%2C10.0.0.5", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		manager.AssertExpectations(t)
	})

	t.Run("connection failure maps to a persistence error", func(t *testing.T) {
		manager := NewMockLifecycleManager()
		manager.On("Deprecate", "web01.example.com", "prod").
			Return(int64(0), &store.ConnectionError{Err: errors.New("connection refused")})

		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), manager, NewMockHealthStore())

		req := httptest.NewRequest("DELETE", "/prod/keys/web01.example.com", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "persistence failure")
	})
}

func TestRestoreEndpoint(t *testing.T) {
	t.Run("restoring a deprecated server succeeds", func(t *testing.T) {
		manager := NewMockLifecycleManager()
		manager.On("Restore", "web01.example.com", "prod").Return(int64(1), nil)

		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), manager, NewMockHealthStore())

		req := httptest.NewRequest("POST", "/prod/keys/web01.example.com/restore", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		manager.AssertExpectations(t)
	})

	t.Run("nothing to restore yields 404", func(t *testing.T) {
		manager := NewMockLifecycleManager()
		manager.On("Restore", "web01.example.com", "prod").Return(int64(0), nil)

		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), manager, NewMockHealthStore())

		req := httptest.NewRequest("POST", "/prod/keys/web01.example.com/restore", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPermanentDeleteEndpoint(t *testing.T) {
	t.Run("delete reports both counters", func(t *testing.T) {
		manager := NewMockLifecycleManager()
		manager.On("PermanentlyDelete", "web01.example.com", "prod").
			Return(lifecycle.DeleteResult{AssociationsRemoved: 3, RecordsRemoved: 1}, nil)

		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), manager, NewMockHealthStore())

		req := httptest.NewRequest("DELETE", "/prod/keys/web01.example.com/delete", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(3), resp["associations_removed"])
		assert.Equal(t, float64(1), resp["records_removed"])
		assert.Equal(t, float64(3), resp["affected_count"])
		manager.AssertExpectations(t)
	})

	t.Run("delete of an absent server yields 404", func(t *testing.T) {
		manager := NewMockLifecycleManager()
		manager.On("PermanentlyDelete", "ghost.example.com", "prod").
			Return(lifecycle.DeleteResult{}, nil)

		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), manager, NewMockHealthStore())

		req := httptest.NewRequest("DELETE", "/prod/keys/ghost.example.com/delete", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBulkEndpoints(t *testing.T) {
	t.Run("bulk deprecate touches every listed server atomically", func(t *testing.T) {
		hosts := []string{"web01.example.com", "web02.example.com"}
		manager := NewMockLifecycleManager()
		manager.On("BulkDeprecate", hosts, "prod").Return(int64(4), nil)

		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), manager, NewMockHealthStore())

		body, _ := json.Marshal(BulkRequest{Servers: hosts})
		req := httptest.NewRequest("POST", "/prod/bulk-deprecate", strings.NewReader(string(body)))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(4), resp["affected_count"])
		manager.AssertExpectations(t)
	})

	t.Run("bulk restore with no matches still succeeds", func(t *testing.T) {
		hosts := []string{"ghost.example.com"}
		manager := NewMockLifecycleManager()
		manager.On("BulkRestore", hosts, "prod").Return(int64(0), nil)

		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), manager, NewMockHealthStore())

		body, _ := json.Marshal(BulkRequest{Servers: hosts})
		req := httptest.NewRequest("POST", "/prod/bulk-restore", strings.NewReader(string(body)))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(0), resp["affected_count"])
	})

	t.Run("empty server list is rejected", func(t *testing.T) {
		s := newTestServer(t, []string{"prod"}, nil, NewMockSubmitter(), NewMockLifecycleManager(), NewMockHealthStore())

		req := httptest.NewRequest("POST", "/prod/bulk-deprecate", strings.NewReader(`{"servers":[]}`))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
