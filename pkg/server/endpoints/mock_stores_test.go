package endpoints

import (
	"github.com/stretchr/testify/mock"

	"github.com/keyflow/keyflow/pkg/lifecycle"
	"github.com/keyflow/keyflow/pkg/model"
	"github.com/keyflow/keyflow/pkg/reconcile"
	"github.com/keyflow/keyflow/pkg/server/store"
)

// MockSubmitter implements server.Submitter for testing using testify/mock
type MockSubmitter struct {
	mock.Mock
}

func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{}
}

func (m *MockSubmitter) Submit(flow string, entries []model.SSHKeyEntry) (reconcile.SubmissionStats, error) {
	args := m.Called(flow, entries)
	return args.Get(0).(reconcile.SubmissionStats), args.Error(1)
}

// MockLifecycleManager implements server.LifecycleManager for testing using
// testify/mock
type MockLifecycleManager struct {
	mock.Mock
}

func NewMockLifecycleManager() *MockLifecycleManager {
	return &MockLifecycleManager{}
}

func (m *MockLifecycleManager) Deprecate(host, flow string) (int64, error) {
	args := m.Called(host, flow)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLifecycleManager) Restore(host, flow string) (int64, error) {
	args := m.Called(host, flow)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLifecycleManager) PermanentlyDelete(host, flow string) (lifecycle.DeleteResult, error) {
	args := m.Called(host, flow)
	return args.Get(0).(lifecycle.DeleteResult), args.Error(1)
}

func (m *MockLifecycleManager) BulkDeprecate(hosts []string, flow string) (int64, error) {
	args := m.Called(hosts, flow)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLifecycleManager) BulkRestore(hosts []string, flow string) (int64, error) {
	args := m.Called(hosts, flow)
	return args.Get(0).(int64), args.Error(1)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity() error {
	args := m.Called()
	return args.Error(0)
}

// staticSource feeds canned rows into a snapshot rebuild.
type staticSource struct {
	rows []store.SnapshotRow
}

func (s staticSource) SnapshotRows() ([]store.SnapshotRow, error) {
	return s.rows, nil
}
