// Package testutil provides mock implementations for interfaces defined in
// the metadata library. Configure expectations using testify/mock methods
// (e.g. .On("Load", ...).Return(...)).
package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/printworks/jobmeta/pkg/metadata"
)

// MockCacheManager provides a mock implementation of the
// metadata.CacheManager interface, for tests that need to observe or script
// cache behavior without touching the filesystem.
type MockCacheManager struct {
	mock.Mock
}

// Load mocks the Load method.
func (m *MockCacheManager) Load(sourcePath string) (*metadata.CachePayload, error) {
	args := m.Called(sourcePath)
	payload, _ := args.Get(0).(*metadata.CachePayload)
	return payload, args.Error(1)
}

// Store mocks the Store method.
func (m *MockCacheManager) Store(sourcePath string, rec *metadata.Record) error {
	args := m.Called(sourcePath, rec)
	return args.Error(0)
}
