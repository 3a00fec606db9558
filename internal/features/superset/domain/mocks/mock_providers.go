package mocks

import (
	"context"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"

	"superset-embed/internal/features/superset/domain"
)

// MockHTTPClient is a mock implementation of domain.HTTPClientInterface
type MockHTTPClient struct {
	mock.Mock
}

// Request mocks the Request method
func (m *MockHTTPClient) Request(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	args := m.Called(ctx, method, url, body, headers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

// ReadResponseBody mocks the ReadResponseBody method
func (m *MockHTTPClient) ReadResponseBody(resp *http.Response) ([]byte, error) {
	args := m.Called(resp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockParameterStore is a mock implementation of domain.ParameterStore
type MockParameterStore struct {
	mock.Mock
}

// GetParams mocks the GetParams method
func (m *MockParameterStore) GetParams(ctx context.Context, keys []string) (map[string]string, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// SetParams mocks the SetParams method
func (m *MockParameterStore) SetParams(ctx context.Context, values map[string]string) error {
	args := m.Called(ctx, values)
	return args.Error(0)
}

// MockConfigSource is a mock implementation of domain.ConfigSource
type MockConfigSource struct {
	mock.Mock
}

// Load mocks the Load method
func (m *MockConfigSource) Load(ctx context.Context) (domain.Config, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Config), args.Error(1)
}

// Save mocks the Save method
func (m *MockConfigSource) Save(ctx context.Context, cfg domain.Config) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// MockTokenCache is a mock implementation of domain.TokenCache
type MockTokenCache struct {
	mock.Mock
}

// Get mocks the Get method
func (m *MockTokenCache) Get(key string) (domain.CachedToken, bool) {
	args := m.Called(key)
	return args.Get(0).(domain.CachedToken), args.Bool(1)
}

// Put mocks the Put method
func (m *MockTokenCache) Put(key, token string, ttl time.Duration) {
	m.Called(key, token, ttl)
}

// Clear mocks the Clear method
func (m *MockTokenCache) Clear() {
	m.Called()
}

// MockAuthProvider is a mock implementation of domain.AuthProvider
type MockAuthProvider struct {
	mock.Mock
}

// GetAccessToken mocks the GetAccessToken method
func (m *MockAuthProvider) GetAccessToken(ctx context.Context, cfg domain.Config, forceRefresh bool) (domain.AccessToken, error) {
	args := m.Called(ctx, cfg, forceRefresh)
	return args.Get(0).(domain.AccessToken), args.Error(1)
}

// IssueGuestToken mocks the IssueGuestToken method
func (m *MockAuthProvider) IssueGuestToken(ctx context.Context, cfg domain.Config, accessToken, embeddingUUID string, guest domain.GuestUser) (domain.GuestToken, error) {
	args := m.Called(ctx, cfg, accessToken, embeddingUUID, guest)
	return args.Get(0).(domain.GuestToken), args.Error(1)
}

// ClearCache mocks the ClearCache method
func (m *MockAuthProvider) ClearCache() {
	m.Called()
}

// MockDashboardProvider is a mock implementation of domain.DashboardProvider
type MockDashboardProvider struct {
	mock.Mock
}

// ListEmbeddableDashboards mocks the ListEmbeddableDashboards method
func (m *MockDashboardProvider) ListEmbeddableDashboards(ctx context.Context, cfg domain.Config) ([]domain.Dashboard, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Dashboard), args.Error(1)
}

// ProbeEmbedding mocks the ProbeEmbedding method
func (m *MockDashboardProvider) ProbeEmbedding(ctx context.Context, cfg domain.Config, accessToken string, dashboardID int) (string, bool) {
	args := m.Called(ctx, cfg, accessToken, dashboardID)
	return args.String(0), args.Bool(1)
}

// GetDashboardEmbeddingData mocks the GetDashboardEmbeddingData method
func (m *MockDashboardProvider) GetDashboardEmbeddingData(ctx context.Context, cfg domain.Config, dashboardRef string, guest domain.GuestUser) (domain.EmbeddingData, error) {
	args := m.Called(ctx, cfg, dashboardRef, guest)
	return args.Get(0).(domain.EmbeddingData), args.Error(1)
}

// TestConnection mocks the TestConnection method
func (m *MockDashboardProvider) TestConnection(ctx context.Context, cfg domain.Config) domain.ConnectionReport {
	args := m.Called(ctx, cfg)
	return args.Get(0).(domain.ConnectionReport)
}

// MockEventRecorder is a mock implementation of domain.EventRecorder
type MockEventRecorder struct {
	mock.Mock
}

// Record mocks the Record method
func (m *MockEventRecorder) Record(ctx context.Context, eventType, reason, message string) error {
	args := m.Called(ctx, eventType, reason, message)
	return args.Error(0)
}
