package usecase

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"superset-embed/internal/features/superset/domain"
	"superset-embed/internal/features/superset/domain/mocks"
)

const baseURL = "https://superset.example.com"

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testConfig() domain.Config {
	return domain.Config{
		BaseURL:      baseURL,
		Username:     "admin",
		Password:     "secret",
		Timeout:      30 * time.Second,
		CacheEnabled: true,
	}
}

func newTestAuthService(httpClient domain.HTTPClientInterface, metrics *MetricsCollector) (*AuthService, *TokenCache, *fakeClock) {
	clock := newFakeClock()
	cache := NewTokenCache()
	cache.now = clock.Now

	service := &AuthService{
		config:   DefaultAuthServiceConfig(),
		cache:    cache,
		upstream: upstream{httpClient: httpClient, metrics: metrics},
		metrics:  metrics,
		now:      clock.Now,
	}
	return service, cache, clock
}

// expectCall registers one response for method+url on the mock HTTP client
func expectCall(m *mocks.MockHTTPClient, method, url string, status int, body string) *mock.Call {
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	m.On("ReadResponseBody", resp).Return([]byte(body), nil)
	return m.On("Request", mock.Anything, method, url, mock.Anything, mock.Anything).Return(resp, nil)
}

// expectBearerCall is expectCall restricted to a specific bearer token
func expectBearerCall(m *mocks.MockHTTPClient, method, url, token string, status int, body string) *mock.Call {
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body + " ")), // keeps responses distinct per token
	}
	m.On("ReadResponseBody", resp).Return([]byte(body), nil)
	return m.On("Request", mock.Anything, method, url, mock.Anything,
		mock.MatchedBy(func(headers map[string]string) bool {
			return headers["Authorization"] == "Bearer "+token
		})).Return(resp, nil)
}

func loginBody(token string) string {
	body, _ := json.Marshal(domain.LoginResponse{AccessToken: token})
	return string(body)
}

func countCalls(m *mocks.MockHTTPClient, url string) int {
	n := 0
	for _, call := range m.Calls {
		if call.Method == "Request" && call.Arguments.String(2) == url {
			n++
		}
	}
	return n
}
