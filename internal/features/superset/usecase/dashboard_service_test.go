package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"superset-embed/internal/common"
	"superset-embed/internal/features/superset/domain"
	"superset-embed/internal/features/superset/domain/mocks"
)

const listURL = baseURL + "/api/v1/dashboard/?q=(page:0,page_size:100)"

func embeddedURL(id string) string {
	return baseURL + "/api/v1/dashboard/" + id + "/embedded"
}

const listBody = `{
	"count": 5,
	"result": [
		{"id": 1, "uuid": "d-1", "dashboard_title": "Zeta Sales", "published": true,
		 "owners": [{"id": 1, "first_name": "Ada", "last_name": "Lovelace"}]},
		{"id": 2, "uuid": "d-2", "dashboard_title": "Alpha Ops", "published": true, "owners": []},
		{"id": 3, "uuid": "d-3", "dashboard_title": "Draft", "published": false, "owners": []},
		{"id": 4, "uuid": "d-4", "dashboard_title": "Beta Finance", "published": true, "owners": []},
		{"id": 5, "uuid": "d-5", "dashboard_title": "Gamma HR", "published": true, "owners": []}
	]
}`

func newTestDashboardService(auth domain.AuthProvider, httpClient domain.HTTPClientInterface) *DashboardService {
	return NewDashboardService(DefaultDashboardServiceConfig(), auth, httpClient, nil).(*DashboardService)
}

func TestNewDashboardService(t *testing.T) {
	mockAuth := new(mocks.MockAuthProvider)
	mockHTTPClient := new(mocks.MockHTTPClient)

	service := NewDashboardService(DashboardServiceConfig{}, mockAuth, mockHTTPClient, nil).(*DashboardService)
	assert.Equal(t, 100, service.config.PageSize)
	assert.Equal(t, 1, service.config.ProbeWorkers, "Zero workers should probe sequentially")
	assert.Equal(t, "guest", service.config.DefaultGuest.Username)

	assert.Panics(t, func() {
		NewDashboardService(DefaultDashboardServiceConfig(), nil, mockHTTPClient, nil)
	}, "Should panic when auth provider is nil")

	assert.Panics(t, func() {
		NewDashboardService(DefaultDashboardServiceConfig(), mockAuth, nil, nil)
	}, "Should panic when HTTP client is nil")
}

func TestListEmbeddableDashboards(t *testing.T) {
	mockAuth := new(mocks.MockAuthProvider)
	mockHTTPClient := new(mocks.MockHTTPClient)
	service := newTestDashboardService(mockAuth, mockHTTPClient)
	cfg := testConfig()

	mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
		Return(domain.AccessToken{Token: "access-1"}, nil).Once()

	expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK, listBody).Once()
	expectCall(mockHTTPClient, http.MethodGet, embeddedURL("1"), http.StatusOK, `{"result":{"uuid":"e-1"}}`).Once()
	expectCall(mockHTTPClient, http.MethodGet, embeddedURL("2"), http.StatusOK, `{"result":{"uuid":"e-2"}}`).Once()
	expectCall(mockHTTPClient, http.MethodGet, embeddedURL("4"), http.StatusNotFound, `{"message":"Not found"}`).Once()
	expectCall(mockHTTPClient, http.MethodGet, embeddedURL("5"), http.StatusInternalServerError, `{}`).Once()

	dashboards, err := service.ListEmbeddableDashboards(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, dashboards, 2, "Only published dashboards with an embedding uuid should be listed")

	assert.Equal(t, "Alpha Ops", dashboards[0].Title, "Dashboards should be sorted by title")
	assert.Equal(t, "e-2", dashboards[0].EmbeddingUUID)
	assert.Equal(t, "Zeta Sales", dashboards[1].Title)
	assert.Equal(t, "e-1", dashboards[1].EmbeddingUUID)
	assert.Equal(t, []string{"Ada Lovelace"}, dashboards[1].Owners)
	assert.True(t, dashboards[1].Published)

	assert.Zero(t, countCalls(mockHTTPClient, embeddedURL("3")), "Unpublished dashboards should not be probed")
	mockAuth.AssertExpectations(t)
	mockHTTPClient.AssertExpectations(t)
}

func TestListEmbeddableDashboardsCancelled(t *testing.T) {
	mockAuth := new(mocks.MockAuthProvider)
	mockHTTPClient := new(mocks.MockHTTPClient)
	service := newTestDashboardService(mockAuth, mockHTTPClient)
	cfg := testConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
		Return(domain.AccessToken{Token: "access-1"}, nil).Once()
	expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK, listBody).Once()
	for _, id := range []string{"1", "2", "4", "5"} {
		expectCall(mockHTTPClient, http.MethodGet, embeddedURL(id), http.StatusOK, `{"result":{"uuid":"e-`+id+`"}}`).
			Run(func(mock.Arguments) { cancel() }).
			Maybe()
	}

	dashboards, err := service.ListEmbeddableDashboards(ctx, cfg)
	require.ErrorIs(t, err, context.Canceled, "A cancelled caller should not get a partial list")
	assert.Nil(t, dashboards)
}

func TestListEmbeddableDashboardsExcludesUnpublished(t *testing.T) {
	mockAuth := new(mocks.MockAuthProvider)
	mockHTTPClient := new(mocks.MockHTTPClient)
	service := newTestDashboardService(mockAuth, mockHTTPClient)
	cfg := testConfig()

	mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
		Return(domain.AccessToken{Token: "access-1"}, nil).Once()
	expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK,
		`{"count":1,"result":[{"id":3,"dashboard_title":"Draft","published":false}]}`).Once()
	// the dashboard would be embeddable if it were probed
	mockHTTPClient.On("Request", mock.Anything, http.MethodGet, embeddedURL("3"), mock.Anything, mock.Anything).
		Return(&http.Response{StatusCode: http.StatusOK}, nil).Maybe()

	dashboards, err := service.ListEmbeddableDashboards(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, dashboards)
	assert.Zero(t, countCalls(mockHTTPClient, embeddedURL("3")))
}

func TestListEmbeddableDashboardsRetriesRejectedCachedToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthProvider)
	mockHTTPClient := new(mocks.MockHTTPClient)
	service := newTestDashboardService(mockAuth, mockHTTPClient)
	cfg := testConfig()
	single := `{"count":1,"result":[{"id":1,"uuid":"d-1","dashboard_title":"Sales","published":true}]}`

	mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
		Return(domain.AccessToken{Token: "stale", FromCache: true}, nil).Once()
	mockAuth.On("GetAccessToken", mock.Anything, cfg, true).
		Return(domain.AccessToken{Token: "fresh"}, nil).Once()

	expectBearerCall(mockHTTPClient, http.MethodGet, listURL, "stale", http.StatusOK, single).Once()
	expectBearerCall(mockHTTPClient, http.MethodGet, embeddedURL("1"), "stale", http.StatusUnauthorized, `{"msg":"Token has been revoked"}`).Once()
	expectBearerCall(mockHTTPClient, http.MethodGet, listURL, "fresh", http.StatusOK, single).Once()
	expectBearerCall(mockHTTPClient, http.MethodGet, embeddedURL("1"), "fresh", http.StatusOK, `{"result":{"uuid":"e-1"}}`).Once()

	dashboards, err := service.ListEmbeddableDashboards(context.Background(), cfg)
	require.NoError(t, err, "The caller should not observe the rejected cached token")
	require.Len(t, dashboards, 1)
	assert.Equal(t, "e-1", dashboards[0].EmbeddingUUID)

	mockAuth.AssertExpectations(t)
	mockHTTPClient.AssertExpectations(t)
}

func TestListEmbeddableDashboardsRetriesOnlyOnce(t *testing.T) {
	mockAuth := new(mocks.MockAuthProvider)
	mockHTTPClient := new(mocks.MockHTTPClient)
	service := newTestDashboardService(mockAuth, mockHTTPClient)
	cfg := testConfig()

	mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
		Return(domain.AccessToken{Token: "stale", FromCache: true}, nil).Once()
	mockAuth.On("GetAccessToken", mock.Anything, cfg, true).
		Return(domain.AccessToken{Token: "fresh"}, nil).Once()

	expectBearerCall(mockHTTPClient, http.MethodGet, listURL, "stale", http.StatusUnauthorized, `{}`).Once()
	expectBearerCall(mockHTTPClient, http.MethodGet, listURL, "fresh", http.StatusUnauthorized, `{}`).Once()

	_, err := service.ListEmbeddableDashboards(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, common.KindAuth, common.KindOf(err))
	assert.Equal(t, 2, countCalls(mockHTTPClient, listURL), "The listing should be retried exactly once")

	mockAuth.AssertExpectations(t)
}

func TestListEmbeddableDashboardsNoRetryForFreshToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthProvider)
	mockHTTPClient := new(mocks.MockHTTPClient)
	service := newTestDashboardService(mockAuth, mockHTTPClient)
	cfg := testConfig()

	mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
		Return(domain.AccessToken{Token: "fresh"}, nil).Once()
	expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK,
		`{"count":1,"result":[{"id":1,"dashboard_title":"Sales","published":true}]}`).Once()
	expectCall(mockHTTPClient, http.MethodGet, embeddedURL("1"), http.StatusUnauthorized, `{}`).Once()

	dashboards, err := service.ListEmbeddableDashboards(context.Background(), cfg)
	require.NoError(t, err, "A probe failure should never abort the listing")
	assert.Empty(t, dashboards, "A failed probe should fail closed")

	mockAuth.AssertNotCalled(t, "GetAccessToken", mock.Anything, cfg, true)
}

func TestListEmbeddableDashboardsErrors(t *testing.T) {
	cfg := testConfig()

	t.Run("token failure", func(t *testing.T) {
		mockAuth := new(mocks.MockAuthProvider)
		mockHTTPClient := new(mocks.MockHTTPClient)
		service := newTestDashboardService(mockAuth, mockHTTPClient)

		mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
			Return(domain.AccessToken{}, common.AuthError(http.StatusUnauthorized, "invalid credentials")).Once()

		_, err := service.ListEmbeddableDashboards(context.Background(), cfg)
		assert.Equal(t, common.KindAuth, common.KindOf(err))
		mockHTTPClient.AssertNotCalled(t, "Request", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("upstream failure", func(t *testing.T) {
		mockAuth := new(mocks.MockAuthProvider)
		mockHTTPClient := new(mocks.MockHTTPClient)
		service := newTestDashboardService(mockAuth, mockHTTPClient)

		mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
			Return(domain.AccessToken{Token: "access-1"}, nil).Once()
		expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusInternalServerError, `oops`).Once()

		_, err := service.ListEmbeddableDashboards(context.Background(), cfg)
		require.Error(t, err)
		assert.Equal(t, common.KindUpstream, common.KindOf(err))

		var upstreamErr *common.Error
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, http.StatusInternalServerError, upstreamErr.Status)
		assert.Equal(t, "oops", upstreamErr.Body)
	})

	t.Run("malformed listing", func(t *testing.T) {
		mockAuth := new(mocks.MockAuthProvider)
		mockHTTPClient := new(mocks.MockHTTPClient)
		service := newTestDashboardService(mockAuth, mockHTTPClient)

		mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
			Return(domain.AccessToken{Token: "access-1"}, nil).Once()
		expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK, `[]`).Once()

		_, err := service.ListEmbeddableDashboards(context.Background(), cfg)
		assert.Equal(t, common.KindUpstream, common.KindOf(err))
	})
}

func TestProbeEmbedding(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		err      error
		expected string
	}{
		{"embedded", http.StatusOK, `{"result":{"uuid":"e-1","allowed_domains":[]}}`, nil, "e-1"},
		{"not configured", http.StatusNotFound, `{"message":"Not found"}`, nil, ""},
		{"missing uuid", http.StatusOK, `{"result":{}}`, nil, ""},
		{"server error", http.StatusInternalServerError, `{}`, nil, ""},
		{"transport error", 0, "", errors.New("connection reset"), ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockAuth := new(mocks.MockAuthProvider)
			mockHTTPClient := new(mocks.MockHTTPClient)
			service := newTestDashboardService(mockAuth, mockHTTPClient)

			if tc.err != nil {
				mockHTTPClient.On("Request", mock.Anything, http.MethodGet, embeddedURL("7"), mock.Anything, mock.Anything).
					Return(nil, tc.err).Once()
			} else {
				expectCall(mockHTTPClient, http.MethodGet, embeddedURL("7"), tc.status, tc.body).Once()
			}

			uuid, ok := service.ProbeEmbedding(context.Background(), testConfig(), "access-1", 7)
			assert.Equal(t, tc.expected, uuid)
			assert.Equal(t, tc.expected != "", ok)
		})
	}
}

func TestGetDashboardEmbeddingData(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = baseURL + "/"
	guest := domain.GuestUser{Username: "viewer", FirstName: "Jane", LastName: "Doe"}

	for _, ref := range []string{"d-2", "2"} {
		t.Run(ref, func(t *testing.T) {
			mockAuth := new(mocks.MockAuthProvider)
			mockHTTPClient := new(mocks.MockHTTPClient)
			service := newTestDashboardService(mockAuth, mockHTTPClient)

			mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
				Return(domain.AccessToken{Token: "access-1"}, nil).Once()
			mockAuth.On("IssueGuestToken", mock.Anything, cfg, "access-1", "e-2", guest).
				Return(domain.GuestToken{Token: "guest-1"}, nil).Once()
			expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK, listBody).Once()
			expectCall(mockHTTPClient, http.MethodGet, embeddedURL("2"), http.StatusOK, `{"result":{"uuid":"e-2"}}`).Once()

			data, err := service.GetDashboardEmbeddingData(context.Background(), cfg, ref, guest)
			require.NoError(t, err)
			assert.Equal(t, domain.EmbeddingData{
				EmbeddingUUID: "e-2",
				GuestToken:    "guest-1",
				Domain:        baseURL,
				Title:         "Alpha Ops",
				DashboardID:   2,
			}, data)

			mockAuth.AssertExpectations(t)
			mockHTTPClient.AssertExpectations(t)
		})
	}
}

func TestGetDashboardEmbeddingDataByEmbeddingUUID(t *testing.T) {
	mockAuth := new(mocks.MockAuthProvider)
	mockHTTPClient := new(mocks.MockHTTPClient)
	service := newTestDashboardService(mockAuth, mockHTTPClient)
	cfg := testConfig()
	single := `{"count":1,"result":[{"id":1,"uuid":"d-1","dashboard_title":"Sales","published":true}]}`

	mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
		Return(domain.AccessToken{Token: "access-1"}, nil).Once()
	mockAuth.On("IssueGuestToken", mock.Anything, cfg, "access-1", "e-1", DefaultDashboardServiceConfig().DefaultGuest).
		Return(domain.GuestToken{Token: "guest-1"}, nil).Once()
	expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK, single).Twice()
	expectCall(mockHTTPClient, http.MethodGet, embeddedURL("1"), http.StatusOK, `{"result":{"uuid":"e-1"}}`).Once()

	data, err := service.GetDashboardEmbeddingData(context.Background(), cfg, "e-1", domain.GuestUser{})
	require.NoError(t, err, "An embedding uuid should resolve and the default guest should be used")
	assert.Equal(t, 1, data.DashboardID)
	assert.Equal(t, "guest-1", data.GuestToken)

	mockAuth.AssertExpectations(t)
}

func TestGetDashboardEmbeddingDataErrors(t *testing.T) {
	cfg := testConfig()

	t.Run("empty reference", func(t *testing.T) {
		service := newTestDashboardService(new(mocks.MockAuthProvider), new(mocks.MockHTTPClient))
		_, err := service.GetDashboardEmbeddingData(context.Background(), cfg, " ", domain.GuestUser{})
		assert.Equal(t, common.KindValidation, common.KindOf(err))
	})

	t.Run("invalid config", func(t *testing.T) {
		mockHTTPClient := new(mocks.MockHTTPClient)
		service := newTestDashboardService(new(mocks.MockAuthProvider), mockHTTPClient)
		_, err := service.GetDashboardEmbeddingData(context.Background(), domain.Config{}, "d-1", domain.GuestUser{})
		assert.Equal(t, common.KindConfig, common.KindOf(err))
		mockHTTPClient.AssertNotCalled(t, "Request", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not embeddable", func(t *testing.T) {
		mockAuth := new(mocks.MockAuthProvider)
		mockHTTPClient := new(mocks.MockHTTPClient)
		service := newTestDashboardService(mockAuth, mockHTTPClient)

		mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
			Return(domain.AccessToken{Token: "access-1"}, nil).Once()
		expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK, listBody).Once()
		expectCall(mockHTTPClient, http.MethodGet, embeddedURL("4"), http.StatusNotFound, `{}`).Once()

		_, err := service.GetDashboardEmbeddingData(context.Background(), cfg, "d-4", domain.GuestUser{})
		assert.Equal(t, common.KindGuestToken, common.KindOf(err))
		mockAuth.AssertNotCalled(t, "IssueGuestToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unpublished is unknown", func(t *testing.T) {
		mockAuth := new(mocks.MockAuthProvider)
		mockHTTPClient := new(mocks.MockHTTPClient)
		service := newTestDashboardService(mockAuth, mockHTTPClient)

		mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
			Return(domain.AccessToken{Token: "access-1"}, nil).Once()
		expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK,
			`{"count":1,"result":[{"id":3,"uuid":"d-3","dashboard_title":"Draft","published":false}]}`).Twice()

		_, err := service.GetDashboardEmbeddingData(context.Background(), cfg, "d-3", domain.GuestUser{})
		assert.Equal(t, common.KindValidation, common.KindOf(err))
	})
}

func TestGetDashboardEmbeddingDataRetriesRejectedGuestToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthProvider)
	mockHTTPClient := new(mocks.MockHTTPClient)
	service := newTestDashboardService(mockAuth, mockHTTPClient)
	cfg := testConfig()
	guest := domain.GuestUser{Username: "viewer"}
	single := `{"count":1,"result":[{"id":1,"uuid":"d-1","dashboard_title":"Sales","published":true}]}`

	mockAuth.On("GetAccessToken", mock.Anything, cfg, false).
		Return(domain.AccessToken{Token: "stale", FromCache: true}, nil).Once()
	mockAuth.On("GetAccessToken", mock.Anything, cfg, true).
		Return(domain.AccessToken{Token: "fresh"}, nil).Once()
	mockAuth.On("IssueGuestToken", mock.Anything, cfg, "stale", "e-1", guest).
		Return(domain.GuestToken{}, common.GuestTokenError(http.StatusUnauthorized, `{}`, "expired")).Once()
	mockAuth.On("IssueGuestToken", mock.Anything, cfg, "fresh", "e-1", guest).
		Return(domain.GuestToken{Token: "guest-1"}, nil).Once()

	expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK, single).Twice()
	expectCall(mockHTTPClient, http.MethodGet, embeddedURL("1"), http.StatusOK, `{"result":{"uuid":"e-1"}}`).Twice()

	data, err := service.GetDashboardEmbeddingData(context.Background(), cfg, "d-1", guest)
	require.NoError(t, err)
	assert.Equal(t, "guest-1", data.GuestToken)

	mockAuth.AssertExpectations(t)
}

func TestTestConnection(t *testing.T) {
	cfg := testConfig()

	t.Run("invalid config", func(t *testing.T) {
		mockHTTPClient := new(mocks.MockHTTPClient)
		service := newTestDashboardService(new(mocks.MockAuthProvider), mockHTTPClient)

		report := service.TestConnection(context.Background(), domain.Config{Username: "a", Password: "b", Timeout: cfg.Timeout})
		assert.False(t, report.OK)
		assert.Contains(t, report.Message, "url")
		assert.Nil(t, report.Details)
		mockHTTPClient.AssertNotCalled(t, "Request", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		mockAuth := new(mocks.MockAuthProvider)
		mockHTTPClient := new(mocks.MockHTTPClient)
		service := newTestDashboardService(mockAuth, mockHTTPClient)

		expectCall(mockHTTPClient, http.MethodGet, baseURL+"/health", http.StatusOK, `OK`).Once()
		mockAuth.On("GetAccessToken", mock.Anything, cfg, true).
			Return(domain.AccessToken{Token: "access-1"}, nil).Once()
		expectCall(mockHTTPClient, http.MethodGet, listURL, http.StatusOK, listBody).Once()

		report := service.TestConnection(context.Background(), cfg)
		assert.True(t, report.OK)
		require.NotNil(t, report.Details)
		assert.Equal(t, domain.ConnectionDetails{
			Health:         "ok",
			Auth:           "ok",
			APIAccess:      "ok",
			DashboardCount: 5,
		}, *report.Details)
	})

	t.Run("unreachable", func(t *testing.T) {
		mockAuth := new(mocks.MockAuthProvider)
		mockHTTPClient := new(mocks.MockHTTPClient)
		service := newTestDashboardService(mockAuth, mockHTTPClient)

		mockHTTPClient.On("Request", mock.Anything, http.MethodGet, baseURL+"/health", mock.Anything, mock.Anything).
			Return(nil, errors.New("no such host")).Once()

		report := service.TestConnection(context.Background(), cfg)
		assert.False(t, report.OK)
		assert.Equal(t, "unreachable", report.Details.Health)
		assert.Contains(t, report.Message, "cannot reach superset")
		mockAuth.AssertNotCalled(t, "GetAccessToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockAuth := new(mocks.MockAuthProvider)
		mockHTTPClient := new(mocks.MockHTTPClient)
		service := newTestDashboardService(mockAuth, mockHTTPClient)

		expectCall(mockHTTPClient, http.MethodGet, baseURL+"/health", http.StatusOK, `OK`).Once()
		mockAuth.On("GetAccessToken", mock.Anything, cfg, true).
			Return(domain.AccessToken{}, common.AuthError(http.StatusUnauthorized, "invalid credentials")).Once()

		report := service.TestConnection(context.Background(), cfg)
		assert.False(t, report.OK)
		assert.Equal(t, "ok", report.Details.Health)
		assert.Equal(t, "failed", report.Details.Auth)
		assert.Equal(t, "invalid credentials", report.Message)
	})
}
