package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"superset-embed/internal/common"
	"superset-embed/internal/features/superset/domain"
)

// DashboardServiceConfig holds the configuration for the dashboard service
type DashboardServiceConfig struct {
	// PageSize is the fixed page size of the dashboard listing
	PageSize int

	// ProbeWorkers bounds concurrent embedding probes; 1 probes sequentially
	ProbeWorkers int

	// DefaultGuest is used when a caller supplies no guest identity
	DefaultGuest domain.GuestUser
}

// DefaultDashboardServiceConfig returns the default dashboard service configuration
func DefaultDashboardServiceConfig() DashboardServiceConfig {
	return DashboardServiceConfig{
		PageSize:     100,
		ProbeWorkers: 4,
		DefaultGuest: domain.GuestUser{
			Username:  "guest",
			FirstName: "Guest",
			LastName:  "User",
		},
	}
}

// DashboardService implements domain.DashboardProvider
type DashboardService struct {
	config   DashboardServiceConfig
	auth     domain.AuthProvider
	upstream upstream
	metrics  *MetricsCollector
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	config DashboardServiceConfig,
	auth domain.AuthProvider,
	httpClient domain.HTTPClientInterface,
	metrics *MetricsCollector,
) domain.DashboardProvider {
	if auth == nil {
		panic("auth provider cannot be nil")
	}
	if httpClient == nil {
		panic("HTTP client cannot be nil")
	}

	defaults := DefaultDashboardServiceConfig()
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}
	if config.ProbeWorkers <= 0 {
		config.ProbeWorkers = 1
	}
	if config.DefaultGuest.Username == "" {
		config.DefaultGuest = defaults.DefaultGuest
	}

	return &DashboardService{
		config:   config,
		auth:     auth,
		upstream: upstream{httpClient: httpClient, metrics: metrics},
		metrics:  metrics,
	}
}

// withAccessToken runs op with an access token. When op fails with a 401 and the token
// came from cache, op is run exactly once more with a freshly issued token.
// op receives fromCache so it can decide whether a 401 is worth escalating.
func (s *DashboardService) withAccessToken(
	ctx context.Context,
	cfg domain.Config,
	op func(token string, fromCache bool) error,
) error {
	token, err := s.auth.GetAccessToken(ctx, cfg, false)
	if err != nil {
		return err
	}

	err = op(token.Token, token.FromCache)
	if err == nil || !token.FromCache || !common.IsUnauthorized(err) {
		return err
	}

	common.LoggerFromContext(ctx).Info("cached superset token rejected, retrying with a fresh login",
		"username", cfg.Username)
	s.metrics.RecordTokenRetry()

	token, err = s.auth.GetAccessToken(ctx, cfg, true)
	if err != nil {
		return err
	}
	return op(token.Token, false)
}

// ListEmbeddableDashboards returns published dashboards with an embedding UUID, sorted by title
func (s *DashboardService) ListEmbeddableDashboards(ctx context.Context, cfg domain.Config) ([]domain.Dashboard, error) {
	var dashboards []domain.Dashboard

	err := s.withAccessToken(ctx, cfg, func(token string, fromCache bool) error {
		var err error
		dashboards, err = s.listEmbeddable(ctx, cfg, token, fromCache)
		return err
	})
	if err != nil {
		return nil, err
	}

	return dashboards, nil
}

// listEmbeddable lists, filters and probes dashboards with one token.
// A probe 401 is returned only when escalate is set; otherwise every probe failure fails closed.
func (s *DashboardService) listEmbeddable(
	ctx context.Context,
	cfg domain.Config,
	token string,
	escalate bool,
) ([]domain.Dashboard, error) {
	listing, err := s.fetchDashboards(ctx, cfg, token)
	if err != nil {
		return nil, err
	}

	published := make([]domain.Dashboard, 0, len(listing.Result))
	for _, item := range listing.Result {
		if item.Published {
			published = append(published, toDashboard(item))
		}
	}

	uuids := make([]string, len(published))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.ProbeWorkers)

	for i, dashboard := range published {
		i, dashboard := i, dashboard
		g.Go(func() error {
			uuid, err := s.probe(gctx, cfg, token, dashboard.ID)
			if err != nil {
				if escalate && common.IsUnauthorized(err) {
					return err
				}
				common.LoggerFromContext(ctx).Debug("embedding probe failed, treating dashboard as not embeddable",
					"dashboard_id", dashboard.ID,
					"error", err)
				return nil
			}
			uuids[i] = uuid
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// probes swallow their own failures, so a cancelled caller would otherwise see a partial list
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embeddable := make([]domain.Dashboard, 0, len(published))
	for i, dashboard := range published {
		if uuids[i] == "" {
			continue
		}
		dashboard.EmbeddingUUID = uuids[i]
		embeddable = append(embeddable, dashboard)
	}

	slices.SortStableFunc(embeddable, func(a, b domain.Dashboard) int {
		return strings.Compare(a.Title, b.Title)
	})

	return embeddable, nil
}

// fetchDashboards performs GET /api/v1/dashboard/ with the fixed page size
func (s *DashboardService) fetchDashboards(ctx context.Context, cfg domain.Config, token string) (domain.DashboardListResponse, error) {
	path := fmt.Sprintf(dashboardListPath, s.config.PageSize)

	status, body, err := s.upstream.do(ctx, cfg, "list_dashboards", http.MethodGet, path, token, nil)
	if err != nil {
		return domain.DashboardListResponse{}, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return domain.DashboardListResponse{}, common.AuthError(status, "access token rejected by superset")
	case http.StatusForbidden:
		return domain.DashboardListResponse{}, common.AuthError(status, "insufficient permissions")
	default:
		return domain.DashboardListResponse{}, common.UpstreamError("list dashboards", status, string(body))
	}

	var listing domain.DashboardListResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return domain.DashboardListResponse{}, common.MalformedResponseError("list dashboards", string(body))
	}

	return listing, nil
}

// ProbeEmbedding returns the embedding UUID of a dashboard.
// Every failure is reported as not embeddable.
func (s *DashboardService) ProbeEmbedding(ctx context.Context, cfg domain.Config, accessToken string, dashboardID int) (string, bool) {
	uuid, err := s.probe(ctx, cfg, accessToken, dashboardID)
	if err != nil {
		common.LoggerFromContext(ctx).Debug("embedding probe failed",
			"dashboard_id", dashboardID,
			"error", err)
		return "", false
	}
	return uuid, uuid != ""
}

// probe performs GET /api/v1/dashboard/{id}/embedded.
// 404 and a missing uuid yield an empty result without error.
func (s *DashboardService) probe(ctx context.Context, cfg domain.Config, token string, dashboardID int) (string, error) {
	path := fmt.Sprintf(embeddedPathFmt, dashboardID)

	status, body, err := s.upstream.do(ctx, cfg, "probe_embedding", http.MethodGet, path, token, nil)
	if err != nil {
		return "", err
	}

	switch status {
	case http.StatusOK:
		var embedded domain.EmbeddedResponse
		if err := json.Unmarshal(body, &embedded); err != nil {
			return "", common.MalformedResponseError("probe embedding", string(body))
		}
		return strings.TrimSpace(embedded.Result.UUID), nil
	case http.StatusNotFound:
		return "", nil
	case http.StatusUnauthorized:
		return "", common.AuthError(status, "access token rejected by superset")
	default:
		return "", common.UpstreamError("probe embedding", status, string(body))
	}
}

// GetDashboardEmbeddingData resolves dashboardRef and mints a guest token for it.
// dashboardRef may be the dashboard uuid, its numeric id, or its embedding uuid.
func (s *DashboardService) GetDashboardEmbeddingData(
	ctx context.Context,
	cfg domain.Config,
	dashboardRef string,
	guest domain.GuestUser,
) (domain.EmbeddingData, error) {
	dashboardRef = strings.TrimSpace(dashboardRef)
	if dashboardRef == "" {
		return domain.EmbeddingData{}, common.ValidationError("dashboard reference is required")
	}
	if err := domain.ValidateConfig(cfg); err != nil {
		return domain.EmbeddingData{}, err
	}
	if guest.Username == "" {
		guest = s.config.DefaultGuest
	}

	var data domain.EmbeddingData
	err := s.withAccessToken(ctx, cfg, func(token string, fromCache bool) error {
		dashboard, err := s.resolve(ctx, cfg, token, dashboardRef, fromCache)
		if err != nil {
			return err
		}

		guestToken, err := s.auth.IssueGuestToken(ctx, cfg, token, dashboard.EmbeddingUUID, guest)
		if err != nil {
			return err
		}

		data = domain.EmbeddingData{
			EmbeddingUUID: dashboard.EmbeddingUUID,
			GuestToken:    guestToken.Token,
			Domain:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Title:         dashboard.Title,
			DashboardID:   dashboard.ID,
		}
		return nil
	})
	if err != nil {
		return domain.EmbeddingData{}, err
	}

	common.LoggerFromContext(ctx).Info("issued guest token",
		"dashboard_id", data.DashboardID,
		"embedding_uuid", data.EmbeddingUUID,
		"guest", guest.Username)

	return data, nil
}

// resolve finds the published dashboard named by ref and its embedding UUID
func (s *DashboardService) resolve(
	ctx context.Context,
	cfg domain.Config,
	token string,
	ref string,
	escalate bool,
) (domain.Dashboard, error) {
	listing, err := s.fetchDashboards(ctx, cfg, token)
	if err != nil {
		return domain.Dashboard{}, err
	}

	id, idErr := strconv.Atoi(ref)
	for _, item := range listing.Result {
		if !item.Published {
			continue
		}
		if item.UUID != ref && (idErr != nil || item.ID != id) {
			continue
		}

		dashboard := toDashboard(item)
		uuid, err := s.probe(ctx, cfg, token, dashboard.ID)
		if err != nil && escalate && common.IsUnauthorized(err) {
			return domain.Dashboard{}, err
		}
		if uuid == "" {
			return domain.Dashboard{}, common.GuestTokenError(0, "",
				fmt.Sprintf("dashboard %q is not configured for embedding", dashboard.Title))
		}
		dashboard.EmbeddingUUID = uuid
		return dashboard, nil
	}

	// ref may be an embedding uuid, which only the probes reveal
	embeddable, err := s.listEmbeddable(ctx, cfg, token, escalate)
	if err != nil {
		return domain.Dashboard{}, err
	}
	for _, dashboard := range embeddable {
		if dashboard.EmbeddingUUID == ref {
			return dashboard, nil
		}
	}

	return domain.Dashboard{}, common.ValidationError("dashboard %q is not available for embedding", ref)
}

// TestConnection checks health, login and API access in order, stopping at the first failure
func (s *DashboardService) TestConnection(ctx context.Context, cfg domain.Config) domain.ConnectionReport {
	if problems := cfg.Validate(); len(problems) > 0 {
		return domain.ConnectionReport{
			OK:      false,
			Message: common.PublicMessage(common.NewConfigError(problems)),
		}
	}

	details := &domain.ConnectionDetails{}
	fail := func(err error) domain.ConnectionReport {
		return domain.ConnectionReport{OK: false, Message: common.PublicMessage(err), Details: details}
	}

	status, body, err := s.upstream.do(ctx, cfg, "health", http.MethodGet, healthPath, "", nil)
	if err != nil {
		details.Health = "unreachable"
		return fail(err)
	}
	if status != http.StatusOK {
		details.Health = fmt.Sprintf("HTTP %d", status)
		return fail(common.UpstreamError("health check", status, string(body)))
	}
	details.Health = "ok"

	token, err := s.auth.GetAccessToken(ctx, cfg, true)
	if err != nil {
		details.Auth = "failed"
		return fail(err)
	}
	details.Auth = "ok"

	listing, err := s.fetchDashboards(ctx, cfg, token.Token)
	if err != nil {
		details.APIAccess = "failed"
		return fail(err)
	}
	details.APIAccess = "ok"
	details.DashboardCount = listing.Count
	if details.DashboardCount == 0 {
		details.DashboardCount = len(listing.Result)
	}

	return domain.ConnectionReport{
		OK:      true,
		Message: fmt.Sprintf("connected to superset, %d dashboards visible", details.DashboardCount),
		Details: details,
	}
}

func toDashboard(item domain.DashboardListItem) domain.Dashboard {
	owners := make([]string, 0, len(item.Owners))
	for _, owner := range item.Owners {
		name := strings.TrimSpace(owner.FirstName + " " + owner.LastName)
		if name == "" {
			name = owner.Username
		}
		if name != "" {
			owners = append(owners, name)
		}
	}

	return domain.Dashboard{
		ID:          item.ID,
		UUID:        item.UUID,
		Title:       item.Title,
		Description: item.Description,
		Published:   item.Published,
		Owners:      owners,
	}
}
