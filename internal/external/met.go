package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonboulle/clockwork"

	"floodroute/internal/types"
)

// metAPIBase is the default MET Malaysia open data API base URL.
// Overridable in tests via MetClientConfig.BaseURL.
const metAPIBase = "https://api.met.gov.my/v2.1"

// warningDataset is the MET dataset carrying active weather warnings.
const warningDataset = "WARNING"

// warningCategories are the data categories tried in order when fetching
// warnings. The MET feed has published rain warnings under both names.
var warningCategories = []string{"RAINS", "RAIN"}

// MetClientConfig holds the configuration for creating a MetHTTPClient.
type MetClientConfig struct {
	Token   string
	BaseURL string // Override for testing; defaults to metAPIBase
	Logger  *slog.Logger
	Clock   clockwork.Clock
}

// metDataResponse is the envelope returned by the MET /data endpoint. Older
// deployments returned the records under "data" instead of "results".
type metDataResponse struct {
	Results []types.WarningResult `json:"results"`
	Data    []types.WarningResult `json:"data"`
}

func (r metDataResponse) records() []types.WarningResult {
	if len(r.Results) > 0 {
		return r.Results
	}
	return r.Data
}

// MetHTTPClient implements WarningSource against the MET Malaysia API through
// BaseClient, so warning fetches share the platform's circuit breaker and
// retry behavior.
type MetHTTPClient struct {
	base    *BaseClient
	token   string
	baseURL string
	logger  *slog.Logger
	clock   clockwork.Clock
}

// NewMetClient creates a MetHTTPClient. The httpClient timeout should match
// the configured MET request timeout.
func NewMetClient(httpClient *http.Client, cfg MetClientConfig) *MetHTTPClient {
	base := NewBaseClient(
		httpClient,
		"met",
		types.ErrCodeUpstreamWarnings,
		DefaultRetryPolicy(),
		"FloodRoute/1.0",
	)
	return NewMetClientWithBase(base, cfg)
}

// NewMetClientWithBase creates a MetHTTPClient with a pre-configured
// BaseClient, useful in tests that need to control retry behavior.
func NewMetClientWithBase(base *BaseClient, cfg MetClientConfig) *MetHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = metAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &MetHTTPClient{
		base:    base,
		token:   cfg.Token,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
		clock:   clock,
	}
}

// ActiveWarnings fetches today's WARNING records for a MET location ID. The
// categories in warningCategories are tried in order; the first category that
// yields any records wins. A day with no warnings under any category is not
// an error.
func (c *MetHTTPClient) ActiveWarnings(ctx context.Context, locationID string) ([]types.WarningResult, string, error) {
	if locationID == "" {
		return nil, "", types.NewAppError(
			types.ErrCodeValidationMissingField,
			"location ID is required for warning lookup",
			nil,
		)
	}

	today := c.clock.Now().UTC().Format("2006-01-02")

	for _, category := range warningCategories {
		records, err := c.fetchCategory(ctx, locationID, category, today)
		if err != nil {
			return nil, "", err
		}
		if len(records) > 0 {
			c.logger.InfoContext(ctx, "MET warnings fetched",
				"location_id", locationID,
				"category", category,
				"warning_count", len(records),
			)
			return records, category, nil
		}
	}

	c.logger.InfoContext(ctx, "no active MET warnings",
		"location_id", locationID,
		"date", today,
	)
	return nil, "", nil
}

func (c *MetHTTPClient) fetchCategory(ctx context.Context, locationID, category, date string) ([]types.WarningResult, error) {
	params := url.Values{}
	params.Set("datasetid", warningDataset)
	params.Set("datacategoryid", category)
	params.Set("locationid", locationID)
	params.Set("start_date", date)
	params.Set("end_date", date)
	params.Set("lang", "en")

	reqURL := fmt.Sprintf("%s/data?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create MET data request",
			err,
		)
	}
	req.Header.Set("Authorization", "METToken "+c.token)

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("MET API error",
			"category", category,
			"status_code", resp.StatusCode,
			"response_body", string(bodyBytes),
		)
		return nil, types.NewAppError(
			types.ErrCodeUpstreamWarnings,
			fmt.Sprintf("MET data request returned %d", resp.StatusCode),
			fmt.Errorf("GET /data category=%s returned %d: %s", category, resp.StatusCode, bodyBytes),
		)
	}

	var envelope metDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamWarnings,
			"failed to decode MET data response",
			err,
		)
	}

	return envelope.records(), nil
}

// Compile-time interface compliance check.
var _ WarningSource = (*MetHTTPClient)(nil)
