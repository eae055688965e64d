package sleeper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/dvail/conferencesync/internal/platform/cache"
	"github.com/dvail/conferencesync/internal/platform/logging"
	"github.com/dvail/conferencesync/internal/platform/resilience"
	"github.com/dvail/conferencesync/internal/usecase"
)

const (
	defaultBaseURL  = "https://api.sleeper.app/v1"
	defaultSport    = "nfl"
	defaultCacheTTL = 5 * time.Minute
	maxBodyBytes    = 6 << 20
)

var errSleeperTransient = crerr.New("sleeper transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Sport          string
	Timeout        time.Duration
	MaxRetries     int
	CacheTTL       time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	sport          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	store          *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	sport := strings.TrimSpace(cfg.Sport)
	if sport == "" {
		sport = defaultSport
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		sport:          sport,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		store:          cache.NewStore(ttl),
	}
}

// FetchMatchups returns the live scoring rows for one league week. Matchup
// rows move during games, so they bypass the response cache.
func (c *Client) FetchMatchups(ctx context.Context, leagueID string, week int) ([]usecase.ProviderMatchup, error) {
	if strings.TrimSpace(leagueID) == "" {
		return nil, fmt.Errorf("league id must not be empty")
	}
	if week <= 0 {
		return nil, fmt.Errorf("week must be greater than zero")
	}

	var rows []matchupRow
	path := fmt.Sprintf("/league/%s/matchups/%d", leagueID, week)
	if err := c.doJSON(ctx, path, &rows); err != nil {
		return nil, fmt.Errorf("fetch matchups league_id=%s week=%d: %w", leagueID, week, err)
	}

	out := make([]usecase.ProviderMatchup, 0, len(rows))
	for _, row := range rows {
		points := row.Points
		if row.CustomPoints != nil {
			points = *row.CustomPoints
		}
		out = append(out, usecase.ProviderMatchup{
			RosterID:       rosterKey(row.RosterID),
			MatchupID:      row.MatchupID,
			Points:         points,
			Starters:       row.Starters,
			StartersPoints: row.StartersPts,
			PlayersPoints:  row.PlayersPts,
		})
	}
	return out, nil
}

// FetchRosters returns the league's rosters with their owner references and
// season aggregates.
func (c *Client) FetchRosters(ctx context.Context, leagueID string) ([]usecase.ProviderRoster, error) {
	if strings.TrimSpace(leagueID) == "" {
		return nil, fmt.Errorf("league id must not be empty")
	}

	var rows []rosterRow
	path := fmt.Sprintf("/league/%s/rosters", leagueID)
	if err := c.doJSON(ctx, path, &rows); err != nil {
		return nil, fmt.Errorf("fetch rosters league_id=%s: %w", leagueID, err)
	}

	out := make([]usecase.ProviderRoster, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.ProviderRoster{
			RosterID:      rosterKey(row.RosterID),
			OwnerID:       row.OwnerID,
			Players:       row.Players,
			Starters:      row.Starters,
			Wins:          row.Settings.Wins,
			Losses:        row.Settings.Losses,
			Ties:          row.Settings.Ties,
			PointsFor:     settingsPoints(row.Settings.FPTS, row.Settings.FPTSDecimal),
			PointsAgainst: settingsPoints(row.Settings.FPTSAgainst, row.Settings.FPTSAgainstDec),
		})
	}
	return out, nil
}

// FetchUsers returns the league's member profiles. User rows change rarely,
// so results are served from the response cache within its TTL.
func (c *Client) FetchUsers(ctx context.Context, leagueID string) ([]usecase.ProviderUser, error) {
	if strings.TrimSpace(leagueID) == "" {
		return nil, fmt.Errorf("league id must not be empty")
	}

	path := fmt.Sprintf("/league/%s/users", leagueID)
	cached, err := c.store.GetOrLoad(ctx, "users:"+leagueID, func(ctx context.Context) (any, error) {
		var rows []userRow
		if err := c.doJSON(ctx, path, &rows); err != nil {
			return nil, err
		}
		out := make([]usecase.ProviderUser, 0, len(rows))
		for _, row := range rows {
			out = append(out, usecase.ProviderUser{
				UserID:      row.UserID,
				DisplayName: row.DisplayName,
				TeamName:    strings.TrimSpace(row.Metadata.TeamName),
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch users league_id=%s: %w", leagueID, err)
	}

	users, ok := cached.([]usecase.ProviderUser)
	if !ok {
		return nil, fmt.Errorf("unexpected cached payload type %T", cached)
	}
	return users, nil
}

// FetchCurrentWeek returns the sport-wide clock: the current week and season
// year according to the provider.
func (c *Client) FetchCurrentWeek(ctx context.Context) (usecase.ProviderClock, error) {
	cached, err := c.store.GetOrLoad(ctx, "state:"+c.sport, func(ctx context.Context) (any, error) {
		var row stateRow
		if err := c.doJSON(ctx, "/state/"+c.sport, &row); err != nil {
			return nil, err
		}
		year, err := strconv.Atoi(strings.TrimSpace(row.Season))
		if err != nil {
			return nil, fmt.Errorf("parse season year %q: %w", row.Season, err)
		}
		return usecase.ProviderClock{Week: row.Week, SeasonYear: year}, nil
	})
	if err != nil {
		return usecase.ProviderClock{}, fmt.Errorf("fetch %s state: %w", c.sport, err)
	}

	clock, ok := cached.(usecase.ProviderClock)
	if !ok {
		return usecase.ProviderClock{}, fmt.Errorf("unexpected cached payload type %T", cached)
	}
	return clock, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sleeper circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: scoring provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errSleeperTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errSleeperTransient, err)
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSleeperTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errSleeperTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "sleeper request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := io.Copy(buf, io.LimitReader(body, maxBodyBytes)); err != nil {
		return nil, err
	}
	raw := make([]byte, buf.Len())
	copy(raw, buf.Bytes())
	return raw, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
