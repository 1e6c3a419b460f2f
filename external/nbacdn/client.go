package nbacdn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/courtsidehq/courtside/internal/domain/boxscore"
	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/platform/resilience"
	"github.com/courtsidehq/courtside/internal/usecase"
)

const (
	defaultBaseURL  = "https://cdn.nba.com/static/json/liveData"
	scoreboardPath  = "/scoreboard/todaysScoreboard_00.json"
	maxResponseSize = 6 << 20
)

var errNBACDNTransient = crerr.New("nba cdn transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the NBA live-data CDN. The CDN is anonymous and aggressively
// cached upstream; failures are mostly transient, so requests retry with a
// linear backoff behind a circuit breaker, and concurrent fetches of the
// same path are coalesced.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.ProbeBudget),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchScoreboard(ctx context.Context) (usecase.ExternalScoreboard, error) {
	var envelope scoreboardEnvelope
	if err := c.doJSON(ctx, scoreboardPath, &envelope); err != nil {
		return usecase.ExternalScoreboard{}, fmt.Errorf("fetch scoreboard: %w", err)
	}

	out := usecase.ExternalScoreboard{
		Date: strings.TrimSpace(envelope.Scoreboard.GameDate),
	}
	for _, row := range envelope.Scoreboard.Games {
		if strings.TrimSpace(row.GameID) == "" {
			continue
		}
		out.Games = append(out.Games, mapScoreboardRow(row))
	}
	return out, nil
}

func (c *Client) FetchBoxScore(ctx context.Context, gameID string) (boxscore.BoxScore, error) {
	if strings.TrimSpace(gameID) == "" {
		return boxscore.BoxScore{}, fmt.Errorf("game id is required")
	}

	var envelope boxscoreEnvelope
	path := fmt.Sprintf("/boxscore/boxscore_%s.json", gameID)
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return boxscore.BoxScore{}, fmt.Errorf("fetch boxscore game_id=%s: %w", gameID, err)
	}
	return mapBoxscoreBody(envelope.Game), nil
}

func (c *Client) FetchPlayByPlay(ctx context.Context, gameID string) (boxscore.PlayByPlay, error) {
	if strings.TrimSpace(gameID) == "" {
		return boxscore.PlayByPlay{}, fmt.Errorf("game id is required")
	}

	var envelope playByPlayEnvelope
	path := fmt.Sprintf("/playbyplay/playbyplay_%s.json", gameID)
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return boxscore.PlayByPlay{}, fmt.Errorf("fetch playbyplay game_id=%s: %w", gameID, err)
	}
	return mapPlayByPlayBody(envelope.Game), nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "nba cdn circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: game data feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errNBACDNTransient) {
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
		return fmt.Errorf("decode feed payload: %w", err)
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
			lastErr = fmt.Errorf("%w: send request: %v", errNBACDNTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errNBACDNTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: feed status=%d body=%s", errNBACDNTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				}
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
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "nba cdn request failed",
		"url", fullURL,
		"curl_preview", buildCurlPreview(fullURL),
		"error", lastErr,
	)
	return nil, lastErr
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > 512 {
		return body[:512] + "...(truncated)"
	}
	return body
}

func buildCurlPreview(fullURL string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -H 'accept: application/json' ")
	_, _ = buf.WriteString("'")
	_, _ = buf.WriteString(strings.ReplaceAll(fullURL, "'", "'\"'\"'"))
	_, _ = buf.WriteString("'")
	return buf.String()
}
