package nbacdn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/platform/resilience"
	"github.com/courtsidehq/courtside/internal/usecase"
)

const scoreboardFixture = `{
	"meta": {"version": 1},
	"scoreboard": {
		"gameDate": "2026-01-15",
		"games": [
			{
				"gameId": "0022600501",
				"gameCode": "20260115/BOSNYK",
				"gameStatus": 3,
				"gameStatusText": "Final",
				"period": 4,
				"gameClock": "",
				"gameTimeUTC": "2026-01-16T00:30:00Z",
				"homeTeam": {"teamId": 1610612752, "teamName": "Knicks", "teamCity": "New York", "teamTricode": "NYK", "wins": 28, "losses": 14, "score": 112},
				"awayTeam": {"teamId": 1610612738, "teamName": "Celtics", "teamCity": "Boston", "teamTricode": "BOS", "wins": 30, "losses": 12, "score": 109}
			},
			{
				"gameId": "",
				"gameCode": "20260115/BADROW"
			}
		]
	}
}`

const boxscoreFixture = `{
	"game": {
		"gameId": "0022600501",
		"homeTeam": {
			"teamId": 1610612752,
			"teamTricode": "NYK",
			"score": 112,
			"players": [
				{"personId": 1628973, "name": "Jalen Brunson", "starter": "1", "statistics": {"minutes": "PT38M12.00S", "points": 32, "assists": 11, "reboundsTotal": 4, "threePointersMade": 3, "threePointersAttempted": 7}},
				{"personId": 1630540, "name": "Bench Guy", "starter": "0", "statistics": {"minutes": "PT00M00.00S", "points": 0, "assists": 0, "reboundsTotal": 0, "threePointersMade": 0, "threePointersAttempted": 0}}
			]
		},
		"awayTeam": {
			"teamId": 1610612738,
			"teamTricode": "BOS",
			"score": 109,
			"players": []
		}
	}
}`

func newTestClient(baseURL string, maxRetries int, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestFetchScoreboard_MapsGamesAndDate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scoreboard/todaysScoreboard_00.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scoreboardFixture))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{Enabled: false})

	board, err := client.FetchScoreboard(context.Background())
	if err != nil {
		t.Fatalf("fetch scoreboard: %v", err)
	}
	if board.Date != "2026-01-15" {
		t.Fatalf("unexpected scoreboard date: %q", board.Date)
	}
	if len(board.Games) != 1 {
		t.Fatalf("expected rows without a game id to be skipped, got %d games", len(board.Games))
	}

	g := board.Games[0]
	if g.GameID != "0022600501" {
		t.Fatalf("unexpected game id: %q", g.GameID)
	}
	if !g.IsFinal() {
		t.Fatalf("expected final status, got %d", g.Status)
	}
	if g.Home.TeamTricode != "NYK" || g.Home.Score != 112 {
		t.Fatalf("unexpected home line: %+v", g.Home)
	}
	if g.Away.TeamTricode != "BOS" || g.Away.Score != 109 {
		t.Fatalf("unexpected away line: %+v", g.Away)
	}
	if g.Margin() != 3 {
		t.Fatalf("unexpected margin: %d", g.Margin())
	}
}

func TestFetchBoxScore_MapsPlayers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/boxscore/boxscore_0022600501.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(boxscoreFixture))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{Enabled: false})

	box, err := client.FetchBoxScore(context.Background(), "0022600501")
	if err != nil {
		t.Fatalf("fetch boxscore: %v", err)
	}
	if box.GameID != "0022600501" {
		t.Fatalf("unexpected game id: %q", box.GameID)
	}
	if len(box.Home.Players) != 2 {
		t.Fatalf("expected 2 home players, got %d", len(box.Home.Players))
	}

	starter := box.Home.Players[0]
	if !starter.Starter {
		t.Fatalf("expected starter flag mapped from %q", "1")
	}
	if starter.Points != 32 || starter.Assists != 11 {
		t.Fatalf("unexpected starter stats: %+v", starter)
	}
	if starter.DidNotPlay() {
		t.Fatalf("starter should not be marked DNP")
	}
	if !box.Home.Players[1].DidNotPlay() {
		t.Fatalf("expected zero-minutes bench player to be DNP")
	}
}

func TestFetchBoxScore_RequiresGameID(t *testing.T) {
	t.Parallel()

	client := newTestClient("http://localhost:0", 0, resilience.CircuitBreakerConfig{Enabled: false})
	if _, err := client.FetchBoxScore(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty game id")
	}
}

func TestDoJSON_RetriesTransientStatusThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(scoreboardFixture))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1, resilience.CircuitBreakerConfig{Enabled: false})

	board, err := client.FetchScoreboard(context.Background())
	if err != nil {
		t.Fatalf("fetch scoreboard after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
	if board.Date != "2026-01-15" {
		t.Fatalf("unexpected date after retry: %q", board.Date)
	}
}

func TestDoJSON_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3, resilience.CircuitBreakerConfig{Enabled: false})

	if _, err := client.FetchBoxScore(context.Background(), "0000000000"); err == nil {
		t.Fatalf("expected error for 404 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt for a non-retryable status, got %d", calls.Load())
	}
}

func TestDoJSON_CircuitBreakerRejectsAfterFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		ProbeBudget:      1,
	})

	if _, err := client.FetchScoreboard(context.Background()); err == nil {
		t.Fatalf("expected first call to fail")
	}

	_, err := client.FetchScoreboard(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable from open breaker, got %v", err)
	}
}

func TestDoJSON_CoalescesConcurrentFetches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(scoreboardFixture))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{Enabled: false})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.FetchScoreboard(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected concurrent fetches to share one request, got %d", calls.Load())
	}
}

func TestBuildCurlPreview_EscapesQuotes(t *testing.T) {
	t.Parallel()

	preview := buildCurlPreview("https://example.com/a'b")
	want := `curl -H 'accept: application/json' 'https://example.com/a'"'"'b'`
	if preview != want {
		t.Fatalf("unexpected curl preview: %s", preview)
	}
}
