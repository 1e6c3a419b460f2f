package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"

	"github.com/courtsidehq/courtside/internal/domain/boxscore"
	"github.com/courtsidehq/courtside/internal/domain/game"
	"github.com/courtsidehq/courtside/internal/domain/snapshot"
	"github.com/courtsidehq/courtside/internal/platform/dateutil"
	"github.com/courtsidehq/courtside/internal/platform/logging"
)

const defaultIngestWorkers = 4

// GameDataProvider is the upstream feed the ingest run reads from.
type GameDataProvider interface {
	FetchScoreboard(ctx context.Context) (ExternalScoreboard, error)
	FetchBoxScore(ctx context.Context, gameID string) (boxscore.BoxScore, error)
	FetchPlayByPlay(ctx context.Context, gameID string) (boxscore.PlayByPlay, error)
}

// ExternalScoreboard is the provider's daily game list. Date is the feed's
// own game date, which is authoritative for the snapshot key.
type ExternalScoreboard struct {
	Date  string
	Games []game.Summary
}

type IngestResult struct {
	Date          string `json:"date"`
	GameCount     int    `json:"game_count"`
	DegradedCount int    `json:"degraded_count"`
}

// IngestService runs the daily snapshot pipeline: fetch the scoreboard,
// enrich every game with box score and play-by-play detail, and persist
// the result. A scoreboard failure or an empty game list aborts the run;
// a detail failure only degrades its own game.
type IngestService struct {
	provider   GameDataProvider
	repository snapshot.Repository
	logger     *logging.Logger
	maxWorkers int
	now        func() time.Time
}

func NewIngestService(
	provider GameDataProvider,
	repository snapshot.Repository,
	maxWorkers int,
	logger *logging.Logger,
) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers <= 0 {
		maxWorkers = defaultIngestWorkers
	}
	return &IngestService{
		provider:   provider,
		repository: repository,
		logger:     logger,
		maxWorkers: maxWorkers,
		now:        time.Now,
	}
}

func (s *IngestService) Run(ctx context.Context) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "IngestService.Run")
	defer span.End()

	board, err := s.provider.FetchScoreboard(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("fetch scoreboard: %w", err)
	}
	if _, err := dateutil.Parse(board.Date); err != nil {
		return IngestResult{}, fmt.Errorf("scoreboard date %q is not a calendar date: %w", board.Date, err)
	}
	if len(board.Games) == 0 {
		return IngestResult{}, fmt.Errorf("scoreboard for %s: %w", board.Date, ErrNoGames)
	}

	enriched, degraded, err := s.enrichGames(ctx, board.Games)
	if err != nil {
		return IngestResult{}, err
	}

	snap := snapshot.Snapshot{
		Date:      board.Date,
		FetchedAt: s.now().UTC(),
		Games:     enriched,
	}
	if err := s.repository.Save(ctx, snap); err != nil {
		return IngestResult{}, fmt.Errorf("persist snapshot %s: %w", board.Date, err)
	}

	result := IngestResult{
		Date:          board.Date,
		GameCount:     len(enriched),
		DegradedCount: degraded,
	}
	span.SetAttributes(
		attribute.String("ingest.date", result.Date),
		attribute.Int("ingest.game_count", result.GameCount),
		attribute.Int("ingest.degraded_count", result.DegradedCount),
	)
	s.logger.InfoContext(ctx, "snapshot ingested",
		"date", result.Date,
		"game_count", result.GameCount,
		"degraded_count", result.DegradedCount,
	)
	return result, nil
}

// enrichGames fetches detail for every game concurrently. The output slice
// has one entry per input game in the same order; a game whose detail
// fetches fail keeps its summary with both detail payloads nil.
func (s *IngestService) enrichGames(ctx context.Context, games []game.Summary) ([]snapshot.EnrichedGame, int, error) {
	workerCount := s.maxWorkers
	if workerCount > len(games) {
		workerCount = len(games)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	enriched := make([]snapshot.EnrichedGame, len(games))
	var degradedCount atomic.Int32

	var workers sync.WaitGroup
	for i, summary := range games {
		i, summary := i, summary
		workers.Add(1)
		if submitErr := pool.Submit(func() {
			defer workers.Done()
			enriched[i] = s.enrichGame(ctx, summary, &degradedCount)
		}); submitErr != nil {
			workers.Done()
			return nil, 0, fmt.Errorf("submit game to worker pool: %w", submitErr)
		}
	}
	workers.Wait()

	return enriched, int(degradedCount.Load()), nil
}

func (s *IngestService) enrichGame(ctx context.Context, summary game.Summary, degraded *atomic.Int32) snapshot.EnrichedGame {
	var (
		box    boxscore.BoxScore
		pbp    boxscore.PlayByPlay
		boxErr error
		pbpErr error
	)

	var detail conc.WaitGroup
	detail.Go(func() {
		box, boxErr = s.provider.FetchBoxScore(ctx, summary.GameID)
	})
	detail.Go(func() {
		pbp, pbpErr = s.provider.FetchPlayByPlay(ctx, summary.GameID)
	})
	detail.Wait()

	if boxErr != nil || pbpErr != nil {
		degraded.Add(1)
		s.logger.WarnContext(ctx, "game detail enrichment failed, keeping summary only",
			"game_id", summary.GameID,
			"boxscore_error", boxErr,
			"pbp_error", pbpErr,
		)
		return snapshot.EnrichedGame{Summary: summary}
	}

	return snapshot.EnrichedGame{
		Summary:    summary,
		BoxScore:   &box,
		PlayByPlay: &pbp,
	}
}
