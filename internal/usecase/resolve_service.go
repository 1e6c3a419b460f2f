package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/courtsidehq/courtside/internal/domain/highlight"
	"github.com/courtsidehq/courtside/internal/domain/snapshot"
	"github.com/courtsidehq/courtside/internal/platform/cache"
	"github.com/courtsidehq/courtside/internal/platform/dateutil"
	"github.com/courtsidehq/courtside/internal/platform/logging"
)

type ResolveState string

const (
	StateResolved ResolveState = "resolved"
	StateNotFound ResolveState = "not-found"
)

// Resolution is the outcome of resolving a requested date to a snapshot.
// Date is the date that actually resolved, which differs from the request
// when the one-day fallback was taken.
type Resolution struct {
	State  ResolveState
	Date   string
	Games  []snapshot.EnrichedGame
	Probed bool
}

// ResolveService turns a requested date into a snapshot. Resolution is a
// bounded two-step walk: try the requested date, then at most once the day
// before. A miss on both is terminal for that request; navigation to
// another date starts a fresh resolution.
type ResolveService struct {
	repository snapshot.Repository
	snapshots  *cache.Store
	logger     *logging.Logger
	now        func() time.Time
}

func NewResolveService(repository snapshot.Repository, snapshots *cache.Store, logger *logging.Logger) *ResolveService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResolveService{
		repository: repository,
		snapshots:  snapshots,
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve maps requestedDate to a snapshot. An empty request follows the
// latest pointer and falls back to the current date when no snapshot has
// ever been written. An unparseable request is replaced with the current
// date before it can reach a storage key.
func (s *ResolveService) Resolve(ctx context.Context, requestedDate string) (Resolution, error) {
	ctx, span := startUsecaseSpan(ctx, "ResolveService.Resolve")
	defer span.End()

	date, err := s.startingDate(ctx, requestedDate)
	if err != nil {
		return Resolution{}, err
	}

	snap, found, err := s.loadSnapshot(ctx, date)
	if err != nil {
		return Resolution{}, err
	}
	if found {
		span.SetAttributes(attribute.String("resolve.date", date))
		return Resolution{State: StateResolved, Date: date, Games: snap.Games}, nil
	}

	probeDate := dateutil.PrevDay(date)
	snap, found, err = s.loadSnapshot(ctx, probeDate)
	if err != nil {
		return Resolution{}, err
	}
	if found {
		s.logger.InfoContext(ctx, "snapshot resolved via previous-day fallback",
			"requested_date", date,
			"resolved_date", probeDate,
		)
		span.SetAttributes(
			attribute.String("resolve.date", probeDate),
			attribute.Bool("resolve.probed", true),
		)
		return Resolution{State: StateResolved, Date: probeDate, Games: snap.Games, Probed: true}, nil
	}

	return Resolution{State: StateNotFound, Date: date, Probed: true}, nil
}

// Heroes resolves the date and ranks the night's top scorers.
func (s *ResolveService) Heroes(ctx context.Context, requestedDate string) (Resolution, []highlight.Hero, error) {
	res, err := s.Resolve(ctx, requestedDate)
	if err != nil {
		return Resolution{}, nil, err
	}
	if res.State != StateResolved {
		return res, nil, fmt.Errorf("no snapshot for %s: %w", res.Date, ErrNotFound)
	}
	return res, highlight.RankHeroes(snapshot.Snapshot{Date: res.Date, Games: res.Games}), nil
}

func (s *ResolveService) startingDate(ctx context.Context, requestedDate string) (string, error) {
	if requestedDate == "" {
		latest, ok, err := s.repository.LatestDate(ctx)
		if err != nil {
			return "", fmt.Errorf("read latest snapshot date: %w", err)
		}
		if ok {
			if _, parseErr := dateutil.Parse(latest); parseErr == nil {
				return latest, nil
			}
			s.logger.WarnContext(ctx, "latest snapshot pointer holds an invalid date", "date", latest)
		}
		return dateutil.Format(s.now()), nil
	}
	return dateutil.Sanitize(requestedDate, s.now()), nil
}

func (s *ResolveService) loadSnapshot(ctx context.Context, date string) (snapshot.Snapshot, bool, error) {
	if s.snapshots == nil {
		return s.readSnapshot(ctx, date)
	}

	// A miss is reported as ErrNotFound so it never lands in the cache.
	value, err := s.snapshots.GetOrLoad(ctx, snapshotCacheKey(date), func(ctx context.Context) (any, error) {
		snap, found, loadErr := s.readSnapshot(ctx, date)
		if loadErr != nil {
			return nil, loadErr
		}
		if !found {
			return nil, ErrNotFound
		}
		return snap, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return snapshot.Snapshot{}, false, nil
		}
		return snapshot.Snapshot{}, false, err
	}

	snap, ok := value.(snapshot.Snapshot)
	if !ok {
		return s.readSnapshot(ctx, date)
	}
	return snap, true, nil
}

func (s *ResolveService) readSnapshot(ctx context.Context, date string) (snapshot.Snapshot, bool, error) {
	snap, found, err := s.repository.GetByDate(ctx, date)
	if err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("read snapshot %s: %w", date, err)
	}
	return snap, found, nil
}

func snapshotCacheKey(date string) string {
	return "snapshot/" + date
}

// Session serializes resolutions for one consumer. Each call claims a new
// generation; a result whose generation has been overtaken by a later call
// is dropped so only the newest request wins.
type Session struct {
	service    *ResolveService
	generation atomic.Uint64
}

func NewSession(service *ResolveService) *Session {
	return &Session{service: service}
}

func (s *Session) Resolve(ctx context.Context, requestedDate string) (Resolution, error) {
	gen := s.generation.Add(1)
	res, err := s.service.Resolve(ctx, requestedDate)
	if s.generation.Load() != gen {
		return Resolution{}, ErrSuperseded
	}
	return res, err
}
