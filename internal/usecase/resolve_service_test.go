package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/domain/boxscore"
	"github.com/courtsidehq/courtside/internal/domain/game"
	"github.com/courtsidehq/courtside/internal/domain/snapshot"
	"github.com/courtsidehq/courtside/internal/platform/cache"
	"github.com/courtsidehq/courtside/internal/platform/logging"
)

type fakeSnapshotRepo struct {
	mu     sync.Mutex
	snaps  map[string]snapshot.Snapshot
	latest string
	reads  []string

	blockDate string
	block     chan struct{}
	reached   chan struct{}
}

func newFakeSnapshotRepo(dates ...string) *fakeSnapshotRepo {
	repo := &fakeSnapshotRepo{snaps: make(map[string]snapshot.Snapshot)}
	for _, date := range dates {
		repo.snaps[date] = snapshot.Snapshot{
			Date:  date,
			Games: []snapshot.EnrichedGame{{Summary: game.Summary{GameID: "game-" + date}}},
		}
		repo.latest = date
	}
	return repo
}

func (r *fakeSnapshotRepo) Save(_ context.Context, snap snapshot.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps[snap.Date] = snap
	r.latest = snap.Date
	return nil
}

func (r *fakeSnapshotRepo) GetByDate(_ context.Context, date string) (snapshot.Snapshot, bool, error) {
	if r.block != nil && date == r.blockDate {
		r.reached <- struct{}{}
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads = append(r.reads, date)
	snap, ok := r.snaps[date]
	return snap, ok, nil
}

func (r *fakeSnapshotRepo) LatestDate(_ context.Context) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.latest != "", nil
}

func (r *fakeSnapshotRepo) readLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reads...)
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 14, 18, 0, 0, 0, time.UTC)
}

func TestResolveService_Resolve_ExactDateHit(t *testing.T) {
	t.Parallel()

	svc := NewResolveService(newFakeSnapshotRepo("2026-03-14"), nil, logging.NewNop())

	res, err := svc.Resolve(context.Background(), "2026-03-14")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.State != StateResolved || res.Date != "2026-03-14" || res.Probed {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if len(res.Games) != 1 {
		t.Fatalf("expected games from the snapshot, got=%d", len(res.Games))
	}
}

func TestResolveService_Resolve_FallsBackOneDay(t *testing.T) {
	t.Parallel()

	svc := NewResolveService(newFakeSnapshotRepo("2026-03-13"), nil, logging.NewNop())

	res, err := svc.Resolve(context.Background(), "2026-03-14")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.State != StateResolved || res.Date != "2026-03-13" || !res.Probed {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}

func TestResolveService_Resolve_NeverProbesTwoDaysBack(t *testing.T) {
	t.Parallel()

	repo := newFakeSnapshotRepo("2026-03-10")
	svc := NewResolveService(repo, nil, logging.NewNop())

	res, err := svc.Resolve(context.Background(), "2026-03-14")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.State != StateNotFound {
		t.Fatalf("expected not-found, got=%+v", res)
	}

	reads := repo.readLog()
	if len(reads) != 2 || reads[0] != "2026-03-14" || reads[1] != "2026-03-13" {
		t.Fatalf("expected exactly one fallback probe, reads=%v", reads)
	}
}

func TestResolveService_Resolve_EmptyDateFollowsLatestPointer(t *testing.T) {
	t.Parallel()

	svc := NewResolveService(newFakeSnapshotRepo("2026-03-12", "2026-03-13"), nil, logging.NewNop())

	res, err := svc.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Date != "2026-03-13" || res.Probed {
		t.Fatalf("expected latest pointer date, got=%+v", res)
	}
}

func TestResolveService_Resolve_EmptyDateWithoutPointerUsesToday(t *testing.T) {
	t.Parallel()

	repo := newFakeSnapshotRepo("2026-03-14")
	repo.latest = ""
	svc := NewResolveService(repo, nil, logging.NewNop())
	svc.now = fixedNow

	res, err := svc.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Date != "2026-03-14" {
		t.Fatalf("expected today, got=%+v", res)
	}
}

func TestResolveService_Resolve_InvalidDateNeverReachesStorage(t *testing.T) {
	t.Parallel()

	repo := newFakeSnapshotRepo("2026-03-14")
	svc := NewResolveService(repo, nil, logging.NewNop())
	svc.now = fixedNow

	res, err := svc.Resolve(context.Background(), "not-a-date")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Date != "2026-03-14" || res.State != StateResolved {
		t.Fatalf("expected today's snapshot, got=%+v", res)
	}
	for _, read := range repo.readLog() {
		if read == "not-a-date" {
			t.Fatalf("raw request must not be used as a storage key")
		}
	}
}

func TestResolveService_Resolve_CachesSnapshotReads(t *testing.T) {
	t.Parallel()

	repo := newFakeSnapshotRepo("2026-03-14")
	svc := NewResolveService(repo, cache.NewStore(time.Minute), logging.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := svc.Resolve(context.Background(), "2026-03-14"); err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
	}
	if reads := repo.readLog(); len(reads) != 1 {
		t.Fatalf("expected a single repository read, got=%v", reads)
	}
}

func TestResolveService_Resolve_CoalescesConcurrentCachedReads(t *testing.T) {
	t.Parallel()

	repo := newFakeSnapshotRepo("2026-03-14")
	repo.blockDate = "2026-03-14"
	repo.block = make(chan struct{})
	repo.reached = make(chan struct{})

	svc := NewResolveService(repo, cache.NewStore(time.Minute), logging.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Resolve(context.Background(), "2026-03-14"); err != nil {
				t.Errorf("Resolve error: %v", err)
			}
		}()
	}

	// Only one resolution may reach the repository; release it once the
	// others have had a chance to pile up behind the same load.
	<-repo.reached
	close(repo.block)
	wg.Wait()

	if reads := repo.readLog(); len(reads) != 1 {
		t.Fatalf("expected a single repository read, got=%v", reads)
	}
}

func TestResolveService_Resolve_DoesNotCacheMisses(t *testing.T) {
	t.Parallel()

	repo := newFakeSnapshotRepo()
	svc := NewResolveService(repo, cache.NewStore(time.Minute), logging.NewNop())

	for i := 0; i < 2; i++ {
		res, err := svc.Resolve(context.Background(), "2026-03-14")
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if res.State != StateNotFound {
			t.Fatalf("expected not-found, got=%+v", res)
		}
	}
	if reads := repo.readLog(); len(reads) != 4 {
		t.Fatalf("expected every miss to hit the repository, got=%v", reads)
	}
}

func TestResolveService_Resolve_InvalidLatestPointerFallsBackToToday(t *testing.T) {
	t.Parallel()

	repo := newFakeSnapshotRepo("2026-03-14")
	repo.latest = "garbage"
	svc := NewResolveService(repo, nil, logging.NewNop())
	svc.now = fixedNow

	res, err := svc.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Date != "2026-03-14" || res.State != StateResolved {
		t.Fatalf("expected today's snapshot, got=%+v", res)
	}
	for _, read := range repo.readLog() {
		if read == "garbage" {
			t.Fatalf("pointer date must not be used as a storage key unvalidated")
		}
	}
}

func TestResolveService_Heroes(t *testing.T) {
	t.Parallel()

	repo := newFakeSnapshotRepo()
	snap := snapshot.Snapshot{
		Date: "2026-03-14",
		Games: []snapshot.EnrichedGame{{
			Summary: game.Summary{GameID: "0022500001", Status: game.StatusFinal},
			BoxScore: &boxscore.BoxScore{
				GameID: "0022500001",
				Home: boxscore.TeamBox{Players: []boxscore.PlayerStat{
					{PersonID: 1, Minutes: "PT31M00.00S", Points: 34},
				}},
			},
			PlayByPlay: &boxscore.PlayByPlay{GameID: "0022500001"},
		}},
	}
	if err := repo.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	svc := NewResolveService(repo, nil, logging.NewNop())
	res, heroes, err := svc.Heroes(context.Background(), "2026-03-14")
	if err != nil {
		t.Fatalf("Heroes error: %v", err)
	}
	if res.Date != "2026-03-14" || len(heroes) != 1 || heroes[0].PersonID != 1 {
		t.Fatalf("unexpected heroes: %+v", heroes)
	}
}

func TestResolveService_Heroes_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewResolveService(newFakeSnapshotRepo(), nil, logging.NewNop())
	_, _, err := svc.Heroes(context.Background(), "2026-03-14")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestSession_LastRequestWins(t *testing.T) {
	t.Parallel()

	repo := newFakeSnapshotRepo("2026-03-13", "2026-03-14")
	repo.blockDate = "2026-03-13"
	repo.block = make(chan struct{})
	repo.reached = make(chan struct{})

	sess := NewSession(NewResolveService(repo, nil, logging.NewNop()))

	firstDone := make(chan error, 1)
	go func() {
		_, err := sess.Resolve(context.Background(), "2026-03-13")
		firstDone <- err
	}()

	// Wait for the first resolution to reach the repository, then overtake it.
	<-repo.reached

	if _, err := sess.Resolve(context.Background(), "2026-03-14"); err != nil {
		t.Fatalf("second Resolve error: %v", err)
	}

	close(repo.block)
	if err := <-firstDone; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected first request to be superseded, got=%v", err)
	}
}
