package blob

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/courtsidehq/courtside/internal/domain/snapshot"
	"github.com/courtsidehq/courtside/internal/infrastructure/blobstore"
)

const (
	datedKeyPrefix   = "games/"
	latestPointerKey = "games/latest"
)

func datedKey(date string) string {
	return datedKeyPrefix + date
}

// SnapshotRepository persists snapshots as JSON blobs. The dated blob is
// written before the latest pointer, so a crash between the two writes
// leaves the pointer at a date that still resolves.
type SnapshotRepository struct {
	store blobstore.Store
}

func NewSnapshotRepository(store blobstore.Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

func (r *SnapshotRepository) Save(ctx context.Context, snap snapshot.Snapshot) error {
	body, err := sonic.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snap.Date, err)
	}
	if err := r.store.Put(ctx, datedKey(snap.Date), body); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.Date, err)
	}

	pointer, err := sonic.Marshal(snapshot.LatestPointer{Date: snap.Date})
	if err != nil {
		return fmt.Errorf("marshal latest pointer: %w", err)
	}
	if err := r.store.Put(ctx, latestPointerKey, pointer); err != nil {
		return fmt.Errorf("write latest pointer: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) GetByDate(ctx context.Context, date string) (snapshot.Snapshot, bool, error) {
	body, err := r.store.Get(ctx, datedKey(date))
	if err != nil {
		if errors.Is(err, blobstore.ErrKeyNotFound) {
			return snapshot.Snapshot{}, false, nil
		}
		return snapshot.Snapshot{}, false, fmt.Errorf("read snapshot %s: %w", date, err)
	}

	var snap snapshot.Snapshot
	if err := sonic.Unmarshal(body, &snap); err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", date, err)
	}
	return snap, true, nil
}

func (r *SnapshotRepository) LatestDate(ctx context.Context) (string, bool, error) {
	body, err := r.store.Get(ctx, latestPointerKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read latest pointer: %w", err)
	}

	var pointer snapshot.LatestPointer
	if err := sonic.Unmarshal(body, &pointer); err != nil {
		return "", false, fmt.Errorf("decode latest pointer: %w", err)
	}
	if pointer.Date == "" {
		return "", false, nil
	}
	return pointer.Date, true, nil
}
