package snapshot

import "context"

// Repository persists daily snapshots and the latest-date pointer.
type Repository interface {
	// Save writes the dated snapshot and then advances the latest pointer.
	// Saving the same date twice overwrites the previous snapshot.
	Save(ctx context.Context, snap Snapshot) error
	// GetByDate returns the snapshot for a date; the bool reports whether
	// one exists.
	GetByDate(ctx context.Context, date string) (Snapshot, bool, error)
	// LatestDate returns the most recently written snapshot date; the bool
	// reports whether any snapshot has ever been written.
	LatestDate(ctx context.Context) (string, bool, error)
}
