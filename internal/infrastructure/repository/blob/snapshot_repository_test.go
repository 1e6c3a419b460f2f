package blob

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtsidehq/courtside/internal/domain/boxscore"
	"github.com/courtsidehq/courtside/internal/domain/game"
	"github.com/courtsidehq/courtside/internal/domain/snapshot"
	"github.com/courtsidehq/courtside/internal/infrastructure/blobstore"
)

func sampleSnapshot(date string) snapshot.Snapshot {
	return snapshot.Snapshot{
		Date:      date,
		FetchedAt: time.Date(2026, time.March, 14, 23, 45, 0, 0, time.UTC),
		Games: []snapshot.EnrichedGame{
			{
				Summary: game.Summary{
					GameID: "0022500001",
					Status: game.StatusFinal,
					Home:   game.TeamLine{TeamTricode: "BOS", Score: 112},
					Away:   game.TeamLine{TeamTricode: "NYK", Score: 108},
				},
				BoxScore:   &boxscore.BoxScore{GameID: "0022500001"},
				PlayByPlay: &boxscore.PlayByPlay{GameID: "0022500001"},
			},
			{
				Summary: game.Summary{GameID: "0022500002", Status: game.StatusFinal},
			},
		},
	}
}

func TestSnapshotRepositorySaveGetRoundTrip(t *testing.T) {
	repo := NewSnapshotRepository(blobstore.NewMemory())
	ctx := context.Background()

	want := sampleSnapshot("2026-03-14")
	require.NoError(t, repo.Save(ctx, want))

	got, ok, err := repo.GetByDate(ctx, "2026-03-14")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Date, got.Date)
	require.Len(t, got.Games, 2)
	assert.True(t, got.Games[0].HasDetail())
	assert.False(t, got.Games[1].HasDetail())
	assert.Nil(t, got.Games[1].BoxScore)
	assert.Nil(t, got.Games[1].PlayByPlay)
}

func TestSnapshotRepositoryAdvancesLatestPointer(t *testing.T) {
	repo := NewSnapshotRepository(blobstore.NewMemory())
	ctx := context.Background()

	_, ok, err := repo.LatestDate(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Save(ctx, sampleSnapshot("2026-03-13")))
	require.NoError(t, repo.Save(ctx, sampleSnapshot("2026-03-14")))

	latest, ok, err := repo.LatestDate(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-03-14", latest)
}

func TestSnapshotRepositoryMissingDate(t *testing.T) {
	repo := NewSnapshotRepository(blobstore.NewMemory())

	_, ok, err := repo.GetByDate(context.Background(), "2026-01-01")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotRepositoryOverwriteIsIdempotent(t *testing.T) {
	repo := NewSnapshotRepository(blobstore.NewMemory())
	ctx := context.Background()

	first := sampleSnapshot("2026-03-14")
	require.NoError(t, repo.Save(ctx, first))

	second := sampleSnapshot("2026-03-14")
	second.Games = second.Games[:1]
	require.NoError(t, repo.Save(ctx, second))

	got, ok, err := repo.GetByDate(ctx, "2026-03-14")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Games, 1)
}
