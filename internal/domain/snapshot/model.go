package snapshot

import (
	"time"

	"github.com/courtsidehq/courtside/internal/domain/boxscore"
	"github.com/courtsidehq/courtside/internal/domain/game"
)

// Snapshot is the persisted result of one ingestion run: every game the
// scoreboard listed for a date, with whatever detail enrichment succeeded.
type Snapshot struct {
	Date      string         `json:"date"`
	FetchedAt time.Time      `json:"fetchedAt"`
	Games     []EnrichedGame `json:"games"`
}

// EnrichedGame pairs a scoreboard summary with its detail payloads. Both
// detail pointers are nil when enrichment failed for the game; the summary
// is always present.
type EnrichedGame struct {
	Summary    game.Summary         `json:"summary"`
	BoxScore   *boxscore.BoxScore   `json:"boxscore"`
	PlayByPlay *boxscore.PlayByPlay `json:"pbp"`
}

func (e EnrichedGame) HasDetail() bool {
	return e.BoxScore != nil && e.PlayByPlay != nil
}

// LatestPointer records which dated snapshot was written most recently.
type LatestPointer struct {
	Date string `json:"date"`
}
