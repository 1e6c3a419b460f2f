package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/courtsidehq/courtside/internal/domain/boxscore"
	"github.com/courtsidehq/courtside/internal/domain/game"
	"github.com/courtsidehq/courtside/internal/domain/highlight"
	"github.com/courtsidehq/courtside/internal/domain/snapshot"
	"github.com/courtsidehq/courtside/internal/platform/dateutil"
	"github.com/courtsidehq/courtside/internal/usecase"
)

type gamesResponseDTO struct {
	Date     string        `json:"date"`
	FellBack bool          `json:"fellBack"`
	PrevDate string        `json:"prevDate"`
	NextDate string        `json:"nextDate"`
	Games    []gameItemDTO `json:"games"`
}

type gameItemDTO struct {
	Summary    game.Summary         `json:"summary"`
	Tags       []highlight.Tag      `json:"tags,omitempty"`
	BoxScore   *boxscore.BoxScore   `json:"boxscore"`
	PlayByPlay *boxscore.PlayByPlay `json:"pbp"`
}

type heroesResponseDTO struct {
	Date     string           `json:"date"`
	FellBack bool             `json:"fellBack"`
	Heroes   []highlight.Hero `json:"heroes"`
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	date := h.dateParam(r)
	res, err := h.resolveService.Resolve(ctx, date)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve games failed", "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}
	if res.State != usecase.StateResolved {
		writeError(ctx, w, fmt.Errorf("%w: no games snapshot for %s", usecase.ErrNotFound, res.Date))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, mapResolutionToGamesDTO(res))
}

func (h *Handler) ListHeroes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListHeroes")
	defer span.End()

	date := h.dateParam(r)
	res, heroes, err := h.resolveService.Heroes(ctx, date)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve heroes failed", "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, heroesResponseDTO{
		Date:     res.Date,
		FellBack: res.Probed,
		Heroes:   heroes,
	})
}

func (h *Handler) RunIngest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunIngest")
	defer span.End()

	result, err := h.ingestService.Run(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "ingest run failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// dateParam reads the optional date query parameter. A malformed value is
// replaced with the current date rather than rejected, so a stale or
// mistyped link still renders something.
func (h *Handler) dateParam(r *http.Request) string {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		return ""
	}
	if err := h.validator.VarCtx(r.Context(), date, "datetime=2006-01-02"); err != nil {
		h.logger.WarnContext(r.Context(), "invalid date parameter, substituting current date", "date", date)
		return dateutil.Format(time.Now())
	}
	return date
}

func mapResolutionToGamesDTO(res usecase.Resolution) gamesResponseDTO {
	out := gamesResponseDTO{
		Date:     res.Date,
		FellBack: res.Probed,
		PrevDate: dateutil.PrevDay(res.Date),
		NextDate: dateutil.NextDay(res.Date),
		Games:    make([]gameItemDTO, 0, len(res.Games)),
	}
	for _, enriched := range res.Games {
		out.Games = append(out.Games, mapEnrichedGameToDTO(enriched))
	}
	return out
}

// Tags are derived at render time from the stored stats, never persisted.
func mapEnrichedGameToDTO(enriched snapshot.EnrichedGame) gameItemDTO {
	return gameItemDTO{
		Summary:    enriched.Summary,
		Tags:       highlight.TagGame(enriched.Summary),
		BoxScore:   enriched.BoxScore,
		PlayByPlay: enriched.PlayByPlay,
	}
}
