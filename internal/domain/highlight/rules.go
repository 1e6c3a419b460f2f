package highlight

import (
	"sort"

	"github.com/courtsidehq/courtside/internal/domain/boxscore"
	"github.com/courtsidehq/courtside/internal/domain/game"
	"github.com/courtsidehq/courtside/internal/domain/snapshot"
)

// Tag labels a notable game or player performance.
type Tag string

const (
	TagCloseGame             Tag = "close-game"
	TagBlowout               Tag = "blowout"
	TagScoringMachine        Tag = "scoring-machine"
	TagDoubleDouble          Tag = "double-double"
	TagPaintDominance        Tag = "paint-dominance"
	TagHighEfficiencyShooter Tag = "high-efficiency-shooter"
)

const (
	closeGameMaxMargin = 5
	blowoutMinMargin   = 20
	heroCount          = 3
)

// TagGame returns the tags earned by a game's final margin. Games that have
// not finished earn nothing regardless of score.
func TagGame(summary game.Summary) []Tag {
	if !summary.IsFinal() {
		return nil
	}

	margin := summary.Margin()
	switch {
	case margin <= closeGameMaxMargin:
		return []Tag{TagCloseGame}
	case margin >= blowoutMinMargin:
		return []Tag{TagBlowout}
	default:
		return nil
	}
}

// TagPlayer returns at most one tag for a stat line. Rules are checked in a
// fixed priority order and the first match wins.
func TagPlayer(stat boxscore.PlayerStat) (Tag, bool) {
	switch {
	case stat.Points >= 30:
		return TagScoringMachine, true
	case stat.Points >= 20 && stat.Assists >= 10:
		return TagDoubleDouble, true
	case stat.Points >= 20 && stat.ReboundsTotal >= 10:
		return TagPaintDominance, true
	case stat.Points >= 20 && stat.ThreePointersAttempted > 0 &&
		float64(stat.ThreePointersMade)/float64(stat.ThreePointersAttempted) >= 0.5:
		return TagHighEfficiencyShooter, true
	default:
		return "", false
	}
}

// Hero is one entry in the nightly top-scorer ranking.
type Hero struct {
	PersonID    int64  `json:"personId"`
	Name        string `json:"name"`
	TeamTricode string `json:"teamTricode"`
	GameID      string `json:"gameId"`
	Points      int    `json:"points"`
	Assists     int    `json:"assists"`
	Rebounds    int    `json:"rebounds"`
	Tag         Tag    `json:"tag,omitempty"`
}

// RankHeroes flattens every roster in the snapshot, drops players who never
// entered a game, and returns the top scorers in points order. Ties keep the
// order players were encountered in.
func RankHeroes(snap snapshot.Snapshot) []Hero {
	var heroes []Hero
	for _, enriched := range snap.Games {
		if enriched.BoxScore == nil {
			continue
		}
		for _, team := range []boxscore.TeamBox{enriched.BoxScore.Home, enriched.BoxScore.Away} {
			for _, stat := range team.Players {
				if stat.DidNotPlay() {
					continue
				}
				hero := Hero{
					PersonID:    stat.PersonID,
					Name:        stat.Name,
					TeamTricode: team.TeamTricode,
					GameID:      enriched.BoxScore.GameID,
					Points:      stat.Points,
					Assists:     stat.Assists,
					Rebounds:    stat.ReboundsTotal,
				}
				if tag, ok := TagPlayer(stat); ok {
					hero.Tag = tag
				}
				heroes = append(heroes, hero)
			}
		}
	}

	sort.SliceStable(heroes, func(i, j int) bool {
		return heroes[i].Points > heroes[j].Points
	})

	if len(heroes) > heroCount {
		heroes = heroes[:heroCount]
	}
	return heroes
}
