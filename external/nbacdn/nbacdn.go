package nbacdn

import (
	"strings"

	"github.com/courtsidehq/courtside/internal/domain/boxscore"
	"github.com/courtsidehq/courtside/internal/domain/game"
)

// Wire envelopes for the NBA live-data CDN. Every payload nests the useful
// body under a single top-level key next to a meta block we ignore.

type scoreboardEnvelope struct {
	Scoreboard scoreboardBody `json:"scoreboard"`
}

type scoreboardBody struct {
	GameDate string          `json:"gameDate"`
	Games    []scoreboardRow `json:"games"`
}

type scoreboardRow struct {
	GameID         string         `json:"gameId"`
	GameCode       string         `json:"gameCode"`
	GameStatus     int            `json:"gameStatus"`
	GameStatusText string         `json:"gameStatusText"`
	Period         int            `json:"period"`
	GameClock      string         `json:"gameClock"`
	GameTimeUTC    string         `json:"gameTimeUTC"`
	HomeTeam       scoreboardTeam `json:"homeTeam"`
	AwayTeam       scoreboardTeam `json:"awayTeam"`
}

type scoreboardTeam struct {
	TeamID      int64  `json:"teamId"`
	TeamName    string `json:"teamName"`
	TeamCity    string `json:"teamCity"`
	TeamTricode string `json:"teamTricode"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Score       int    `json:"score"`
}

type boxscoreEnvelope struct {
	Game boxscoreBody `json:"game"`
}

type boxscoreBody struct {
	GameID   string       `json:"gameId"`
	HomeTeam boxscoreTeam `json:"homeTeam"`
	AwayTeam boxscoreTeam `json:"awayTeam"`
}

type boxscoreTeam struct {
	TeamID      int64            `json:"teamId"`
	TeamTricode string           `json:"teamTricode"`
	Score       int              `json:"score"`
	Players     []boxscorePlayer `json:"players"`
}

type boxscorePlayer struct {
	PersonID   int64            `json:"personId"`
	Name       string           `json:"name"`
	Starter    string           `json:"starter"`
	Statistics playerStatistics `json:"statistics"`
}

type playerStatistics struct {
	Minutes                string `json:"minutes"`
	Points                 int    `json:"points"`
	Assists                int    `json:"assists"`
	ReboundsTotal          int    `json:"reboundsTotal"`
	ThreePointersMade      int    `json:"threePointersMade"`
	ThreePointersAttempted int    `json:"threePointersAttempted"`
}

type playByPlayEnvelope struct {
	Game playByPlayBody `json:"game"`
}

type playByPlayBody struct {
	GameID  string          `json:"gameId"`
	Actions []playByPlayRow `json:"actions"`
}

type playByPlayRow struct {
	ActionNumber int    `json:"actionNumber"`
	Clock        string `json:"clock"`
	Period       int    `json:"period"`
	TeamTricode  string `json:"teamTricode"`
	PersonID     int64  `json:"personId"`
	PlayerName   string `json:"playerName"`
	Description  string `json:"description"`
	ActionType   string `json:"actionType"`
	ScoreHome    string `json:"scoreHome"`
	ScoreAway    string `json:"scoreAway"`
}

func mapScoreboardRow(row scoreboardRow) game.Summary {
	return game.Summary{
		GameID:       strings.TrimSpace(row.GameID),
		GameCode:     strings.TrimSpace(row.GameCode),
		Status:       row.GameStatus,
		StatusText:   strings.TrimSpace(row.GameStatusText),
		Period:       row.Period,
		Clock:        row.GameClock,
		StartTimeUTC: row.GameTimeUTC,
		Home:         mapScoreboardTeam(row.HomeTeam),
		Away:         mapScoreboardTeam(row.AwayTeam),
	}
}

func mapScoreboardTeam(team scoreboardTeam) game.TeamLine {
	return game.TeamLine{
		TeamID:      team.TeamID,
		TeamTricode: strings.TrimSpace(team.TeamTricode),
		TeamName:    strings.TrimSpace(team.TeamName),
		TeamCity:    strings.TrimSpace(team.TeamCity),
		Score:       team.Score,
		Wins:        team.Wins,
		Losses:      team.Losses,
	}
}

func mapBoxscoreBody(body boxscoreBody) boxscore.BoxScore {
	return boxscore.BoxScore{
		GameID: strings.TrimSpace(body.GameID),
		Home:   mapBoxscoreTeam(body.HomeTeam),
		Away:   mapBoxscoreTeam(body.AwayTeam),
	}
}

func mapBoxscoreTeam(team boxscoreTeam) boxscore.TeamBox {
	players := make([]boxscore.PlayerStat, 0, len(team.Players))
	for _, p := range team.Players {
		players = append(players, boxscore.PlayerStat{
			PersonID:               p.PersonID,
			Name:                   strings.TrimSpace(p.Name),
			Starter:                p.Starter == "1",
			Minutes:                p.Statistics.Minutes,
			Points:                 p.Statistics.Points,
			Assists:                p.Statistics.Assists,
			ReboundsTotal:          p.Statistics.ReboundsTotal,
			ThreePointersMade:      p.Statistics.ThreePointersMade,
			ThreePointersAttempted: p.Statistics.ThreePointersAttempted,
		})
	}
	return boxscore.TeamBox{
		TeamID:      team.TeamID,
		TeamTricode: strings.TrimSpace(team.TeamTricode),
		Score:       team.Score,
		Players:     players,
	}
}

func mapPlayByPlayBody(body playByPlayBody) boxscore.PlayByPlay {
	actions := make([]boxscore.Action, 0, len(body.Actions))
	for _, row := range body.Actions {
		actions = append(actions, boxscore.Action{
			ActionNumber: row.ActionNumber,
			Clock:        row.Clock,
			Period:       row.Period,
			TeamTricode:  strings.TrimSpace(row.TeamTricode),
			PersonID:     row.PersonID,
			PlayerName:   strings.TrimSpace(row.PlayerName),
			Description:  strings.TrimSpace(row.Description),
			ActionType:   strings.TrimSpace(row.ActionType),
			ScoreHome:    row.ScoreHome,
			ScoreAway:    row.ScoreAway,
		})
	}
	return boxscore.PlayByPlay{
		GameID:  strings.TrimSpace(body.GameID),
		Actions: actions,
	}
}
