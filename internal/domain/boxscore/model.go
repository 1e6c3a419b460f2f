package boxscore

// MinutesDNP is the ISO 8601 duration the feed reports for players who
// never entered the game.
const MinutesDNP = "PT00M00.00S"

// BoxScore holds the full per-player stat lines for one finished or
// in-progress game.
type BoxScore struct {
	GameID string  `json:"gameId"`
	Home   TeamBox `json:"homeTeam"`
	Away   TeamBox `json:"awayTeam"`
}

// TeamBox is one team's roster of stat lines within a box score.
type TeamBox struct {
	TeamID      int64        `json:"teamId"`
	TeamTricode string       `json:"teamTricode"`
	Score       int          `json:"score"`
	Players     []PlayerStat `json:"players"`
}

// PlayerStat is a single player's line in the box score.
type PlayerStat struct {
	PersonID               int64  `json:"personId"`
	Name                   string `json:"name"`
	Starter                bool   `json:"starter"`
	Minutes                string `json:"minutes"`
	Points                 int    `json:"points"`
	Assists                int    `json:"assists"`
	ReboundsTotal          int    `json:"reboundsTotal"`
	ThreePointersMade      int    `json:"threePointersMade"`
	ThreePointersAttempted int    `json:"threePointersAttempted"`
}

func (p PlayerStat) DidNotPlay() bool {
	return p.Minutes == MinutesDNP
}

// PlayByPlay is the ordered action log for one game.
type PlayByPlay struct {
	GameID  string   `json:"gameId"`
	Actions []Action `json:"actions"`
}

// Action is a single play-by-play entry.
type Action struct {
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
