package game

const (
	StatusScheduled = 1
	StatusLive      = 2
	StatusFinal     = 3
)

// Summary is one game as reported by the daily scoreboard feed.
type Summary struct {
	GameID       string   `json:"gameId"`
	GameCode     string   `json:"gameCode"`
	Status       int      `json:"gameStatus"`
	StatusText   string   `json:"gameStatusText"`
	Period       int      `json:"period"`
	Clock        string   `json:"gameClock"`
	StartTimeUTC string   `json:"gameTimeUTC"`
	Home         TeamLine `json:"homeTeam"`
	Away         TeamLine `json:"awayTeam"`
}

// TeamLine is one side of the scoreboard line for a game.
type TeamLine struct {
	TeamID      int64  `json:"teamId"`
	TeamTricode string `json:"teamTricode"`
	TeamName    string `json:"teamName"`
	TeamCity    string `json:"teamCity"`
	Score       int    `json:"score"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

func (s Summary) IsFinal() bool {
	return s.Status == StatusFinal
}

// Margin is the absolute score gap between the two sides.
func (s Summary) Margin() int {
	margin := s.Home.Score - s.Away.Score
	if margin < 0 {
		margin = -margin
	}
	return margin
}
