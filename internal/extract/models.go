package extract

// DiscoveredMatch is one row of the fixtures listing. StartText is the
// source's human-readable start time, left unparsed for the caller.
type DiscoveredMatch struct {
	ID        string
	Teams     string
	Format    string
	URL       string
	StartText string
}

// MatchInfo holds the static pre-match details from the info tab.
type MatchInfo struct {
	HomeTeam string   `json:"home_team"`
	AwayTeam string   `json:"away_team"`
	Series   string   `json:"series,omitempty"`
	Format   string   `json:"format,omitempty"`
	Venue    string   `json:"venue,omitempty"`
	Date     string   `json:"date,omitempty"`
	Time     string   `json:"time,omitempty"`
	Toss     string   `json:"toss,omitempty"`
	Umpires  []string `json:"umpires,omitempty"`
}

// SquadPlayer is one named player in a lineup.
type SquadPlayer struct {
	Name         string `json:"name"`
	Role         string `json:"role,omitempty"`
	Captain      bool   `json:"captain,omitempty"`
	Wicketkeeper bool   `json:"wicketkeeper,omitempty"`
}

// TeamSquad is one side's lineup.
type TeamSquad struct {
	Name    string        `json:"name"`
	Players []SquadPlayer `json:"players"`
}

// Squads pairs both lineups from the squad tab.
type Squads struct {
	Home TeamSquad `json:"home"`
	Away TeamSquad `json:"away"`
}

// BatsmanLine is one row of a batting table.
type BatsmanLine struct {
	Name       string `json:"name"`
	Dismissal  string `json:"dismissal,omitempty"`
	Runs       string `json:"runs"`
	Balls      string `json:"balls"`
	Fours      string `json:"fours"`
	Sixes      string `json:"sixes"`
	StrikeRate string `json:"strike_rate"`
}

// BowlerLine is one row of a bowling table.
type BowlerLine struct {
	Name    string `json:"name"`
	Overs   string `json:"overs"`
	Maidens string `json:"maidens"`
	Runs    string `json:"runs"`
	Wickets string `json:"wickets"`
	Economy string `json:"economy"`
}

// CommentaryItem is one ball-by-ball commentary entry.
type CommentaryItem struct {
	Text      string `json:"text"`
	Over      string `json:"over,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// LiveState is the current in-play view from the live tab.
type LiveState struct {
	CurrentInnings  string           `json:"current_innings,omitempty"`
	Score           string           `json:"score"`
	RunRate         string           `json:"run_rate,omitempty"`
	RequiredRunRate string           `json:"required_run_rate,omitempty"`
	Partnership     string           `json:"partnership,omitempty"`
	LastWicket      string           `json:"last_wicket,omitempty"`
	RecentBalls     []string         `json:"recent_balls,omitempty"`
	Batsmen         []BatsmanLine    `json:"batsmen,omitempty"`
	Bowlers         []BowlerLine     `json:"bowlers,omitempty"`
	MatchStatus     string           `json:"match_status"`
	Commentary      []CommentaryItem `json:"commentary,omitempty"`
}

// Innings is one innings of the full scorecard.
type Innings struct {
	Team          string        `json:"team"`
	Total         string        `json:"total"`
	Overs         string        `json:"overs,omitempty"`
	Extras        string        `json:"extras,omitempty"`
	Batting       []BatsmanLine `json:"batting,omitempty"`
	Bowling       []BowlerLine  `json:"bowling,omitempty"`
	FallOfWickets []string      `json:"fall_of_wickets,omitempty"`
}

// Scorecard is the full per-innings breakdown from the scorecard tab.
type Scorecard struct {
	Innings          []Innings `json:"innings"`
	MatchSummary     string    `json:"match_summary,omitempty"`
	PlayerOfTheMatch string    `json:"player_of_the_match,omitempty"`
}
