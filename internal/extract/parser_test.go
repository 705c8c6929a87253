package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body>
<div class="fixtures">
  <div class="match-card" data-match-id="ind-vs-aus-t20-1">
    <a href="/scoreboard/ind-vs-aus-t20-1">India vs Australia</a>
    <span class="teams">India vs Australia</span>
    <span class="format">T20</span>
    <span class="date-time">24 Aug 2026, 14:30 UTC</span>
  </div>
  <div class="match-card">
    <a href="https://crex.live/scoreboard/eng-vs-nz-odi-2">England vs New Zealand</a>
    <span class="teams">England vs New Zealand</span>
    <span class="format">ODI</span>
    <span class="date-time">25 Aug 2026, 10:00 UTC</span>
  </div>
  <div class="match-card">
    <span class="teams">Missing Link And ID</span>
  </div>
</div>
</body></html>`

func TestParseMatchList(t *testing.T) {
	doc, err := ParseHTML(listingHTML)
	require.NoError(t, err)

	matches := ParseMatchList(doc, "https://crex.live/fixtures/match-list")
	require.Len(t, matches, 2, "card without id or link should be dropped")

	assert.Equal(t, "ind-vs-aus-t20-1", matches[0].ID)
	assert.Equal(t, "India vs Australia", matches[0].Teams)
	assert.Equal(t, "T20", matches[0].Format)
	assert.Equal(t, "https://crex.live/scoreboard/ind-vs-aus-t20-1", matches[0].URL)
	assert.Equal(t, "24 Aug 2026, 14:30 UTC", matches[0].StartText)

	// Second card has no data-match-id; the id comes from the URL slug.
	assert.Equal(t, "eng-vs-nz-odi-2", matches[1].ID)
	assert.Equal(t, "https://crex.live/scoreboard/eng-vs-nz-odi-2", matches[1].URL)
}

func TestParseMatchListEmptyPage(t *testing.T) {
	doc, err := ParseHTML(`<html><body><div class="fixtures"></div></body></html>`)
	require.NoError(t, err)

	matches := ParseMatchList(doc, "https://crex.live/fixtures/match-list")
	assert.Empty(t, matches)
}

const infoHTML = `<html><body>
<div class="match-info">
  <div class="team-home">India</div>
  <div class="team-away">Australia</div>
  <div class="series-name">Border-Gavaskar Trophy</div>
  <div class="match-format">Test</div>
  <div class="venue-name">Wankhede Stadium, Mumbai</div>
  <div class="match-date">24 Aug 2026</div>
  <div class="match-time">14:30</div>
  <div class="toss-result">India won the toss and elected to bat</div>
  <div class="umpire">R Tucker</div>
  <div class="umpire">N Menon</div>
</div>
</body></html>`

func TestParseMatchInfo(t *testing.T) {
	doc, err := ParseHTML(infoHTML)
	require.NoError(t, err)

	info, err := ParseMatchInfo(doc)
	require.NoError(t, err)

	assert.Equal(t, "India", info.HomeTeam)
	assert.Equal(t, "Australia", info.AwayTeam)
	assert.Equal(t, "Border-Gavaskar Trophy", info.Series)
	assert.Equal(t, "Test", info.Format)
	assert.Equal(t, "Wankhede Stadium, Mumbai", info.Venue)
	assert.Equal(t, "24 Aug 2026", info.Date)
	assert.Equal(t, "14:30", info.Time)
	assert.Equal(t, "India won the toss and elected to bat", info.Toss)
	assert.Equal(t, []string{"R Tucker", "N Menon"}, info.Umpires)
}

func TestParseMatchInfoFallbackSelectors(t *testing.T) {
	doc, err := ParseHTML(`<html><body>
<div class="info-block">
  <div class="team1">Pakistan</div>
  <div class="team2">Sri Lanka</div>
  <div class="venue">Gaddafi Stadium</div>
</div>
</body></html>`)
	require.NoError(t, err)

	info, err := ParseMatchInfo(doc)
	require.NoError(t, err)

	assert.Equal(t, "Pakistan", info.HomeTeam)
	assert.Equal(t, "Sri Lanka", info.AwayTeam)
	assert.Equal(t, "Gaddafi Stadium", info.Venue)
	assert.Empty(t, info.Toss)
}

func TestParseMatchInfoMissingSection(t *testing.T) {
	doc, err := ParseHTML(`<html><body><div class="content">nothing here</div></body></html>`)
	require.NoError(t, err)

	_, err = ParseMatchInfo(doc)
	assert.Error(t, err)
}

const squadsHTML = `<html><body>
<div class="squad-tab">
  <div class="home-team-name">India</div>
  <div class="away-team-name">Australia</div>
  <div class="home-team-squad">
    <div class="player">
      <span class="player-name">R Sharma</span>
      <span class="player-role">Batter</span>
      <span class="captain-indicator">(c)</span>
    </div>
    <div class="player">
      <span class="player-name">R Pant</span>
      <span class="player-role">WK-Batter</span>
      <span class="wicketkeeper-indicator">(wk)</span>
    </div>
  </div>
  <div class="away-team-squad">
    <div class="player-row">
      <span class="player-name">P Cummins</span>
      <span class="player-role">Bowler</span>
      <span class="captain">(c)</span>
    </div>
  </div>
</div>
</body></html>`

func TestParseSquads(t *testing.T) {
	doc, err := ParseHTML(squadsHTML)
	require.NoError(t, err)

	squads, err := ParseSquads(doc)
	require.NoError(t, err)

	assert.Equal(t, "India", squads.Home.Name)
	require.Len(t, squads.Home.Players, 2)
	assert.Equal(t, "R Sharma", squads.Home.Players[0].Name)
	assert.Equal(t, "Batter", squads.Home.Players[0].Role)
	assert.True(t, squads.Home.Players[0].Captain)
	assert.False(t, squads.Home.Players[0].Wicketkeeper)
	assert.True(t, squads.Home.Players[1].Wicketkeeper)

	assert.Equal(t, "Australia", squads.Away.Name)
	require.Len(t, squads.Away.Players, 1)
	assert.Equal(t, "P Cummins", squads.Away.Players[0].Name)
	assert.True(t, squads.Away.Players[0].Captain)
}

const liveHTML = `<html><body>
<div class="live-panel">
  <div class="current-innings">India 1st Innings</div>
  <div class="current-score">245/3 (42.1)</div>
  <div class="run-rate">5.82</div>
  <div class="current-partnership">58 (44)</div>
  <div class="last-wicket">V Kohli c Smith b Cummins 89 (112)</div>
  <span class="recent-ball">1</span>
  <span class="recent-ball">4</span>
  <span class="recent-ball">W</span>
  <div class="batsman-row">
    <span class="batsman-name">R Sharma</span>
    <span class="batsman-runs">112</span>
    <span class="batsman-balls">134</span>
    <span class="batsman-fours">12</span>
    <span class="batsman-sixes">3</span>
    <span class="batsman-strike-rate">83.58</span>
  </div>
  <div class="batsman-row">
    <span class="batsman-name">S Iyer</span>
    <span class="batsman-runs">34</span>
    <span class="batsman-balls">40</span>
    <span class="batsman-fours">4</span>
    <span class="batsman-sixes">0</span>
    <span class="batsman-strike-rate">85.00</span>
  </div>
  <div class="bowler-row">
    <span class="bowler-name">P Cummins</span>
    <span class="bowler-overs">12.1</span>
    <span class="bowler-maidens">2</span>
    <span class="bowler-runs">48</span>
    <span class="bowler-wickets">2</span>
    <span class="bowler-economy">3.95</span>
  </div>
  <div class="match-status">Live</div>
  <div class="commentary-item">
    <span class="commentary-text">Short ball, pulled away for four</span>
    <span class="commentary-over">42.1</span>
  </div>
</div>
</body></html>`

func TestParseLiveState(t *testing.T) {
	doc, err := ParseHTML(liveHTML)
	require.NoError(t, err)

	state, err := ParseLiveState(doc)
	require.NoError(t, err)

	assert.Equal(t, "India 1st Innings", state.CurrentInnings)
	assert.Equal(t, "245/3 (42.1)", state.Score)
	assert.Equal(t, "5.82", state.RunRate)
	assert.Equal(t, "58 (44)", state.Partnership)
	assert.Equal(t, "V Kohli c Smith b Cummins 89 (112)", state.LastWicket)
	assert.Equal(t, []string{"1", "4", "W"}, state.RecentBalls)
	assert.Equal(t, "Live", state.MatchStatus)

	require.Len(t, state.Batsmen, 2)
	assert.Equal(t, "R Sharma", state.Batsmen[0].Name)
	assert.Equal(t, "112", state.Batsmen[0].Runs)
	assert.Equal(t, "83.58", state.Batsmen[0].StrikeRate)

	require.Len(t, state.Bowlers, 1)
	assert.Equal(t, "P Cummins", state.Bowlers[0].Name)
	assert.Equal(t, "2", state.Bowlers[0].Wickets)

	require.Len(t, state.Commentary, 1)
	assert.Equal(t, "Short ball, pulled away for four", state.Commentary[0].Text)
	assert.Equal(t, "42.1", state.Commentary[0].Over)
}

const scorecardHTML = `<html><body>
<div class="scorecard-tab">
  <div class="innings-1">
    <div class="innings-team">India</div>
    <div class="innings-total">352/8</div>
    <div class="innings-overs">50.0</div>
    <div class="innings-extras">12</div>
    <div class="batsman-row">
      <span class="batsman-name">R Sharma</span>
      <span class="batsman-dismissal">c Smith b Starc</span>
      <span class="batsman-runs">112</span>
      <span class="batsman-balls">118</span>
      <span class="batsman-fours">11</span>
      <span class="batsman-sixes">4</span>
      <span class="batsman-strike-rate">94.92</span>
    </div>
    <div class="bowler-row">
      <span class="bowler-name">M Starc</span>
      <span class="bowler-overs">10</span>
      <span class="bowler-maidens">1</span>
      <span class="bowler-runs">62</span>
      <span class="bowler-wickets">3</span>
      <span class="bowler-economy">6.20</span>
    </div>
    <div class="fow-item">1-34 (Gill, 5.2)</div>
    <div class="fow-item">2-89 (Kohli, 15.4)</div>
  </div>
  <div class="innings-2">
    <div class="innings-team">Australia</div>
    <div class="innings-total">347</div>
    <div class="innings-overs">49.3</div>
  </div>
  <div class="match-summary">India won by 5 runs</div>
  <div class="player-of-match">R Sharma</div>
</div>
</body></html>`

func TestParseScorecard(t *testing.T) {
	doc, err := ParseHTML(scorecardHTML)
	require.NoError(t, err)

	card, err := ParseScorecard(doc)
	require.NoError(t, err)

	assert.Equal(t, "India won by 5 runs", card.MatchSummary)
	assert.Equal(t, "R Sharma", card.PlayerOfTheMatch)

	require.Len(t, card.Innings, 2)
	first := card.Innings[0]
	assert.Equal(t, "India", first.Team)
	assert.Equal(t, "352/8", first.Total)
	assert.Equal(t, "50.0", first.Overs)
	assert.Equal(t, "12", first.Extras)
	require.Len(t, first.Batting, 1)
	assert.Equal(t, "c Smith b Starc", first.Batting[0].Dismissal)
	require.Len(t, first.Bowling, 1)
	assert.Equal(t, "M Starc", first.Bowling[0].Name)
	assert.Equal(t, []string{"1-34 (Gill, 5.2)", "2-89 (Kohli, 15.4)"}, first.FallOfWickets)

	second := card.Innings[1]
	assert.Equal(t, "Australia", second.Team)
	assert.Equal(t, "347", second.Total)
	assert.Empty(t, second.Batting)
}

func TestIsEndedStatus(t *testing.T) {
	cases := map[string]struct {
		status string
		want   bool
	}{
		"live":          {"Live", false},
		"innings break": {"Innings Break", false},
		"stumps":        {"Stumps: Day 3", false},
		"rain delay":    {"Rain delay, play to resume", false},
		"empty":         {"", false},
		"match ended":   {"Match Ended", true},
		"completed":     {"Match Completed", true},
		"won by":        {"India won by 5 wickets", true},
		"drawn":         {"Match drawn", true},
		"abandoned":     {"Match abandoned due to rain", true},
		"no result":     {"No Result", true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsEndedStatus(tc.status))
		})
	}
}

func TestMatchStatusText(t *testing.T) {
	doc, err := ParseHTML(`<html><body><div class="match-status">India won by 5 wickets</div></body></html>`)
	require.NoError(t, err)

	status := MatchStatusText(doc)
	assert.Equal(t, "India won by 5 wickets", status)
	assert.True(t, IsEndedStatus(status))
}
