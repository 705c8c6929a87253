package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxCommentaryItems caps how many commentary entries a live snapshot carries.
const maxCommentaryItems = 10

// endedPhrases are the status banner fragments that mean a match is over.
// Matching is case-insensitive substring.
var endedPhrases = []string{
	"match ended",
	"completed",
	"won by",
	"drawn",
	"abandoned",
	"no result",
}

// IsEndedStatus reports whether a status banner text describes a finished match.
func IsEndedStatus(status string) bool {
	s := strings.ToLower(status)
	for _, phrase := range endedPhrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}
	return false
}

// MatchStatusText pulls the status banner from a match page.
func MatchStatusText(doc *goquery.Document) string {
	return text(doc.Selection, ".match-status, .status")
}

// ParseMatchList extracts fixture rows from the match listing page.
// Cards without a usable identifier are skipped; everything else is
// kept best-effort and validated by the caller.
func ParseMatchList(doc *goquery.Document, pageURL string) []DiscoveredMatch {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	var matches []DiscoveredMatch
	doc.Find(".match-card").Each(func(_ int, card *goquery.Selection) {
		href := card.Find("a[href]").First().AttrOr("href", "")
		m := DiscoveredMatch{
			ID:        strings.TrimSpace(card.AttrOr("data-match-id", "")),
			Teams:     text(card, ".teams"),
			Format:    text(card, ".format"),
			URL:       resolveHref(base, href),
			StartText: text(card, ".date-time"),
		}
		if m.ID == "" {
			m.ID = idFromURL(m.URL)
		}
		if m.ID == "" {
			return
		}
		matches = append(matches, m)
	})
	return matches
}

// ParseMatchInfo extracts the pre-match details from the info tab.
func ParseMatchInfo(doc *goquery.Document) (*MatchInfo, error) {
	section := doc.Find("[class*='info']").First()
	if section.Length() == 0 {
		return nil, fmt.Errorf("info section not found")
	}

	info := &MatchInfo{
		HomeTeam: text(doc.Selection, ".team-home, .teamA, .team1, .team-left"),
		AwayTeam: text(doc.Selection, ".team-away, .teamB, .team2, .team-right"),
		Series:   text(doc.Selection, ".series-name, .series"),
		Format:   text(doc.Selection, ".match-format, .format"),
		Venue:    text(doc.Selection, ".venue-name, .venue"),
		Date:     text(doc.Selection, ".match-date, .date"),
		Time:     text(doc.Selection, ".match-time, .time"),
		Toss:     text(doc.Selection, ".toss-result, .toss"),
		Umpires:  texts(doc.Selection, ".umpire, .umpires"),
	}
	return info, nil
}

// ParseSquads extracts both team lineups from the squad tab.
func ParseSquads(doc *goquery.Document) (*Squads, error) {
	section := doc.Find("[class*='squad']").First()
	if section.Length() == 0 {
		return nil, fmt.Errorf("squad section not found")
	}

	squads := &Squads{
		Home: TeamSquad{
			Name:    text(section, ".home-team-name, .teamA, .team1, .team-left"),
			Players: parsePlayers(section, ".home-team-squad, .teamA, .team1, .team-left"),
		},
		Away: TeamSquad{
			Name:    text(section, ".away-team-name, .teamB, .team2, .team-right"),
			Players: parsePlayers(section, ".away-team-squad, .teamB, .team2, .team-right"),
		},
	}
	return squads, nil
}

// parsePlayers walks the player rows under each container matched by teamSelector.
func parsePlayers(section *goquery.Selection, teamSelector string) []SquadPlayer {
	var players []SquadPlayer
	section.Find(teamSelector).Find(".player, .player-row, .player-item").Each(func(_ int, row *goquery.Selection) {
		name := text(row, ".player-name")
		if name == "" {
			name = strings.TrimSpace(row.Text())
		}
		if name == "" {
			return
		}
		players = append(players, SquadPlayer{
			Name:         name,
			Role:         text(row, ".player-role"),
			Captain:      row.Find(".captain-indicator, .captain").Length() > 0,
			Wicketkeeper: row.Find(".wicketkeeper-indicator, .wicketkeeper").Length() > 0,
		})
	})
	return players
}

// ParseLiveState extracts the in-play view from the live tab.
func ParseLiveState(doc *goquery.Document) (*LiveState, error) {
	live := doc.Find("[class*='live']").First()
	if live.Length() == 0 {
		return nil, fmt.Errorf("live section not found")
	}

	state := &LiveState{
		CurrentInnings:  text(live, ".current-innings"),
		Score:           text(live, ".current-score, .score"),
		RunRate:         text(live, ".run-rate"),
		RequiredRunRate: text(live, ".required-run-rate"),
		Partnership:     text(live, ".current-partnership"),
		LastWicket:      text(live, ".last-wicket"),
		RecentBalls:     texts(live, ".recent-ball"),
		Batsmen:         parseBatsmen(live, ".batsman, .batsman-row"),
		Bowlers:         parseBowlers(live, ".bowler, .bowler-row"),
		MatchStatus:     text(live, ".match-status, .status"),
	}

	live.Find(".commentary-item, .commentary-row").Each(func(i int, row *goquery.Selection) {
		if i >= maxCommentaryItems {
			return
		}
		entry := CommentaryItem{
			Text:      text(row, ".commentary-text"),
			Over:      text(row, ".commentary-over"),
			Timestamp: text(row, ".commentary-timestamp"),
		}
		if entry.Text == "" {
			entry.Text = strings.TrimSpace(row.Text())
		}
		state.Commentary = append(state.Commentary, entry)
	})

	return state, nil
}

// ParseScorecard extracts the per-innings breakdown from the scorecard tab.
// Sites render up to four innings blocks; absent blocks are skipped.
func ParseScorecard(doc *goquery.Document) (*Scorecard, error) {
	section := doc.Find("[class*='scorecard']").First()
	if section.Length() == 0 {
		return nil, fmt.Errorf("scorecard section not found")
	}

	card := &Scorecard{
		MatchSummary:     text(section, ".match-summary"),
		PlayerOfTheMatch: text(section, ".player-of-match"),
	}
	for i := 1; i <= 4; i++ {
		block := section.Find(fmt.Sprintf(".innings-%d", i)).First()
		if block.Length() == 0 {
			continue
		}
		card.Innings = append(card.Innings, Innings{
			Team:          text(block, ".innings-team"),
			Total:         text(block, ".innings-total"),
			Overs:         text(block, ".innings-overs"),
			Extras:        text(block, ".innings-extras"),
			Batting:       parseBatsmen(block, ".batsman-row"),
			Bowling:       parseBowlers(block, ".bowler-row"),
			FallOfWickets: texts(block, ".fow-item"),
		})
	}
	return card, nil
}

// parseBatsmen walks batting rows under a section.
func parseBatsmen(section *goquery.Selection, rowSelector string) []BatsmanLine {
	var lines []BatsmanLine
	section.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		name := text(row, ".batsman-name")
		if name == "" {
			name = strings.TrimSpace(row.Text())
		}
		if name == "" {
			return
		}
		lines = append(lines, BatsmanLine{
			Name:       name,
			Dismissal:  text(row, ".batsman-dismissal"),
			Runs:       text(row, ".batsman-runs"),
			Balls:      text(row, ".batsman-balls"),
			Fours:      text(row, ".batsman-fours"),
			Sixes:      text(row, ".batsman-sixes"),
			StrikeRate: text(row, ".batsman-strike-rate"),
		})
	})
	return lines
}

// parseBowlers walks bowling rows under a section.
func parseBowlers(section *goquery.Selection, rowSelector string) []BowlerLine {
	var lines []BowlerLine
	section.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		name := text(row, ".bowler-name")
		if name == "" {
			name = strings.TrimSpace(row.Text())
		}
		if name == "" {
			return
		}
		lines = append(lines, BowlerLine{
			Name:    name,
			Overs:   text(row, ".bowler-overs"),
			Maidens: text(row, ".bowler-maidens"),
			Runs:    text(row, ".bowler-runs"),
			Wickets: text(row, ".bowler-wickets"),
			Economy: text(row, ".bowler-economy"),
		})
	})
	return lines
}

// text returns the trimmed text of the first node matching selector.
func text(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// texts returns the trimmed non-empty texts of every node matching selector.
func texts(s *goquery.Selection, selector string) []string {
	var out []string
	s.Find(selector).Each(func(_ int, el *goquery.Selection) {
		if t := strings.TrimSpace(el.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// resolveHref absolutizes a listing link against the page URL.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// idFromURL derives a match identifier from the last path segment of its URL.
func idFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	last := segments[len(segments)-1]
	if last == "" || last == "match-list" {
		return ""
	}
	return last
}
