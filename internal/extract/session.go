package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/fortuna/wicket/internal/store"
)

// clickTabScript switches the match page to a named tab. The site renders
// tabs as li/div elements whose class contains "tab" or "nav"; matching is
// by visible text, skipping the already-active tab.
const clickTabScript = `(function(name) {
	var tabs = document.querySelectorAll("li[class*='tab'], li[class*='nav'], div[class*='tab'], div[class*='nav']");
	for (var i = 0; i < tabs.length; i++) {
		var tab = tabs[i];
		var text = (tab.textContent || "").trim().toLowerCase();
		var cls = tab.getAttribute("class") || "";
		if (text.indexOf(name) !== -1 && cls.indexOf("active") === -1) {
			tab.click();
			return true;
		}
	}
	return false;
})(%q)`

// statusTextScript reads the current status banner without a navigation.
const statusTextScript = `document.querySelector(".match-status, .status")?.textContent?.trim() || ""`

// Session is one browser tab pinned to a match page. Fetch switches tabs
// in-page and extracts the visible content; the page itself is loaded once
// at Open and updates live.
type Session struct {
	url     string
	ctx     context.Context
	cancel  context.CancelFunc
	limiter *rate.Limiter
	cfg     Config
}

// URL returns the match page this session is bound to.
func (s *Session) URL() string {
	return s.url
}

// Fetch switches the page to the tab for kind, extracts its content and
// returns the typed payload as JSON.
func (s *Session) Fetch(ctx context.Context, kind store.SnapshotKind) (json.RawMessage, error) {
	tab, waitSelector, ok := tabForKind(kind)
	if !ok {
		return nil, fmt.Errorf("unknown snapshot kind: %s", kind)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	html, err := s.fetchTab(tab, waitSelector)
	if err != nil {
		return nil, fmt.Errorf("fetching %s tab: %w", kind, err)
	}

	doc, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}

	var payload any
	switch kind {
	case store.KindInfo:
		payload, err = ParseMatchInfo(doc)
	case store.KindSquads:
		payload, err = ParseSquads(doc)
	case store.KindLive:
		payload, err = ParseLiveState(doc)
	case store.KindScorecard:
		payload, err = ParseScorecard(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s tab: %w", kind, err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", kind, err)
	}
	return data, nil
}

// fetchTab clicks the named tab and returns the rendered page HTML.
func (s *Session) fetchTab(tab, waitSelector string) (string, error) {
	opCtx, cancel := context.WithTimeout(s.ctx, s.cfg.NavTimeout)
	defer cancel()

	var clicked bool
	var htmlContent string
	err := chromedp.Run(opCtx,
		chromedp.Evaluate(fmt.Sprintf(clickTabScript, tab), &clicked),
		chromedp.WaitVisible(waitSelector, chromedp.ByQuery),
		chromedp.Sleep(s.cfg.TabDelay),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}

	return htmlContent, nil
}

// IsEnded reads the status banner on the open page and reports whether it
// describes a finished match.
func (s *Session) IsEnded(ctx context.Context) (bool, error) {
	opCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	var status string
	if err := chromedp.Run(opCtx, chromedp.Evaluate(statusTextScript, &status)); err != nil {
		return false, fmt.Errorf("reading match status: %w", err)
	}
	return IsEndedStatus(status), nil
}

// Close releases the browser tab. Safe to call more than once and while
// a Fetch is in flight; the in-flight operation is aborted.
func (s *Session) Close() error {
	s.cancel()
	return nil
}
