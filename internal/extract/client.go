package extract

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/fortuna/wicket/internal/store"
)

const (
	// DefaultListingURL is the fixtures page scanned during discovery.
	DefaultListingURL = "https://crex.live/fixtures/match-list"

	// UserAgent for browser sessions
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config controls browser behavior and request pacing.
type Config struct {
	ListingURL      string
	Headless        bool
	NavTimeout      time.Duration // budget per browser operation
	PageLoadDelay   time.Duration // render wait after first navigation
	TabDelay        time.Duration // render wait after a tab switch
	RequestInterval time.Duration // minimum spacing between page requests
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		ListingURL:      DefaultListingURL,
		Headless:        true,
		NavTimeout:      30 * time.Second,
		PageLoadDelay:   5 * time.Second,
		TabDelay:        1 * time.Second,
		RequestInterval: 2 * time.Second,
	}
}

// Client drives a shared headless browser for the match site. Discovery
// fetches run in throwaway tabs; Open returns a long-lived Session pinned
// to one match page. All requests share one rate limiter.
type Client struct {
	cfg     Config
	limiter *rate.Limiter

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates a browser client. The underlying Chrome process is
// launched lazily on first use.
func NewClient(cfg Config) (*Client, error) {
	def := DefaultConfig()
	if cfg.ListingURL == "" {
		cfg.ListingURL = def.ListingURL
	}
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = def.NavTimeout
	}
	if cfg.PageLoadDelay <= 0 {
		cfg.PageLoadDelay = def.PageLoadDelay
	}
	if cfg.TabDelay <= 0 {
		cfg.TabDelay = def.TabDelay
	}
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = def.RequestInterval
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		allocCtx: allocCtx,
		cancel:   cancel,
	}, nil
}

// Close shuts down the browser and every session spawned from it.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// DiscoverMatches fetches the fixtures listing and returns the matches on it.
func (c *Client) DiscoverMatches(ctx context.Context) ([]DiscoveredMatch, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	html, err := c.fetchPage(c.cfg.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("fetching match listing: %w", err)
	}

	doc, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}

	matches := ParseMatchList(doc, c.cfg.ListingURL)
	log.Printf("Discovered %d matches from listing", len(matches))
	return matches, nil
}

// Open navigates a new browser tab to a match page and returns a session
// bound to it. The caller owns the session and must Close it.
func (c *Client) Open(ctx context.Context, matchURL string) (*Session, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	browserCtx, cancel := chromedp.NewContext(c.allocCtx)

	navCtx, navCancel := context.WithTimeout(browserCtx, c.cfg.NavTimeout)
	defer navCancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(matchURL),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(c.cfg.PageLoadDelay),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("opening match page %s: %w", matchURL, err)
	}

	return &Session{
		url:     matchURL,
		ctx:     browserCtx,
		cancel:  cancel,
		limiter: c.limiter,
		cfg:     c.cfg,
	}, nil
}

// fetchPage loads a URL in a throwaway tab and returns the rendered HTML.
func (c *Client) fetchPage(pageURL string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, c.cfg.NavTimeout)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(c.cfg.PageLoadDelay),
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

// tabForKind maps a snapshot kind to its tab label and content selector.
func tabForKind(kind store.SnapshotKind) (tab, waitSelector string, ok bool) {
	switch kind {
	case store.KindInfo:
		return "info", "[class*='info']", true
	case store.KindSquads:
		return "squad", "[class*='squad']", true
	case store.KindLive:
		return "live", "[class*='live']", true
	case store.KindScorecard:
		return "scorecard", "[class*='scorecard']", true
	default:
		return "", "", false
	}
}

// ParseHTML converts raw HTML to a goquery Document for parsing
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
