package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/fortuna/wicket/internal/extract"
	"github.com/fortuna/wicket/internal/store"
)

// Simple test utility to verify the browser extractor works against the
// live fixtures site. Pass a match URL as the first argument to also
// exercise a per-match session.
func main() {
	log.Println("Testing Browser Extractor")
	log.Println("===============================")

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := extract.DefaultConfig()
	cfg.Headless = os.Getenv("HEADLESS") != "false"

	client, err := extract.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create extractor: %v", err)
	}
	defer client.Close()

	log.Println("\n1. Discovering matches from the fixtures listing...")
	matches, err := client.DiscoverMatches(ctx)
	if err != nil {
		log.Fatalf("Failed to discover matches: %v", err)
	}

	log.Printf("✓ Found %d matches\n", len(matches))

	if len(matches) == 0 {
		log.Println("No matches currently listed")
		log.Println("(This is expected if the site has no upcoming fixtures)")
	} else {
		for i, m := range matches {
			log.Printf("\nMatch %d:", i+1)
			log.Printf("  ID: %s", m.ID)
			log.Printf("  Teams: %s", m.Teams)
			if m.Format != "" {
				log.Printf("  Format: %s", m.Format)
			}
			log.Printf("  Starts: %s", m.StartText)
			log.Printf("  URL: %s", m.URL)
		}
	}

	matchURL := ""
	if len(os.Args) > 1 {
		matchURL = os.Args[1]
	} else if len(matches) > 0 {
		matchURL = matches[0].URL
	}

	if matchURL == "" {
		log.Println("\nNo match URL available, skipping session test")
		os.Exit(0)
	}

	log.Printf("\n2. Opening match session: %s", matchURL)
	session, err := client.Open(ctx, matchURL)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	defer session.Close()

	for _, kind := range []store.SnapshotKind{store.KindInfo, store.KindSquads, store.KindLive, store.KindScorecard} {
		payload, err := session.Fetch(ctx, kind)
		if err != nil {
			log.Printf("⚠️  %s fetch failed: %v", kind, err)
			continue
		}
		log.Printf("✓ %s snapshot (%d bytes)", kind, len(payload))
	}

	ended, err := session.IsEnded(ctx)
	if err != nil {
		log.Printf("⚠️  End-state check failed: %v", err)
	} else {
		log.Printf("✓ Match ended: %v", ended)
	}

	log.Println("\n===============================")
	log.Println("✓ Browser Extractor Test Complete")
}
