package scheduler

import (
	"time"

	"github.com/fortuna/wicket/internal/store"
)

// action is the side effect a tick applies to one match.
type action int

const (
	actionNone action = iota
	actionProvision
	actionGoLive
	actionComplete
)

func (a action) String() string {
	switch a {
	case actionProvision:
		return "provision"
	case actionGoLive:
		return "go_live"
	case actionComplete:
		return "complete"
	default:
		return "none"
	}
}

// evaluateTransition is the whole state machine: given one match's lifecycle
// state, the wall clock, whether a tracker handle exists and whether the page
// reports the match over, it decides what the tick does. No I/O happens here.
//
// A match past its scheduled start with no handle is provisioned late rather
// than failed; it goes live on the following tick.
func evaluateTransition(status store.MatchStatus, now, scheduledStart time.Time, handleExists, ended bool, preRoll time.Duration) action {
	switch status {
	case store.StatusUpcoming:
		if handleExists {
			if !now.Before(scheduledStart) {
				return actionGoLive
			}
			return actionNone
		}
		if !now.Before(scheduledStart) {
			return actionProvision
		}
		if scheduledStart.Sub(now) <= preRoll {
			return actionProvision
		}
		return actionNone

	case store.StatusLive:
		if ended && handleExists {
			return actionComplete
		}
		return actionNone

	default:
		// Completed is terminal.
		return actionNone
	}
}
