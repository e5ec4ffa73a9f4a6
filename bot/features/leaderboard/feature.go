package leaderboard

import (
	"sync"
	"time"

	"honorbot/service"
)

// Feature owns the posted standings message and the read paths behind the
// /leaderboard command. The posted message is edited in place; a new one is
// only created when none exists yet in the channel.
type Feature struct {
	leaderboardService service.LeaderboardService
	images             *standingsImageGenerator

	channelID string
	refresh   time.Duration
	size      int

	mu        sync.Mutex
	messageID string

	// nudge carries balance-change signals to the worker. Capacity one:
	// a refresh is already pending, further signals coalesce into it.
	nudge chan struct{}
}

func New(leaderboardService service.LeaderboardService, channelID string, refresh time.Duration, size int) *Feature {
	return &Feature{
		leaderboardService: leaderboardService,
		images:             newStandingsImageGenerator(),
		channelID:          channelID,
		refresh:            refresh,
		size:               size,
		nudge:              make(chan struct{}, 1),
	}
}

// Nudge requests an out-of-cycle refresh of the posted standings. Safe to
// call from event handlers; never blocks.
func (f *Feature) Nudge() {
	select {
	case f.nudge <- struct{}{}:
	default:
	}
}
