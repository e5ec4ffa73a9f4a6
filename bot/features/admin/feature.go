package admin

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"honorbot/config"
	"honorbot/service"
)

// wipeConfirmWindow is how long a requested wipe stays confirmable.
const wipeConfirmWindow = 30 * time.Second

type Feature struct {
	adminService service.AdminService
	cfg          *config.Config

	// buttonPosters publish the persistent interaction buttons of the
	// other features into a channel, wired in by the bot.
	buttonPosters []func(s *discordgo.Session, channelID string) error

	// pendingWipes maps admin user id to when the wipe was requested. The
	// destructive step only runs on a second, explicit confirmation from
	// the same admin inside the window.
	mu           sync.Mutex
	pendingWipes map[int64]time.Time
}

func New(adminService service.AdminService, cfg *config.Config, buttonPosters ...func(s *discordgo.Session, channelID string) error) *Feature {
	return &Feature{
		adminService:  adminService,
		cfg:           cfg,
		buttonPosters: buttonPosters,
		pendingWipes:  make(map[int64]time.Time),
	}
}

// requestWipe records a pending wipe and reports whether one was already
// pending for this admin (meaning this call is the confirmation).
func (f *Feature) requestWipe(adminID int64, now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	requestedAt, pending := f.pendingWipes[adminID]
	if pending && now.Sub(requestedAt) <= wipeConfirmWindow {
		delete(f.pendingWipes, adminID)
		return true
	}

	f.pendingWipes[adminID] = now
	return false
}
