package leaderboard

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Run keeps the posted standings message fresh until ctx is done. Refreshes
// happen on the configured cadence, plus immediately after a balance-change
// nudge (debounced a little so bursts collapse into one edit).
func (f *Feature) Run(ctx context.Context, s *discordgo.Session) {
	if f.channelID == "" {
		log.Info("No leaderboard channel configured, posted standings disabled")
		return
	}

	f.refreshPosted(s)

	ticker := time.NewTicker(f.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.refreshPosted(s)
		case <-f.nudge:
			// Burst of balance changes: let the rest of the burst land.
			time.Sleep(2 * time.Second)
			f.refreshPosted(s)
		}
	}
}

// refreshPosted edits the standings message in place, creating it on first
// run or if the previous message disappeared. The standings render as a
// scoreboard image, with the markdown table as fallback.
func (f *Feature) refreshPosted(s *discordgo.Session) {
	ctx := context.Background()

	accounts, err := f.leaderboardService.TopN(ctx, f.size)
	if err != nil {
		log.Errorf("Error loading leaderboard for posted standings: %v", err)
		return
	}
	embed := buildAllTimeEmbed(accounts)

	var files []*discordgo.File
	if len(accounts) > 0 {
		imageData, renderErr := f.images.renderAllTime(accounts)
		files = attachStandingsImage(embed, imageData, renderErr)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.messageID != "" {
		_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel: f.channelID,
			ID:      f.messageID,
			Embeds:  &[]*discordgo.MessageEmbed{embed},
			Files:   files,
			// Replace the previous refresh's image instead of stacking.
			Attachments: &[]*discordgo.MessageAttachment{},
		})
		if err == nil {
			return
		}
		log.Warnf("Failed to edit standings message %s, reposting: %v", f.messageID, err)
		f.messageID = ""
	}

	msg, err := s.ChannelMessageSendComplex(f.channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Files:  files,
	})
	if err != nil {
		log.Errorf("Failed to post standings message: %v", err)
		return
	}
	f.messageID = msg.ID
}
