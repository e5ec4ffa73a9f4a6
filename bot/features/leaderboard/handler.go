package leaderboard

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"honorbot/bot/common"
)

// HandleCommand processes the /leaderboard slash command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	scope := "alltime"
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "scope" {
			scope = opt.StringValue()
		}
	}

	var embed *discordgo.MessageEmbed
	var files []*discordgo.File
	switch scope {
	case "monthly":
		now := time.Now().UTC()
		standings, err := f.leaderboardService.MonthlyTopN(ctx, f.size, now)
		if err != nil {
			log.Errorf("Error getting monthly leaderboard: %v", err)
			common.RespondWithError(s, i, "Unable to load the leaderboard. Please try again.")
			return
		}
		embed = buildMonthlyEmbed(standings, now.Month())
		if len(standings) > 0 {
			imageData, renderErr := f.images.renderMonthly(standings)
			files = attachStandingsImage(embed, imageData, renderErr)
		}
	default:
		accounts, err := f.leaderboardService.TopN(ctx, f.size)
		if err != nil {
			log.Errorf("Error getting leaderboard: %v", err)
			common.RespondWithError(s, i, "Unable to load the leaderboard. Please try again.")
			return
		}
		embed = buildAllTimeEmbed(accounts)
		if len(accounts) > 0 {
			imageData, renderErr := f.images.renderAllTime(accounts)
			files = attachStandingsImage(embed, imageData, renderErr)
		}
	}

	if err := common.RespondWithEmbedFiles(s, i, embed, files, false); err != nil {
		log.Errorf("Error responding to leaderboard command: %v", err)
	}
}
