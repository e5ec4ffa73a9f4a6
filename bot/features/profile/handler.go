package profile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"honorbot/bot/common"
)

// HandleProfile processes the /profile slash command
func (f *Feature) HandleProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	// An optional user option inspects someone else's profile.
	targetID := i.Member.User.ID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			targetID = opt.UserValue(s).ID
		}
	}

	userID, err := strconv.ParseInt(targetID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", targetID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, targetID)

	account, err := f.userService.GetOrCreateUser(ctx, userID, displayName)
	if err != nil {
		log.Errorf("Error getting user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to retrieve the profile. Please try again.")
		return
	}

	rank, err := f.leaderboardService.RankOf(ctx, userID)
	if err != nil {
		log.Errorf("Error getting rank for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to retrieve the profile. Please try again.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏅 %s", displayName),
		Color: 0xDAA520,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Points", Value: common.FormatPoints(account.Balance), Inline: true},
			{Name: "Rank", Value: fmt.Sprintf("#%d", rank), Inline: true},
			{Name: "This month", Value: "+" + common.FormatPoints(account.MonthlyEarned()), Inline: true},
		},
	}
	if account.CheckinStreak > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Check-in streak", Value: fmt.Sprintf("%d days", account.CheckinStreak), Inline: true,
		})
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to profile command: %v", err)
	}
}

// HandleStatus processes the /status slash command, an ephemeral quota view
func (f *Feature) HandleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)

	status, err := f.accrualService.Status(ctx, userID, displayName, time.Now().UTC())
	if err != nil {
		log.Errorf("Error getting status for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to retrieve your status. Please try again.")
		return
	}

	checkinLine := "✅ available"
	if !status.CheckinAvailable {
		checkinLine = "⏳ done, next " + common.FormatDiscordTimestamp(status.CheckinRetryAt, "R")
	}

	rewardLine := fmt.Sprintf("%d/%d used", status.RewardsUsedToday, status.RewardsDailyLimit)
	if status.CooldownRemaining > 0 {
		rewardLine += fmt.Sprintf(", next in %ds", int(status.CooldownRemaining.Seconds()))
	}

	embed := &discordgo.MessageEmbed{
		Title: "📊 Today's activity",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Points", Value: common.FormatPoints(status.Balance), Inline: true},
			{Name: "This month", Value: "+" + common.FormatPoints(status.MonthlyEarned), Inline: true},
			{Name: "Daily check-in", Value: checkinLine},
			{Name: "Message rewards", Value: rewardLine},
			{Name: "Wager plays", Value: fmt.Sprintf("%d/%d used", status.WagersUsedToday, status.WagersDailyLimit)},
		},
	}
	if status.CheckinStreak > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Check-in streak", Value: fmt.Sprintf("%d days", status.CheckinStreak),
		})
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to status command: %v", err)
	}
}
