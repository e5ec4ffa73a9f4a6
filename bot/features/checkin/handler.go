package checkin

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"honorbot/bot/common"
	"honorbot/models"
)

// HandleCommand processes the /daily slash command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.claim(s, i)
}

// HandleButton processes a press of the persistent check-in button
func (f *Feature) HandleButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.claim(s, i)
}

func (f *Feature) claim(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)

	result, err := f.accrualService.ClaimCheckin(ctx, userID, displayName, time.Now().UTC())
	if err != nil {
		log.Errorf("Error claiming check-in for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to process check-in. Please try again.")
		return
	}

	switch result.Status {
	case models.CheckinAwarded:
		message := fmt.Sprintf("📅 **%s** checked in and earned **%s points**! Balance: **%s**",
			displayName, common.FormatPoints(result.Points), common.FormatPoints(result.NewBalance))
		if result.Streak > 1 {
			message += fmt.Sprintf(" (streak: %d days)", result.Streak)
		}
		if err := common.RespondWithContent(s, i, message, false); err != nil {
			log.Errorf("Error responding to check-in: %v", err)
		}
	case models.CheckinAlreadyClaimed:
		message := fmt.Sprintf("You already checked in today. Come back %s.",
			common.FormatDiscordTimestamp(result.RetryAt, "R"))
		if err := common.RespondWithContent(s, i, message, true); err != nil {
			log.Errorf("Error responding to check-in: %v", err)
		}
	}
}

// PostButton publishes the persistent check-in button to a channel. Run once
// per channel at setup; presses route by custom id, so it survives restarts.
func PostButton(s *discordgo.Session, channelID string) error {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: "Press the button to claim your daily check-in points.",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Check in",
						Style:    discordgo.PrimaryButton,
						CustomID: ButtonClaimID,
						Emoji:    &discordgo.ComponentEmoji{Name: "📅"},
					},
				},
			},
		},
	})
	return err
}
