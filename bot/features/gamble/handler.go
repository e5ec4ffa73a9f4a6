package gamble

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

// HandleCommand processes the /gamble slash command and its subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Missing subcommand.")
		return
	}

	switch options[0].Name {
	case "flip":
		f.handleCoinFlip(s, i, options[0].Options)
	case "draw":
		f.handleLuckyDraw(s, i)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}

// HandleButton processes a press of the persistent lucky draw button
func (f *Feature) HandleButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleLuckyDraw(s, i)
}

func (f *Feature) handleCoinFlip(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var choice models.CoinSide
	var stake int64
	for _, opt := range options {
		switch opt.Name {
		case "side":
			choice = models.CoinSide(opt.StringValue())
		case "stake":
			stake = opt.IntValue()
		}
	}

	userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)

	result, err := f.wagerService.PlaceCoinFlip(ctx, userID, displayName, choice, stake, time.Now().UTC())
	if err != nil {
		log.Errorf("Error placing coin flip for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to place the wager. Please try again.")
		return
	}

	f.respond(s, i, displayName, result)
}

func (f *Feature) handleLuckyDraw(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !f.luckyDrawEnabled {
		common.RespondWithError(s, i, "The lucky draw is not available right now.")
		return
	}

	ctx := context.Background()

	userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)

	result, err := f.wagerService.PlayLuckyDraw(ctx, userID, displayName, time.Now().UTC())
	if err != nil {
		log.Errorf("Error playing lucky draw for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to play the lucky draw. Please try again.")
		return
	}

	f.respond(s, i, displayName, result)
}

func (f *Feature) respond(s *discordgo.Session, i *discordgo.InteractionCreate, displayName string, result *models.WagerResult) {
	if result.Rejected {
		var message string
		switch result.Reason {
		case models.WagerRejectStakeBounds:
			message = fmt.Sprintf("Stake must be between %d and %d points.", f.cfg.MinStake, f.cfg.MaxStake)
		case models.WagerRejectInsufficientBalance:
			message = fmt.Sprintf("Not enough points. Balance: **%s**.", common.FormatPoints(result.NewBalance))
		case models.WagerRejectDailyLimit:
			message = fmt.Sprintf("Daily play limit reached (%d/%d). Try again %s.",
				result.PlaysUsed, result.PlaysLimit, common.FormatDiscordTimestamp(result.RetryAt, "R"))
		default:
			message = "The wager was rejected."
		}
		if err := common.RespondWithContent(s, i, message, true); err != nil {
			log.Errorf("Error responding to wager: %v", err)
		}
		return
	}

	var message string
	if result.Kind == models.WagerKindCoinFlip {
		outcome := "😔 lost"
		if result.Won {
			outcome = "🎉 won"
		}
		message = fmt.Sprintf("🪙 The coin landed **%s** — **%s** %s **%s points**! Balance: **%s** (%d/%d plays today)",
			result.Result, displayName, outcome,
			common.FormatPoints(abs(result.Delta)), common.FormatPoints(result.NewBalance),
			result.PlaysUsed, result.PlaysLimit)
	} else {
		outcome := "😔 lost"
		if result.Won {
			outcome = "🎉 won"
		}
		message = fmt.Sprintf("🎰 **%s** %s **%s points** in the lucky draw! Balance: **%s** (%d/%d plays today)",
			displayName, outcome,
			common.FormatPoints(abs(result.Delta)), common.FormatPoints(result.NewBalance),
			result.PlaysUsed, result.PlaysLimit)
	}
	if err := common.RespondWithContent(s, i, message, false); err != nil {
		log.Errorf("Error responding to wager: %v", err)
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
