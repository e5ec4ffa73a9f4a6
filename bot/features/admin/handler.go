package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"honorbot/bot/common"
	"honorbot/models"
)

// maxImportBytes bounds how large a backup file the bot will download.
const maxImportBytes = 8 << 20

// HandleCommand processes the /honoradmin slash command and its subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	adminID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if !f.cfg.IsAdmin(adminID) {
		common.RespondWithError(s, i, "You are not allowed to use admin commands.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Missing subcommand.")
		return
	}

	switch options[0].Name {
	case "setbalance":
		f.handleSetBalance(s, i, options[0].Options)
	case "resetstreak":
		f.handleResetStreak(s, i, options[0].Options)
	case "wipe":
		f.handleWipe(s, i, adminID)
	case "export":
		f.handleExport(s, i)
	case "import":
		f.handleImport(s, i, options[0].Options)
	case "snapshot":
		f.handleSnapshot(s, i)
	case "buttons":
		f.handleButtons(s, i)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}

func (f *Feature) handleSetBalance(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var targetID int64
	var value int64
	for _, opt := range options {
		switch opt.Name {
		case "user":
			user := opt.UserValue(s)
			parsed, err := strconv.ParseInt(user.ID, 10, 64)
			if err != nil {
				log.Errorf("Error parsing Discord ID %s: %v", user.ID, err)
				common.RespondWithError(s, i, "Unable to resolve that user.")
				return
			}
			targetID = parsed
		case "value":
			value = opt.IntValue()
		}
	}

	account, err := f.adminService.SetBalance(ctx, targetID, value)
	if err != nil {
		log.Errorf("Error setting balance for user %d: %v", targetID, err)
		common.RespondWithError(s, i, "Unable to set the balance. Does that user have an account?")
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Set **%s**'s balance to **%s points**.",
		account.DisplayName, common.FormatPoints(account.Balance)), true)
}

func (f *Feature) handleResetStreak(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var targetID int64
	for _, opt := range options {
		if opt.Name == "user" {
			user := opt.UserValue(s)
			parsed, err := strconv.ParseInt(user.ID, 10, 64)
			if err != nil {
				log.Errorf("Error parsing Discord ID %s: %v", user.ID, err)
				common.RespondWithError(s, i, "Unable to resolve that user.")
				return
			}
			targetID = parsed
		}
	}

	if err := f.adminService.ResetStreak(ctx, targetID); err != nil {
		log.Errorf("Error resetting streak for user %d: %v", targetID, err)
		common.RespondWithError(s, i, "Unable to reset the streak. Does that user have an account?")
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Reset the check-in streak for <@%d>.", targetID), true)
}

func (f *Feature) handleWipe(s *discordgo.Session, i *discordgo.InteractionCreate, adminID int64) {
	if !f.requestWipe(adminID, time.Now().UTC()) {
		message := fmt.Sprintf("⚠️ This will permanently delete **every** account. Run the command again within %d seconds to confirm.",
			int(wipeConfirmWindow.Seconds()))
		if err := common.RespondWithContent(s, i, message, true); err != nil {
			log.Errorf("Error responding to wipe request: %v", err)
		}
		return
	}

	deleted, err := f.adminService.WipeAllAccounts(context.Background())
	if err != nil {
		log.Errorf("Error wiping accounts: %v", err)
		common.RespondWithError(s, i, "The wipe failed. No accounts were deleted.")
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Deleted **%d** accounts.", deleted), true)
}

func (f *Feature) handleExport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	records, err := f.adminService.ExportAll(context.Background())
	if err != nil {
		log.Errorf("Error exporting accounts: %v", err)
		common.RespondWithError(s, i, "Unable to export accounts.")
		return
	}

	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Errorf("Error encoding backup: %v", err)
		common.RespondWithError(s, i, "Unable to encode the backup.")
		return
	}

	filename := fmt.Sprintf("honorbot-backup-%s.json", time.Now().UTC().Format("20060102-150405"))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Backup of **%d** accounts.", len(records)),
			Flags:   discordgo.MessageFlagsEphemeral,
			Files: []*discordgo.File{{
				Name:        filename,
				ContentType: "application/json",
				Reader:      bytes.NewReader(payload),
			}},
		},
	})
	if err != nil {
		log.Errorf("Error sending backup file: %v", err)
	}
}

func (f *Feature) handleImport(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	var attachment *discordgo.MessageAttachment
	for _, opt := range options {
		if opt.Name == "file" {
			attachmentID, ok := opt.Value.(string)
			if !ok {
				continue
			}
			attachment = i.ApplicationCommandData().Resolved.Attachments[attachmentID]
		}
	}
	if attachment == nil {
		common.RespondWithError(s, i, "Attach a backup file to import.")
		return
	}

	// Downloading and the batch import can take a while.
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring import response: %v", err)
		return
	}

	records, err := downloadBackup(attachment.URL)
	if err != nil {
		log.Errorf("Error reading backup %s: %v", attachment.Filename, err)
		f.followupError(s, i, "Unable to read that backup file.")
		return
	}

	report, err := f.adminService.ImportAll(context.Background(), records)
	if err != nil {
		log.Errorf("Error importing backup: %v", err)
		f.followupError(s, i, "The import failed.")
		return
	}

	content := fmt.Sprintf("✅ Import finished: **%d** created, **%d** updated, **%d** failed.",
		report.Created, report.Updated, report.Failed)
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		log.Errorf("Error sending import summary: %v", err)
	}
}

func (f *Feature) handleSnapshot(s *discordgo.Session, i *discordgo.InteractionCreate) {
	affected, err := f.adminService.SeedMonthlySnapshots(context.Background(), time.Now().UTC())
	if err != nil {
		log.Errorf("Error seeding monthly snapshots: %v", err)
		common.RespondWithError(s, i, "Unable to seed the monthly snapshots.")
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Seeded month-start snapshots for **%d** accounts.", affected), true)
}

// handleButtons posts the persistent check-in and lucky draw buttons into
// the channel the command was run from.
func (f *Feature) handleButtons(s *discordgo.Session, i *discordgo.InteractionCreate) {
	for _, post := range f.buttonPosters {
		if err := post(s, i.ChannelID); err != nil {
			log.Errorf("Error posting feature button: %v", err)
			common.RespondWithError(s, i, "Unable to post the buttons here.")
			return
		}
	}

	common.RespondWithSuccess(s, i, "Posted the interaction buttons in this channel.", true)
}

func (f *Feature) followupError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: "❌ " + message,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		log.Errorf("Error sending error followup: %v", err)
	}
}

func downloadBackup(url string) ([]models.AccountRecord, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download backup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d downloading backup", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImportBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	var records []models.AccountRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	return records, nil
}
