package leaderboard

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"honorbot/bot/common"
	"honorbot/models"
)

var medals = []string{"🥇", "🥈", "🥉"}

func rankMarker(position int) string {
	if position < len(medals) {
		return medals[position]
	}
	return fmt.Sprintf("`#%d`", position+1)
}

// buildAllTimeEmbed renders the balance standings
func buildAllTimeEmbed(accounts []*models.UserAccount) *discordgo.MessageEmbed {
	var b strings.Builder
	for idx, account := range accounts {
		fmt.Fprintf(&b, "%s **%s** — %s points\n",
			rankMarker(idx), account.DisplayName, common.FormatPoints(account.Balance))
	}
	if b.Len() == 0 {
		b.WriteString("Nobody has any points yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       "🏆 Honor points leaderboard",
		Description: b.String(),
		Color:       0xDAA520,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Updated " + time.Now().UTC().Format("15:04 UTC"),
		},
	}
}

// attachStandingsImage swaps the embed's markdown table for a rendered
// scoreboard image. On render failure the text description stays, so the
// standings always go out in some form.
func attachStandingsImage(embed *discordgo.MessageEmbed, imageData []byte, err error) []*discordgo.File {
	if err != nil {
		log.Errorf("Failed to render standings image, falling back to text: %v", err)
		return nil
	}

	embed.Description = ""
	embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + standingsImageName}
	return []*discordgo.File{{
		Name:        standingsImageName,
		ContentType: "image/png",
		Reader:      bytes.NewReader(imageData),
	}}
}

// buildMonthlyEmbed renders the points-earned-this-month standings
func buildMonthlyEmbed(standings []*models.MonthlyStanding, month time.Month) *discordgo.MessageEmbed {
	var b strings.Builder
	for idx, standing := range standings {
		fmt.Fprintf(&b, "%s **%s** — +%s points\n",
			rankMarker(idx), standing.DisplayName, common.FormatPoints(standing.Earned))
	}
	if b.Len() == 0 {
		b.WriteString("Nobody has earned points this month yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📈 Top earners — %s", month),
		Description: b.String(),
		Color:       0x2ECC71,
	}
}
