package gamble

import (
	"github.com/bwmarrin/discordgo"
)

// PostLuckyDrawButton publishes the persistent lucky draw button to a
// channel. Presses route by custom id, so it survives restarts.
func PostLuckyDrawButton(s *discordgo.Session, channelID string) error {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: "Feeling lucky? One press risks 5 points for a chance at 5 more.",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Lucky draw",
						Style:    discordgo.SuccessButton,
						CustomID: ButtonLuckyDrawID,
						Emoji:    &discordgo.ComponentEmoji{Name: "🎰"},
					},
				},
			},
		},
	})
	return err
}
