package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// FormatPoints formats a point amount with thousand separators
func FormatPoints(points int64) string {
	str := fmt.Sprintf("%d", points)

	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays
// in the reader's local timezone. Format types: "t" short time, "R" relative.
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// GetDisplayName resolves the best available name for a guild member
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.State.Member(guildID, userID)
	if err != nil || member == nil {
		member, err = s.GuildMember(guildID, userID)
		if err != nil || member == nil {
			return userID
		}
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		if member.User.GlobalName != "" {
			return member.User.GlobalName
		}
		return member.User.Username
	}
	return userID
}
