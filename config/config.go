package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Channels the engine listens or posts on. RewardChannelIDs scopes which
	// channels accrue message rewards; empty means every channel.
	RewardChannelIDs     []string
	LeaderboardChannelID string

	// Database configuration
	DatabaseURL string

	// Accrual settings
	MessageCooldown  time.Duration
	DailyRewardLimit int
	StreakEnabled    bool

	// Wager settings
	MinStake        int64
	MaxStake        int64
	DailyWagerLimit int

	LuckyDrawEnabled        bool
	LuckyDrawWinProbability float64
	LuckyDrawWinAmount      int64
	LuckyDrawLossAmount     int64

	// Leaderboard refresh cadence for the posted standings message
	LeaderboardRefresh time.Duration
	LeaderboardSize    int

	// Admin dashboard HTTP server
	DashboardAddr  string
	DashboardToken string

	// Administrator identities allowed to run destructive commands
	AdminUserIDs []int64

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine; the process environment wins either way.
	_ = godotenv.Load()

	config := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		LeaderboardChannelID: os.Getenv("LEADERBOARD_CHANNEL_ID"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Engine defaults
		MessageCooldown:  60 * time.Second,
		DailyRewardLimit: 5,
		StreakEnabled:    os.Getenv("STREAK_ENABLED") != "false",

		MinStake:        1,
		MaxStake:        5,
		DailyWagerLimit: 5,

		LuckyDrawEnabled:        os.Getenv("LUCKY_DRAW_ENABLED") == "true",
		LuckyDrawWinProbability: 0.6,
		LuckyDrawWinAmount:      5,
		LuckyDrawLossAmount:     5,

		LeaderboardRefresh: 3 * time.Minute,
		LeaderboardSize:    10,

		DashboardAddr:  os.Getenv("DASHBOARD_ADDR"),
		DashboardToken: os.Getenv("DASHBOARD_TOKEN"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if cooldown := os.Getenv("MESSAGE_COOLDOWN_SECONDS"); cooldown != "" {
		if parsed, err := strconv.Atoi(cooldown); err == nil && parsed > 0 {
			config.MessageCooldown = time.Duration(parsed) * time.Second
		}
	}
	if limit := os.Getenv("DAILY_REWARD_LIMIT"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			config.DailyRewardLimit = parsed
		}
	}
	if limit := os.Getenv("DAILY_WAGER_LIMIT"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			config.DailyWagerLimit = parsed
		}
	}
	if stake := os.Getenv("MAX_STAKE"); stake != "" {
		if parsed, err := strconv.ParseInt(stake, 10, 64); err == nil && parsed > 0 {
			config.MaxStake = parsed
		}
	}
	if refresh := os.Getenv("LEADERBOARD_REFRESH_SECONDS"); refresh != "" {
		if parsed, err := strconv.Atoi(refresh); err == nil && parsed > 0 {
			config.LeaderboardRefresh = time.Duration(parsed) * time.Second
		}
	}
	if size := os.Getenv("LEADERBOARD_SIZE"); size != "" {
		if parsed, err := strconv.Atoi(size); err == nil && parsed > 0 {
			config.LeaderboardSize = parsed
		}
	}

	config.RewardChannelIDs = splitList(os.Getenv("REWARD_CHANNEL_IDS"))

	for _, idStr := range splitList(os.Getenv("ADMIN_USER_IDS")) {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			config.AdminUserIDs = append(config.AdminUserIDs, id)
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// IsAdmin reports whether the given user may run administrator commands
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
