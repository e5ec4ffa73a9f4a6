package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"honorbot/bot/features/admin"
	"honorbot/bot/features/checkin"
	"honorbot/bot/features/gamble"
	"honorbot/bot/features/leaderboard"
	"honorbot/bot/features/profile"
	"honorbot/config"
	"honorbot/events"
	"honorbot/models"
	"honorbot/service"
)

// Bot manages the Discord session and all feature modules
type Bot struct {
	cfg     *config.Config
	session *discordgo.Session

	checkin     *checkin.Feature
	gamble      *gamble.Feature
	profile     *profile.Feature
	leaderboard *leaderboard.Feature
	admin       *admin.Feature

	accrualService service.AccrualService

	stopLeaderboardWorker func()
}

// New creates a bot instance, opens the gateway connection and registers
// the slash commands.
func New(
	cfg *config.Config,
	accrualService service.AccrualService,
	wagerService service.WagerService,
	leaderboardService service.LeaderboardService,
	userService service.UserService,
	adminService service.AdminService,
	eventBus *events.Bus,
) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers

	bot := &Bot{
		cfg:            cfg,
		session:        dg,
		accrualService: accrualService,
	}

	bot.checkin = checkin.New(accrualService)
	bot.gamble = gamble.New(wagerService, service.WagerConfig{
		MinStake:                cfg.MinStake,
		MaxStake:                cfg.MaxStake,
		DailyWagerLimit:         cfg.DailyWagerLimit,
		LuckyDrawWinProbability: cfg.LuckyDrawWinProbability,
		LuckyDrawWinAmount:      cfg.LuckyDrawWinAmount,
		LuckyDrawLossAmount:     cfg.LuckyDrawLossAmount,
	}, cfg.LuckyDrawEnabled)
	bot.profile = profile.New(userService, accrualService, leaderboardService)
	bot.leaderboard = leaderboard.New(leaderboardService, cfg.LeaderboardChannelID,
		cfg.LeaderboardRefresh, cfg.LeaderboardSize)
	buttonPosters := []func(s *discordgo.Session, channelID string) error{checkin.PostButton}
	if cfg.LuckyDrawEnabled {
		buttonPosters = append(buttonPosters, gamble.PostLuckyDrawButton)
	}
	bot.admin = admin.New(adminService, cfg, buttonPosters...)

	// Any committed balance change should show up on the posted
	// leaderboard without waiting for the next scheduled refresh.
	eventBus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		bot.leaderboard.Nudge()
	})
	eventBus.Subscribe(events.EventTypeAccountsWiped, func(ctx context.Context, e events.Event) {
		bot.leaderboard.Nudge()
	})

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)
	dg.AddHandler(bot.handleMessageCreate)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	bot.stopLeaderboardWorker = cancel
	go bot.leaderboard.Run(workerCtx, dg)
	log.Info("Leaderboard worker started")

	return bot, nil
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	if b.stopLeaderboardWorker != nil {
		b.stopLeaderboardWorker()
	}
	return b.session.Close()
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "daily":
		b.checkin.HandleCommand(s, i)
	case "gamble":
		b.gamble.HandleCommand(s, i)
	case "profile":
		b.profile.HandleProfile(s, i)
	case "status":
		b.profile.HandleStatus(s, i)
	case "leaderboard":
		b.leaderboard.HandleCommand(s, i)
	case "honoradmin":
		b.admin.HandleCommand(s, i)
	}
}

// handleInteractions routes component interactions by their custom id. The
// ids are fixed strings so buttons keep working across restarts.
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	switch i.MessageComponentData().CustomID {
	case checkin.ButtonClaimID:
		b.checkin.HandleButton(s, i)
	case gamble.ButtonLuckyDrawID:
		b.gamble.HandleButton(s, i)
	}
}

// handleMessageCreate feeds guild messages into the accrual engine. The
// message id doubles as the idempotency key, so a gateway redelivery can
// never award twice.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !b.rewardableMessage(m) {
		return
	}

	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		log.Errorf("Failed to parse author ID %s: %v", m.Author.ID, err)
		return
	}

	displayName := m.Author.Username
	if m.Member != nil && m.Member.Nick != "" {
		displayName = m.Member.Nick
	}

	result, err := b.accrualService.HandleMessage(context.Background(), m.ID, userID, displayName, time.Now().UTC())
	if err != nil {
		log.Errorf("Failed to process message reward for user %d: %v", userID, err)
		return
	}

	// Cooldowns and exhausted quotas pass silently; chatting is not an
	// error.
	if result == nil || result.Status != models.MessageAwarded {
		return
	}

	if err := s.MessageReactionAdd(m.ChannelID, m.ID, "🪙"); err != nil {
		log.Warnf("Failed to react to rewarded message %s: %v", m.ID, err)
	}
}

// rewardableMessage reports whether a message can earn points: a human
// author, inside a guild, with actual text content (attachment-only and
// sticker messages carry none), in an allowed channel.
func (b *Bot) rewardableMessage(m *discordgo.MessageCreate) bool {
	if m.Author == nil || m.Author.Bot {
		return false
	}
	if m.GuildID == "" {
		return false
	}
	if m.Content == "" {
		return false
	}
	return b.rewardableChannel(m.ChannelID)
}

// rewardableChannel reports whether messages in the channel earn points.
// An empty allowlist means every channel counts.
func (b *Bot) rewardableChannel(channelID string) bool {
	if len(b.cfg.RewardChannelIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.RewardChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}
