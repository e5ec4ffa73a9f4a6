package service

import (
	"context"
	"time"

	"honorbot/events"
	"honorbot/models"
)

// UserRepository defines account persistence operations
type UserRepository interface {
	// GetByUserID retrieves an account, or (nil, nil) when none exists.
	GetByUserID(ctx context.Context, userID int64) (*models.UserAccount, error)

	// GetForUpdate retrieves an account with its row locked for the duration
	// of the surrounding transaction, or (nil, nil) when none exists. Only
	// valid inside a unit of work; this lock is what serializes concurrent
	// triggers against one account.
	GetForUpdate(ctx context.Context, userID int64) (*models.UserAccount, error)

	// Create inserts a new account with zero balance and all window fields
	// at the epoch sentinel.
	Create(ctx context.Context, userID int64, displayName string) (*models.UserAccount, error)

	// Update writes back every mutable field of the account in one statement.
	Update(ctx context.Context, account *models.UserAccount) error

	// GetTopByBalance returns up to limit accounts ordered by balance
	// descending, ties in insertion order.
	GetTopByBalance(ctx context.Context, limit int) ([]*models.UserAccount, error)

	// GetAll returns every account in insertion order.
	GetAll(ctx context.Context) ([]*models.UserAccount, error)

	// CountWithBalanceAbove returns how many accounts hold strictly more
	// than the given balance.
	CountWithBalanceAbove(ctx context.Context, balance int64) (int64, error)

	// Upsert inserts or fully replaces an account by user id. Reports
	// whether a new row was created.
	Upsert(ctx context.Context, account *models.UserAccount) (bool, error)

	// SnapshotAllBalances sets every account's month-start snapshot to its
	// current balance, stamped at the given time. Returns rows affected.
	SnapshotAllBalances(ctx context.Context, at time.Time) (int64, error)

	// DeleteAll removes every account. Returns rows deleted.
	DeleteAll(ctx context.Context) (int64, error)
}

// EventPublisher defines the interface for publishing events from within a
// unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork represents one transactional scope over the store
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
	UserRepository() UserRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AccrualConfig tunes the points-accrual engine
type AccrualConfig struct {
	MessageCooldown  time.Duration // minimum gap between message rewards
	DailyRewardLimit int           // message rewards per UTC day
	DailyWagerLimit  int           // surfaced in status reporting only
	StreakEnabled    bool          // whether check-ins maintain a streak
}

// WagerConfig tunes the wager engine. CoinFlip and LuckyDraw are two
// configurations of the same engine, not two engines.
type WagerConfig struct {
	MinStake        int64
	MaxStake        int64
	DailyWagerLimit int

	LuckyDrawWinProbability float64
	LuckyDrawWinAmount      int64
	LuckyDrawLossAmount     int64 // positive magnitude
}

// AccrualService orchestrates check-in and message-reward accrual
type AccrualService interface {
	// ClaimCheckin processes a daily check-in attempt.
	ClaimCheckin(ctx context.Context, userID int64, displayName string, now time.Time) (*models.CheckinResult, error)

	// HandleMessage processes one inbound message event, identified by
	// eventID for at-most-once semantics.
	HandleMessage(ctx context.Context, eventID string, userID int64, displayName string, now time.Time) (*models.MessageRewardResult, error)

	// Status reports remaining quotas without mutating window state.
	Status(ctx context.Context, userID int64, displayName string, now time.Time) (*models.ActivityStatus, error)
}

// WagerService is the coin-flip / lucky-draw engine
type WagerService interface {
	// PlaceCoinFlip wagers stake on choice at even odds, double or nothing.
	PlaceCoinFlip(ctx context.Context, userID int64, displayName string, choice models.CoinSide, stake int64, now time.Time) (*models.WagerResult, error)

	// PlayLuckyDraw resolves the fixed-magnitude variant.
	PlayLuckyDraw(ctx context.Context, userID int64, displayName string, now time.Time) (*models.WagerResult, error)
}

// LeaderboardService provides read-only ranking projections
type LeaderboardService interface {
	TopN(ctx context.Context, n int) ([]*models.UserAccount, error)
	MonthlyTopN(ctx context.Context, n int, now time.Time) ([]*models.MonthlyStanding, error)
	RankOf(ctx context.Context, userID int64) (int64, error)
}

// UserService covers profile-style account access
type UserService interface {
	// GetOrCreateUser finds an account or lazily creates it, refreshing the
	// display name opportunistically.
	GetOrCreateUser(ctx context.Context, userID int64, displayName string) (*models.UserAccount, error)
}

// AdminService exposes the administrator-only operations. The calling layer
// owns human confirmation for the irreversible ones.
type AdminService interface {
	SetBalance(ctx context.Context, userID int64, value int64) (*models.UserAccount, error)
	ResetStreak(ctx context.Context, userID int64) error
	WipeAllAccounts(ctx context.Context) (int64, error)
	ExportAll(ctx context.Context) ([]models.AccountRecord, error)
	ImportAll(ctx context.Context, records []models.AccountRecord) (*models.ImportReport, error)
	SeedMonthlySnapshots(ctx context.Context, now time.Time) (int64, error)
}
