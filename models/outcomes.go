package models

import (
	"time"
)

// CheckinStatus is the terminal state of a daily check-in attempt.
type CheckinStatus string

const (
	CheckinAwarded        CheckinStatus = "awarded"
	CheckinAlreadyClaimed CheckinStatus = "already_claimed"
)

// CheckinResult reports the outcome of a daily check-in claim.
// RetryAt is set when the claim was blocked.
type CheckinResult struct {
	Status     CheckinStatus
	Points     int64
	NewBalance int64
	Streak     int
	RetryAt    time.Time
}

// MessageRewardStatus is the terminal state of a message-reward evaluation.
type MessageRewardStatus string

const (
	MessageAwarded    MessageRewardStatus = "awarded"
	MessageOnCooldown MessageRewardStatus = "on_cooldown"
	MessageDailyLimit MessageRewardStatus = "daily_limit_reached"
	MessageDuplicate  MessageRewardStatus = "duplicate_event"
)

// MessageRewardResult reports the outcome of one inbound message event.
type MessageRewardResult struct {
	Status            MessageRewardStatus
	Points            int64
	NewBalance        int64
	RewardsUsedToday  int
	CooldownRemaining time.Duration
	RetryAt           time.Time
}

// WagerKind distinguishes the two configurations of the wager engine.
type WagerKind string

const (
	WagerKindCoinFlip  WagerKind = "coin_flip"
	WagerKindLuckyDraw WagerKind = "lucky_draw"
)

// CoinSide is the player's call in the coin-flip variant.
type CoinSide string

const (
	CoinHeads CoinSide = "heads"
	CoinTails CoinSide = "tails"
)

// WagerRejectReason explains why a wager was refused before resolution.
type WagerRejectReason string

const (
	WagerRejectStakeBounds         WagerRejectReason = "stake_out_of_bounds"
	WagerRejectInsufficientBalance WagerRejectReason = "insufficient_balance"
	WagerRejectDailyLimit          WagerRejectReason = "daily_limit_reached"
)

// WagerResult reports a resolved or rejected wager. When Rejected is set only
// Reason, Balance and RetryAt are meaningful; otherwise Won/Delta/NewBalance
// describe the resolution and PlaysUsed the daily quota consumed so far.
type WagerResult struct {
	Kind       WagerKind
	Rejected   bool
	Reason     WagerRejectReason
	RetryAt    time.Time
	Won        bool
	Result     CoinSide
	Delta      int64
	NewBalance int64
	PlaysUsed  int
	PlaysLimit int
}

// ActivityStatus is a read-only snapshot of a user's remaining quotas,
// rendered by the /status surface.
type ActivityStatus struct {
	Balance            int64
	CheckinAvailable   bool
	CheckinRetryAt     time.Time
	CheckinStreak      int
	RewardsUsedToday   int
	RewardsDailyLimit  int
	CooldownRemaining  time.Duration
	WagersUsedToday    int
	WagersDailyLimit   int
	MonthlyEarned      int64
}

// MonthlyStanding is one row of the monthly leaderboard projection.
type MonthlyStanding struct {
	UserID      int64
	DisplayName string
	Earned      int64
}
