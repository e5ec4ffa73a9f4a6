package models

import (
	"time"
)

// UserAccount is the per-user record holding the honor point balance and all
// time-window bookkeeping. Timestamp fields use the Unix epoch as a "never
// happened" sentinel so the very first action of each kind is always eligible.
type UserAccount struct {
	UserID              int64     `db:"user_id"`
	DisplayName         string    `db:"display_name"`
	Balance             int64     `db:"balance"`
	LastRewardAt        time.Time `db:"last_reward_at"`
	DailyRewardCount    int       `db:"daily_reward_count"`
	DailyWindowStart    time.Time `db:"daily_window_start"`
	LastCheckinAt       time.Time `db:"last_checkin_at"`
	CheckinStreak       int       `db:"checkin_streak"`
	LastWagerAt         time.Time `db:"last_wager_at"`
	DailyWagerCount     int       `db:"daily_wager_count"`
	BalanceAtMonthStart int64     `db:"balance_at_month_start"`
	MonthSnapshotAt     time.Time `db:"month_snapshot_at"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// MonthlyEarned derives the points earned since the month-start snapshot.
// Clamped to zero for display; admin balance overrides bypass the snapshot
// and are deliberately outside this accounting.
func (u *UserAccount) MonthlyEarned() int64 {
	earned := u.Balance - u.BalanceAtMonthStart
	if earned < 0 {
		return 0
	}
	return earned
}
