package repository

import (
	"context"
	"fmt"
	"time"

	"honorbot/database"
	"honorbot/models"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	user_id,
	display_name,
	balance,
	last_reward_at,
	daily_reward_count,
	daily_window_start,
	last_checkin_at,
	checkin_streak,
	last_wager_at,
	daily_wager_count,
	balance_at_month_start,
	month_snapshot_at,
	created_at,
	updated_at`

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.UserAccount, error) {
	var account models.UserAccount
	err := row.Scan(
		&account.UserID,
		&account.DisplayName,
		&account.Balance,
		&account.LastRewardAt,
		&account.DailyRewardCount,
		&account.DailyWindowStart,
		&account.LastCheckinAt,
		&account.CheckinStreak,
		&account.LastWagerAt,
		&account.DailyWagerCount,
		&account.BalanceAtMonthStart,
		&account.MonthSnapshotAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByUserID retrieves an account by user ID, or (nil, nil) when none exists
func (r *UserRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM user_accounts WHERE user_id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", userID, err)
	}
	return account, nil
}

// GetForUpdate retrieves an account with its row locked for the duration of
// the surrounding transaction. Only valid inside a unit of work.
func (r *UserRepository) GetForUpdate(ctx context.Context, userID int64) (*models.UserAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM user_accounts WHERE user_id = $1 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d: %w", userID, err)
	}
	return account, nil
}

// Create inserts a new account with zero balance. Window timestamps default
// to the epoch sentinel in the schema.
func (r *UserRepository) Create(ctx context.Context, userID int64, displayName string) (*models.UserAccount, error) {
	query := `
		INSERT INTO user_accounts (user_id, display_name)
		VALUES ($1, $2)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID, displayName))
	if err != nil {
		return nil, fmt.Errorf("failed to create account %d: %w", userID, err)
	}
	return account, nil
}

// Update writes back every mutable field of the account in one statement
func (r *UserRepository) Update(ctx context.Context, account *models.UserAccount) error {
	query := `
		UPDATE user_accounts
		SET display_name = $2,
			balance = $3,
			last_reward_at = $4,
			daily_reward_count = $5,
			daily_window_start = $6,
			last_checkin_at = $7,
			checkin_streak = $8,
			last_wager_at = $9,
			daily_wager_count = $10,
			balance_at_month_start = $11,
			month_snapshot_at = $12,
			updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.q.Exec(ctx, query,
		account.UserID,
		account.DisplayName,
		account.Balance,
		account.LastRewardAt,
		account.DailyRewardCount,
		account.DailyWindowStart,
		account.LastCheckinAt,
		account.CheckinStreak,
		account.LastWagerAt,
		account.DailyWagerCount,
		account.BalanceAtMonthStart,
		account.MonthSnapshotAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %d: %w", account.UserID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", account.UserID)
	}
	return nil
}

// GetTopByBalance returns up to limit accounts ordered by balance descending.
// Ties resolve in creation order so ranks stay stable between refreshes.
func (r *UserRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.UserAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM user_accounts
		ORDER BY balance DESC, created_at ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// GetAll returns every account in creation order
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.UserAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM user_accounts ORDER BY created_at ASC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) ([]*models.UserAccount, error) {
	var accounts []*models.UserAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// CountWithBalanceAbove returns how many accounts hold strictly more than
// the given balance
func (r *UserRepository) CountWithBalanceAbove(ctx context.Context, balance int64) (int64, error) {
	query := `SELECT COUNT(*) FROM user_accounts WHERE balance > $1`

	var count int64
	if err := r.q.QueryRow(ctx, query, balance).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts above balance %d: %w", balance, err)
	}
	return count, nil
}

// Upsert inserts or fully replaces an account by user ID. Reports whether a
// new row was created.
func (r *UserRepository) Upsert(ctx context.Context, account *models.UserAccount) (bool, error) {
	// xmax = 0 distinguishes a fresh insert from a conflict-update.
	query := `
		INSERT INTO user_accounts (
			user_id, display_name, balance,
			last_reward_at, daily_reward_count, daily_window_start,
			last_checkin_at, checkin_streak,
			last_wager_at, daily_wager_count,
			balance_at_month_start, month_snapshot_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			balance = EXCLUDED.balance,
			last_reward_at = EXCLUDED.last_reward_at,
			daily_reward_count = EXCLUDED.daily_reward_count,
			daily_window_start = EXCLUDED.daily_window_start,
			last_checkin_at = EXCLUDED.last_checkin_at,
			checkin_streak = EXCLUDED.checkin_streak,
			last_wager_at = EXCLUDED.last_wager_at,
			daily_wager_count = EXCLUDED.daily_wager_count,
			balance_at_month_start = EXCLUDED.balance_at_month_start,
			month_snapshot_at = EXCLUDED.month_snapshot_at,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.q.QueryRow(ctx, query,
		account.UserID,
		account.DisplayName,
		account.Balance,
		account.LastRewardAt,
		account.DailyRewardCount,
		account.DailyWindowStart,
		account.LastCheckinAt,
		account.CheckinStreak,
		account.LastWagerAt,
		account.DailyWagerCount,
		account.BalanceAtMonthStart,
		account.MonthSnapshotAt,
		account.CreatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert account %d: %w", account.UserID, err)
	}
	return inserted, nil
}

// SnapshotAllBalances sets every account's month-start snapshot to its
// current balance, stamped at the given time. Returns rows affected.
func (r *UserRepository) SnapshotAllBalances(ctx context.Context, at time.Time) (int64, error) {
	query := `
		UPDATE user_accounts
		SET balance_at_month_start = balance,
			month_snapshot_at = $1,
			updated_at = NOW()
	`

	result, err := r.q.Exec(ctx, query, at)
	if err != nil {
		return 0, fmt.Errorf("failed to snapshot balances: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteAll removes every account. Returns rows deleted.
func (r *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM user_accounts`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete accounts: %w", err)
	}
	return result.RowsAffected(), nil
}
