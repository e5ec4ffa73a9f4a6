package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"honorbot/events"
	"honorbot/models"
)

// prepareAccount loads an account under the unit of work's row lock,
// creating it lazily on first observed action, and applies the bookkeeping
// every access performs: defensive normalization of stored anomalies, an
// opportunistic display-name refresh, and the lazy month-start snapshot.
// The caller owns persisting the returned account and committing.
func prepareAccount(ctx context.Context, uow UnitOfWork, userID int64, displayName string, now time.Time) (*models.UserAccount, error) {
	repo := uow.UserRepository()

	account, err := repo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", userID, err)
	}

	if account == nil {
		account, err = repo.Create(ctx, userID, displayName)
		if err != nil {
			return nil, fmt.Errorf("failed to create account %d: %w", userID, err)
		}
		uow.EventBus().Publish(events.UserCreatedEvent{
			UserID:      userID,
			DisplayName: displayName,
		})
	}

	normalizeAccount(account)

	// Display name is cosmetic; refresh from the latest caller-supplied value.
	if displayName != "" && account.DisplayName != displayName {
		account.DisplayName = displayName
	}

	// Lazy month rollover: snapshot the balance the first time the account
	// is touched in a new calendar month, so monthly-earned starts at zero.
	if NewCalendarMonth(now, account.MonthSnapshotAt) {
		account.BalanceAtMonthStart = account.Balance
		account.MonthSnapshotAt = now
	}

	return account, nil
}

// normalizeAccount clamps stored anomalies at read time instead of failing,
// keeping the system available. Anomalies are logged for operator visibility.
func normalizeAccount(account *models.UserAccount) {
	if account.Balance < 0 {
		log.WithFields(log.Fields{
			"userID":  account.UserID,
			"balance": account.Balance,
		}).Warn("Negative balance read from store, clamping to zero")
		account.Balance = 0
	}
	if account.DailyRewardCount < 0 {
		account.DailyRewardCount = 0
	}
	if account.DailyWagerCount < 0 {
		account.DailyWagerCount = 0
	}
	if account.CheckinStreak < 0 {
		account.CheckinStreak = 0
	}
}
