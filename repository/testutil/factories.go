package testutil

import (
	"time"

	"honorbot/models"
)

// CreateTestAccount builds an account with fresh-account defaults
func CreateTestAccount(userID int64, displayName string) *models.UserAccount {
	now := time.Now().UTC()
	epoch := time.Unix(0, 0).UTC()
	return &models.UserAccount{
		UserID:           userID,
		DisplayName:      displayName,
		Balance:          0,
		LastRewardAt:     epoch,
		DailyWindowStart: epoch,
		LastCheckinAt:    epoch,
		LastWagerAt:      epoch,
		MonthSnapshotAt:  epoch,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CreateTestAccountWithBalance builds an account holding a specific balance
func CreateTestAccountWithBalance(userID int64, displayName string, balance int64) *models.UserAccount {
	account := CreateTestAccount(userID, displayName)
	account.Balance = balance
	return account
}
