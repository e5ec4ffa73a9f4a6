package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"honorbot/events"
	"honorbot/models"
)

// adminService implements the AdminService interface. These operations
// bypass the accrual rules; the calling layer owns human confirmation for
// the irreversible ones.
type adminService struct {
	uowFactory UnitOfWorkFactory
}

// NewAdminService creates a new admin service
func NewAdminService(uowFactory UnitOfWorkFactory) AdminService {
	return &adminService{uowFactory: uowFactory}
}

// SetBalance overwrites an account balance directly. The value is clamped to
// zero and the month-start snapshot is deliberately left untouched: admin
// edits sit outside the monthly-points accounting.
func (s *adminService) SetBalance(ctx context.Context, userID int64, value int64) (*models.UserAccount, error) {
	if value < 0 {
		value = 0
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.UserRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", userID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d not found", userID)
	}

	oldBalance := account.Balance
	account.Balance = value

	if err := uow.UserRepository().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account %d: %w", userID, err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: oldBalance,
		NewBalance: value,
		Kind:       events.BalanceChangeAdminOverride,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":     userID,
		"oldBalance": oldBalance,
		"newBalance": value,
	}).Info("Admin balance override applied")

	return account, nil
}

func (s *adminService) ResetStreak(ctx context.Context, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.UserRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load account %d: %w", userID, err)
	}
	if account == nil {
		return fmt.Errorf("account %d not found", userID)
	}

	account.CheckinStreak = 0

	if err := uow.UserRepository().Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update account %d: %w", userID, err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WipeAllAccounts irreversibly deletes every account. Two-step confirmation
// happens in the calling layer before this is ever reached.
func (s *adminService) WipeAllAccounts(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deleted, err := uow.UserRepository().DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete accounts: %w", err)
	}

	uow.EventBus().Publish(events.AccountsWipedEvent{Deleted: deleted})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("deleted", deleted).Warn("All accounts wiped")
	return deleted, nil
}

func (s *adminService) ExportAll(ctx context.Context) ([]models.AccountRecord, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts, err := uow.UserRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	records := make([]models.AccountRecord, 0, len(accounts))
	for _, a := range accounts {
		records = append(records, models.AccountRecord{
			UserID:              a.UserID,
			DisplayName:         a.DisplayName,
			Balance:             a.Balance,
			LastRewardAt:        a.LastRewardAt,
			DailyRewardCount:    a.DailyRewardCount,
			DailyWindowStart:    a.DailyWindowStart,
			LastCheckinAt:       a.LastCheckinAt,
			CheckinStreak:       a.CheckinStreak,
			LastWagerAt:         a.LastWagerAt,
			DailyWagerCount:     a.DailyWagerCount,
			BalanceAtMonthStart: a.BalanceAtMonthStart,
			MonthSnapshotAt:     a.MonthSnapshotAt,
			CreatedAt:           a.CreatedAt,
		})
	}
	return records, nil
}

// ImportAll upserts the given records by user id. Each record is validated
// and clamped defensively; a bad record is counted and skipped, never
// aborting the rest of the batch.
func (s *adminService) ImportAll(ctx context.Context, records []models.AccountRecord) (*models.ImportReport, error) {
	report := &models.ImportReport{}

	for i := range records {
		account, err := sanitizeRecord(&records[i])
		if err != nil {
			log.WithFields(log.Fields{
				"index": i,
				"error": err,
			}).Warn("Skipping invalid import record")
			report.Failed++
			continue
		}

		created, err := s.upsertOne(ctx, account)
		if err != nil {
			log.WithFields(log.Fields{
				"userID": account.UserID,
				"error":  err,
			}).Warn("Failed to import record")
			report.Failed++
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	log.WithFields(log.Fields{
		"created": report.Created,
		"updated": report.Updated,
		"failed":  report.Failed,
	}).Info("Account import finished")
	return report, nil
}

// upsertOne runs a single-record unit of work so one failure cannot poison
// the transaction of the records that follow it.
func (s *adminService) upsertOne(ctx context.Context, account *models.UserAccount) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	created, err := uow.UserRepository().Upsert(ctx, account)
	if err != nil {
		return false, err
	}
	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

// SeedMonthlySnapshots stamps every account's month-start snapshot with its
// current balance, so monthly earnings start counting from zero. Intended as
// a one-time backfill when enabling the monthly leaderboard.
func (s *adminService) SeedMonthlySnapshots(ctx context.Context, now time.Time) (int64, error) {
	startOfMonth := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	affected, err := uow.UserRepository().SnapshotAllBalances(ctx, startOfMonth)
	if err != nil {
		return 0, fmt.Errorf("failed to snapshot balances: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("accounts", affected).Info("Monthly snapshots seeded")
	return affected, nil
}

// sanitizeRecord validates an import record and clamps every numeric and
// date field to a safe value. Unparseable or negative values degrade to the
// field's zero/epoch default rather than rejecting the whole record; only a
// missing user id is fatal.
func sanitizeRecord(r *models.AccountRecord) (*models.UserAccount, error) {
	if r.UserID <= 0 {
		return nil, fmt.Errorf("missing or invalid user id %d", r.UserID)
	}

	displayName := r.DisplayName
	if displayName == "" {
		displayName = "Unknown"
	}
	if len(displayName) > 100 {
		displayName = displayName[:100]
	}

	clampCount := func(v int) int {
		if v < 0 {
			return 0
		}
		return v
	}
	clampBalance := func(v int64) int64 {
		if v < 0 {
			return 0
		}
		return v
	}
	clampDate := func(t time.Time, now time.Time) time.Time {
		// Future-dated timestamps would freeze a user out of their windows;
		// treat them like a corrupt date and fall back to the epoch.
		if IsEpoch(t) || t.After(now) {
			return time.Unix(0, 0).UTC()
		}
		return t
	}

	now := time.Now().UTC()
	createdAt := r.CreatedAt
	if IsEpoch(createdAt) || createdAt.After(now) {
		createdAt = now
	}

	return &models.UserAccount{
		UserID:              r.UserID,
		DisplayName:         displayName,
		Balance:             clampBalance(r.Balance),
		LastRewardAt:        clampDate(r.LastRewardAt, now),
		DailyRewardCount:    clampCount(r.DailyRewardCount),
		DailyWindowStart:    clampDate(r.DailyWindowStart, now),
		LastCheckinAt:       clampDate(r.LastCheckinAt, now),
		CheckinStreak:       clampCount(r.CheckinStreak),
		LastWagerAt:         clampDate(r.LastWagerAt, now),
		DailyWagerCount:     clampCount(r.DailyWagerCount),
		BalanceAtMonthStart: clampBalance(r.BalanceAtMonthStart),
		MonthSnapshotAt:     clampDate(r.MonthSnapshotAt, now),
		CreatedAt:           createdAt,
	}, nil
}
