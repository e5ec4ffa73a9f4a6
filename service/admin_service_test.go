package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"honorbot/events"
	"honorbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAdminFixture(t *testing.T) (AdminService, *MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository, *MockEventPublisher) {
	t.Helper()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockUserRepo, mockPublisher)

	return NewAdminService(mockFactory), mockFactory, mockUoW, mockUserRepo, mockPublisher
}

func TestAdminService_SetBalance(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo, mockPublisher := newAdminFixture(t)

	account := &models.UserAccount{UserID: 123456, Balance: 50, BalanceAtMonthStart: 40}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		change, ok := e.(events.BalanceChangeEvent)
		return ok &&
			change.UserID == 123456 &&
			change.OldBalance == 50 &&
			change.NewBalance == 200 &&
			change.Kind == events.BalanceChangeAdminOverride
	})).Return()

	updated, err := svc.SetBalance(ctx, 123456, 200)

	assert.NoError(t, err)
	assert.Equal(t, int64(200), updated.Balance)
	// Admin overrides sit outside the monthly accounting.
	assert.Equal(t, int64(40), updated.BalanceAtMonthStart)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestAdminService_SetBalance_ClampsNegative(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo, mockPublisher := newAdminFixture(t)

	account := &models.UserAccount{UserID: 123456, Balance: 50}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return()

	updated, err := svc.SetBalance(ctx, 123456, -10)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), updated.Balance)

	mockUserRepo.AssertExpectations(t)
}

func TestAdminService_SetBalance_AccountMissing(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo, _ := newAdminFixture(t)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(nil, nil)

	updated, err := svc.SetBalance(ctx, 123456, 100)

	assert.Error(t, err)
	assert.Nil(t, updated)
	assert.Contains(t, err.Error(), "not found")

	mockUserRepo.AssertExpectations(t)
}

func TestAdminService_WipeAllAccounts(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo, mockPublisher := newAdminFixture(t)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("DeleteAll", ctx).Return(int64(42), nil)
	mockPublisher.On("Publish", events.AccountsWipedEvent{Deleted: 42}).Return()

	deleted, err := svc.WipeAllAccounts(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), deleted)

	mockUserRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestAdminService_ExportAll(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo, _ := newAdminFixture(t)

	checkin := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	all := []*models.UserAccount{
		{UserID: 1, DisplayName: "alpha", Balance: 100, LastCheckinAt: checkin, CheckinStreak: 3},
		{UserID: 2, DisplayName: "beta", Balance: 20},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetAll", ctx).Return(all, nil)

	records, err := svc.ExportAll(ctx)

	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].UserID)
	assert.Equal(t, "alpha", records[0].DisplayName)
	assert.Equal(t, int64(100), records[0].Balance)
	assert.Equal(t, checkin, records[0].LastCheckinAt)
	assert.Equal(t, 3, records[0].CheckinStreak)

	mockUserRepo.AssertExpectations(t)
}

func TestAdminService_ImportAll_PartialFailure(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo, _ := newAdminFixture(t)

	records := []models.AccountRecord{
		{UserID: 1, DisplayName: "alpha", Balance: 100},
		{UserID: 0, DisplayName: "no-id", Balance: 5}, // invalid, skipped
		{UserID: 2, DisplayName: "beta", Balance: 20},
		{UserID: 3, DisplayName: "gamma", Balance: 30}, // store rejects this one
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("Upsert", ctx, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.UserID == 1
	})).Return(true, nil)
	mockUserRepo.On("Upsert", ctx, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.UserID == 2
	})).Return(false, nil)
	mockUserRepo.On("Upsert", ctx, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.UserID == 3
	})).Return(false, errors.New("database error"))

	report, err := svc.ImportAll(ctx, records)

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 2, report.Failed)

	mockUserRepo.AssertExpectations(t)
}

func TestAdminService_ImportAll_ClampsCorruptFields(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo, _ := newAdminFixture(t)

	future := time.Now().UTC().Add(48 * time.Hour)
	records := []models.AccountRecord{
		{
			UserID:        7,
			Balance:       -50,
			CheckinStreak: -3,
			LastCheckinAt: future,
		},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("Upsert", ctx, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.UserID == 7 &&
			a.Balance == 0 &&
			a.CheckinStreak == 0 &&
			IsEpoch(a.LastCheckinAt) &&
			a.DisplayName == "Unknown"
	})).Return(true, nil)

	report, err := svc.ImportAll(ctx, records)

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Failed)

	mockUserRepo.AssertExpectations(t)
}

func TestAdminService_SeedMonthlySnapshots(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo, _ := newAdminFixture(t)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("SnapshotAllBalances", ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)).
		Return(int64(17), nil)

	affected, err := svc.SeedMonthlySnapshots(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, int64(17), affected)

	mockUserRepo.AssertExpectations(t)
}

func TestAdminService_ResetStreak(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo, _ := newAdminFixture(t)

	account := &models.UserAccount{UserID: 123456, CheckinStreak: 9}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)

	err := svc.ResetStreak(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, 0, account.CheckinStreak)

	mockUserRepo.AssertExpectations(t)
}
