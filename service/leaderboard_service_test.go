package service

import (
	"context"
	"testing"
	"time"

	"honorbot/models"

	"github.com/stretchr/testify/assert"
)

func newLeaderboardFixture(t *testing.T) (LeaderboardService, *MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository) {
	t.Helper()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil)

	return NewLeaderboardService(mockFactory), mockFactory, mockUoW, mockUserRepo
}

func TestLeaderboardService_TopN(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo := newLeaderboardFixture(t)

	top := []*models.UserAccount{
		{UserID: 1, DisplayName: "first", Balance: 300},
		{UserID: 2, DisplayName: "second", Balance: 200},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetTopByBalance", ctx, 10).Return(top, nil)

	accounts, err := svc.TopN(ctx, 10)

	assert.NoError(t, err)
	assert.Equal(t, top, accounts)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestLeaderboardService_MonthlyTopN(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo := newLeaderboardFixture(t)

	all := []*models.UserAccount{
		// Earned 30 this month.
		{UserID: 1, DisplayName: "steady", Balance: 130, BalanceAtMonthStart: 100, MonthSnapshotAt: thisMonth},
		// Snapshot from May: untouched this month, excluded regardless of
		// what the stale fields would compute to.
		{UserID: 2, DisplayName: "dormant", Balance: 500, BalanceAtMonthStart: 10, MonthSnapshotAt: lastMonth},
		// Earned 80 this month, should rank first.
		{UserID: 3, DisplayName: "grinder", Balance: 90, BalanceAtMonthStart: 10, MonthSnapshotAt: thisMonth},
		// Net zero this month, excluded.
		{UserID: 4, DisplayName: "flat", Balance: 100, BalanceAtMonthStart: 100, MonthSnapshotAt: thisMonth},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetAll", ctx).Return(all, nil)

	standings, err := svc.MonthlyTopN(ctx, 10, now)

	assert.NoError(t, err)
	assert.Len(t, standings, 2)
	assert.Equal(t, int64(3), standings[0].UserID)
	assert.Equal(t, int64(80), standings[0].Earned)
	assert.Equal(t, int64(1), standings[1].UserID)
	assert.Equal(t, int64(30), standings[1].Earned)

	mockUserRepo.AssertExpectations(t)
}

func TestLeaderboardService_MonthlyTopN_Truncates(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo := newLeaderboardFixture(t)

	all := []*models.UserAccount{
		{UserID: 1, Balance: 10, BalanceAtMonthStart: 0, MonthSnapshotAt: thisMonth},
		{UserID: 2, Balance: 20, BalanceAtMonthStart: 0, MonthSnapshotAt: thisMonth},
		{UserID: 3, Balance: 30, BalanceAtMonthStart: 0, MonthSnapshotAt: thisMonth},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetAll", ctx).Return(all, nil)

	standings, err := svc.MonthlyTopN(ctx, 2, now)

	assert.NoError(t, err)
	assert.Len(t, standings, 2)
	assert.Equal(t, int64(3), standings[0].UserID)
	assert.Equal(t, int64(2), standings[1].UserID)

	mockUserRepo.AssertExpectations(t)
}

func TestLeaderboardService_RankOf(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo := newLeaderboardFixture(t)

	account := &models.UserAccount{UserID: 123456, Balance: 70}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByUserID", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("CountWithBalanceAbove", ctx, int64(70)).Return(int64(4), nil)

	rank, err := svc.RankOf(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), rank)

	mockUserRepo.AssertExpectations(t)
}

func TestLeaderboardService_RankOf_NotFound(t *testing.T) {
	ctx := context.Background()

	svc, mockFactory, mockUoW, mockUserRepo := newLeaderboardFixture(t)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByUserID", ctx, int64(123456)).Return(nil, nil)

	rank, err := svc.RankOf(ctx, 123456)

	assert.Error(t, err)
	assert.Equal(t, int64(0), rank)
	assert.Contains(t, err.Error(), "not found")

	mockUserRepo.AssertExpectations(t)
}
