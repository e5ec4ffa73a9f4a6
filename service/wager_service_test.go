package service

import (
	"context"
	"testing"
	"time"

	"honorbot/models"

	"github.com/stretchr/testify/assert"
)

func wagerTestConfig() WagerConfig {
	return WagerConfig{
		MinStake:        1,
		MaxStake:        5,
		DailyWagerLimit: 5,

		LuckyDrawWinProbability: 0.6,
		LuckyDrawWinAmount:      5,
		LuckyDrawLossAmount:     5,
	}
}

func newWagerFixture(t *testing.T) (*wagerService, *MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository) {
	t.Helper()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil)

	svc := NewWagerService(mockFactory, wagerTestConfig()).(*wagerService)
	return svc, mockFactory, mockUoW, mockUserRepo
}

func TestWagerService_PlaceCoinFlip_StakeOutOfBounds(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, mockFactory, _, mockUserRepo := newWagerFixture(t)

	for _, stake := range []int64{0, -1, 6, 100} {
		result, err := svc.PlaceCoinFlip(ctx, 123456, "tester", models.CoinHeads, stake, now)

		assert.NoError(t, err)
		assert.True(t, result.Rejected)
		assert.Equal(t, models.WagerRejectStakeBounds, result.Reason)
	}

	// Validation happens before any store access.
	mockFactory.AssertNotCalled(t, "Create")
	mockUserRepo.AssertNotCalled(t, "GetForUpdate")
}

func TestWagerService_PlaceCoinFlip_InvalidChoice(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, mockFactory, _, _ := newWagerFixture(t)

	result, err := svc.PlaceCoinFlip(ctx, 123456, "tester", models.CoinSide("edge"), 3, now)

	assert.Error(t, err)
	assert.Nil(t, result)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestWagerService_PlaceCoinFlip_Win(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo := newWagerFixture(t)
	svc.roll = func() float64 { return 0.9 } // lands heads

	account := &models.UserAccount{
		UserID:      123456,
		DisplayName: "tester",
		Balance:     20,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)

	result, err := svc.PlaceCoinFlip(ctx, 123456, "tester", models.CoinHeads, 5, now)

	assert.NoError(t, err)
	assert.False(t, result.Rejected)
	assert.True(t, result.Won)
	assert.Equal(t, models.CoinHeads, result.Result)
	assert.Equal(t, int64(5), result.Delta)
	assert.Equal(t, int64(25), result.NewBalance)
	assert.Equal(t, 1, result.PlaysUsed)
	assert.Equal(t, 5, result.PlaysLimit)
	assert.Equal(t, now, account.LastWagerAt)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestWagerService_PlaceCoinFlip_LossAdvancesCounter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo := newWagerFixture(t)
	svc.roll = func() float64 { return 0.1 } // lands tails

	account := &models.UserAccount{
		UserID:          123456,
		DisplayName:     "tester",
		Balance:         20,
		LastWagerAt:     now.Add(-time.Hour),
		DailyWagerCount: 2,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)

	result, err := svc.PlaceCoinFlip(ctx, 123456, "tester", models.CoinHeads, 5, now)

	assert.NoError(t, err)
	assert.False(t, result.Won)
	assert.Equal(t, models.CoinTails, result.Result)
	assert.Equal(t, int64(-5), result.Delta)
	assert.Equal(t, int64(15), result.NewBalance)
	// The quota is consumed win or lose.
	assert.Equal(t, 3, result.PlaysUsed)

	mockUserRepo.AssertExpectations(t)
}

func TestWagerService_PlaceCoinFlip_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo := newWagerFixture(t)

	account := &models.UserAccount{
		UserID:      123456,
		DisplayName: "tester",
		Balance:     3,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)

	result, err := svc.PlaceCoinFlip(ctx, 123456, "tester", models.CoinHeads, 5, now)

	assert.NoError(t, err)
	assert.True(t, result.Rejected)
	assert.Equal(t, models.WagerRejectInsufficientBalance, result.Reason)
	assert.Equal(t, int64(3), result.NewBalance)
	// A rejected wager must not consume quota or move the balance.
	assert.Equal(t, 0, account.DailyWagerCount)
	assert.Equal(t, int64(3), account.Balance)

	mockUserRepo.AssertExpectations(t)
}

func TestWagerService_PlaceCoinFlip_DailyLimitReached(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo := newWagerFixture(t)

	account := &models.UserAccount{
		UserID:          123456,
		DisplayName:     "tester",
		Balance:         20,
		LastWagerAt:     now.Add(-time.Hour),
		DailyWagerCount: 5,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)

	result, err := svc.PlaceCoinFlip(ctx, 123456, "tester", models.CoinHeads, 5, now)

	assert.NoError(t, err)
	assert.True(t, result.Rejected)
	assert.Equal(t, models.WagerRejectDailyLimit, result.Reason)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), result.RetryAt)
	assert.Equal(t, 5, result.PlaysUsed)
	assert.Equal(t, int64(20), account.Balance)

	mockUserRepo.AssertExpectations(t)
}

func TestWagerService_PlaceCoinFlip_QuotaResetsNextDay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 16, 0, 0, 5, 0, time.UTC)
	yesterday := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo := newWagerFixture(t)
	svc.roll = func() float64 { return 0.9 }

	// Exhausted yesterday; seconds past midnight it plays again.
	account := &models.UserAccount{
		UserID:          123456,
		DisplayName:     "tester",
		Balance:         20,
		LastWagerAt:     yesterday,
		DailyWagerCount: 5,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)

	result, err := svc.PlaceCoinFlip(ctx, 123456, "tester", models.CoinHeads, 2, now)

	assert.NoError(t, err)
	assert.False(t, result.Rejected)
	assert.Equal(t, 1, result.PlaysUsed)

	mockUserRepo.AssertExpectations(t)
}

func TestWagerService_PlayLuckyDraw_Win(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo := newWagerFixture(t)
	svc.roll = func() float64 { return 0.59 } // just under the win probability

	account := &models.UserAccount{
		UserID:      123456,
		DisplayName: "tester",
		Balance:     10,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)

	result, err := svc.PlayLuckyDraw(ctx, 123456, "tester", now)

	assert.NoError(t, err)
	assert.Equal(t, models.WagerKindLuckyDraw, result.Kind)
	assert.True(t, result.Won)
	assert.Equal(t, int64(5), result.Delta)
	assert.Equal(t, int64(15), result.NewBalance)

	mockUserRepo.AssertExpectations(t)
}

func TestWagerService_PlayLuckyDraw_LossClampsAtZero(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo := newWagerFixture(t)
	svc.roll = func() float64 { return 0.6 } // at the boundary, a loss

	account := &models.UserAccount{
		UserID:      123456,
		DisplayName: "tester",
		Balance:     5,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)

	result, err := svc.PlayLuckyDraw(ctx, 123456, "tester", now)

	assert.NoError(t, err)
	assert.False(t, result.Won)
	assert.Equal(t, int64(-5), result.Delta)
	assert.Equal(t, int64(0), result.NewBalance)
	assert.Equal(t, 1, result.PlaysUsed)

	mockUserRepo.AssertExpectations(t)
}

func TestWagerService_PlayLuckyDraw_RequiresStakeBalance(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, mockFactory, mockUoW, mockUserRepo := newWagerFixture(t)

	account := &models.UserAccount{
		UserID:      123456,
		DisplayName: "tester",
		Balance:     4,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetForUpdate", ctx, int64(123456)).Return(account, nil)
	mockUserRepo.On("Update", ctx, account).Return(nil)

	result, err := svc.PlayLuckyDraw(ctx, 123456, "tester", now)

	assert.NoError(t, err)
	assert.True(t, result.Rejected)
	assert.Equal(t, models.WagerRejectInsufficientBalance, result.Reason)
	assert.Equal(t, int64(4), account.Balance)

	mockUserRepo.AssertExpectations(t)
}
