package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"honorbot/models"
)

// leaderboardService implements the LeaderboardService interface. It is a
// pure reader: it never mutates accounts and needs no coordination with the
// writer side beyond eventual consistency.
type leaderboardService struct {
	uowFactory UnitOfWorkFactory
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(uowFactory UnitOfWorkFactory) LeaderboardService {
	return &leaderboardService{uowFactory: uowFactory}
}

func (s *leaderboardService) TopN(ctx context.Context, n int) ([]*models.UserAccount, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts, err := uow.UserRepository().GetTopByBalance(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get top accounts: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return accounts, nil
}

func (s *leaderboardService) MonthlyTopN(ctx context.Context, n int, now time.Time) ([]*models.MonthlyStanding, error) {
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

	standings := make([]*models.MonthlyStanding, 0, len(accounts))
	for _, account := range accounts {
		// A snapshot from an earlier month means the account has not been
		// touched this month; reading is not allowed to reseed it, so its
		// monthly earnings are zero by definition.
		if NewCalendarMonth(now, account.MonthSnapshotAt) {
			continue
		}
		earned := account.MonthlyEarned()
		if earned <= 0 {
			continue
		}
		standings = append(standings, &models.MonthlyStanding{
			UserID:      account.UserID,
			DisplayName: account.DisplayName,
			Earned:      earned,
		})
	}

	// Stable sort keeps ties in store order; exact tie ranking is not a
	// correctness property here.
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Earned > standings[j].Earned
	})

	if n > 0 && len(standings) > n {
		standings = standings[:n]
	}
	return standings, nil
}

func (s *leaderboardService) RankOf(ctx context.Context, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.UserRepository().GetByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account %d: %w", userID, err)
	}
	if account == nil {
		return 0, fmt.Errorf("account %d not found", userID)
	}

	above, err := uow.UserRepository().CountWithBalanceAbove(ctx, account.Balance)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts above balance: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return above + 1, nil
}
