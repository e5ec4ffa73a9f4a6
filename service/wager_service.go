package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"honorbot/events"
	"honorbot/models"
)

// wagerService implements the WagerService interface. The coin flip and the
// lucky draw are the same engine under two configurations: they differ only
// in win probability and in how the stake maps to the balance delta.
type wagerService struct {
	uowFactory UnitOfWorkFactory
	cfg        WagerConfig
	roll       func() float64
}

// NewWagerService creates a new wager service
func NewWagerService(uowFactory UnitOfWorkFactory, cfg WagerConfig) WagerService {
	return &wagerService{
		uowFactory: uowFactory,
		cfg:        cfg,
		roll:       rand.Float64,
	}
}

func (s *wagerService) PlaceCoinFlip(ctx context.Context, userID int64, displayName string, choice models.CoinSide, stake int64, now time.Time) (*models.WagerResult, error) {
	// Stake bounds are a validation error surface, checked before any I/O.
	if stake < s.cfg.MinStake || stake > s.cfg.MaxStake {
		return &models.WagerResult{
			Kind:       models.WagerKindCoinFlip,
			Rejected:   true,
			Reason:     models.WagerRejectStakeBounds,
			PlaysLimit: s.cfg.DailyWagerLimit,
		}, nil
	}
	if choice != models.CoinHeads && choice != models.CoinTails {
		return nil, fmt.Errorf("invalid coin choice %q", choice)
	}

	return s.resolve(ctx, userID, displayName, now, models.WagerKindCoinFlip, stake, func(result *models.WagerResult) {
		flip := models.CoinHeads
		if s.roll() < 0.5 {
			flip = models.CoinTails
		}
		result.Result = flip
		result.Won = flip == choice
		if result.Won {
			result.Delta = stake
		} else {
			result.Delta = -stake
		}
	})
}

func (s *wagerService) PlayLuckyDraw(ctx context.Context, userID int64, displayName string, now time.Time) (*models.WagerResult, error) {
	// The fixed-magnitude variant risks the loss amount each play.
	return s.resolve(ctx, userID, displayName, now, models.WagerKindLuckyDraw, s.cfg.LuckyDrawLossAmount, func(result *models.WagerResult) {
		result.Won = s.roll() < s.cfg.LuckyDrawWinProbability
		if result.Won {
			result.Delta = s.cfg.LuckyDrawWinAmount
		} else {
			result.Delta = -s.cfg.LuckyDrawLossAmount
		}
	})
}

// resolve runs the shared wager state machine: load and lock the account,
// lazily reset the daily wager window, enforce balance and quota, then let
// the variant-specific outcome function fill in the result. The window
// counter advances win or lose.
func (s *wagerService) resolve(ctx context.Context, userID int64, displayName string, now time.Time, kind models.WagerKind, required int64, outcome func(*models.WagerResult)) (*models.WagerResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := prepareAccount(ctx, uow, userID, displayName, now)
	if err != nil {
		return nil, err
	}

	if account.Balance < required {
		if err := s.persist(ctx, uow, account); err != nil {
			return nil, err
		}
		return &models.WagerResult{
			Kind:       kind,
			Rejected:   true,
			Reason:     models.WagerRejectInsufficientBalance,
			NewBalance: account.Balance,
			PlaysUsed:  account.DailyWagerCount,
			PlaysLimit: s.cfg.DailyWagerLimit,
		}, nil
	}

	// Lazy daily reset, same pattern as the message-reward window but with
	// its own independent counter and timestamp.
	if !SameUTCDay(now, account.LastWagerAt) {
		account.DailyWagerCount = 0
	}

	if account.DailyWagerCount >= s.cfg.DailyWagerLimit {
		if err := s.persist(ctx, uow, account); err != nil {
			return nil, err
		}
		return &models.WagerResult{
			Kind:       kind,
			Rejected:   true,
			Reason:     models.WagerRejectDailyLimit,
			RetryAt:    NextUTCMidnight(now),
			NewBalance: account.Balance,
			PlaysUsed:  account.DailyWagerCount,
			PlaysLimit: s.cfg.DailyWagerLimit,
		}, nil
	}

	result := &models.WagerResult{
		Kind:       kind,
		PlaysLimit: s.cfg.DailyWagerLimit,
	}
	outcome(result)

	oldBalance := account.Balance
	account.Balance += result.Delta
	if account.Balance < 0 {
		// Losses clamp at zero; the persisted balance is never negative.
		account.Balance = 0
	}
	account.DailyWagerCount++
	account.LastWagerAt = now

	if err := uow.UserRepository().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account %d: %w", userID, err)
	}

	uow.EventBus().Publish(events.WagerResolvedEvent{
		UserID: userID,
		Kind:   string(kind),
		Won:    result.Won,
		Delta:  result.Delta,
	})
	// The balance-change event is what nudges the leaderboard to refresh;
	// delivery is fire-and-forget and never fails the wager.
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: oldBalance,
		NewBalance: account.Balance,
		Kind:       events.BalanceChangeWager,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result.NewBalance = account.Balance
	result.PlaysUsed = account.DailyWagerCount
	return result, nil
}

func (s *wagerService) persist(ctx context.Context, uow UnitOfWork, account *models.UserAccount) error {
	if err := uow.UserRepository().Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update account %d: %w", account.UserID, err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
