package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"honorbot/events"
	"honorbot/models"
)

// accrualService implements the AccrualService interface. Both tracks run
// their eligibility check and mutation inside one unit of work with the
// account row locked, so concurrent triggers for the same user serialize and
// can never double-award.
type accrualService struct {
	uowFactory UnitOfWorkFactory
	cfg        AccrualConfig
	dedup      *EventDedup
	roll       func() float64 // uniform [0,1) sample source
}

// NewAccrualService creates a new accrual service. The dedup cache is owned
// by the caller so its lifetime and horizon stay visible at the wiring site.
func NewAccrualService(uowFactory UnitOfWorkFactory, cfg AccrualConfig, dedup *EventDedup) AccrualService {
	return &accrualService{
		uowFactory: uowFactory,
		cfg:        cfg,
		dedup:      dedup,
		roll:       rand.Float64,
	}
}

func (s *accrualService) ClaimCheckin(ctx context.Context, userID int64, displayName string, now time.Time) (*models.CheckinResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := prepareAccount(ctx, uow, userID, displayName, now)
	if err != nil {
		return nil, err
	}

	if !IsEpoch(account.LastCheckinAt) && SameUTCDay(now, account.LastCheckinAt) {
		// Persist the display-name refresh and month rollover even when the
		// claim itself is blocked.
		if err := uow.UserRepository().Update(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to update account %d: %w", userID, err)
		}
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &models.CheckinResult{
			Status:     models.CheckinAlreadyClaimed,
			NewBalance: account.Balance,
			Streak:     account.CheckinStreak,
			RetryAt:    NextUTCMidnight(now),
		}, nil
	}

	points := DrawCheckinPoints(s.roll() * 100)

	if s.cfg.StreakEnabled {
		if IsYesterdayUTC(now, account.LastCheckinAt) {
			account.CheckinStreak++
		} else {
			account.CheckinStreak = 1
		}
	}

	oldBalance := account.Balance
	account.Balance += points
	account.LastCheckinAt = now

	if err := uow.UserRepository().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account %d: %w", userID, err)
	}

	uow.EventBus().Publish(events.CheckinClaimedEvent{
		UserID: userID,
		Points: points,
		Streak: account.CheckinStreak,
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: oldBalance,
		NewBalance: account.Balance,
		Kind:       events.BalanceChangeCheckin,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.CheckinResult{
		Status:     models.CheckinAwarded,
		Points:     points,
		NewBalance: account.Balance,
		Streak:     account.CheckinStreak,
	}, nil
}

func (s *accrualService) HandleMessage(ctx context.Context, eventID string, userID int64, displayName string, now time.Time) (*models.MessageRewardResult, error) {
	// At-most-once per event id. This only screens re-deliveries of the
	// same event; the row lock below handles distinct concurrent triggers.
	if !s.dedup.Observe(eventID, now) {
		return &models.MessageRewardResult{Status: models.MessageDuplicate}, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := prepareAccount(ctx, uow, userID, displayName, now)
	if err != nil {
		return nil, err
	}

	// Lazy daily window reset: recomputed on access, never by a timer.
	if !SameUTCDay(now, account.DailyWindowStart) {
		account.DailyRewardCount = 0
		account.DailyWindowStart = now
	}

	if account.DailyRewardCount >= s.cfg.DailyRewardLimit {
		if err := s.persistBlocked(ctx, uow, account); err != nil {
			return nil, err
		}
		return &models.MessageRewardResult{
			Status:           models.MessageDailyLimit,
			NewBalance:       account.Balance,
			RewardsUsedToday: account.DailyRewardCount,
			RetryAt:          NextUTCMidnight(now),
		}, nil
	}

	if WithinCooldown(now, account.LastRewardAt, s.cfg.MessageCooldown) {
		if err := s.persistBlocked(ctx, uow, account); err != nil {
			return nil, err
		}
		return &models.MessageRewardResult{
			Status:            models.MessageOnCooldown,
			NewBalance:        account.Balance,
			RewardsUsedToday:  account.DailyRewardCount,
			CooldownRemaining: s.cfg.MessageCooldown - now.Sub(account.LastRewardAt),
		}, nil
	}

	points := DrawMessagePoints(s.roll() * 100)

	oldBalance := account.Balance
	account.Balance += points
	account.DailyRewardCount++
	account.LastRewardAt = now

	if err := uow.UserRepository().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account %d: %w", userID, err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: oldBalance,
		NewBalance: account.Balance,
		Kind:       events.BalanceChangeMessageReward,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.MessageRewardResult{
		Status:           models.MessageAwarded,
		Points:           points,
		NewBalance:       account.Balance,
		RewardsUsedToday: account.DailyRewardCount,
	}, nil
}

// persistBlocked writes back the bookkeeping-only changes (window reset,
// display name, month snapshot) accumulated before a block was hit.
func (s *accrualService) persistBlocked(ctx context.Context, uow UnitOfWork, account *models.UserAccount) error {
	if err := uow.UserRepository().Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update account %d: %w", account.UserID, err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *accrualService) Status(ctx context.Context, userID int64, displayName string, now time.Time) (*models.ActivityStatus, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := prepareAccount(ctx, uow, userID, displayName, now)
	if err != nil {
		return nil, err
	}
	if err := uow.UserRepository().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account %d: %w", userID, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	status := &models.ActivityStatus{
		Balance:           account.Balance,
		CheckinStreak:     account.CheckinStreak,
		RewardsDailyLimit: s.cfg.DailyRewardLimit,
		WagersDailyLimit:  s.cfg.DailyWagerLimit,
		MonthlyEarned:     account.MonthlyEarned(),
	}

	claimedToday := !IsEpoch(account.LastCheckinAt) && SameUTCDay(now, account.LastCheckinAt)
	status.CheckinAvailable = !claimedToday
	if claimedToday {
		status.CheckinRetryAt = NextUTCMidnight(now)
	}

	// Window counters are reported as the values a fresh action would see.
	if SameUTCDay(now, account.DailyWindowStart) {
		status.RewardsUsedToday = account.DailyRewardCount
	}
	if SameUTCDay(now, account.LastWagerAt) {
		status.WagersUsedToday = account.DailyWagerCount
	}

	if WithinCooldown(now, account.LastRewardAt, s.cfg.MessageCooldown) {
		status.CooldownRemaining = s.cfg.MessageCooldown - now.Sub(account.LastRewardAt)
	}

	return status, nil
}
