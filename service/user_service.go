package service

import (
	"context"
	"fmt"
	"time"

	"honorbot/models"
)

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{uowFactory: uowFactory}
}

// GetOrCreateUser retrieves an existing account or lazily creates one on the
// user's first observed action, refreshing the display name either way.
func (s *userService) GetOrCreateUser(ctx context.Context, userID int64, displayName string) (*models.UserAccount, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := prepareAccount(ctx, uow, userID, displayName, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := uow.UserRepository().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account %d: %w", userID, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}
