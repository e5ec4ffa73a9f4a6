package service

import (
	"context"
	"time"

	"honorbot/events"
	"honorbot/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAccount), args.Error(1)
}

func (m *MockUserRepository) GetForUpdate(ctx context.Context, userID int64) (*models.UserAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAccount), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, userID int64, displayName string) (*models.UserAccount, error) {
	args := m.Called(ctx, userID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAccount), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, account *models.UserAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockUserRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.UserAccount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserAccount), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.UserAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserAccount), args.Error(1)
}

func (m *MockUserRepository) CountWithBalanceAbove(ctx context.Context, balance int64) (int64, error) {
	args := m.Called(ctx, balance)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, account *models.UserAccount) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SnapshotAllBalances(ctx context.Context, at time.Time) (int64, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Use SetRepositories
// to wire in the repository and publisher mocks before setting expectations.
type MockUnitOfWork struct {
	mock.Mock

	userRepo UserRepository
	eventBus EventPublisher
}

func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, eventBus EventPublisher) {
	m.userRepo = userRepo
	if eventBus == nil {
		eventBus = &noopPublisher{}
	}
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// noopPublisher swallows events in tests that don't assert on them.
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
