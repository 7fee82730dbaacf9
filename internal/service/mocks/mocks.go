package mocks

import (
	"context"

	"dashauth/internal/botapi"
	"dashauth/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) CreateEmailUser(ctx context.Context, email, passwordHash, name string) (*model.User, error) {
	args := m.Called(ctx, email, passwordHash, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpsertTelegramUser(ctx context.Context, ident *model.TelegramIdentity, placeholderEmail, placeholderHash *string) (*model.User, bool, error) {
	args := m.Called(ctx, ident, placeholderEmail, placeholderHash)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]*model.UserListing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserListing), args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) CountTelegramUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockBotClient struct {
	mock.Mock
}

func (m *MockBotClient) Self() botapi.BotInfo {
	args := m.Called()
	return args.Get(0).(botapi.BotInfo)
}

func (m *MockBotClient) SetWebhook(url string) error {
	args := m.Called(url)
	return args.Error(0)
}

func (m *MockBotClient) GetWebhookInfo() (botapi.WebhookInfo, error) {
	args := m.Called()
	return args.Get(0).(botapi.WebhookInfo), args.Error(1)
}

func (m *MockBotClient) SetCommands(commands []botapi.Command) error {
	args := m.Called(commands)
	return args.Error(0)
}

func (m *MockBotClient) SetDescription(description string) error {
	args := m.Called(description)
	return args.Error(0)
}
