package service

import (
	"context"
	"errors"

	"dashauth/internal/model"
	"dashauth/internal/settings"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("invalid or expired session")
	ErrUserNotFound       = errors.New("user not found")

	ErrInvalidClaim     = errors.New("telegram claim is missing required fields")
	ErrInvalidSignature = errors.New("telegram signature verification failed")

	ErrMissingSettings  = errors.New("bot token and username are required")
	ErrInvalidToken     = errors.New("bot token rejected by telegram")
	ErrUsernameMismatch = errors.New("bot username does not match the token")
	ErrBotUnavailable   = errors.New("telegram api unavailable")
)

type Service struct {
	*AuthService
	*TelegramService
	*UserService
	*SettingsService
}

func NewService(auth *AuthService, telegram *TelegramService, users *UserService, settings *SettingsService) *Service {
	return &Service{
		AuthService:     auth,
		TelegramService: telegram,
		UserService:     users,
		SettingsService: settings,
	}
}

type AuthServiceI interface {
	Register(ctx context.Context, email, password, name string) (*model.PublicUser, error)
	Login(ctx context.Context, email, password string) (*model.PublicUser, string, error)
	Verify(ctx context.Context, token string) (*model.PublicUser, error)
}

type TelegramServiceI interface {
	AuthenticateWidget(ctx context.Context, claim *model.WidgetClaim) (*AuthResult, error)
	AuthenticateWebhook(ctx context.Context, update *model.WebhookUpdate) (*AuthResult, error)
	Simulate(ctx context.Context) (*AuthResult, error)
}

type UserServiceI interface {
	ListUsers(ctx context.Context) ([]*model.UserListing, error)
}

type SettingsServiceI interface {
	GetSettings(ctx context.Context) (*SettingsReport, error)
	SaveSettings(ctx context.Context, botToken, botUsername string) error
	SetupWebhook(ctx context.Context, botToken, botUsername string) error
	TestBot(ctx context.Context, botToken, botUsername string) (*BotTestReport, error)
	SimulateAuth(ctx context.Context, botToken, botUsername string) (*AuthResult, error)
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	CreateEmailUser(ctx context.Context, email, passwordHash, name string) (*model.User, error)
	UpsertTelegramUser(ctx context.Context, ident *model.TelegramIdentity, placeholderEmail, placeholderHash *string) (*model.User, bool, error)
	ListUsers(ctx context.Context) ([]*model.UserListing, error)
	CountUsers(ctx context.Context) (int, error)
	CountTelegramUsers(ctx context.Context) (int, error)
}

// BotTokenSource yields the currently configured bot token; the settings
// store implements it.
type BotTokenSource interface {
	BotToken() string
}

var _ BotTokenSource = (*settings.Store)(nil)
