package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"dashauth/internal/botapi"
	"dashauth/internal/settings"
	"dashauth/pkg/logger"

	"go.uber.org/zap"
)

type TelegramStats struct {
	TelegramUsers      int `json:"telegramUsers"`
	TotalUsers         int `json:"totalUsers"`
	TelegramPercentage int `json:"telegramPercentage"`
}

type SettingsReport struct {
	Settings settings.BotSettings `json:"settings"`
	Stats    TelegramStats        `json:"stats"`
}

const (
	WebhookMatches       = "matches"
	WebhookWrongDomain   = "wrong_domain"
	WebhookNotConfigured = "not_configured"
)

type BotTestReport struct {
	Message     string `json:"message"`
	WebhookURL  string `json:"webhookUrl"`
	ExpectedURL string `json:"expectedUrl"`
	Issue       string `json:"issue,omitempty"`
}

// SettingsService persists bot credentials and drives one-time setup calls
// against the Bot API.
type SettingsService struct {
	repo       UserRepository
	store      *settings.Store
	reconciler TelegramServiceI
	newBot     botapi.Factory
	baseURL    string
}

func NewSettingsService(repo UserRepository, store *settings.Store, reconciler TelegramServiceI, newBot botapi.Factory, baseURL string) *SettingsService {
	return &SettingsService{
		repo:       repo,
		store:      store,
		reconciler: reconciler,
		newBot:     newBot,
		baseURL:    baseURL,
	}
}

func (s *SettingsService) webhookURL() string {
	return s.baseURL + "/auth/telegram/webhook"
}

func (s *SettingsService) GetSettings(ctx context.Context) (*SettingsReport, error) {
	telegramUsers, err := s.repo.CountTelegramUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count telegram users: %w", err)
	}
	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	percentage := 0
	if totalUsers > 0 {
		percentage = int(math.Round(float64(telegramUsers) / float64(totalUsers) * 100))
	}

	return &SettingsReport{
		Settings: s.store.Get(),
		Stats: TelegramStats{
			TelegramUsers:      telegramUsers,
			TotalUsers:         totalUsers,
			TelegramPercentage: percentage,
		},
	}, nil
}

// SaveSettings persists the credentials and kicks off webhook, command and
// description registration in a detached task. The caller never waits on the
// registration; its outcome is only visible in the logs.
func (s *SettingsService) SaveSettings(ctx context.Context, botToken, botUsername string) error {
	if botToken == "" || botUsername == "" {
		return ErrMissingSettings
	}

	if err := s.store.Save(botToken, botUsername); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- s.registerBot(botToken)
	}()
	go func() {
		log := logger.Logger()
		if err := <-errc; err != nil {
			log.Error("background bot setup failed", zap.Error(err))
			return
		}
		log.Info("background bot setup completed", zap.String("bot_username", botUsername))
	}()

	return nil
}

func (s *SettingsService) registerBot(botToken string) error {
	client, err := s.newBot(botToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if err := client.SetWebhook(s.webhookURL()); err != nil {
		return fmt.Errorf("%w: %v", ErrBotUnavailable, err)
	}

	commands := []botapi.Command{
		{Command: "start", Description: "Start and sign in"},
		{Command: "auth", Description: "Sign in to the dashboard"},
	}
	if err := client.SetCommands(commands); err != nil {
		return fmt.Errorf("%w: %v", ErrBotUnavailable, err)
	}

	if err := client.SetDescription("Sign in to the admin dashboard with your Telegram account."); err != nil {
		return fmt.Errorf("%w: %v", ErrBotUnavailable, err)
	}

	return nil
}

// SetupWebhook is the synchronous variant of the registration: it only sets
// the webhook and reports failures inline.
func (s *SettingsService) SetupWebhook(ctx context.Context, botToken, botUsername string) error {
	if botToken == "" || botUsername == "" {
		return ErrMissingSettings
	}

	client, err := s.newBot(botToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := client.SetWebhook(s.webhookURL()); err != nil {
		return fmt.Errorf("%w: %v", ErrBotUnavailable, err)
	}
	return nil
}

// TestBot verifies the token, checks the bound username and classifies the
// registered webhook URL. A username mismatch short-circuits before the
// webhook-info call.
func (s *SettingsService) TestBot(ctx context.Context, botToken, botUsername string) (*BotTestReport, error) {
	if botToken == "" || botUsername == "" {
		return nil, ErrMissingSettings
	}

	client, err := s.newBot(botToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	self := client.Self()
	if self.Username != strings.TrimPrefix(botUsername, "@") {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrUsernameMismatch, botUsername, self.Username)
	}

	info, err := client.GetWebhookInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBotUnavailable, err)
	}

	expected := s.webhookURL()
	report := &BotTestReport{
		WebhookURL:  info.URL,
		ExpectedURL: expected,
	}

	switch {
	case info.URL == expected:
		report.Message = fmt.Sprintf("Bot @%s is active, webhook configured correctly", self.Username)
		report.Issue = WebhookMatches
	case info.URL == "":
		report.Message = fmt.Sprintf("Bot @%s is active, but no webhook is configured", self.Username)
		report.Issue = WebhookNotConfigured
	default:
		report.Message = fmt.Sprintf("Bot @%s is active, but the webhook points to another URL", self.Username)
		report.Issue = WebhookWrongDomain
	}

	return report, nil
}

// SimulateAuth verifies the bot is reachable and then pushes a synthetic
// identity through the full reconcile path.
func (s *SettingsService) SimulateAuth(ctx context.Context, botToken, botUsername string) (*AuthResult, error) {
	if botToken == "" || botUsername == "" {
		return nil, ErrMissingSettings
	}

	if _, err := s.newBot(botToken); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return s.reconciler.Simulate(ctx)
}
