package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"dashauth/internal/model"
	"dashauth/internal/repository"
	"dashauth/pkg/auth"
	"dashauth/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthResult is what every successful identity claim produces, regardless of
// which entry point carried it.
type AuthResult struct {
	User        *model.PublicUser
	IsNewUser   bool
	Token       string
	RedirectURL string
}

// TelegramService reconciles inbound Telegram identity claims against the
// users table. Widget claims carry a verifiable signature; webhook claims are
// trusted because they arrive over the private bot-to-backend channel.
type TelegramService struct {
	repo      UserRepository
	tokens    *auth.TokenManager
	botTokens BotTokenSource
	baseURL   string
	now       func() time.Time
}

func NewTelegramService(repo UserRepository, tokens *auth.TokenManager, botTokens BotTokenSource, baseURL string) *TelegramService {
	return &TelegramService{
		repo:      repo,
		tokens:    tokens,
		botTokens: botTokens,
		baseURL:   baseURL,
		now:       time.Now,
	}
}

// AuthenticateWidget handles the browser login widget callback. This is the
// only path with cryptographic authenticity, so the hash check is mandatory.
func (s *TelegramService) AuthenticateWidget(ctx context.Context, claim *model.WidgetClaim) (*AuthResult, error) {
	ident, err := claim.Identity()
	if err != nil {
		return nil, ErrInvalidClaim
	}

	if !auth.VerifyWidgetHash(claim.CheckFields(), claim.Hash, s.botTokens.BotToken()) {
		return nil, ErrInvalidSignature
	}

	// Widget-created rows get a synthetic email/password pair so the unique
	// email constraint never collides on null.
	email := fmt.Sprintf("telegram_%d@placeholder.local", ident.ID)
	hash := uuid.NewString()
	return s.reconcile(ctx, ident, &email, &hash)
}

// AuthenticateWebhook handles the bot-delivered shapes: a raw message update,
// a callback_query update, or the flattened identity the bot forwards.
func (s *TelegramService) AuthenticateWebhook(ctx context.Context, update *model.WebhookUpdate) (*AuthResult, error) {
	ident, err := update.Identity()
	if err != nil {
		return nil, ErrInvalidClaim
	}
	if ident.AuthDate == 0 {
		ident.AuthDate = s.now().Unix()
	}

	return s.reconcile(ctx, ident, nil, nil)
}

// Simulate exercises the full reconcile path with a synthetic identity. Used
// by the admin test flow only.
func (s *TelegramService) Simulate(ctx context.Context) (*AuthResult, error) {
	claim := &model.SimulatedClaim{
		ID:        1_000_000 + rand.Int63n(1_000_000),
		FirstName: "Test",
		LastName:  "User",
		Username:  "test_user_" + uuid.NewString()[:8],
		AuthDate:  s.now().Unix(),
	}

	ident, err := claim.Identity()
	if err != nil {
		return nil, ErrInvalidClaim
	}
	return s.reconcile(ctx, ident, nil, nil)
}

// reconcile runs the idempotent upsert and issues the session token. A raced
// insert on telegram_id is retried once as an update instead of surfacing the
// constraint violation.
func (s *TelegramService) reconcile(ctx context.Context, ident *model.TelegramIdentity, placeholderEmail, placeholderHash *string) (*AuthResult, error) {
	user, created, err := s.repo.UpsertTelegramUser(ctx, ident, placeholderEmail, placeholderHash)
	if errors.Is(err, repository.ErrAlreadyExists) {
		logger.Logger().Info("telegram upsert raced, retrying as update",
			zap.Int64("telegram_id", ident.ID))
		user, created, err = s.repo.UpsertTelegramUser(ctx, ident, placeholderEmail, placeholderHash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert telegram user: %w", err)
	}

	token, err := s.tokens.IssueTelegramToken(user.ID, ident.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &AuthResult{
		User:        user.Public(),
		IsNewUser:   created,
		Token:       token,
		RedirectURL: fmt.Sprintf("%s?token=%s&auth=telegram&new=%t", s.baseURL, token, created),
	}, nil
}
