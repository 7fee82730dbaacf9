package service

import (
	"context"
	"errors"
	"fmt"

	"dashauth/internal/model"
	"dashauth/internal/repository"
	"dashauth/pkg/auth"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// AuthService implements the email/password identity source.
type AuthService struct {
	repo   UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(repo UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*model.PublicUser, error) {
	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateEmailUser(ctx, email, string(hash), name)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user.Public(), nil
}

// Login deliberately returns the same error for an unknown email and a wrong
// password so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.PublicUser, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueEmailToken(user.ID, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	return user.Public(), token, nil
}

func (s *AuthService) Verify(ctx context.Context, token string) (*model.PublicUser, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user.Public(), nil
}
