package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"dashauth/internal/model"
	"dashauth/internal/repository"
	"dashauth/internal/service/mocks"
	"dashauth/pkg/auth"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBotToken = "12345:TEST-BOT-TOKEN"

type fakeTokenSource struct {
	token string
}

func (f *fakeTokenSource) BotToken() string { return f.token }

func newTelegramTestService(repo UserRepository) *TelegramService {
	return NewTelegramService(repo, auth.NewTokenManager(testSecret),
		&fakeTokenSource{token: testBotToken}, "http://localhost:8080")
}

func telegramUser(id int64, name string) *model.User {
	tgID := id
	return &model.User{
		ID:         id,
		Name:       name,
		TelegramID: &tgID,
		AuthMethod: model.AuthMethodTelegram,
		CreatedAt:  time.Now(),
	}
}

func signedWidgetClaim(id int64, firstName string) *model.WidgetClaim {
	claim := &model.WidgetClaim{
		ID:        id,
		FirstName: firstName,
		Username:  "bo1",
		AuthDate:  time.Now().Unix(),
	}
	claim.Hash = auth.SignWidgetPayload(claim.CheckFields(), testBotToken)
	return claim
}

func TestTelegramService_AuthenticateWidget(t *testing.T) {
	ctx := context.Background()

	t.Run("valid signature creates user", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		svc := newTelegramTestService(mockRepo)

		claim := signedWidgetClaim(555, "Bo")

		mockRepo.On("UpsertTelegramUser", mock.Anything,
			mock.MatchedBy(func(ident *model.TelegramIdentity) bool {
				return ident.ID == 555 && ident.FirstName == "Bo"
			}),
			mock.MatchedBy(func(email *string) bool {
				return email != nil && *email == "telegram_555@placeholder.local"
			}),
			mock.MatchedBy(func(hash *string) bool { return hash != nil })).
			Return(telegramUser(555, "Bo"), true, nil)

		result, err := svc.AuthenticateWidget(ctx, claim)
		require.NoError(t, err)
		assert.True(t, result.IsNewUser)
		assert.Equal(t, "Bo", result.User.Name)

		claims, err := auth.NewTokenManager(testSecret).Verify(result.Token)
		require.NoError(t, err)
		require.NotNil(t, claims.TelegramID)
		assert.Equal(t, int64(555), *claims.TelegramID)

		mockRepo.AssertExpectations(t)
	})

	t.Run("tampered hash rejected", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		svc := newTelegramTestService(mockRepo)

		claim := signedWidgetClaim(555, "Bo")
		claim.Hash = claim.Hash[:len(claim.Hash)-1] + "0"

		_, err := svc.AuthenticateWidget(ctx, claim)
		assert.ErrorIs(t, err, ErrInvalidSignature)
		mockRepo.AssertNotCalled(t, "UpsertTelegramUser",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payload change invalidates hash", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		svc := newTelegramTestService(mockRepo)

		claim := signedWidgetClaim(555, "Bo")
		claim.Username = "someone_else"

		_, err := svc.AuthenticateWidget(ctx, claim)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("missing first name", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		svc := newTelegramTestService(mockRepo)

		claim := signedWidgetClaim(555, "")

		_, err := svc.AuthenticateWidget(ctx, claim)
		assert.ErrorIs(t, err, ErrInvalidClaim)
	})
}

func TestTelegramService_AuthenticateWebhook(t *testing.T) {
	ctx := context.Background()

	// All three shapes carrying the same {id, first_name} must reconcile to
	// the same identity.
	shapes := map[string]string{
		"message":   `{"message":{"from":{"id":555,"first_name":"Bo"}}}`,
		"callback":  `{"callback_query":{"from":{"id":555,"first_name":"Bo"}}}`,
		"flattened": `{"id":555,"first_name":"Bo","auth_date":` + strconv.FormatInt(time.Now().Unix(), 10) + `}`,
	}

	for name, payload := range shapes {
		t.Run(name+" shape", func(t *testing.T) {
			mockRepo := &mocks.MockUserRepository{}
			svc := newTelegramTestService(mockRepo)

			var update model.WebhookUpdate
			require.NoError(t, gojson.Unmarshal([]byte(payload), &update))

			mockRepo.On("UpsertTelegramUser", mock.Anything,
				mock.MatchedBy(func(ident *model.TelegramIdentity) bool {
					return ident.ID == 555 && ident.FirstName == "Bo" && ident.AuthDate > 0
				}),
				(*string)(nil), (*string)(nil)).
				Return(telegramUser(555, "Bo"), true, nil)

			result, err := svc.AuthenticateWebhook(ctx, &update)
			require.NoError(t, err)
			assert.True(t, result.IsNewUser)
			assert.Contains(t, result.RedirectURL, "auth=telegram")
			assert.Contains(t, result.RedirectURL, "new=true")
			assert.Contains(t, result.RedirectURL, "token="+result.Token)

			mockRepo.AssertExpectations(t)
		})
	}

	t.Run("repeat claim updates instead of inserting", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		svc := newTelegramTestService(mockRepo)

		update := &model.WebhookUpdate{ID: 555, FirstName: "Bo", Username: "bo1"}

		mockRepo.On("UpsertTelegramUser", mock.Anything, mock.Anything,
			(*string)(nil), (*string)(nil)).
			Return(telegramUser(555, "Bo"), false, nil)

		result, err := svc.AuthenticateWebhook(ctx, update)
		require.NoError(t, err)
		assert.False(t, result.IsNewUser)
		assert.Contains(t, result.RedirectURL, "new=false")
	})

	t.Run("raced insert retried as update", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		svc := newTelegramTestService(mockRepo)

		update := &model.WebhookUpdate{ID: 555, FirstName: "Bo"}

		mockRepo.On("UpsertTelegramUser", mock.Anything, mock.Anything,
			(*string)(nil), (*string)(nil)).
			Return(nil, false, repository.ErrAlreadyExists).Once()
		mockRepo.On("UpsertTelegramUser", mock.Anything, mock.Anything,
			(*string)(nil), (*string)(nil)).
			Return(telegramUser(555, "Bo"), false, nil).Once()

		result, err := svc.AuthenticateWebhook(ctx, update)
		require.NoError(t, err)
		assert.False(t, result.IsNewUser)

		mockRepo.AssertExpectations(t)
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		svc := newTelegramTestService(mockRepo)

		_, err := svc.AuthenticateWebhook(ctx, &model.WebhookUpdate{})
		assert.ErrorIs(t, err, ErrInvalidClaim)
	})
}

func TestTelegramService_Simulate(t *testing.T) {
	mockRepo := &mocks.MockUserRepository{}
	svc := newTelegramTestService(mockRepo)

	mockRepo.On("UpsertTelegramUser", mock.Anything,
		mock.MatchedBy(func(ident *model.TelegramIdentity) bool {
			return ident.ID >= 1_000_000 && ident.ID < 2_000_000 &&
				ident.FirstName == "Test" && ident.LastName == "User"
		}),
		(*string)(nil), (*string)(nil)).
		Return(telegramUser(1_500_000, "Test User"), true, nil)

	result, err := svc.Simulate(context.Background())
	require.NoError(t, err)
	assert.True(t, result.IsNewUser)
	assert.NotEmpty(t, result.Token)

	mockRepo.AssertExpectations(t)
}
