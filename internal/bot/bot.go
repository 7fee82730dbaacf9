// Package bot implements the always-on command handler: it listens for /start
// and /auth, asks for an inline confirmation, and forwards the confirmed
// identity to the backend webhook endpoint. Every interaction is stateless
// request/response keyed by the ids in each update.
package bot

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"dashauth/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	callbackAuthConfirm = "auth_confirm"
	requestTimeout      = 10 * time.Second

	helpText = "Available commands:\n/auth — sign in to the dashboard\n/start — get started"
)

type Bot struct {
	api        *tgbotapi.BotAPI
	backendURL string
	client     *http.Client
}

func New(token, backendURL string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Logger().Info("bot authorized", zap.String("username", api.Self.UserName))

	return &Bot{
		api:        api,
		backendURL: backendURL,
		client:     &http.Client{Timeout: requestTimeout},
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	logger.Logger().Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				logger.Logger().Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if err := b.handleMessage(update.Message); err != nil {
				logger.Logger().Error("handle message", zap.Error(err))
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	switch msg.Command() {
	case "start":
		return b.sendConfirmPrompt(msg.Chat.ID,
			fmt.Sprintf("Hi, %s! 👋\n\nPress the button below to sign in to the dashboard:", msg.From.FirstName))
	case "auth":
		return b.sendConfirmPrompt(msg.Chat.ID, "Press the button to sign in:")
	default:
		reply := tgbotapi.NewMessage(msg.Chat.ID, helpText)
		_, err := b.api.Send(reply)
		return err
	}
}

func (b *Bot) sendConfirmPrompt(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm sign-in", callbackAuthConfirm),
		),
	)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.Data != callbackAuthConfirm || query.Message == nil || query.From == nil {
		return nil
	}

	chatID := query.Message.Chat.ID
	result, err := b.postClaim(ctx, query.From)
	if err != nil || !result.Success {
		if _, cbErr := b.api.Request(tgbotapi.NewCallback(query.ID, "❌ Sign-in failed")); cbErr != nil {
			logger.Logger().Error("answer callback", zap.Error(cbErr))
		}
		notice := tgbotapi.NewMessage(chatID, "❌ Something went wrong during sign-in. Please try again.")
		if _, sendErr := b.api.Send(notice); sendErr != nil {
			return sendErr
		}
		return err
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "✅ Signed in")); err != nil {
		logger.Logger().Error("answer callback", zap.Error(err))
	}

	text := fmt.Sprintf("✅ Welcome, %s!\n\nYou are signed in. Continue here:\n%s",
		query.From.FirstName, result.RedirectURL)
	_, err = b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

type identityClaim struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	AuthDate  int64  `json:"auth_date"`
}

type authResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url"`
	Error       string `json:"error"`
}

// postClaim forwards the confirmed identity to the backend webhook entry
// point in the flattened shape.
func (b *Bot) postClaim(ctx context.Context, from *tgbotapi.User) (*authResponse, error) {
	claim := identityClaim{
		ID:        from.ID,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		Username:  from.UserName,
		AuthDate:  time.Now().Unix(),
	}

	body, err := gojson.Marshal(claim)
	if err != nil {
		return nil, fmt.Errorf("marshal claim: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.backendURL+"/auth/telegram/webhook", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post claim: %w", err)
	}
	defer resp.Body.Close()

	var result authResponse
	if err := gojson.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !result.Success {
		return &result, fmt.Errorf("backend rejected claim: %s", result.Error)
	}

	return &result, nil
}
