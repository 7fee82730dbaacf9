// Package botapi wraps the outbound Telegram Bot API surface the admin
// configuration flow needs. Callers construct a client per token, so an
// invalid token fails at construction.
package botapi

import (
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Fixed timeout so a dead upstream cannot hang a request indefinitely.
const requestTimeout = 10 * time.Second

type BotInfo struct {
	ID       int64
	Username string
}

type WebhookInfo struct {
	URL string
}

type Command struct {
	Command     string
	Description string
}

type Client interface {
	Self() BotInfo
	SetWebhook(url string) error
	GetWebhookInfo() (WebhookInfo, error)
	SetCommands(commands []Command) error
	SetDescription(description string) error
}

// Factory builds a client for a token. An error means the token was rejected
// by the getMe call the underlying library performs on construction.
type Factory func(token string) (Client, error)

type client struct {
	api *tgbotapi.BotAPI
}

func New(token string) (Client, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{
		Timeout: requestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot: %w", err)
	}
	return &client{api: api}, nil
}

func (c *client) Self() BotInfo {
	return BotInfo{
		ID:       c.api.Self.ID,
		Username: c.api.Self.UserName,
	}
}

func (c *client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	wh.MaxConnections = 1
	wh.DropPendingUpdates = true

	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("setWebhook failed: %w", err)
	}
	return nil
}

func (c *client) GetWebhookInfo() (WebhookInfo, error) {
	info, err := c.api.GetWebhookInfo()
	if err != nil {
		return WebhookInfo{}, fmt.Errorf("getWebhookInfo failed: %w", err)
	}
	return WebhookInfo{URL: info.URL}, nil
}

func (c *client) SetCommands(commands []Command) error {
	cmds := make([]tgbotapi.BotCommand, len(commands))
	for i, cmd := range commands {
		cmds[i] = tgbotapi.BotCommand{Command: cmd.Command, Description: cmd.Description}
	}

	if _, err := c.api.Request(tgbotapi.NewSetMyCommands(cmds...)); err != nil {
		return fmt.Errorf("setMyCommands failed: %w", err)
	}
	return nil
}

func (c *client) SetDescription(description string) error {
	// The library has no helper for setMyDescription yet.
	params := tgbotapi.Params{"description": description}
	if _, err := c.api.MakeRequest("setMyDescription", params); err != nil {
		return fmt.Errorf("setMyDescription failed: %w", err)
	}
	return nil
}
