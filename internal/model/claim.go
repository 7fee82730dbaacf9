package model

import (
	"errors"
	"strconv"
	"strings"
)

// ErrIncompleteIdentity is returned when a claim carries no telegram id or no
// first name, whichever shape it arrived in.
var ErrIncompleteIdentity = errors.New("telegram identity missing id or first_name")

// TelegramIdentity is the canonical record every inbound claim shape reduces
// to. The reconciler never sees the raw shapes.
type TelegramIdentity struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	PhotoURL  string
	AuthDate  int64
}

func (t *TelegramIdentity) validate() error {
	if t.ID == 0 || t.FirstName == "" {
		return ErrIncompleteIdentity
	}
	return nil
}

// FullName joins first and last name the way the users table stores it.
func (t *TelegramIdentity) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// WidgetClaim is the payload the browser login widget posts back. Hash is an
// HMAC-SHA256 over the remaining fields, keyed by SHA-256 of the bot token.
type WidgetClaim struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}

func (c *WidgetClaim) Identity() (*TelegramIdentity, error) {
	ident := &TelegramIdentity{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Username:  c.Username,
		PhotoURL:  c.PhotoURL,
		AuthDate:  c.AuthDate,
	}
	if err := ident.validate(); err != nil {
		return nil, err
	}
	return ident, nil
}

// CheckFields returns the non-empty signed fields as key/value pairs for hash
// verification.
func (c *WidgetClaim) CheckFields() map[string]string {
	fields := map[string]string{
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"username":   c.Username,
		"photo_url":  c.PhotoURL,
	}
	if c.ID != 0 {
		fields["id"] = strconv.FormatInt(c.ID, 10)
	}
	if c.AuthDate != 0 {
		fields["auth_date"] = strconv.FormatInt(c.AuthDate, 10)
	}
	return fields
}

type WebhookUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

type webhookEnvelope struct {
	From *WebhookUser `json:"from"`
}

// WebhookUpdate accepts the three shapes the webhook endpoint receives: a bot
// "message" update, a "callback_query" update, or the flattened identity the
// bot process forwards after a confirmed button press.
type WebhookUpdate struct {
	Message       *webhookEnvelope `json:"message"`
	CallbackQuery *webhookEnvelope `json:"callback_query"`

	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	AuthDate  int64  `json:"auth_date"`
}

// Identity normalizes whichever shape is present. AuthDate stays zero for the
// message and callback shapes; the reconciler stamps the current time then.
func (u *WebhookUpdate) Identity() (*TelegramIdentity, error) {
	var ident *TelegramIdentity

	switch {
	case u.Message != nil && u.Message.From != nil:
		from := u.Message.From
		ident = &TelegramIdentity{ID: from.ID, FirstName: from.FirstName, LastName: from.LastName, Username: from.Username}
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		from := u.CallbackQuery.From
		ident = &TelegramIdentity{ID: from.ID, FirstName: from.FirstName, LastName: from.LastName, Username: from.Username}
	default:
		ident = &TelegramIdentity{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Username:  u.Username,
			AuthDate:  u.AuthDate,
		}
	}

	if err := ident.validate(); err != nil {
		return nil, err
	}
	return ident, nil
}

// SimulatedClaim is the admin-triggered test identity used to exercise the
// upsert path without a Telegram round trip.
type SimulatedClaim struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	AuthDate  int64
}

func (c *SimulatedClaim) Identity() (*TelegramIdentity, error) {
	ident := &TelegramIdentity{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Username:  c.Username,
		AuthDate:  c.AuthDate,
	}
	if err := ident.validate(); err != nil {
		return nil, err
	}
	return ident, nil
}
