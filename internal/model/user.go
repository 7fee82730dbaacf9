package model

import "time"

const (
	AuthMethodEmail    = "email"
	AuthMethodTelegram = "telegram"
)

type User struct {
	ID                int64
	Email             *string
	PasswordHash      *string
	Name              string
	TelegramID        *int64
	TelegramUsername  *string
	TelegramFirstName *string
	TelegramLastName  *string
	TelegramPhotoURL  *string
	AuthMethod        string
	CreatedAt         time.Time
}

// PublicUser is the projection safe to return to clients. The password hash
// never leaves the service layer.
type PublicUser struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email,omitempty"`
	Name              string    `json:"name"`
	TelegramID        *int64    `json:"telegram_id,omitempty"`
	TelegramUsername  string    `json:"telegram_username,omitempty"`
	TelegramFirstName string    `json:"telegram_first_name,omitempty"`
	TelegramPhotoURL  string    `json:"telegram_photo_url,omitempty"`
	AuthMethod        string    `json:"auth_method"`
	CreatedAt         time.Time `json:"created_at"`
}

func (u *User) Public() *PublicUser {
	p := &PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		TelegramID: u.TelegramID,
		AuthMethod: u.AuthMethod,
		CreatedAt:  u.CreatedAt,
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.TelegramUsername != nil {
		p.TelegramUsername = *u.TelegramUsername
	}
	if u.TelegramFirstName != nil {
		p.TelegramFirstName = *u.TelegramFirstName
	}
	if u.TelegramPhotoURL != nil {
		p.TelegramPhotoURL = *u.TelegramPhotoURL
	}
	return p
}

// UserListing is the row shape of the admin users table.
type UserListing struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
