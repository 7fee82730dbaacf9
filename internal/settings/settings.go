// Package settings persists the Telegram bot credentials outside the primary
// relation, in a viper-managed yaml file the admin endpoints read and write.
package settings

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
)

const (
	keyBotToken          = "telegram.botToken"
	keyBotUsername       = "telegram.botUsername"
	keyPublicBotUsername = "telegram.publicBotUsername"
)

type BotSettings struct {
	BotToken          string `json:"botToken"`
	BotUsername       string `json:"botUsername"`
	PublicBotUsername string `json:"publicBotUsername"`
}

// Store owns the settings file. All access goes through the mutex; the admin
// save path and the reconciler's token lookups race otherwise.
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string
}

func NewStore(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		// Missing file is fine: settings start empty until the admin saves.
	}

	return &Store{v: v, path: path}, nil
}

func (s *Store) Get() BotSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return BotSettings{
		BotToken:          s.v.GetString(keyBotToken),
		BotUsername:       s.v.GetString(keyBotUsername),
		PublicBotUsername: s.v.GetString(keyPublicBotUsername),
	}
}

func (s *Store) BotToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetString(keyBotToken)
}

// Save persists the token and username. The public copy of the username
// mirrors the private one, matching what the login widget embeds client-side.
func (s *Store) Save(botToken, botUsername string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(keyBotToken, botToken)
	s.v.Set(keyBotUsername, botUsername)
	s.v.Set(keyPublicBotUsername, botUsername)

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
