package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBot_PostClaim(t *testing.T) {
	from := &tgbotapi.User{
		ID:        555,
		FirstName: "Bo",
		LastName:  "B",
		UserName:  "bo1",
	}

	t.Run("forwards the flattened identity", func(t *testing.T) {
		var received identityClaim

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/auth/telegram/webhook", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			require.NoError(t, gojson.NewDecoder(r.Body).Decode(&received))

			gojson.NewEncoder(w).Encode(authResponse{
				Success:     true,
				Message:     "User logged in successfully",
				RedirectURL: "http://localhost:8080?token=abc&auth=telegram&new=false",
			})
		}))
		defer srv.Close()

		b := &Bot{backendURL: srv.URL, client: srv.Client()}

		result, err := b.postClaim(context.Background(), from)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Contains(t, result.RedirectURL, "auth=telegram")

		assert.Equal(t, int64(555), received.ID)
		assert.Equal(t, "Bo", received.FirstName)
		assert.Equal(t, "B", received.LastName)
		assert.Equal(t, "bo1", received.Username)
		assert.InDelta(t, time.Now().Unix(), received.AuthDate, 5)
	})

	t.Run("backend rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			gojson.NewEncoder(w).Encode(authResponse{Error: "invalid webhook format"})
		}))
		defer srv.Close()

		b := &Bot{backendURL: srv.URL, client: srv.Client()}

		result, err := b.postClaim(context.Background(), from)
		require.Error(t, err)
		require.NotNil(t, result)
		assert.False(t, result.Success)
		assert.Contains(t, err.Error(), "invalid webhook format")
	})

	t.Run("unreachable backend", func(t *testing.T) {
		b := &Bot{backendURL: "http://127.0.0.1:1", client: &http.Client{Timeout: time.Second}}

		_, err := b.postClaim(context.Background(), from)
		assert.Error(t, err)
	})
}
