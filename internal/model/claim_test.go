package model

import (
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookUpdate_Identity(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    TelegramIdentity
		wantErr bool
	}{
		{
			name:    "message shape",
			payload: `{"message":{"from":{"id":555,"first_name":"Bo","last_name":"B","username":"bo1"}}}`,
			want:    TelegramIdentity{ID: 555, FirstName: "Bo", LastName: "B", Username: "bo1"},
		},
		{
			name:    "callback query shape",
			payload: `{"callback_query":{"from":{"id":555,"first_name":"Bo","username":"bo1"}}}`,
			want:    TelegramIdentity{ID: 555, FirstName: "Bo", Username: "bo1"},
		},
		{
			name:    "flattened shape",
			payload: `{"id":555,"first_name":"Bo","last_name":"B","auth_date":1700000000}`,
			want:    TelegramIdentity{ID: 555, FirstName: "Bo", LastName: "B", AuthDate: 1700000000},
		},
		{
			name:    "message without from",
			payload: `{"message":{"text":"hello"}}`,
			wantErr: true,
		},
		{
			name:    "missing first name",
			payload: `{"id":555}`,
			wantErr: true,
		},
		{
			name:    "missing id",
			payload: `{"first_name":"Bo"}`,
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var update WebhookUpdate
			require.NoError(t, gojson.Unmarshal([]byte(tt.payload), &update))

			ident, err := update.Identity()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncompleteIdentity)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, *ident)
		})
	}
}

func TestTelegramIdentity_FullName(t *testing.T) {
	tests := []struct {
		name  string
		ident TelegramIdentity
		want  string
	}{
		{name: "first and last", ident: TelegramIdentity{FirstName: "Bo", LastName: "B"}, want: "Bo B"},
		{name: "first only", ident: TelegramIdentity{FirstName: "Bo"}, want: "Bo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ident.FullName())
		})
	}
}

func TestWidgetClaim_Identity(t *testing.T) {
	claim := &WidgetClaim{
		ID:        555,
		FirstName: "Bo",
		Username:  "bo1",
		PhotoURL:  "https://t.me/i/userpic/320/bo1.jpg",
		AuthDate:  1700000000,
		Hash:      "deadbeef",
	}

	ident, err := claim.Identity()
	require.NoError(t, err)
	assert.Equal(t, int64(555), ident.ID)
	assert.Equal(t, "bo1", ident.Username)
	assert.Equal(t, claim.PhotoURL, ident.PhotoURL)

	t.Run("check fields exclude hash and empty values", func(t *testing.T) {
		fields := claim.CheckFields()
		assert.NotContains(t, fields, "hash")
		assert.Equal(t, "555", fields["id"])
		assert.Equal(t, "", fields["last_name"])
	})

	t.Run("incomplete claim", func(t *testing.T) {
		_, err := (&WidgetClaim{ID: 555}).Identity()
		assert.ErrorIs(t, err, ErrIncompleteIdentity)
	})
}
