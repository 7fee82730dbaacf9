package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func widgetFields() map[string]string {
	return map[string]string{
		"id":         "555",
		"first_name": "Bo",
		"last_name":  "",
		"username":   "bo1",
		"photo_url":  "https://t.me/i/userpic/320/bo1.jpg",
		"auth_date":  "1700000000",
	}
}

func TestVerifyWidgetHash(t *testing.T) {
	const botToken = "12345:TEST-BOT-TOKEN"

	t.Run("round trip", func(t *testing.T) {
		fields := widgetFields()
		hash := SignWidgetPayload(fields, botToken)
		assert.True(t, VerifyWidgetHash(fields, hash, botToken))
	})

	t.Run("tampered field", func(t *testing.T) {
		fields := widgetFields()
		hash := SignWidgetPayload(fields, botToken)

		fields["id"] = "556"
		assert.False(t, VerifyWidgetHash(fields, hash, botToken))
	})

	t.Run("tampered hash", func(t *testing.T) {
		fields := widgetFields()
		hash := SignWidgetPayload(fields, botToken)
		assert.False(t, VerifyWidgetHash(fields, hash[:len(hash)-1]+"0", botToken))
	})

	t.Run("empty hash", func(t *testing.T) {
		assert.False(t, VerifyWidgetHash(widgetFields(), "", botToken))
	})

	t.Run("different bot token", func(t *testing.T) {
		fields := widgetFields()
		hash := SignWidgetPayload(fields, botToken)
		assert.False(t, VerifyWidgetHash(fields, hash, "999:OTHER-TOKEN"))
	})

	t.Run("empty optional fields do not affect the hash", func(t *testing.T) {
		fields := widgetFields()
		hash := SignWidgetPayload(fields, botToken)

		delete(fields, "last_name")
		assert.True(t, VerifyWidgetHash(fields, hash, botToken))
	})
}
