package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeField(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"password field", "password", "mysecretpassword123", "myse***********d123"},
		{"passwd field", "passwd", "testpass", "t******s"},
		{"uppercase key", "PASSWORD", "SecretPass123", "Secr*****s123"},
		{"short secret", "pwd", "abc", "a*c"},
		{"very short secret", "pwd", "ab", "**"},
		{"empty secret", "password", "", ""},
		{"api key", "api_key", "sk-1234567890abcdefghij", "sk-1***************ghij"},
		{"authorization header", "Authorization", "Bearer token123456", "Bear**********3456"},
		{"database dsn", "database_dsn", "root:pw@tcp(db)/sd", "root**********)/sd"},
		{"email", "email", "dispatcher@utility.example", "dis***@utility.example"},
		{"short email", "contact_mail", "ab@utility.example", "a*@utility.example"},
		{"malformed email", "email", "not-an-email", "************"},
		{"plain field", "title", "Replace meter", "Replace meter"},
		{"customer id", "customer_id", "5f7c1c1e-6c8e-4d9a-9d43-0b6a0c6b8f21", "5f7c1c1e-6c8e-4d9a-9d43-0b6a0c6b8f21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeField(tt.key, tt.value))
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	for _, key := range []string{"password", "ApiKey", "refresh_token", "client_secret", "Authorization", "credentials"} {
		assert.True(t, IsSensitiveKey(key), key)
	}
	for _, key := range []string{"title", "status", "address", "planned_date_end"} {
		assert.False(t, IsSensitiveKey(key), key)
	}
}

func TestRedactPayload(t *testing.T) {
	payload := map[string]any{
		"work_order_id": "wo-1",
		"password":      "hunter2",
		"customer": map[string]any{
			"first_name": "Ada",
			"api_token":  "tok-123",
		},
		"attachments": []any{
			map[string]any{"name": "photo.jpg", "secret": "s3"},
			"plain",
		},
	}

	redacted := RedactPayload(payload)

	assert.Equal(t, "wo-1", redacted["work_order_id"])
	assert.Equal(t, RedactedValue, redacted["password"])

	customer := redacted["customer"].(map[string]any)
	assert.Equal(t, "Ada", customer["first_name"])
	assert.Equal(t, RedactedValue, customer["api_token"])

	attachments := redacted["attachments"].([]any)
	assert.Equal(t, RedactedValue, attachments[0].(map[string]any)["secret"])
	assert.Equal(t, "plain", attachments[1])

	// Input is untouched.
	assert.Equal(t, "hunter2", payload["password"])
	assert.Equal(t, "tok-123", payload["customer"].(map[string]any)["api_token"])
}

type credentials struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func TestRedactPayload_TypedValues(t *testing.T) {
	payload := map[string]any{
		"contact": map[string]string{"name": "Ada", "password": "hunter2"},
		"users":   []map[string]string{{"api_key": "AKIA123"}},
		"login":   credentials{User: "ada", Password: "pw-1"},
		"pointer": &credentials{User: "bob", Password: "pw-2"},
		"counts":  map[string]int{"open": 2},
		"status":  "new",
	}

	redacted := RedactPayload(payload)

	contact := redacted["contact"].(map[string]any)
	assert.Equal(t, "Ada", contact["name"])
	assert.Equal(t, RedactedValue, contact["password"])

	users := redacted["users"].([]any)
	assert.Equal(t, RedactedValue, users[0].(map[string]any)["api_key"])

	login := redacted["login"].(map[string]any)
	assert.Equal(t, "ada", login["user"])
	assert.Equal(t, RedactedValue, login["password"])
	assert.Equal(t, RedactedValue, redacted["pointer"].(map[string]any)["password"])

	assert.Equal(t, map[string]any{"open": float64(2)}, redacted["counts"])
	assert.Equal(t, "new", redacted["status"])

	assert.Equal(t, "hunter2", payload["contact"].(map[string]string)["password"])
}

func TestRedactPayload_UnencodableValue(t *testing.T) {
	redacted := RedactPayload(map[string]any{
		"hooks": map[string]any{"notify": []func(){func() {}}},
	})

	hooks := redacted["hooks"].(map[string]any)
	assert.Equal(t, RedactedValue, hooks["notify"])
}

func TestRedactPayload_Nil(t *testing.T) {
	assert.Nil(t, RedactPayload(nil))
}
