package waitlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestValidateEmail(t *testing.T) {
	t.Run("empty email is rejected", func(t *testing.T) {
		result := ValidateEmail("", language.Spanish)

		assert.False(t, result.IsValid)
		assert.Equal(t, "El email es requerido", result.Message)
	})

	t.Run("minimal valid address is accepted", func(t *testing.T) {
		result := ValidateEmail("a@b.c", language.Spanish)

		assert.True(t, result.IsValid)
		assert.Empty(t, result.Message)
	})

	t.Run("disposable domain is rejected", func(t *testing.T) {
		result := ValidateEmail("x@mailinator.com", language.Spanish)

		assert.False(t, result.IsValid)
		assert.Equal(t, "Por favor usa un email permanente", result.Message)
	})

	t.Run("disposable check is case-insensitive on the domain", func(t *testing.T) {
		result := ValidateEmail("x@Mailinator.COM", language.English)

		assert.False(t, result.IsValid)
	})

	t.Run("overlong email is rejected", func(t *testing.T) {
		long := strings.Repeat("a", 250) + "@b.co"

		result := ValidateEmail(long, language.English)

		assert.False(t, result.IsValid)
		assert.Equal(t, "Email is too long", result.Message)
	})

	t.Run("malformed addresses are rejected", func(t *testing.T) {
		for _, email := range []string{"plainaddress", "missing@tld", "two@@a.com", "spaces in@x.com", "@nodomain.com"} {
			result := ValidateEmail(email, language.English)
			assert.False(t, result.IsValid, "expected %q to be invalid", email)
		}
	})

	t.Run("error messages follow the locale", func(t *testing.T) {
		es := ValidateEmail("", language.Spanish)
		en := ValidateEmail("", language.English)

		assert.Equal(t, "El email es requerido", es.Message)
		assert.Equal(t, "Email is required", en.Message)
	})
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Ann", SanitizeInput("  Ann  "))
	assert.Equal(t, "scriptalert(1)/script", SanitizeInput("<script>alert(1)</script>"))
	assert.Equal(t, "", SanitizeInput("   "))
}

func TestExtractNameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"john.doe@x.com", "John Doe"},
		{"jane_smith@example.com", "Jane Smith"},
		{"bob-ross@example.com", "Bob Ross"},
		{"ALLCAPS@example.com", "Allcaps"},
		{"solo@example.com", "Solo"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractNameFromEmail(tt.email), "email %q", tt.email)
	}
}
