package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyName(t *testing.T) {
	assert.Equal(t, "gemini-api-key", APIKeyName("gemini"))
	assert.Equal(t, "anthropic-api-key", APIKeyName("anthropic"))
}

func TestLookupAPIKeyPrefersProviderVariable(t *testing.T) {
	t.Setenv("API_KEY", "generic")
	t.Setenv("GEMINI_API_KEY", "gemini-specific")
	t.Setenv("GOOGLE_API_KEY", "")

	assert.Equal(t, "gemini-specific", LookupAPIKey("gemini"))
}

func TestLookupAPIKeyFallsBackToGenericVariable(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("API_KEY", "generic")

	assert.Equal(t, "generic", LookupAPIKey("anthropic"))
}
