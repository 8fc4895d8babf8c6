package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("   \t"))
	assert.NoError(t, ValidateName(" Alex "))
}

func TestNewKeepsPrefill(t *testing.T) {
	m := New("Jane", 80, 24)
	assert.Equal(t, "Jane", m.name)
	assert.NotEmpty(t, m.View())
}
