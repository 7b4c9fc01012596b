package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateProductInput(t *testing.T) {
	fields := ValidateProductInput("A good movie", "short description", 12.5)
	assert.Empty(t, fields)

	fields = ValidateProductInput("ab", strings.Repeat("x", DescriptionMaxLen+1), -1)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "description")
	assert.Contains(t, fields, "price")
}

func TestValidateProductInputTrimsTitle(t *testing.T) {
	fields := ValidateProductInput("  a  ", "", 0)
	assert.Contains(t, fields, "title")
}
