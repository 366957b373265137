package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsValidComponentText(t *testing.T) {
	assert.True(t, IsValidComponentText("Ryzen 5 3600"))
	assert.True(t, IsValidComponentText("Kingston FURY Beast RGB (2x8GB)"))
	assert.False(t, IsValidComponentText(""))
	assert.False(t, IsValidComponentText(" padded"))
	assert.False(t, IsValidComponentText("Corsair, Inc"))
	assert.False(t, IsValidComponentText("tab\there"))
}

func TestIsValidMoney(t *testing.T) {
	assert.True(t, IsValidMoney(decimal.Zero))
	assert.True(t, IsValidMoney(decimal.RequireFromString("12.50")))
	assert.False(t, IsValidMoney(decimal.NewFromInt(-1)))
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate(""))
	assert.True(t, IsValidDate("2024-11-02"))
	assert.True(t, IsValidDate("02/11/2024"))
	assert.False(t, IsValidDate("yesterday"))
	assert.False(t, IsValidDate("2024-13-01"))
}

func TestIsValidSpecKey(t *testing.T) {
	assert.True(t, IsValidSpecKey("clock_speed"))
	assert.False(t, IsValidSpecKey("Clock Speed"))
	assert.False(t, IsValidSpecKey(""))
}
