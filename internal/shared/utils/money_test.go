package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	got := FormatPrice(decimal.RequireFromString("12.5"), "GBP")
	assert.Contains(t, got, "12.50")

	assert.Equal(t, "3.10 ZZZZ", FormatPrice(decimal.RequireFromString("3.1"), "ZZZZ"))
}
