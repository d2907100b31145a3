package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDecimal_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"59.375", 5938},
		{"90.84375", 9084},
		{"0.005", 1},
		{"0.0049", 0},
		{"1187.5", 118750},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FromDecimal(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("25.00")
	require.NoError(t, err)
	assert.Equal(t, Cents(2500), c)

	c, err = Parse("25.10")
	require.NoError(t, err)
	assert.Equal(t, Cents(2510), c)

	_, err = Parse("25.001")
	assert.ErrorIs(t, err, ErrTooManyDecimals)

	_, err = Parse("abc")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCents_JSON(t *testing.T) {
	payload := struct {
		Amount Cents `json:"amount"`
	}{Amount: 79978}

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"799.78"}`, string(b))

	var fromNumber struct {
		Amount Cents `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":25}`), &fromNumber))
	assert.Equal(t, Cents(2500), fromNumber.Amount)

	var bad struct {
		Amount Cents `json:"amount"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1.999"}`), &bad))
}
