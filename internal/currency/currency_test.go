package currency

import (
	"testing"

	bcurrency "github.com/bojanz/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISO4217_Lookup(t *testing.T) {
	tbl := ISO4217()

	tests := []struct {
		alpha   string
		numeric string
		code    int
	}{
		{"RUB", "643", 643},
		{"USD", "840", 840},
		{"EUR", "978", 978},
		{"ALL", "008", 8},
		{"rub", "643", 643},
		{" kzt ", "398", 398},
	}

	for _, tt := range tests {
		t.Run(tt.alpha, func(t *testing.T) {
			c, err := tbl.Lookup(tt.alpha)
			require.NoError(t, err)
			assert.Equal(t, tt.numeric, c.Numeric)
			assert.Equal(t, tt.code, c.Code)
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		_, err := tbl.Lookup("XYZ")
		assert.ErrorIs(t, err, ErrUnknownCode)
		assert.Contains(t, err.Error(), "XYZ")
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := tbl.Lookup("")
		assert.ErrorIs(t, err, ErrUnknownCode)
	})
}

func TestISO4217_Consistency(t *testing.T) {
	tbl := ISO4217()
	codes := bcurrency.GetCurrencyCodes()
	require.NotEmpty(t, codes)

	for _, alpha := range codes {
		c, err := tbl.Lookup(alpha)
		if !assert.NoError(t, err, alpha) {
			continue
		}
		assert.Equal(t, alpha, c.Alpha)
		assert.Len(t, c.Numeric, 3, alpha)
		assert.NotZero(t, c.Code, alpha)
	}
}

func TestNew(t *testing.T) {
	tbl := New(Currency{Alpha: "tst", Numeric: "001"})

	c, err := tbl.Lookup("TST")
	require.NoError(t, err)
	assert.Equal(t, "TST", c.Alpha)
	assert.Equal(t, 1, c.Code)

	_, err = tbl.Lookup("RUB")
	assert.ErrorIs(t, err, ErrUnknownCode)

	t.Run("InvalidNumeric", func(t *testing.T) {
		tbl := New(
			Currency{Alpha: "AAA", Numeric: "abc"},
			Currency{Alpha: "BBB", Numeric: "12"},
			Currency{Alpha: "CCC", Numeric: "000"},
			Currency{Alpha: "DDD", Numeric: ""},
		)
		for _, alpha := range []string{"AAA", "BBB", "CCC", "DDD"} {
			_, err := tbl.Lookup(alpha)
			assert.ErrorIs(t, err, ErrInvalidNumeric, alpha)
		}
	})
}
