package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrasoft/gestion-api/pkg/money"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0,00"},
		{"1234.5", "1.234,50"},
		{"1234567.89", "1.234.567,89"},
		{"999", "999,00"},
		{"1000", "1.000,00"},
		{"-1234.5", "-1.234,50"},
		{"0.05", "0,05"},
		{"12.345", "12,35"}, // redondeo a dos decimales
	}
	for _, c := range cases {
		assert.Equal(t, c.want, money.FormatAmount(dec(t, c.in)), "formato de %s", c.in)
	}
}

func TestParseAmount(t *testing.T) {
	d, err := money.ParseAmount("1.234,50")
	require.NoError(t, err)
	assert.True(t, dec(t, "1234.50").Equal(d))

	d, err = money.ParseAmount("-1.234.567,89")
	require.NoError(t, err)
	assert.True(t, dec(t, "-1234567.89").Equal(d))

	// Sin separador de miles también es válido
	d, err = money.ParseAmount("999,00")
	require.NoError(t, err)
	assert.True(t, dec(t, "999").Equal(d))
}

func TestParseAmount_EntradaInvalida(t *testing.T) {
	for _, s := range []string{"", "   ", "abc", "12a,00", "--5"} {
		_, err := money.ParseAmount(s)
		assert.ErrorIs(t, err, money.ErrInvalidAmount, "entrada %q debe fallar", s)
	}
}

// Ley de ida y vuelta: ParseAmount(FormatAmount(x)) == x para valores de dos decimales.
func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "1234.50", "999999.99", "-42.10", "1000000"} {
		x := dec(t, s)
		got, err := money.ParseAmount(money.FormatAmount(x))
		require.NoError(t, err)
		assert.True(t, x.Equal(got), "round-trip de %s: obtuvo %s", s, got)
	}
}

func TestFormatAmountAny_NuncaFalla(t *testing.T) {
	assert.Equal(t, "0,00", money.FormatAmountAny(nil))
	assert.Equal(t, "0,00", money.FormatAmountAny("texto"))
	assert.Equal(t, "0,00", money.FormatAmountAny(struct{}{}))
	assert.Equal(t, "1.234,50", money.FormatAmountAny("1.234,50"))
	assert.Equal(t, "7,00", money.FormatAmountAny(7))
	assert.Equal(t, "2,50", money.FormatAmountAny(2.5))
}

func TestParseAmountOrZero(t *testing.T) {
	assert.True(t, money.ParseAmountOrZero("").IsZero())
	assert.True(t, money.ParseAmountOrZero("n/a").IsZero())
	assert.True(t, dec(t, "15.30").Equal(money.ParseAmountOrZero("15,30")))
}
