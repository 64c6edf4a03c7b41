package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

func TestOfMinor_MonedaInvalida(t *testing.T) {
	_, err := money.OfMinor(100, "EURO")
	assert.Error(t, err, "un código que no es ISO 4217 debe rechazarse")

	_, err = money.OfMinor(100, "")
	assert.Error(t, err)
}

func TestSum_ListaYVacia(t *testing.T) {
	total, err := money.Sum("EUR", money.MustOfMinor(100, "EUR"), money.MustOfMinor(250, "EUR"))
	require.NoError(t, err)
	assert.Equal(t, int64(350), total.MinorUnits())
	assert.Equal(t, "EUR", total.CurrencyCode())

	// Lista vacía: cero definido en la moneda destino, nunca "sin valor".
	empty, err := money.Sum("EUR")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
	assert.Equal(t, "EUR", empty.CurrencyCode())
}

func TestAritmetica_MonedasDistintas(t *testing.T) {
	eur, err := money.Sum("EUR", money.MustOfMinor(100, "EUR"))
	require.NoError(t, err)
	usd := money.MustOfMinor(150, "USD")

	_, err = eur.Subtract(usd)
	require.ErrorIs(t, err, money.ErrCurrencyMismatch,
		"restar USD de EUR jamás debe producir un resultado numérico")

	_, err = eur.Add(usd)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	_, err = eur.Max(usd)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	_, err = money.Sum("EUR", usd)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestMax(t *testing.T) {
	a := money.MustOfMinor(-50, "EUR")
	zero := money.MustOfMinor(0, "EUR")

	clamped, err := zero.Max(a)
	require.NoError(t, err)
	assert.True(t, clamped.IsZero(), "max(0, -50) debe ser 0")

	b := money.MustOfMinor(70, "EUR")
	top, err := zero.Max(b)
	require.NoError(t, err)
	assert.Equal(t, int64(70), top.MinorUnits())
}

func TestComparaciones(t *testing.T) {
	a := money.MustOfMinor(100, "EUR")
	b := money.MustOfMinor(100, "EUR")
	c := money.MustOfMinor(100, "USD")

	assert.True(t, a.IsEqualTo(b))
	assert.False(t, a.IsEqualTo(c), "mismo monto en otra moneda no es igual")
	assert.False(t, a.IsZero())
	assert.True(t, money.MustOfMinor(-1, "EUR").IsNegative())
}

func TestDecimal_EscalaPorMoneda(t *testing.T) {
	eur := money.MustOfMinor(125000, "EUR")
	assert.Equal(t, "1250.00 EUR", eur.String())

	// JPY no tiene unidades menores (escala 0).
	jpy := money.MustOfMinor(1250, "JPY")
	assert.Equal(t, "1250 JPY", jpy.String())
}
