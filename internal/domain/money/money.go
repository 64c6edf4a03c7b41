// Package money implementa un valor monetario exacto en unidades menores
// (centavos) atado a una moneda ISO 4217. Toda la aritmética es entera;
// nunca se usa punto flotante. Operar dos montos de monedas distintas es
// una violación de contrato y retorna ErrCurrencyMismatch.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ErrCurrencyMismatch indica aritmética entre monedas distintas. Es un bug
// del caller, no un error de validación de usuario: se trata como fatal.
var ErrCurrencyMismatch = errors.New("money: las monedas no coinciden")

// Money es inmutable: las operaciones devuelven un valor nuevo.
type Money struct {
	minor int64  // unidades menores (centavos)
	code  string // código ISO 4217 en mayúsculas, ej. "EUR"
}

// OfMinor construye un monto desde unidades menores. Valida el código ISO 4217.
func OfMinor(minor int64, code string) (Money, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Money{}, fmt.Errorf("money: moneda %q inválida: %w", code, err)
	}
	return Money{minor: minor, code: unit.String()}, nil
}

// MustOfMinor es OfMinor con panic; solo para constantes y tests.
func MustOfMinor(minor int64, code string) Money {
	m, err := OfMinor(minor, code)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero devuelve el monto cero de la moneda dada.
func Zero(code string) (Money, error) {
	return OfMinor(0, code)
}

// MinorUnits devuelve el monto en unidades menores.
func (m Money) MinorUnits() int64 { return m.minor }

// CurrencyCode devuelve el código ISO 4217.
func (m Money) CurrencyCode() string { return m.code }

// Add suma dos montos de la misma moneda.
func (m Money) Add(o Money) (Money, error) {
	if err := m.assertSameCurrency(o); err != nil {
		return Money{}, err
	}
	return Money{minor: m.minor + o.minor, code: m.code}, nil
}

// Subtract resta o de m (misma moneda).
func (m Money) Subtract(o Money) (Money, error) {
	if err := m.assertSameCurrency(o); err != nil {
		return Money{}, err
	}
	return Money{minor: m.minor - o.minor, code: m.code}, nil
}

// Max devuelve el mayor de los dos montos (misma moneda).
func (m Money) Max(o Money) (Money, error) {
	if err := m.assertSameCurrency(o); err != nil {
		return Money{}, err
	}
	if o.minor > m.minor {
		return o, nil
	}
	return m, nil
}

// IsZero indica si el monto es exactamente cero.
func (m Money) IsZero() bool { return m.minor == 0 }

// IsNegative indica si el monto es menor que cero.
func (m Money) IsNegative() bool { return m.minor < 0 }

// IsEqualTo compara monto y moneda.
func (m Money) IsEqualTo(o Money) bool {
	return m.minor == o.minor && m.code == o.code
}

// Sum suma todos los montos en la moneda destino. Con lista vacía devuelve
// el cero de esa moneda (cero calculado, no "sin calcular"); distinguir
// ambos casos es responsabilidad del caller.
func Sum(code string, amounts ...Money) (Money, error) {
	total, err := Zero(code)
	if err != nil {
		return Money{}, err
	}
	for _, a := range amounts {
		total, err = total.Add(a)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// Decimal devuelve el monto en unidades mayores como decimal exacto,
// usando la escala ISO 4217 de la moneda (2 para EUR, 0 para JPY).
// Solo para presentación; la aritmética del núcleo es siempre en menores.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minor, -int32(m.scale()))
}

// String formatea el monto para logs y PDFs, ej. "1250.00 EUR".
func (m Money) String() string {
	return m.Decimal().StringFixed(int32(m.scale())) + " " + m.code
}

func (m Money) scale() int {
	unit, err := currency.ParseISO(m.code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

func (m Money) assertSameCurrency(o Money) error {
	if m.code != o.code {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.code, o.code)
	}
	return nil
}
