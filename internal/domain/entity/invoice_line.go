package entity

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

// InvoiceLine representa una línea de la factura. Pertenece en exclusiva a
// su factura y se elimina con ella.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   *money.Money
	VatRate     *decimal.Decimal // porcentaje (ej. 20); nil = línea sin IVA
	Position    int
}

// TotalPriceVatExclusive deriva el total sin IVA (cantidad × precio unitario),
// redondeado half-up a unidades menores. nil si falta el precio unitario.
func (l *InvoiceLine) TotalPriceVatExclusive() *money.Money {
	if l.UnitPrice == nil {
		return nil
	}
	minor := decimal.NewFromInt(l.UnitPrice.MinorUnits()).
		Mul(l.Quantity).
		Round(0).
		IntPart()
	total := money.MustOfMinor(minor, l.UnitPrice.CurrencyCode())
	return &total
}

// TotalPriceVatInclusive deriva el total con IVA aplicando la tasa de la
// línea sobre el total sin IVA. Con VatRate nil el total coincide con el
// exclusivo. nil si el total exclusivo no es derivable.
func (l *InvoiceLine) TotalPriceVatInclusive() *money.Money {
	exclusive := l.TotalPriceVatExclusive()
	if exclusive == nil {
		return nil
	}
	if l.VatRate == nil {
		return exclusive
	}
	factor := decimal.NewFromInt(1).Add(l.VatRate.Div(decimal.NewFromInt(100)))
	minor := decimal.NewFromInt(exclusive.MinorUnits()).
		Mul(factor).
		Round(0).
		IntPart()
	total := money.MustOfMinor(minor, exclusive.CurrencyCode())
	return &total
}
