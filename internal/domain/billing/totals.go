// Package billing contiene los cálculos puros del núcleo de facturación:
// totales de factura y desglose de IVA. No persiste ni emite eventos; eso
// lo orquesta la capa de aplicación.
package billing

import (
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

// Totals es el resultado de recalcular una factura.
//
// Los punteros nil significan "no calculable" (factura sin líneas), que es
// distinto de cero calculado. RecentlyPaid marca la transición no-pagada →
// pagada de ESTA llamada: el caller emite el evento InvoicePaid exactamente
// una vez por transición, nunca una vez por pago.
type Totals struct {
	TotalVatInclusive *money.Money
	TotalVatExclusive *money.Money
	TotalToPay        *money.Money
	RemainingToPay    *money.Money
	Paid              bool
	RecentlyPaid      bool
}

// CalculateTotals deriva los totales y el estado de pago de la factura a
// partir de sus líneas y pagos activos. Es una función pura e idempotente:
// con los mismos inputs produce el mismo resultado y RecentlyPaid solo se
// enciende si la factura aún no estaba marcada como pagada.
func CalculateTotals(inv *entity.Invoice, lines []*entity.InvoiceLine, payments []*entity.Payment) (Totals, error) {
	t := Totals{Paid: inv.Paid}

	inclusive, exclusive, any, err := sumLineTotals(inv.Currency, lines)
	if err != nil {
		return Totals{}, err
	}
	if !any {
		// Sin líneas con totales no hay nada que cobrar ni contra qué
		// comparar pagos: los totales quedan nil y Paid no se toca.
		return t, nil
	}
	t.TotalVatInclusive = inclusive
	t.TotalVatExclusive = exclusive

	// Con IVA deshabilitado o con transferencia de carga impositiva
	// (reverse charge) se cobra el total sin IVA.
	if !inv.VatEnabled || inv.VatReverseCharge {
		t.TotalToPay = exclusive
	} else {
		t.TotalToPay = inclusive
	}

	paidAmount, err := sumActivePayments(inv.Currency, payments)
	if err != nil {
		return Totals{}, err
	}
	outstanding, err := t.TotalToPay.Subtract(paidAmount)
	if err != nil {
		return Totals{}, err
	}
	zero, err := money.Zero(inv.Currency)
	if err != nil {
		return Totals{}, err
	}
	// Sobrepagos se absorben: el saldo se fija en cero y no se modela un
	// estado "overpaid".
	remaining, err := zero.Max(outstanding)
	if err != nil {
		return Totals{}, err
	}
	t.RemainingToPay = &remaining

	if remaining.IsZero() && !inv.Paid {
		t.Paid = true
		t.RecentlyPaid = true
	} else if !remaining.IsZero() && inv.Paid {
		t.Paid = false
	}

	return t, nil
}

// sumLineTotals suma los totales derivables de las líneas. any indica si al
// menos una línea aportó totales; con any == false ambos montos son nil.
func sumLineTotals(currency string, lines []*entity.InvoiceLine) (inclusive, exclusive *money.Money, any bool, err error) {
	var inc, exc []money.Money
	for _, line := range lines {
		if t := line.TotalPriceVatInclusive(); t != nil {
			inc = append(inc, *t)
		}
		if t := line.TotalPriceVatExclusive(); t != nil {
			exc = append(exc, *t)
		}
	}
	if len(inc) == 0 && len(exc) == 0 {
		return nil, nil, false, nil
	}
	incSum, err := money.Sum(currency, inc...)
	if err != nil {
		return nil, nil, false, err
	}
	excSum, err := money.Sum(currency, exc...)
	if err != nil {
		return nil, nil, false, err
	}
	return &incSum, &excSum, true, nil
}

func sumActivePayments(currency string, payments []*entity.Payment) (money.Money, error) {
	var amounts []money.Money
	for _, p := range payments {
		if p.IsActive() {
			amounts = append(amounts, p.Amount)
		}
	}
	return money.Sum(currency, amounts...)
}
