package billing

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

// VatBreakdownLine es una fila del desglose de IVA: base imponible y monto
// de IVA acumulados para una tasa.
type VatBreakdownLine struct {
	Rate      decimal.Decimal
	Base      money.Money
	VatAmount money.Money
}

// VatBreakdown agrupa las líneas con tasa de IVA por tasa y acumula base y
// monto de IVA por grupo, ordenado ascendente por tasa. Es una proyección de
// solo lectura para presentación; no participa en la ruta de mutación.
//
// Líneas sin tasa o sin totales derivables se omiten por completo (no se
// tratan como tasa cero). Con VatEnabled == false el desglose es vacío:
// el IVA es inaplicable, no cero.
func VatBreakdown(inv *entity.Invoice, lines []*entity.InvoiceLine) ([]VatBreakdownLine, error) {
	if !inv.VatEnabled {
		return nil, nil
	}

	type group struct {
		rate      decimal.Decimal
		inclusive []money.Money
		exclusive []money.Money
	}
	groups := make(map[string]*group)

	for _, line := range lines {
		if line.VatRate == nil {
			continue
		}
		inclusive := line.TotalPriceVatInclusive()
		exclusive := line.TotalPriceVatExclusive()
		if inclusive == nil || exclusive == nil {
			continue
		}
		key := line.VatRate.String()
		g, ok := groups[key]
		if !ok {
			g = &group{rate: *line.VatRate}
			groups[key] = g
		}
		g.inclusive = append(g.inclusive, *inclusive)
		g.exclusive = append(g.exclusive, *exclusive)
	}

	zero, err := money.Zero(inv.Currency)
	if err != nil {
		return nil, err
	}

	out := make([]VatBreakdownLine, 0, len(groups))
	for _, g := range groups {
		inclusiveSum, err := money.Sum(inv.Currency, g.inclusive...)
		if err != nil {
			return nil, err
		}
		exclusiveSum, err := money.Sum(inv.Currency, g.exclusive...)
		if err != nil {
			return nil, err
		}
		vat, err := inclusiveSum.Subtract(exclusiveSum)
		if err != nil {
			return nil, err
		}
		vat, err = zero.Max(vat)
		if err != nil {
			return nil, err
		}
		base, err := zero.Max(exclusiveSum)
		if err != nil {
			return nil, err
		}
		out = append(out, VatBreakdownLine{Rate: g.rate, Base: base, VatAmount: vat})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Rate.LessThan(out[j].Rate)
	})
	return out, nil
}

// VatAmount devuelve el IVA total de la factura: inclusive − exclusive.
// nil cuando el IVA es inaplicable (VatEnabled false); cero de la moneda
// cuando los totales aún no se calcularon.
func VatAmount(inv *entity.Invoice) (*money.Money, error) {
	if !inv.VatEnabled {
		return nil, nil
	}
	if inv.TotalVatInclusive != nil && inv.TotalVatExclusive != nil {
		vat, err := inv.TotalVatInclusive.Subtract(*inv.TotalVatExclusive)
		if err != nil {
			return nil, err
		}
		return &vat, nil
	}
	zero, err := money.Zero(inv.Currency)
	if err != nil {
		return nil, err
	}
	return &zero, nil
}
