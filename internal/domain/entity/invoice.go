package entity

import (
	"time"

	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

// Invoice representa la cabecera de una factura.
//
// Los totales son punteros: nil significa "aún no calculado" (sin líneas),
// que NO es lo mismo que cero. El ciclo de vida lee esa diferencia:
// RemainingToPay nil = "no calculable", no "pagada por completo".
type Invoice struct {
	ID               string
	AccountID        string
	SupplierID       string
	CustomerID       string
	Currency         string // ISO 4217, moneda única de toda la factura
	VatEnabled       bool
	VatReverseCharge bool

	Draft  bool
	Sent   bool
	Paid   bool
	Locked bool // flag de cara al usuario "no editar líneas"; NO es el lock de concurrencia

	// Asignados al emitir; una vez Draft == false jamás se reasignan.
	PublicInvoiceNumber *string
	InvoiceNumber       *int64
	VariableSymbol      *string
	NumberSequenceID    *string

	IssuedAt     *time.Time
	SuppliedAt   *time.Time
	PaymentDueTo *time.Time

	TotalVatInclusive *money.Money
	TotalVatExclusive *money.Money
	TotalToPay        *money.Money
	RemainingToPay    *money.Money

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPaymentDue indica si la factura está vencida y sin pagar.
func (i *Invoice) IsPaymentDue(now time.Time) bool {
	if i.Paid {
		return false
	}
	return i.PaymentDueTo != nil && i.PaymentDueTo.Before(now)
}

// IsPartiallyPaid indica si hay pagos aplicados pero queda saldo.
func (i *Invoice) IsPartiallyPaid() bool {
	if i.RemainingToPay == nil || i.TotalToPay == nil {
		return false
	}
	return !i.RemainingToPay.IsZero() && !i.TotalToPay.IsEqualTo(*i.RemainingToPay)
}
