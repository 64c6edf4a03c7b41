package billing

import (
	"time"

	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

// InvoiceSnapshot es una copia inmutable de la factura en el momento del
// evento, desacoplada de sus relaciones: el consumidor (mailer,
// notificaciones) no puede disparar cargas perezosas ni mutar el agregado.
type InvoiceSnapshot struct {
	ID                  string
	AccountID           string
	Currency            string
	PublicInvoiceNumber *string
	InvoiceNumber       *int64
	VariableSymbol      *string
	TotalToPay          *money.Money
	RemainingToPay      *money.Money
	IssuedAt            *time.Time
	PaymentDueTo        *time.Time
	Paid                bool
}

// InvoicePaidEvent se emite exactamente una vez por transición no-pagada →
// pagada, y solo después de confirmar la transacción que la produjo.
type InvoicePaidEvent struct {
	Invoice    InvoiceSnapshot
	OccurredAt time.Time
}

// snapshotOf copia los campos relevantes de la factura, sin relaciones.
func snapshotOf(inv *entity.Invoice) InvoiceSnapshot {
	return InvoiceSnapshot{
		ID:                  inv.ID,
		AccountID:           inv.AccountID,
		Currency:            inv.Currency,
		PublicInvoiceNumber: inv.PublicInvoiceNumber,
		InvoiceNumber:       inv.InvoiceNumber,
		VariableSymbol:      inv.VariableSymbol,
		TotalToPay:          inv.TotalToPay,
		RemainingToPay:      inv.RemainingToPay,
		IssuedAt:            inv.IssuedAt,
		PaymentDueTo:        inv.PaymentDueTo,
		Paid:                inv.Paid,
	}
}
