package entity

import (
	"time"

	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

// PaymentMethod método de pago soportado.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
)

// ParsePaymentMethod valida el valor recibido en la frontera HTTP.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodCard:
		return PaymentMethod(s), true
	}
	return "", false
}

// PayableKind discrimina el tipo de entidad contra la que se aplica un pago.
// Hoy solo existen facturas; variantes nuevas se agregan explícitamente aquí.
type PayableKind string

const PayableKindInvoice PayableKind = "invoice"

// PayableRef referencia discriminada al "pagable" de un pago.
type PayableRef struct {
	Kind PayableKind
	ID   string
}

// InvoicePayable construye la referencia a una factura.
func InvoicePayable(invoiceID string) PayableRef {
	return PayableRef{Kind: PayableKindInvoice, ID: invoiceID}
}

// Payment es un registro append-only de un monto aplicado contra un pagable.
// El "borrado" es un marcador suave: excluye el pago de los totales pero
// conserva la fila para auditoría.
type Payment struct {
	ID           string
	AccountID    string
	Payable      PayableRef
	Amount       money.Money
	Method       PaymentMethod
	ReceivedAt   time.Time
	RecordedByID *string
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive indica si el pago cuenta para los totales.
func (p *Payment) IsActive() bool { return p.DeletedAt == nil }
