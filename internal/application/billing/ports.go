package billing

import (
	"context"

	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con los
// repositorios de facturación atados a ella. Si fn retorna error se hace
// rollback completo: la unidad de trabajo es todo-o-nada.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		seqRepo repository.NumberSequenceRepository,
	) error) error
}

// InvoiceLocker es el primitivo de exclusión mutua por factura. Es ortogonal
// al flag Locked de la entidad: el flag es "no editar líneas" de cara al
// usuario; este lock serializa las mutaciones de pagos/totales concurrentes.
//
// Acquire espera un plazo acotado; si no adquiere retorna
// domain.ErrLockTimeout (recuperable, el caller decide si reintenta).
// El release devuelto debe invocarse en todos los caminos de salida,
// incluidos los de error; el lock expira solo como red de seguridad si el
// proceso muere sin liberar.
type InvoiceLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// EventPublisher publica eventos de dominio. Los use cases lo invocan
// únicamente DESPUÉS de que la transacción confirmó: un consumidor jamás
// observa un evento de una transacción que luego hizo rollback.
type EventPublisher interface {
	PublishInvoicePaid(ctx context.Context, event InvoicePaidEvent)
}

// InvoicePDFGenerator genera la representación PDF de una factura emitida.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, in InvoicePDFInput) ([]byte, error)
}

// InvoicePDFInput datos ya cargados para el render (el generador no toca la DB).
type InvoicePDFInput struct {
	Invoice   *entity.Invoice
	Supplier  *entity.Company
	Customer  *entity.Company
	Lines     []*entity.InvoiceLine
	Breakdown []BreakdownRow
}

// BreakdownRow fila del desglose de IVA ya formateada para presentación.
type BreakdownRow struct {
	Rate      string
	Base      string
	VatAmount string
}
