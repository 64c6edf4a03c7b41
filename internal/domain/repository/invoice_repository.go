package repository

import (
	"context"

	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para facturas y líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetByID devuelve (nil, nil) si la factura no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetByIDForUpdate carga la fila con lock transaccional (dentro de una tx).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	// UpdateIssued persiste los campos de emisión (número, símbolo variable,
	// draft, locked, referencia al consecutivo). Retorna
	// domain.ErrSequenceIntegrity ante violación de unicidad del número.
	UpdateIssued(ctx context.Context, invoice *entity.Invoice) error
	// UpdateTotals persiste totales, saldo y flag de pagada.
	UpdateTotals(ctx context.Context, invoice *entity.Invoice) error
	// UpdateLocked persiste el flag de bloqueo de edición.
	UpdateLocked(ctx context.Context, invoice *entity.Invoice) error
	// Delete elimina la factura junto con sus líneas y pagos (cascada).
	Delete(ctx context.Context, id string) error

	CreateLine(ctx context.Context, line *entity.InvoiceLine) error
	// ReplaceLines borra las líneas actuales y persiste las nuevas.
	ReplaceLines(ctx context.Context, invoiceID string, lines []*entity.InvoiceLine) error
	// ListLines devuelve las líneas ordenadas por posición.
	ListLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error)
}
