package repository

import (
	"context"

	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para pagos.
//
// Los pagos son append-only desde la perspectiva del negocio: no hay Update
// ni Delete duro, solo SoftDelete que marca deleted_at y conserva la fila
// para auditoría.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	// GetByID devuelve el pago incluso si está borrado suavemente;
	// (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	// SoftDelete marca el pago como eliminado. Idempotente.
	SoftDelete(ctx context.Context, id string) error
	// ListActiveByPayable devuelve los pagos no borrados de un pagable.
	ListActiveByPayable(ctx context.Context, payable entity.PayableRef) ([]*entity.Payment, error)
	// ListByPayable devuelve todos los pagos, incluidos los borrados.
	ListByPayable(ctx context.Context, payable entity.PayableRef) ([]*entity.Payment, error)
}
