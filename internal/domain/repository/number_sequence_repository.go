package repository

import (
	"context"

	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
)

// NumberSequenceRepository define el puerto de persistencia del consecutivo.
type NumberSequenceRepository interface {
	// GetOrCreateForUpdate busca la fila (accountID, token); si no existe la
	// crea con next_number = 1 y el formato dado. La fila queda bloqueada
	// (SELECT ... FOR UPDATE) hasta el fin de la transacción: dos emisiones
	// concurrentes sobre el mismo token se serializan aquí y jamás reservan
	// el mismo número.
	GetOrCreateForUpdate(ctx context.Context, accountID, token, format string) (*entity.NumberSequence, error)
	// IncrementNextNumber avanza el consecutivo en 1. Se invoca DESPUÉS de
	// persistir la factura con el número reservado: un fallo entre ambos
	// pasos puede dejar un hueco en la serie, nunca un duplicado.
	IncrementNextNumber(ctx context.Context, id string) error
}
