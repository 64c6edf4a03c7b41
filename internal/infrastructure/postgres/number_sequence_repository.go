package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
)

var _ repository.NumberSequenceRepository = (*NumberSequenceRepo)(nil)

// NumberSequenceRepo implementación de NumberSequenceRepository. Solo tiene
// sentido dentro de una transacción: el SELECT ... FOR UPDATE serializa las
// emisiones concurrentes sobre el mismo (cuenta, token) hasta el commit.
type NumberSequenceRepo struct {
	q Querier
}

// NewNumberSequenceRepository construye el adaptador. Pasar la tx (Querier).
func NewNumberSequenceRepository(q Querier) *NumberSequenceRepo {
	return &NumberSequenceRepo{q: q}
}

// GetOrCreateForUpdate busca la fila (accountID, token) y la bloquea. Si no
// existe, la crea con next_number = 1; el ON CONFLICT DO NOTHING tolera la
// carrera de dos emisiones creando el mismo token a la vez, y el re-SELECT
// FOR UPDATE posterior gana la fila que haya sobrevivido.
func (r *NumberSequenceRepo) GetOrCreateForUpdate(ctx context.Context, accountID, token, format string) (*entity.NumberSequence, error) {
	selectQuery := `
		SELECT id, account_id, sequence_token, format, next_number, created_at, updated_at
		FROM number_sequences
		WHERE account_id = $1 AND sequence_token = $2
		FOR UPDATE`

	seq, err := r.scanSequence(ctx, selectQuery, accountID, token)
	if err == nil {
		return seq, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get number sequence: %w", err)
	}

	insertQuery := `
		INSERT INTO number_sequences (id, account_id, sequence_token, format, next_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, now(), now())
		ON CONFLICT (account_id, sequence_token) DO NOTHING`
	if _, err := r.q.Exec(ctx, insertQuery, uuid.New().String(), accountID, token, format); err != nil {
		return nil, fmt.Errorf("create number sequence: %w", err)
	}

	seq, err = r.scanSequence(ctx, selectQuery, accountID, token)
	if err != nil {
		return nil, fmt.Errorf("get number sequence after create: %w", err)
	}
	return seq, nil
}

// IncrementNextNumber avanza el consecutivo en 1. Se invoca DESPUÉS de
// persistir la factura con el número reservado.
func (r *NumberSequenceRepo) IncrementNextNumber(ctx context.Context, id string) error {
	query := `
		UPDATE number_sequences
		SET next_number = next_number + 1, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment number sequence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment number sequence: fila %s no existe", id)
	}
	return nil
}

func (r *NumberSequenceRepo) scanSequence(ctx context.Context, query, accountID, token string) (*entity.NumberSequence, error) {
	var seq entity.NumberSequence
	err := r.q.QueryRow(ctx, query, accountID, token).Scan(
		&seq.ID, &seq.AccountID, &seq.SequenceToken, &seq.Format,
		&seq.NextNumber, &seq.CreatedAt, &seq.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &seq, nil
}
