package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
// El borrado es siempre suave: deleted_at marca el pago como excluido de los
// totales pero la fila se conserva para auditoría.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `
	id, account_id, payable_kind, payable_id,
	amount_minor, currency, method, received_at,
	recorded_by_id, deleted_at, created_at, updated_at`

// Create persiste un pago nuevo.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.AccountID, p.Payable.Kind, p.Payable.ID,
		p.Amount.MinorUnits(), p.Amount.CurrencyCode(), p.Method, p.ReceivedAt,
		p.RecordedByID, p.DeletedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID devuelve el pago incluso si está borrado suavemente; (nil, nil) si no existe.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// SoftDelete marca el pago como eliminado. Idempotente: un pago ya borrado
// conserva su deleted_at original.
func (r *PaymentRepo) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE payments
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`
	if _, err := r.q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("soft delete payment: %w", err)
	}
	return nil
}

// ListActiveByPayable devuelve los pagos no borrados de un pagable.
func (r *PaymentRepo) ListActiveByPayable(ctx context.Context, payable entity.PayableRef) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE payable_kind = $1 AND payable_id = $2 AND deleted_at IS NULL
		ORDER BY received_at, created_at`
	return r.listPayments(ctx, query, payable)
}

// ListByPayable devuelve todos los pagos de un pagable, borrados incluidos.
func (r *PaymentRepo) ListByPayable(ctx context.Context, payable entity.PayableRef) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE payable_kind = $1 AND payable_id = $2
		ORDER BY received_at, created_at`
	return r.listPayments(ctx, query, payable)
}

func (r *PaymentRepo) listPayments(ctx context.Context, query string, payable entity.PayableRef) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, query, payable.Kind, payable.ID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	var amountMinor int64
	var currency string
	err := row.Scan(
		&p.ID, &p.AccountID, &p.Payable.Kind, &p.Payable.ID,
		&amountMinor, &currency, &p.Method, &p.ReceivedAt,
		&p.RecordedByID, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Amount = money.MustOfMinor(amountMinor, currency)
	return &p, nil
}
