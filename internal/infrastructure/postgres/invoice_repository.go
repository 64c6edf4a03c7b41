package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/invoicing-pro/internal/domain"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, account_id, supplier_id, customer_id, currency,
	vat_enabled, vat_reverse_charge,
	draft, sent, paid, locked,
	public_invoice_number, invoice_number, variable_symbol, number_sequence_id,
	issued_at, supplied_at, payment_due_to,
	total_vat_inclusive_minor, total_vat_exclusive_minor,
	total_to_pay_minor, remaining_to_pay_minor,
	created_at, updated_at`

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.AccountID, inv.SupplierID, inv.CustomerID, inv.Currency,
		inv.VatEnabled, inv.VatReverseCharge,
		inv.Draft, inv.Sent, inv.Paid, inv.Locked,
		inv.PublicInvoiceNumber, inv.InvoiceNumber, inv.VariableSymbol, inv.NumberSequenceID,
		inv.IssuedAt, inv.SuppliedAt, inv.PaymentDueTo,
		minorOrNil(inv.TotalVatInclusive), minorOrNil(inv.TotalVatExclusive),
		minorOrNil(inv.TotalToPay), minorOrNil(inv.RemainingToPay),
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura completa por ID. Devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return r.scanInvoice(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate carga la fila con SELECT ... FOR UPDATE. Solo tiene sentido
// dentro de una transacción: el lock vive hasta el commit/rollback.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	return r.scanInvoice(r.q.QueryRow(ctx, query, id))
}

func (r *InvoiceRepo) scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var inclusive, exclusive, toPay, remaining *int64
	err := row.Scan(
		&inv.ID, &inv.AccountID, &inv.SupplierID, &inv.CustomerID, &inv.Currency,
		&inv.VatEnabled, &inv.VatReverseCharge,
		&inv.Draft, &inv.Sent, &inv.Paid, &inv.Locked,
		&inv.PublicInvoiceNumber, &inv.InvoiceNumber, &inv.VariableSymbol, &inv.NumberSequenceID,
		&inv.IssuedAt, &inv.SuppliedAt, &inv.PaymentDueTo,
		&inclusive, &exclusive, &toPay, &remaining,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.TotalVatInclusive = moneyOrNil(inclusive, inv.Currency)
	inv.TotalVatExclusive = moneyOrNil(exclusive, inv.Currency)
	inv.TotalToPay = moneyOrNil(toPay, inv.Currency)
	inv.RemainingToPay = moneyOrNil(remaining, inv.Currency)
	return &inv, nil
}

// UpdateIssued persiste los campos de emisión. El índice único
// (account_id, number_sequence_id, invoice_number) convierte un número
// duplicado en ErrSequenceIntegrity: el protocolo del consecutivo se rompió
// y jamás se reintenta en silencio.
func (r *InvoiceRepo) UpdateIssued(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET draft = $2, locked = $3,
		    public_invoice_number = $4, invoice_number = $5,
		    variable_symbol = $6, number_sequence_id = $7,
		    issued_at = $8, payment_due_to = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.Draft, inv.Locked,
		inv.PublicInvoiceNumber, inv.InvoiceNumber,
		inv.VariableSymbol, inv.NumberSequenceID,
		inv.IssuedAt, inv.PaymentDueTo, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrSequenceIntegrity, err)
		}
		return fmt.Errorf("update issued invoice: %w", err)
	}
	return nil
}

// UpdateTotals persiste totales, saldo y flag de pagada.
func (r *InvoiceRepo) UpdateTotals(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET total_vat_inclusive_minor = $2, total_vat_exclusive_minor = $3,
		    total_to_pay_minor = $4, remaining_to_pay_minor = $5,
		    paid = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		inv.ID,
		minorOrNil(inv.TotalVatInclusive), minorOrNil(inv.TotalVatExclusive),
		minorOrNil(inv.TotalToPay), minorOrNil(inv.RemainingToPay),
		inv.Paid, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice totals: %w", err)
	}
	return nil
}

// UpdateLocked persiste el flag de bloqueo de edición.
func (r *InvoiceRepo) UpdateLocked(ctx context.Context, inv *entity.Invoice) error {
	query := `UPDATE invoices SET locked = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, inv.ID, inv.Locked, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update invoice locked: %w", err)
	}
	return nil
}

// Delete elimina la factura con sus líneas y pagos. Los pagos se eliminan de
// verdad (no soft-delete): la factura entera desaparece y la auditoría de
// pagos pierde su ancla.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx,
		`DELETE FROM payments WHERE payable_kind = $1 AND payable_id = $2`,
		entity.PayableKindInvoice, id,
	); err != nil {
		return fmt.Errorf("delete invoice payments: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea.
func (r *InvoiceRepo) CreateLine(ctx context.Context, line *entity.InvoiceLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	var unitMinor *int64
	var currency *string
	if line.UnitPrice != nil {
		unitMinor = minorOrNil(line.UnitPrice)
		code := line.UnitPrice.CurrencyCode()
		currency = &code
	}
	query := `
		INSERT INTO invoice_lines (id, invoice_id, description, quantity, unit_price_minor, currency, vat_rate, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.InvoiceID, line.Description, line.Quantity,
		unitMinor, currency, line.VatRate, line.Position,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// ReplaceLines borra las líneas actuales y persiste las nuevas.
func (r *InvoiceRepo) ReplaceLines(ctx context.Context, invoiceID string, lines []*entity.InvoiceLine) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	for _, line := range lines {
		line.InvoiceID = invoiceID
		if err := r.CreateLine(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

// ListLines devuelve las líneas ordenadas por posición.
func (r *InvoiceRepo) ListLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	query := `
		SELECT id, invoice_id, description, quantity, unit_price_minor, currency, vat_rate, position
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		var unitMinor *int64
		var currency *string
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.Quantity,
			&unitMinor, &currency, &l.VatRate, &l.Position); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		if unitMinor != nil && currency != nil {
			price := money.MustOfMinor(*unitMinor, *currency)
			l.UnitPrice = &price
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
