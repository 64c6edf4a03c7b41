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

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación de CompanyRepository (usable con pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `
	id, account_id, name, tax_id, vat_id, address, email, phone, iban, created_at, updated_at`

// Create persiste una parte de factura (emisor o cliente).
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.AccountID, c.Name,
		nullIfEmpty(c.TaxID), nullIfEmpty(c.VatID), nullIfEmpty(c.Address),
		nullIfEmpty(c.Email), nullIfEmpty(c.Phone), nullIfEmpty(c.IBAN),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si la compañía no existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	c, err := scanCompany(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// ListByAccount devuelve las compañías de una cuenta ordenadas por nombre.
func (r *CompanyRepo) ListByAccount(ctx context.Context, accountID string) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE account_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	var taxID, vatID, address, email, phone, iban *string
	err := row.Scan(
		&c.ID, &c.AccountID, &c.Name,
		&taxID, &vatID, &address, &email, &phone, &iban,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	derefStr := func(p *string) string {
		if p != nil {
			return *p
		}
		return ""
	}
	c.TaxID = derefStr(taxID)
	c.VatID = derefStr(vatID)
	c.Address = derefStr(address)
	c.Email = derefStr(email)
	c.Phone = derefStr(phone)
	c.IBAN = derefStr(iban)
	return &c, nil
}
