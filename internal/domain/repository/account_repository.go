package repository

import (
	"context"

	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
)

// AccountRepository define el puerto de persistencia para cuentas (tenants).
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	// GetByID devuelve (nil, nil) si la cuenta no existe.
	GetByID(ctx context.Context, id string) (*entity.Account, error)
}

// CompanyRepository define el puerto para las partes de la factura
// (emisor y cliente).
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	ListByAccount(ctx context.Context, accountID string) ([]*entity.Company, error)
}
