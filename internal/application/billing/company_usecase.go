package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/invoicing-pro/internal/application/dto"
	"github.com/tu-usuario/invoicing-pro/internal/domain"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
)

// CompanyUseCase casos de uso para las partes de la factura (emisor/cliente).
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create crea una nueva parte dentro de la cuenta.
func (uc *CompanyUseCase) Create(ctx context.Context, accountID string, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Name:      in.Name,
		TaxID:     in.TaxID,
		VatID:     in.VatID,
		Address:   in.Address,
		Email:     in.Email,
		Phone:     in.Phone,
		IBAN:      in.IBAN,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// List lista las partes de la cuenta.
func (uc *CompanyUseCase) List(ctx context.Context, accountID string) ([]*dto.CompanyResponse, error) {
	companies, err := uc.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, toCompanyResponse(c))
	}
	return out, nil
}

func toCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		ID:        c.ID,
		AccountID: c.AccountID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		VatID:     c.VatID,
		Address:   c.Address,
		Email:     c.Email,
		Phone:     c.Phone,
		IBAN:      c.IBAN,
	}
}
