package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/invoicing-pro/internal/application/dto"
	"github.com/tu-usuario/invoicing-pro/internal/domain"
	domainbilling "github.com/tu-usuario/invoicing-pro/internal/domain/billing"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
)

// InvoiceUseCase cubre el ciclo de vida editable de la factura: creación del
// borrador, edición de líneas, flag de bloqueo y eliminación en cascada.
// La emisión y los pagos tienen casos de uso propios.
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	companyRepo repository.CompanyRepository
	totals      *TotalsEngine
	publisher   EventPublisher
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	companyRepo repository.CompanyRepository,
	totals *TotalsEngine,
	publisher EventPublisher,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		companyRepo: companyRepo,
		totals:      totals,
		publisher:   publisher,
	}
}

// CreateDraft crea una factura en borrador con sus líneas iniciales y deja
// los totales ya calculados (sin líneas quedan nil: "nada calculado aún").
func (uc *InvoiceUseCase) CreateDraft(ctx context.Context, accountID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.SupplierID == "" || in.CustomerID == "" || in.Currency == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := money.Zero(in.Currency); err != nil {
		return nil, domain.ErrInvalidInput
	}
	for _, ref := range []string{in.SupplierID, in.CustomerID} {
		company, err := uc.companyRepo.GetByID(ctx, ref)
		if err != nil {
			return nil, err
		}
		if company == nil || company.AccountID != accountID {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	var suppliedAt *time.Time
	if in.SuppliedAt != "" {
		parsed, err := time.Parse("2006-01-02", in.SuppliedAt)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		suppliedAt = &parsed
	} else {
		suppliedAt = &now
	}

	inv := &entity.Invoice{
		ID:               uuid.New().String(),
		AccountID:        accountID,
		SupplierID:       in.SupplierID,
		CustomerID:       in.CustomerID,
		Currency:         in.Currency,
		VatEnabled:       in.VatEnabled,
		VatReverseCharge: in.VatReverseCharge,
		Draft:            true,
		SuppliedAt:       suppliedAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	lines, err := buildLines(inv, in.Lines)
	if err != nil {
		return nil, err
	}

	var paidEvent *InvoicePaidEvent
	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.NumberSequenceRepository,
	) error {
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		for _, line := range lines {
			if err := invoiceRepo.CreateLine(ctx, line); err != nil {
				return err
			}
		}
		paidEvent, err = uc.totals.Recompute(ctx, inv, invoiceRepo, paymentRepo)
		return err
	})
	if err != nil {
		return nil, err
	}
	// Un conjunto de líneas con total cero deja la factura sin saldo: la
	// transición a pagada se emite igual que en la ruta de pagos, tras el commit.
	if paidEvent != nil {
		uc.publisher.PublishInvoicePaid(ctx, *paidEvent)
	}
	return dto.ToInvoiceResponse(inv, lines), nil
}

// Get devuelve la factura con líneas.
func (uc *InvoiceUseCase) Get(ctx context.Context, accountID, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.loadOwned(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}
	lines, err := uc.invoiceRepo.ListLines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return dto.ToInvoiceResponse(inv, lines), nil
}

// ReplaceLines reemplaza las líneas de un borrador sin bloquear y recalcula
// totales. Las líneas de una factura emitida o bloqueada no se tocan.
func (uc *InvoiceUseCase) ReplaceLines(ctx context.Context, accountID, invoiceID string, in []dto.InvoiceLineRequest) (*dto.InvoiceResponse, error) {
	var inv *entity.Invoice
	var lines []*entity.InvoiceLine
	var paidEvent *InvoicePaidEvent

	err := uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.NumberSequenceRepository,
	) error {
		var err error
		inv, err = invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil || inv.AccountID != accountID {
			return domain.ErrNotFound
		}
		if !inv.Draft || inv.Locked {
			return domain.ErrInvoiceLocked
		}
		lines, err = buildLines(inv, in)
		if err != nil {
			return err
		}
		if err := invoiceRepo.ReplaceLines(ctx, invoiceID, lines); err != nil {
			return err
		}
		paidEvent, err = uc.totals.Recompute(ctx, inv, invoiceRepo, paymentRepo)
		return err
	})
	if err != nil {
		return nil, err
	}
	if paidEvent != nil {
		uc.publisher.PublishInvoicePaid(ctx, *paidEvent)
	}
	return dto.ToInvoiceResponse(inv, lines), nil
}

// PreventModifications activa el flag de bloqueo de edición. Sobre un
// borrador es una violación de contrato: los borradores no son "bloqueables",
// simplemente siguen siendo editables.
func (uc *InvoiceUseCase) PreventModifications(ctx context.Context, accountID, invoiceID string) error {
	inv, err := uc.loadOwned(ctx, accountID, invoiceID)
	if err != nil {
		return err
	}
	if inv.Draft {
		return domain.ErrDraftNotLockable
	}
	inv.Locked = true
	inv.UpdatedAt = time.Now()
	return uc.invoiceRepo.UpdateLocked(ctx, inv)
}

// AllowModifications desactiva el flag de bloqueo de edición.
func (uc *InvoiceUseCase) AllowModifications(ctx context.Context, accountID, invoiceID string) error {
	inv, err := uc.loadOwned(ctx, accountID, invoiceID)
	if err != nil {
		return err
	}
	inv.Locked = false
	inv.UpdatedAt = time.Now()
	return uc.invoiceRepo.UpdateLocked(ctx, inv)
}

// Delete elimina la factura con sus líneas y pagos en cascada. El número que
// consumió no se reutiliza: el consecutivo jamás retrocede.
func (uc *InvoiceUseCase) Delete(ctx context.Context, accountID, invoiceID string) error {
	if _, err := uc.loadOwned(ctx, accountID, invoiceID); err != nil {
		return err
	}
	return uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.NumberSequenceRepository,
	) error {
		return invoiceRepo.Delete(ctx, invoiceID)
	})
}

// GetVatBreakdown devuelve el desglose de IVA ordenado por tasa ascendente.
func (uc *InvoiceUseCase) GetVatBreakdown(ctx context.Context, accountID, invoiceID string) ([]dto.VatBreakdownRowResponse, error) {
	inv, err := uc.loadOwned(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}
	lines, err := uc.invoiceRepo.ListLines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	rows, err := domainbilling.VatBreakdown(inv, lines)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VatBreakdownRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.VatBreakdownRowResponse{
			Rate:      row.Rate,
			Base:      dto.MoneyDTO{AmountMinor: row.Base.MinorUnits(), Currency: row.Base.CurrencyCode()},
			VatAmount: dto.MoneyDTO{AmountMinor: row.VatAmount.MinorUnits(), Currency: row.VatAmount.CurrencyCode()},
		})
	}
	return out, nil
}

func (uc *InvoiceUseCase) loadOwned(ctx context.Context, accountID, invoiceID string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.AccountID != accountID {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// buildLines valida y materializa las líneas de la petición.
func buildLines(inv *entity.Invoice, in []dto.InvoiceLineRequest) ([]*entity.InvoiceLine, error) {
	lines := make([]*entity.InvoiceLine, 0, len(in))
	for i, l := range in {
		if l.Quantity.IsNegative() || l.UnitPriceMinor < 0 {
			return nil, domain.ErrInvalidInput
		}
		price, err := money.OfMinor(l.UnitPriceMinor, inv.Currency)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		position := l.Position
		if position == 0 {
			position = i + 1
		}
		lines = append(lines, &entity.InvoiceLine{
			ID:          uuid.New().String(),
			InvoiceID:   inv.ID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   &price,
			VatRate:     l.VatRate,
			Position:    position,
		})
	}
	return lines, nil
}
