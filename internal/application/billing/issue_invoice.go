package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/invoicing-pro/internal/domain"
	"github.com/tu-usuario/invoicing-pro/internal/domain/numbering"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
	"github.com/tu-usuario/invoicing-pro/pkg/logger"
)

// IssueInvoiceUseCase emite una factura: transición de un solo sentido
// borrador → emitida, que asigna el número legal inmutable.
//
// Protocolo del consecutivo (el orden importa):
//  1. Bloquear/crear la fila (cuenta, token) del consecutivo.
//  2. Reservar next_number como número de la factura, SIN incrementar.
//  3. Persistir la factura con el número reservado.
//  4. Solo entonces incrementar next_number.
//
// Un fallo entre 3 y 4 puede dejar un hueco en la serie; eso es legal.
// Dos facturas con el mismo número no lo es jamás: la violación de unicidad
// al persistir se reporta como ErrSequenceIntegrity y nunca se reintenta.
type IssueInvoiceUseCase struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	accountRepo repository.AccountRepository
	locker      InvoiceLocker
	log         *logger.Logger
}

// NewIssueInvoiceUseCase construye el caso de uso.
func NewIssueInvoiceUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	accountRepo repository.AccountRepository,
	locker InvoiceLocker,
	log *logger.Logger,
) *IssueInvoiceUseCase {
	return &IssueInvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		accountRepo: accountRepo,
		locker:      locker,
		log:         log,
	}
}

// Issue emite la factura. Llamarlo sobre una factura ya emitida es una
// violación de contrato (ErrInvoiceNotDraft), no un error de usuario.
func (uc *IssueInvoiceUseCase) Issue(ctx context.Context, accountID, invoiceID string) error {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return domain.ErrNotFound
	}

	release, err := uc.locker.Acquire(ctx, invoiceLockKey(invoiceID))
	if err != nil {
		return err
	}
	defer release()

	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		seqRepo repository.NumberSequenceRepository,
	) error {
		inv, err := invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil || inv.AccountID != accountID {
			return domain.ErrNotFound
		}
		if !inv.Draft {
			return domain.ErrInvoiceNotDraft
		}

		suppliedAt := time.Now()
		if inv.SuppliedAt != nil {
			suppliedAt = *inv.SuppliedAt
		}
		formatter, err := numbering.NewFormatter(account.InvoiceNumberingFormat, suppliedAt)
		if err != nil {
			return err
		}

		seq, err := seqRepo.GetOrCreateForUpdate(ctx, accountID, formatter.SequenceToken(), formatter.Format())
		if err != nil {
			return fmt.Errorf("consecutivo: %w", err)
		}
		number := seq.NextNumber

		// Si el usuario ya fijó el número público, no se toca.
		if inv.PublicInvoiceNumber == nil {
			formatted := formatter.FormatNumber(number)
			inv.PublicInvoiceNumber = &formatted
		}

		// El símbolo variable reusa el mismo next_number con otro formato:
		// conveniencia de presentación, no un segundo asignador.
		if inv.VariableSymbol == nil {
			vsFormatter, err := numbering.NewFormatter(account.VariableSymbolFormat, suppliedAt)
			if err != nil {
				return err
			}
			vs := vsFormatter.FormatNumber(number)
			inv.VariableSymbol = &vs
		}

		now := time.Now()
		inv.Draft = false
		inv.Locked = true
		inv.InvoiceNumber = &number
		inv.NumberSequenceID = &seq.ID
		if inv.IssuedAt == nil {
			inv.IssuedAt = &now
		}
		if inv.PaymentDueTo == nil && account.InvoiceDueDays > 0 {
			due := suppliedAt.AddDate(0, 0, account.InvoiceDueDays-1)
			inv.PaymentDueTo = &due
		}
		inv.UpdatedAt = now

		// Guardar la factura con el número reservado ANTES de incrementar.
		if err := invoiceRepo.UpdateIssued(ctx, inv); err != nil {
			return err
		}
		return seqRepo.IncrementNextNumber(ctx, seq.ID)
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Str("invoice_id", invoiceID).
		Str("account_id", accountID).
		Msg("factura emitida")
	return nil
}
