package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/invoicing-pro/internal/application/dto"
	"github.com/tu-usuario/invoicing-pro/internal/domain"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
	"github.com/tu-usuario/invoicing-pro/pkg/logger"
)

// PaymentUseCase registra y revierte pagos contra facturas. Toda mutación de
// pagos/totales de una factura corre bajo su lock exclusivo: dos envíos
// concurrentes sobre la misma factura se serializan y ningún recálculo de
// totales se solapa con otro.
type PaymentUseCase struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	locker      InvoiceLocker
	totals      *TotalsEngine
	publisher   EventPublisher
	log         *logger.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	locker InvoiceLocker,
	totals *TotalsEngine,
	publisher EventPublisher,
	log *logger.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		locker:      locker,
		totals:      totals,
		publisher:   publisher,
		log:         log,
	}
}

// AddPayment agrega un pago a la factura y recalcula totales dentro de la
// misma unidad de trabajo. Retorna:
//   - domain.ErrNotFound      si la factura no existe o es de otra cuenta.
//   - domain.ErrDraftInvoice  si la factura sigue en borrador.
//   - money.ErrCurrencyMismatch si la moneda del pago no es la de la factura.
//   - domain.ErrInvalidInput   si la fecha del pago es anterior a la emisión.
//   - domain.ErrLockTimeout   si el lock por factura no se adquirió a tiempo.
func (uc *PaymentUseCase) AddPayment(
	ctx context.Context,
	accountID, invoiceID string,
	amount money.Money,
	method entity.PaymentMethod,
	receivedAt time.Time,
	recordedByID *string,
) (*dto.PaymentResponse, error) {
	release, err := uc.locker.Acquire(ctx, invoiceLockKey(invoiceID))
	if err != nil {
		return nil, err
	}
	defer release()

	var payment *entity.Payment
	var paidEvent *InvoicePaidEvent

	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.NumberSequenceRepository,
	) error {
		inv, err := invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil || inv.AccountID != accountID {
			return domain.ErrNotFound
		}
		// El núcleo re-verifica borrador y moneda aunque la frontera ya validó.
		if inv.Draft {
			return domain.ErrDraftInvoice
		}
		if amount.CurrencyCode() != inv.Currency {
			return fmt.Errorf("%w: pago %s contra factura %s",
				money.ErrCurrencyMismatch, amount.CurrencyCode(), inv.Currency)
		}
		// La fecha de pago no puede ser anterior al día de emisión. Se compara
		// por día: la emisión lleva hora, el pago llega como fecha.
		if inv.IssuedAt != nil {
			issuedDay := time.Date(inv.IssuedAt.Year(), inv.IssuedAt.Month(), inv.IssuedAt.Day(), 0, 0, 0, 0, inv.IssuedAt.Location())
			if receivedAt.Before(issuedDay) {
				return fmt.Errorf("%w: received_at anterior a la emisión", domain.ErrInvalidInput)
			}
		}

		now := time.Now()
		payment = &entity.Payment{
			ID:           uuid.New().String(),
			AccountID:    inv.AccountID,
			Payable:      entity.InvoicePayable(inv.ID),
			Amount:       amount,
			Method:       method,
			ReceivedAt:   receivedAt,
			RecordedByID: recordedByID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := paymentRepo.Create(ctx, payment); err != nil {
			return fmt.Errorf("crear pago: %w", err)
		}

		paidEvent, err = uc.totals.Recompute(ctx, inv, invoiceRepo, paymentRepo)
		return err
	})
	if err != nil {
		return nil, err
	}

	// El evento se publica solo después de confirmar la transacción.
	if paidEvent != nil {
		uc.publisher.PublishInvoicePaid(ctx, *paidEvent)
	}

	uc.log.Info().
		Str("invoice_id", invoiceID).
		Str("payment_id", payment.ID).
		Str("amount", payment.Amount.String()).
		Msg("pago registrado")

	return dto.ToPaymentResponse(payment), nil
}

// RemovePayment borra suavemente un pago y, si su pagable es una factura,
// re-invoca el MISMO motor de totales que la ruta de alta: no existe ningún
// atajo de "reducir saldo" que pueda divergir de la suma real.
func (uc *PaymentUseCase) RemovePayment(ctx context.Context, accountID, paymentID string) error {
	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil || payment.AccountID != accountID {
		return domain.ErrNotFound
	}
	if payment.Payable.Kind != entity.PayableKindInvoice {
		// Sin pagable factura no hay totales que recalcular; solo se marca.
		return uc.paymentRepo.SoftDelete(ctx, paymentID)
	}

	release, err := uc.locker.Acquire(ctx, invoiceLockKey(payment.Payable.ID))
	if err != nil {
		return err
	}
	defer release()

	var paidEvent *InvoicePaidEvent
	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.NumberSequenceRepository,
	) error {
		inv, err := invoiceRepo.GetByIDForUpdate(ctx, payment.Payable.ID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if err := paymentRepo.SoftDelete(ctx, paymentID); err != nil {
			return fmt.Errorf("borrar pago: %w", err)
		}
		paidEvent, err = uc.totals.Recompute(ctx, inv, invoiceRepo, paymentRepo)
		return err
	})
	if err != nil {
		return err
	}
	if paidEvent != nil {
		uc.publisher.PublishInvoicePaid(ctx, *paidEvent)
	}

	uc.log.Info().
		Str("payment_id", paymentID).
		Str("invoice_id", payment.Payable.ID).
		Msg("pago revertido")
	return nil
}

// ListPayments devuelve la página pedida del historial de pagos de la
// factura, incluidos los revertidos: el historial es de auditoría y un pago
// borrado sigue siendo un hecho contable.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, accountID, invoiceID string, page dto.PageRequest) ([]*dto.PaymentResponse, *dto.PageResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if inv == nil || inv.AccountID != accountID {
		return nil, nil, domain.ErrNotFound
	}

	payments, err := uc.paymentRepo.ListByPayable(ctx, entity.InvoicePayable(invoiceID))
	if err != nil {
		return nil, nil, err
	}

	page.DefaultPage()
	total := len(payments)
	start := page.Offset
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}

	out := make([]*dto.PaymentResponse, 0, end-start)
	for _, p := range payments[start:end] {
		out = append(out, dto.ToPaymentResponse(p))
	}
	return out, &dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total}, nil
}

// invoiceLockKey construye la clave del lock exclusivo por factura.
func invoiceLockKey(invoiceID string) string { return "invoice:" + invoiceID }
