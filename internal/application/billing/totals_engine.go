package billing

import (
	"context"
	"fmt"
	"time"

	domainbilling "github.com/tu-usuario/invoicing-pro/internal/domain/billing"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
)

// TotalsEngine recalcula y persiste los totales de una factura. Es el ÚNICO
// camino por el que cambia el flag Paid: tanto agregar como quitar pagos
// pasan por aquí, sin atajos de "reducir saldo" que puedan divergir.
type TotalsEngine struct{}

// NewTotalsEngine construye el motor.
func NewTotalsEngine() *TotalsEngine { return &TotalsEngine{} }

// Recompute carga líneas y pagos activos, deriva los totales, los aplica a
// la entidad y los persiste con los repos recibidos (normalmente atados a la
// transacción del caller). Si esta llamada produjo la transición a pagada,
// devuelve el evento para que el caller lo publique tras el commit; en
// cualquier otro caso devuelve nil. Llamado dos veces sin cambios de estado,
// el segundo pase no altera nada ni re-emite el evento.
func (e *TotalsEngine) Recompute(
	ctx context.Context,
	inv *entity.Invoice,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
) (*InvoicePaidEvent, error) {
	lines, err := invoiceRepo.ListLines(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("recalcular totales: cargar líneas: %w", err)
	}
	payments, err := paymentRepo.ListActiveByPayable(ctx, entity.InvoicePayable(inv.ID))
	if err != nil {
		return nil, fmt.Errorf("recalcular totales: cargar pagos: %w", err)
	}

	totals, err := domainbilling.CalculateTotals(inv, lines, payments)
	if err != nil {
		return nil, err
	}

	inv.TotalVatInclusive = totals.TotalVatInclusive
	inv.TotalVatExclusive = totals.TotalVatExclusive
	inv.TotalToPay = totals.TotalToPay
	inv.RemainingToPay = totals.RemainingToPay
	inv.Paid = totals.Paid
	inv.UpdatedAt = time.Now()

	if err := invoiceRepo.UpdateTotals(ctx, inv); err != nil {
		return nil, fmt.Errorf("recalcular totales: persistir: %w", err)
	}

	if totals.RecentlyPaid {
		return &InvoicePaidEvent{Invoice: snapshotOf(inv), OccurredAt: time.Now()}, nil
	}
	return nil, nil
}
