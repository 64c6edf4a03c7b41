// Package notify implementa el publicador de eventos de dominio. La
// implementación actual registra el evento estructurado y despacha a los
// suscriptores en proceso; un broker externo entraría por aquí sin tocar
// los use cases.
package notify

import (
	"context"

	"github.com/tu-usuario/invoicing-pro/internal/application/billing"
	"github.com/tu-usuario/invoicing-pro/pkg/logger"
)

var _ billing.EventPublisher = (*Publisher)(nil)

// Subscriber recibe eventos de factura pagada ya confirmados. No debe
// bloquear: el publicador lo invoca en la goroutine del request.
type Subscriber func(ctx context.Context, event billing.InvoicePaidEvent)

// Publisher despacha eventos a suscriptores en proceso.
type Publisher struct {
	log         *logger.Logger
	subscribers []Subscriber
}

// NewPublisher construye el publicador.
func NewPublisher(log *logger.Logger, subscribers ...Subscriber) *Publisher {
	return &Publisher{log: log, subscribers: subscribers}
}

// PublishInvoicePaid publica el evento. Quien llama garantiza que la
// transacción que produjo la transición ya confirmó.
func (p *Publisher) PublishInvoicePaid(ctx context.Context, event billing.InvoicePaidEvent) {
	ev := p.log.Info().
		Str("event", "invoice.paid").
		Str("invoice_id", event.Invoice.ID).
		Str("account_id", event.Invoice.AccountID).
		Time("occurred_at", event.OccurredAt)
	if event.Invoice.PublicInvoiceNumber != nil {
		ev = ev.Str("invoice_number", *event.Invoice.PublicInvoiceNumber)
	}
	if event.Invoice.TotalToPay != nil {
		ev = ev.Str("total_to_pay", event.Invoice.TotalToPay.String())
	}
	ev.Msg("factura pagada")

	for _, sub := range p.subscribers {
		sub(ctx, event)
	}
}
