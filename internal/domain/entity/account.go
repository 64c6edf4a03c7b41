package entity

import "time"

// Account es el tenant: toda factura, pago y consecutivo le pertenece.
// Lleva los formatos de numeración que usa el emisor de facturas.
type Account struct {
	ID   string
	Name string

	// Formato del número público de factura, ej. "FYYYYNNNN".
	InvoiceNumberingFormat string
	// Formato del símbolo variable (solo dígitos), ej. "YYNNNN".
	// Reusa el mismo NextNumber del consecutivo de la factura; es una
	// conveniencia de presentación, no un segundo asignador.
	VariableSymbolFormat string
	// Días de vencimiento por defecto para facturas nuevas.
	InvoiceDueDays int

	CreatedAt time.Time
	UpdatedAt time.Time
}
