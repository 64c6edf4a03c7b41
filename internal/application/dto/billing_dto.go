package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

// MoneyDTO monto en unidades menores + moneda ISO 4217.
type MoneyDTO struct {
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

func moneyDTO(m *money.Money) *MoneyDTO {
	if m == nil {
		return nil
	}
	return &MoneyDTO{AmountMinor: m.MinorUnits(), Currency: m.CurrencyCode()}
}

// InvoiceLineRequest línea en creación/reemplazo de líneas.
type InvoiceLineRequest struct {
	Description    string           `json:"description"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPriceMinor int64            `json:"unit_price_minor"`
	VatRate        *decimal.Decimal `json:"vat_rate,omitempty"` // porcentaje; null = línea sin IVA
	Position       int              `json:"position"`
}

// CreateInvoiceRequest body para POST /api/invoices (crea un borrador).
type CreateInvoiceRequest struct {
	SupplierID       string               `json:"supplier_id"`
	CustomerID       string               `json:"customer_id"`
	Currency         string               `json:"currency"`
	VatEnabled       bool                 `json:"vat_enabled"`
	VatReverseCharge bool                 `json:"vat_reverse_charge"`
	SuppliedAt       string               `json:"supplied_at,omitempty"` // YYYY-MM-DD; vacío = hoy
	Lines            []InvoiceLineRequest `json:"lines,omitempty"`
}

// InvoiceLineResponse línea en respuestas, con totales derivados.
type InvoiceLineResponse struct {
	ID                string           `json:"id"`
	Description       string           `json:"description"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitPrice         MoneyDTO         `json:"unit_price"`
	VatRate           *decimal.Decimal `json:"vat_rate,omitempty"`
	Position          int              `json:"position"`
	TotalVatExclusive *MoneyDTO        `json:"total_vat_exclusive,omitempty"`
	TotalVatInclusive *MoneyDTO        `json:"total_vat_inclusive,omitempty"`
}

// InvoiceResponse factura completa para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID                  string                `json:"id"`
	AccountID           string                `json:"account_id"`
	SupplierID          string                `json:"supplier_id"`
	CustomerID          string                `json:"customer_id"`
	Currency            string                `json:"currency"`
	VatEnabled          bool                  `json:"vat_enabled"`
	VatReverseCharge    bool                  `json:"vat_reverse_charge"`
	Draft               bool                  `json:"draft"`
	Sent                bool                  `json:"sent"`
	Paid                bool                  `json:"paid"`
	Locked              bool                  `json:"locked"`
	PublicInvoiceNumber *string               `json:"public_invoice_number,omitempty"`
	InvoiceNumber       *int64                `json:"invoice_number,omitempty"`
	VariableSymbol      *string               `json:"variable_symbol,omitempty"`
	IssuedAt            *time.Time            `json:"issued_at,omitempty"`
	SuppliedAt          *time.Time            `json:"supplied_at,omitempty"`
	PaymentDueTo        *time.Time            `json:"payment_due_to,omitempty"`
	TotalVatInclusive   *MoneyDTO             `json:"total_vat_inclusive,omitempty"`
	TotalVatExclusive   *MoneyDTO             `json:"total_vat_exclusive,omitempty"`
	TotalToPay          *MoneyDTO             `json:"total_to_pay,omitempty"`
	RemainingToPay      *MoneyDTO             `json:"remaining_to_pay,omitempty"`
	PartiallyPaid       bool                  `json:"partially_paid"`
	PaymentDue          bool                  `json:"payment_due"`
	Lines               []InvoiceLineResponse `json:"lines,omitempty"`
}

// ToInvoiceResponse mapea la entidad y sus líneas a la respuesta HTTP.
func ToInvoiceResponse(inv *entity.Invoice, lines []*entity.InvoiceLine) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:                  inv.ID,
		AccountID:           inv.AccountID,
		SupplierID:          inv.SupplierID,
		CustomerID:          inv.CustomerID,
		Currency:            inv.Currency,
		VatEnabled:          inv.VatEnabled,
		VatReverseCharge:    inv.VatReverseCharge,
		Draft:               inv.Draft,
		Sent:                inv.Sent,
		Paid:                inv.Paid,
		Locked:              inv.Locked,
		PublicInvoiceNumber: inv.PublicInvoiceNumber,
		InvoiceNumber:       inv.InvoiceNumber,
		VariableSymbol:      inv.VariableSymbol,
		IssuedAt:            inv.IssuedAt,
		SuppliedAt:          inv.SuppliedAt,
		PaymentDueTo:        inv.PaymentDueTo,
		TotalVatInclusive:   moneyDTO(inv.TotalVatInclusive),
		TotalVatExclusive:   moneyDTO(inv.TotalVatExclusive),
		TotalToPay:          moneyDTO(inv.TotalToPay),
		RemainingToPay:      moneyDTO(inv.RemainingToPay),
		PartiallyPaid:       inv.IsPartiallyPaid(),
		PaymentDue:          inv.IsPaymentDue(time.Now()),
	}
	for _, line := range lines {
		lr := InvoiceLineResponse{
			ID:          line.ID,
			Description: line.Description,
			Quantity:    line.Quantity,
			VatRate:     line.VatRate,
			Position:    line.Position,
		}
		if line.UnitPrice != nil {
			lr.UnitPrice = *moneyDTO(line.UnitPrice)
		}
		lr.TotalVatExclusive = moneyDTO(line.TotalPriceVatExclusive())
		lr.TotalVatInclusive = moneyDTO(line.TotalPriceVatInclusive())
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}

// AddPaymentRequest body para POST /api/invoices/:id/payments.
// La frontera valida la forma (monto entero positivo, método conocido,
// fecha no anterior a la emisión); el núcleo re-verifica moneda y borrador.
type AddPaymentRequest struct {
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	ReceivedAt  string `json:"received_at"` // YYYY-MM-DD
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID           string     `json:"id"`
	PayableKind  string     `json:"payable_kind"`
	PayableID    string     `json:"payable_id"`
	Amount       MoneyDTO   `json:"amount"`
	Method       string     `json:"method"`
	ReceivedAt   time.Time  `json:"received_at"`
	RecordedByID *string    `json:"recorded_by_id,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// ToPaymentResponse mapea la entidad de pago.
func ToPaymentResponse(p *entity.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:           p.ID,
		PayableKind:  string(p.Payable.Kind),
		PayableID:    p.Payable.ID,
		Amount:       MoneyDTO{AmountMinor: p.Amount.MinorUnits(), Currency: p.Amount.CurrencyCode()},
		Method:       string(p.Method),
		ReceivedAt:   p.ReceivedAt,
		RecordedByID: p.RecordedByID,
		DeletedAt:    p.DeletedAt,
	}
}

// VatBreakdownRowResponse fila del desglose de IVA.
type VatBreakdownRowResponse struct {
	Rate      decimal.Decimal `json:"rate"`
	Base      MoneyDTO        `json:"base"`
	VatAmount MoneyDTO        `json:"vat_amount"`
}

// CreateCompanyRequest body para POST /api/companies.
type CreateCompanyRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id,omitempty"`
	VatID   string `json:"vat_id,omitempty"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	IBAN    string `json:"iban,omitempty"`
}

// CompanyResponse parte (emisor o cliente) en respuestas.
type CompanyResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	TaxID     string `json:"tax_id,omitempty"`
	VatID     string `json:"vat_id,omitempty"`
	Address   string `json:"address,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IBAN      string `json:"iban,omitempty"`
}
