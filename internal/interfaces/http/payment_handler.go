package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/invoicing-pro/internal/application/billing"
	"github.com/tu-usuario/invoicing-pro/internal/application/dto"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

// PaymentHandler maneja pagos contra facturas. La frontera valida la forma
// del pago (monto positivo, método conocido, fecha válida, moneda ISO); el
// núcleo re-verifica moneda y estado de la factura bajo el lock.
type PaymentHandler struct {
	uc *billing.PaymentUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *billing.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// AddPayment registra un pago contra la factura.
// POST /api/invoices/:id/payments
func (h *PaymentHandler) AddPayment(c *fiber.Ctx) error {
	accountID, invoiceID, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	var in dto.AddPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	if in.AmountMinor <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "amount_minor debe ser positivo"})
	}
	amount, err := money.OfMinor(in.AmountMinor, in.Currency)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "currency debe ser un código ISO 4217"})
	}
	method, ok := entity.ParsePaymentMethod(in.Method)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "method desconocido"})
	}
	receivedAt := time.Now()
	if in.ReceivedAt != "" {
		receivedAt, err = time.Parse("2006-01-02", in.ReceivedAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "received_at debe ser YYYY-MM-DD"})
		}
	}

	var recordedBy *string
	if userID := GetUserID(c); userID != "" {
		recordedBy = &userID
	}

	payment, err := h.uc.AddPayment(c.Context(), accountID, invoiceID, amount, method, receivedAt, recordedBy)
	if err != nil {
		if errors.Is(err, money.ErrCurrencyMismatch) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CURRENCY_MISMATCH", Message: "la moneda del pago no coincide con la de la factura"})
		}
		return mapBillingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// ListPayments devuelve el historial paginado de pagos de la factura,
// incluidos los revertidos (con deleted_at marcado).
// GET /api/invoices/:id/payments?limit=&offset=
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	accountID, invoiceID, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit/offset inválidos"})
	}
	payments, meta, err := h.uc.ListPayments(c.Context(), accountID, invoiceID, page)
	if err != nil {
		return mapBillingError(c, err)
	}
	return c.JSON(fiber.Map{"data": payments, "page": meta})
}

// RemovePayment revierte un pago (borrado suave) y recalcula los totales de
// la factura por la misma ruta que el alta.
// DELETE /api/payments/:id
func (h *PaymentHandler) RemovePayment(c *fiber.Ctx) error {
	accountID, paymentID, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	if err := h.uc.RemovePayment(c.Context(), accountID, paymentID); err != nil {
		return mapBillingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
