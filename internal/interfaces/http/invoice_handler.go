package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/invoicing-pro/internal/application/billing"
	"github.com/tu-usuario/invoicing-pro/internal/application/dto"
	"github.com/tu-usuario/invoicing-pro/internal/domain"
)

// InvoiceHandler maneja el ciclo de vida de la factura: borrador, edición de
// líneas, emisión, bloqueo, desglose de IVA, PDF y eliminación.
type InvoiceHandler struct {
	invoiceUC *billing.InvoiceUseCase
	issueUC   *billing.IssueInvoiceUseCase
	pdfUC     *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(
	invoiceUC *billing.InvoiceUseCase,
	issueUC *billing.IssueInvoiceUseCase,
	pdfUC *billing.PDFUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{invoiceUC: invoiceUC, issueUC: issueUC, pdfUC: pdfUC}
}

// Create crea una factura en borrador.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.invoiceUC.CreateDraft(c.Context(), accountID, in)
	if err != nil {
		return mapBillingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// GetByID obtiene la factura con líneas y totales.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	accountID, id, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	invoice, err := h.invoiceUC.Get(c.Context(), accountID, id)
	if err != nil {
		return mapBillingError(c, err)
	}
	return c.JSON(invoice)
}

// ReplaceLines reemplaza todas las líneas de un borrador y recalcula totales.
// PUT /api/invoices/:id/lines
func (h *InvoiceHandler) ReplaceLines(c *fiber.Ctx) error {
	accountID, id, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	var in []dto.InvoiceLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.invoiceUC.ReplaceLines(c.Context(), accountID, id, in)
	if err != nil {
		return mapBillingError(c, err)
	}
	return c.JSON(invoice)
}

// Issue emite la factura: asigna número, símbolo variable y vencimiento.
// POST /api/invoices/:id/issue
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	accountID, id, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	if err := h.issueUC.Issue(c.Context(), accountID, id); err != nil {
		return mapBillingError(c, err)
	}
	invoice, err := h.invoiceUC.Get(c.Context(), accountID, id)
	if err != nil {
		return mapBillingError(c, err)
	}
	return c.JSON(invoice)
}

// Lock activa el bloqueo de edición de una factura emitida.
// POST /api/invoices/:id/lock
func (h *InvoiceHandler) Lock(c *fiber.Ctx) error {
	accountID, id, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	if err := h.invoiceUC.PreventModifications(c.Context(), accountID, id); err != nil {
		return mapBillingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Unlock levanta el bloqueo de edición.
// DELETE /api/invoices/:id/lock
func (h *InvoiceHandler) Unlock(c *fiber.Ctx) error {
	accountID, id, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	if err := h.invoiceUC.AllowModifications(c.Context(), accountID, id); err != nil {
		return mapBillingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete elimina la factura con sus líneas y pagos.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	accountID, id, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	if err := h.invoiceUC.Delete(c.Context(), accountID, id); err != nil {
		return mapBillingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VatBreakdown devuelve el desglose de IVA por tasa.
// GET /api/invoices/:id/vat-breakdown
func (h *InvoiceHandler) VatBreakdown(c *fiber.Ctx) error {
	accountID, id, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	rows, err := h.invoiceUC.GetVatBreakdown(c.Context(), accountID, id)
	if err != nil {
		return mapBillingError(c, err)
	}
	return c.JSON(rows)
}

// DownloadPDF descarga la representación gráfica de una factura emitida.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	accountID, id, errResp := accountAndParam(c)
	if errResp != nil {
		return errResp(c)
	}
	pdfBytes, filename, err := h.pdfUC.DownloadInvoicePDF(c.Context(), accountID, id)
	if err != nil {
		return mapBillingError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// accountAndParam extrae el account del token y el :id de la ruta.
func accountAndParam(c *fiber.Ctx) (accountID, id string, errResp func(*fiber.Ctx) error) {
	accountID = GetAccountID(c)
	if accountID == "" {
		return "", "", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
		}
	}
	id = c.Params("id")
	if id == "" {
		return "", "", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
		}
	}
	return accountID, id, nil
}

// mapBillingError traduce errores de dominio a HTTP. Las violaciones de
// contrato visibles desde la API (emitir dos veces, bloquear un borrador,
// editar una factura bloqueada) son estados alcanzables por el usuario y se
// responden como 409; la integridad del consecutivo es un 500 genuino.
func mapBillingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrInvoiceNotDraft):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_ISSUED", Message: "la factura ya fue emitida"})
	case errors.Is(err, domain.ErrDraftInvoice):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVOICE_DRAFT", Message: "la factura sigue en borrador"})
	case errors.Is(err, domain.ErrDraftNotLockable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DRAFT_NOT_LOCKABLE", Message: "un borrador no puede bloquearse"})
	case errors.Is(err, domain.ErrInvoiceLocked):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVOICE_LOCKED", Message: "la factura está bloqueada para edición"})
	case errors.Is(err, domain.ErrLockTimeout):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TRY_AGAIN", Message: "la factura está ocupada, inténtelo de nuevo"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
