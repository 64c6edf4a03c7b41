package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/tu-usuario/invoicing-pro/internal/domain"
	domainbilling "github.com/tu-usuario/invoicing-pro/internal/domain/billing"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura.
// Solo facturas emitidas tienen PDF: un borrador todavía no tiene número legal.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	companyRepo repository.CompanyRepository
	generator   InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{invoiceRepo: invoiceRepo, companyRepo: companyRepo, generator: generator}
}

// DownloadInvoicePDF carga los datos de la factura y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)   si todo sale bien.
//   - domain.ErrNotFound          si la factura no existe o es de otra cuenta.
//   - domain.ErrInvalidInput      si la factura sigue en borrador.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, accountID, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil || inv.AccountID != accountID {
		return nil, "", domain.ErrNotFound
	}
	if inv.Draft || inv.PublicInvoiceNumber == nil {
		return nil, "", fmt.Errorf("%w: la factura sigue en borrador, emítala antes de descargar el PDF", domain.ErrInvalidInput)
	}

	supplier, err := uc.companyRepo.GetByID(ctx, inv.SupplierID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener emisor: %w", err)
	}
	customer, err := uc.companyRepo.GetByID(ctx, inv.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	if supplier == nil || customer == nil {
		return nil, "", domain.ErrNotFound
	}
	lines, err := uc.invoiceRepo.ListLines(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener líneas: %w", err)
	}

	rows, err := domainbilling.VatBreakdown(inv, lines)
	if err != nil {
		return nil, "", err
	}
	breakdown := make([]BreakdownRow, 0, len(rows))
	for _, row := range rows {
		breakdown = append(breakdown, BreakdownRow{
			Rate:      row.Rate.String() + " %",
			Base:      row.Base.String(),
			VatAmount: row.VatAmount.String(),
		})
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, InvoicePDFInput{
		Invoice:   inv,
		Supplier:  supplier,
		Customer:  customer,
		Lines:     lines,
		Breakdown: breakdown,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar: %w", err)
	}

	filename = "invoice_" + strings.ReplaceAll(*inv.PublicInvoiceNumber, " ", "_") + ".pdf"
	return pdfBytes, filename, nil
}
