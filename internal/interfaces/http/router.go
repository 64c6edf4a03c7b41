package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/invoicing-pro/internal/application/auth"
	"github.com/tu-usuario/invoicing-pro/internal/application/billing"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	CompanyUC *billing.CompanyUseCase
	InvoiceUC *billing.InvoiceUseCase
	IssueUC   *billing.IssueInvoiceUseCase
	PaymentUC *billing.PaymentUseCase
	PDFUC     *billing.PDFUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Roles: viewer solo lee; accountant y admin escriben.
	writers := RequireRole(entity.RoleAdmin, entity.RoleAccountant)

	// Companies (partes de la factura)
	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", writers, companyHandler.Create)

	// Invoices
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.IssueUC, deps.PDFUC)
	invoices.Post("/", writers, invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id/lines", writers, invoiceHandler.ReplaceLines)
	invoices.Post("/:id/issue", writers, invoiceHandler.Issue)
	invoices.Post("/:id/lock", writers, invoiceHandler.Lock)
	invoices.Delete("/:id/lock", writers, invoiceHandler.Unlock)
	invoices.Get("/:id/vat-breakdown", invoiceHandler.VatBreakdown)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Delete("/:id", writers, invoiceHandler.Delete)

	// Payments
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	invoices.Post("/:id/payments", writers, paymentHandler.AddPayment)
	invoices.Get("/:id/payments", paymentHandler.ListPayments)
	protected.Delete("/payments/:id", writers, paymentHandler.RemovePayment)
}
