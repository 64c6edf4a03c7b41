package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/invoicing-pro/internal/application/auth"
	"github.com/tu-usuario/invoicing-pro/internal/application/billing"
	"github.com/tu-usuario/invoicing-pro/internal/infrastructure/memlock"
	"github.com/tu-usuario/invoicing-pro/internal/infrastructure/notify"
	infrapdf "github.com/tu-usuario/invoicing-pro/internal/infrastructure/pdf"
	"github.com/tu-usuario/invoicing-pro/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/invoicing-pro/internal/interfaces/http"
	"github.com/tu-usuario/invoicing-pro/pkg/config"
	"github.com/tu-usuario/invoicing-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	accountRepo := postgres.NewAccountRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	locker := memlock.New(cfg.Billing.LockWait, cfg.Billing.LockTTL)
	publisher := notify.NewPublisher(log.Component("notificaciones"))
	totals := billing.NewTotalsEngine()

	invoiceUC := billing.NewInvoiceUseCase(txRunner, invoiceRepo, paymentRepo, companyRepo, totals, publisher)
	issueUC := billing.NewIssueInvoiceUseCase(txRunner, invoiceRepo, accountRepo, locker, log.Component("emision"))
	paymentUC := billing.NewPaymentUseCase(txRunner, invoiceRepo, paymentRepo, locker, totals, publisher, log.Component("pagos"))
	companyUC := billing.NewCompanyUseCase(companyRepo)

	// PDF: representación imprimible de la factura emitida
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfUC := billing.NewPDFUseCase(invoiceRepo, companyRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, accountRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, auth.BillingDefaults{
		InvoiceNumberingFormat: cfg.Billing.InvoiceNumberingFormat,
		VariableSymbolFormat:   cfg.Billing.VariableSymbolFormat,
		InvoiceDueDays:         cfg.Billing.InvoiceDueDays,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		CompanyUC: companyUC,
		InvoiceUC: invoiceUC,
		IssueUC:   issueUC,
		PaymentUC: paymentUC,
		PDFUC:     pdfUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
