package billing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appbilling "github.com/tu-usuario/invoicing-pro/internal/application/billing"
	"github.com/tu-usuario/invoicing-pro/internal/application/dto"
	"github.com/tu-usuario/invoicing-pro/internal/domain"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

type invoiceFixture struct {
	store     *memStore
	uc        *appbilling.InvoiceUseCase
	publisher *recordingPublisher
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	store := newMemStore()
	publisher := &recordingPublisher{}
	companies := &memCompanyRepo{companies: map[string]*entity.Company{
		"sup-1": {ID: "sup-1", AccountID: testAccountID, Name: "Proveedora SL"},
		"cus-1": {ID: "cus-1", AccountID: testAccountID, Name: "Cliente SA"},
		"ajena": {ID: "ajena", AccountID: "acc-otra", Name: "De otra cuenta"},
	}}
	uc := appbilling.NewInvoiceUseCase(
		&memTxRunner{s: store},
		&memInvoiceRepo{s: store},
		&memPaymentRepo{s: store},
		companies,
		appbilling.NewTotalsEngine(),
		publisher,
	)
	return &invoiceFixture{store: store, uc: uc, publisher: publisher}
}

func lineaEUR(desc string, qty int64, priceMinor int64, vatRate *decimal.Decimal) dto.InvoiceLineRequest {
	return dto.InvoiceLineRequest{
		Description:    desc,
		Quantity:       decimal.NewFromInt(qty),
		UnitPriceMinor: priceMinor,
		VatRate:        vatRate,
	}
}

func (f *invoiceFixture) crearBorrador(t *testing.T, lines []dto.InvoiceLineRequest) *dto.InvoiceResponse {
	t.Helper()
	resp, err := f.uc.CreateDraft(context.Background(), testAccountID, dto.CreateInvoiceRequest{
		SupplierID: "sup-1",
		CustomerID: "cus-1",
		Currency:   "EUR",
		VatEnabled: true,
		Lines:      lines,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateDraft_SinLineasTotalesNulos(t *testing.T) {
	f := newInvoiceFixture(t)

	resp := f.crearBorrador(t, nil)

	assert.True(t, resp.Draft, "una factura nueva nace en borrador")
	assert.Nil(t, resp.InvoiceNumber, "el borrador no consume número")
	assert.Nil(t, resp.TotalToPay, "sin líneas no hay nada calculado")
	assert.Nil(t, resp.RemainingToPay)
}

func TestCreateDraft_CalculaTotalesConIVA(t *testing.T) {
	f := newInvoiceFixture(t)
	rate := decimal.NewFromInt(21)

	// 2 × 100.00 al 21% → base 200.00, IVA 42.00, total 242.00
	resp := f.crearBorrador(t, []dto.InvoiceLineRequest{
		lineaEUR("Servicio", 2, 10000, &rate),
	})

	require.NotNil(t, resp.TotalVatExclusive)
	require.NotNil(t, resp.TotalVatInclusive)
	require.NotNil(t, resp.TotalToPay)
	assert.Equal(t, int64(20000), resp.TotalVatExclusive.AmountMinor)
	assert.Equal(t, int64(24200), resp.TotalVatInclusive.AmountMinor)
	assert.Equal(t, int64(24200), resp.TotalToPay.AmountMinor, "con IVA habilitado se paga el total con IVA")
	assert.Equal(t, int64(24200), resp.RemainingToPay.AmountMinor)
}

func TestCreateDraft_ValidaEntrada(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateDraft(ctx, testAccountID, dto.CreateInvoiceRequest{
		SupplierID: "sup-1", CustomerID: "cus-1", Currency: "EURO",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "moneda desconocida")

	_, err = f.uc.CreateDraft(ctx, testAccountID, dto.CreateInvoiceRequest{
		CustomerID: "cus-1", Currency: "EUR",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "falta el emisor")

	_, err = f.uc.CreateDraft(ctx, testAccountID, dto.CreateInvoiceRequest{
		SupplierID: "sup-1", CustomerID: "ajena", Currency: "EUR",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "el cliente pertenece a otra cuenta")

	_, err = f.uc.CreateDraft(ctx, testAccountID, dto.CreateInvoiceRequest{
		SupplierID: "sup-1", CustomerID: "cus-1", Currency: "EUR",
		Lines: []dto.InvoiceLineRequest{{Quantity: decimal.NewFromInt(-1), UnitPriceMinor: 100}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa")
}

func TestCreateDraft_TotalCeroEmiteEventoDePagada(t *testing.T) {
	f := newInvoiceFixture(t)

	// Una línea con precio cero deja la factura sin nada que cobrar: la
	// transición a pagada ocurre en el alta y el evento sale tras el commit.
	resp := f.crearBorrador(t, []dto.InvoiceLineRequest{lineaEUR("Cortesía", 1, 0, nil)})

	assert.True(t, resp.Paid)
	require.NotNil(t, resp.RemainingToPay)
	assert.Equal(t, int64(0), resp.RemainingToPay.AmountMinor)
	assert.Equal(t, 1, f.publisher.count(), "la transición a pagada emite el evento exactamente una vez")
}

func TestReplaceLines_TotalCeroEmiteEventoUnaSolaVez(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	created := f.crearBorrador(t, []dto.InvoiceLineRequest{lineaEUR("Servicio", 1, 10000, nil)})
	require.Equal(t, 0, f.publisher.count())

	gratis := []dto.InvoiceLineRequest{lineaEUR("Cortesía", 1, 0, nil)}
	resp, err := f.uc.ReplaceLines(ctx, testAccountID, created.ID, gratis)
	require.NoError(t, err)
	assert.True(t, resp.Paid)
	assert.Equal(t, 1, f.publisher.count())

	// Reemplazar de nuevo sin cambio de estado no re-emite.
	_, err = f.uc.ReplaceLines(ctx, testAccountID, created.ID, gratis)
	require.NoError(t, err)
	assert.Equal(t, 1, f.publisher.count(), "a lo sumo un evento por transición")
}

func TestReplaceLines_RecalculaTotales(t *testing.T) {
	f := newInvoiceFixture(t)
	rate := decimal.NewFromInt(21)
	created := f.crearBorrador(t, []dto.InvoiceLineRequest{lineaEUR("Inicial", 1, 10000, &rate)})

	resp, err := f.uc.ReplaceLines(context.Background(), testAccountID, created.ID, []dto.InvoiceLineRequest{
		lineaEUR("Reemplazo", 3, 5000, nil),
	})
	require.NoError(t, err)

	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "Reemplazo", resp.Lines[0].Description)
	require.NotNil(t, resp.TotalVatExclusive)
	assert.Equal(t, int64(15000), resp.TotalVatExclusive.AmountMinor)
	assert.Equal(t, int64(15000), resp.TotalVatInclusive.AmountMinor, "línea sin tasa no aporta IVA")
}

func TestReplaceLines_FacturaEmitidaNoSeToca(t *testing.T) {
	f := newInvoiceFixture(t)
	created := f.crearBorrador(t, nil)
	f.store.invoices[created.ID].Draft = false

	_, err := f.uc.ReplaceLines(context.Background(), testAccountID, created.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvoiceLocked)
}

func TestLock_BorradorNoEsBloqueable(t *testing.T) {
	f := newInvoiceFixture(t)
	created := f.crearBorrador(t, nil)

	err := f.uc.PreventModifications(context.Background(), testAccountID, created.ID)
	assert.ErrorIs(t, err, domain.ErrDraftNotLockable)
}

func TestLock_YDesbloqueoSobreEmitida(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	created := f.crearBorrador(t, nil)
	f.store.invoices[created.ID].Draft = false

	require.NoError(t, f.uc.PreventModifications(ctx, testAccountID, created.ID))
	assert.True(t, f.store.invoices[created.ID].Locked)

	require.NoError(t, f.uc.AllowModifications(ctx, testAccountID, created.ID))
	assert.False(t, f.store.invoices[created.ID].Locked)
}

func TestDelete_CascadaDeLineasYPagos(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	rate := decimal.NewFromInt(21)
	created := f.crearBorrador(t, []dto.InvoiceLineRequest{lineaEUR("Algo", 1, 10000, &rate)})

	amount := money.MustOfMinor(5000, "EUR")
	f.store.payments["pay-1"] = &entity.Payment{
		ID:        "pay-1",
		AccountID: testAccountID,
		Payable:   entity.PayableRef{Kind: entity.PayableKindInvoice, ID: created.ID},
		Amount:    amount,
	}

	require.NoError(t, f.uc.Delete(ctx, testAccountID, created.ID))

	assert.NotContains(t, f.store.invoices, created.ID)
	assert.Empty(t, f.store.lines[created.ID])
	assert.NotContains(t, f.store.payments, "pay-1", "los pagos caen con la factura")
}

func TestGet_OtraCuentaEsNotFound(t *testing.T) {
	f := newInvoiceFixture(t)
	created := f.crearBorrador(t, nil)

	_, err := f.uc.Get(context.Background(), "acc-otra", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetVatBreakdown_OrdenadoPorTasa(t *testing.T) {
	f := newInvoiceFixture(t)
	alta := decimal.NewFromInt(21)
	baja := decimal.NewFromInt(10)
	created := f.crearBorrador(t, []dto.InvoiceLineRequest{
		lineaEUR("Tasa alta", 1, 10000, &alta),
		lineaEUR("Tasa baja", 1, 10000, &baja),
		lineaEUR("Sin tasa", 1, 10000, nil),
	})

	rows, err := f.uc.GetVatBreakdown(context.Background(), testAccountID, created.ID)
	require.NoError(t, err)

	require.Len(t, rows, 2, "las líneas sin tasa no entran al desglose")
	assert.True(t, rows[0].Rate.LessThan(rows[1].Rate), "orden ascendente por tasa")
	assert.Equal(t, int64(10000), rows[0].Base.AmountMinor)
	assert.Equal(t, int64(1000), rows[0].VatAmount.AmountMinor)
	assert.Equal(t, int64(2100), rows[1].VatAmount.AmountMinor)
}
