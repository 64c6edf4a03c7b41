package billing_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	appbilling "github.com/tu-usuario/invoicing-pro/internal/application/billing"
	"github.com/tu-usuario/invoicing-pro/internal/domain"
	"github.com/tu-usuario/invoicing-pro/internal/domain/entity"
	"github.com/tu-usuario/invoicing-pro/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia. Imitan el comportamiento
// observable de los adaptadores PostgreSQL: copias al leer, unicidad del
// número de factura, serialización de la "transacción" con un mutex global
// (equivalente funcional del SELECT ... FOR UPDATE sobre el consecutivo).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	invoices  map[string]*entity.Invoice
	lines     map[string][]*entity.InvoiceLine
	payments  map[string]*entity.Payment
	sequences map[string]*entity.NumberSequence // clave accountID|token

	failIncrement bool // inyecta fallo entre guardar factura e incrementar
}

func decimalOne() decimal.Decimal { return decimal.NewFromInt(1) }

func newMemStore() *memStore {
	return &memStore{
		invoices:  make(map[string]*entity.Invoice),
		lines:     make(map[string][]*entity.InvoiceLine),
		payments:  make(map[string]*entity.Payment),
		sequences: make(map[string]*entity.NumberSequence),
	}
}

func copyInvoice(inv *entity.Invoice) *entity.Invoice {
	c := *inv
	return &c
}

// ── InvoiceRepository ─────────────────────────────────────────────────────────

type memInvoiceRepo struct{ s *memStore }

var _ repository.InvoiceRepository = (*memInvoiceRepo)(nil)

func (r *memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (r *memInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return copyInvoice(inv), nil
}

func (r *memInvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *memInvoiceRepo) UpdateIssued(_ context.Context, inv *entity.Invoice) error {
	// Índice único (cuenta, consecutivo, número): un duplicado reproduce la
	// violación 23505 del adaptador real.
	for _, other := range r.s.invoices {
		if other.ID == inv.ID || other.InvoiceNumber == nil || inv.InvoiceNumber == nil {
			continue
		}
		if other.AccountID == inv.AccountID &&
			other.NumberSequenceID != nil && inv.NumberSequenceID != nil &&
			*other.NumberSequenceID == *inv.NumberSequenceID &&
			*other.InvoiceNumber == *inv.InvoiceNumber {
			return domain.ErrSequenceIntegrity
		}
	}
	r.s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (r *memInvoiceRepo) UpdateTotals(_ context.Context, inv *entity.Invoice) error {
	r.s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (r *memInvoiceRepo) UpdateLocked(_ context.Context, inv *entity.Invoice) error {
	r.s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (r *memInvoiceRepo) Delete(_ context.Context, id string) error {
	delete(r.s.invoices, id)
	delete(r.s.lines, id)
	for pid, p := range r.s.payments {
		if p.Payable.Kind == entity.PayableKindInvoice && p.Payable.ID == id {
			delete(r.s.payments, pid)
		}
	}
	return nil
}

func (r *memInvoiceRepo) CreateLine(_ context.Context, line *entity.InvoiceLine) error {
	r.s.lines[line.InvoiceID] = append(r.s.lines[line.InvoiceID], line)
	return nil
}

func (r *memInvoiceRepo) ReplaceLines(_ context.Context, invoiceID string, lines []*entity.InvoiceLine) error {
	r.s.lines[invoiceID] = append([]*entity.InvoiceLine(nil), lines...)
	return nil
}

func (r *memInvoiceRepo) ListLines(_ context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	lines := append([]*entity.InvoiceLine(nil), r.s.lines[invoiceID]...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
	return lines, nil
}

// ── PaymentRepository ─────────────────────────────────────────────────────────

type memPaymentRepo struct{ s *memStore }

var _ repository.PaymentRepository = (*memPaymentRepo)(nil)

func (r *memPaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	c := *p
	r.s.payments[p.ID] = &c
	return nil
}

func (r *memPaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *memPaymentRepo) SoftDelete(_ context.Context, id string) error {
	p, ok := r.s.payments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.DeletedAt == nil {
		now := time.Now()
		p.DeletedAt = &now
	}
	return nil
}

func (r *memPaymentRepo) ListActiveByPayable(_ context.Context, payable entity.PayableRef) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.s.payments {
		if p.Payable == payable && p.IsActive() {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) ListByPayable(_ context.Context, payable entity.PayableRef) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.s.payments {
		if p.Payable == payable {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

// ── NumberSequenceRepository ──────────────────────────────────────────────────

var errIncrementInjected = errors.New("fallo inyectado antes de incrementar")

type memSeqRepo struct{ s *memStore }

var _ repository.NumberSequenceRepository = (*memSeqRepo)(nil)

func (r *memSeqRepo) GetOrCreateForUpdate(_ context.Context, accountID, token, format string) (*entity.NumberSequence, error) {
	key := accountID + "|" + token
	if seq, ok := r.s.sequences[key]; ok {
		c := *seq
		return &c, nil
	}
	seq := &entity.NumberSequence{
		ID:            "seq-" + key,
		AccountID:     accountID,
		SequenceToken: token,
		Format:        format,
		NextNumber:    1,
	}
	r.s.sequences[key] = seq
	c := *seq
	return &c, nil
}

func (r *memSeqRepo) IncrementNextNumber(_ context.Context, id string) error {
	if r.s.failIncrement {
		return errIncrementInjected
	}
	for _, seq := range r.s.sequences {
		if seq.ID == id {
			seq.NextNumber++
			return nil
		}
	}
	return domain.ErrNotFound
}

// ── BillingTxRunner ───────────────────────────────────────────────────────────

// memTxRunner serializa cada unidad de trabajo con el mutex del store, igual
// que la fila del consecutivo bloqueada FOR UPDATE serializa las emisiones.
// No simula rollback: los tests de fallo observan el estado parcial que el
// protocolo debe tolerar.
type memTxRunner struct{ s *memStore }

var _ appbilling.BillingTxRunner = (*memTxRunner)(nil)

func (t *memTxRunner) RunBilling(_ context.Context, fn func(
	repository.InvoiceRepository,
	repository.PaymentRepository,
	repository.NumberSequenceRepository,
) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return fn(&memInvoiceRepo{s: t.s}, &memPaymentRepo{s: t.s}, &memSeqRepo{s: t.s})
}

// ── InvoiceLocker / EventPublisher ────────────────────────────────────────────

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

type timeoutLocker struct{}

func (timeoutLocker) Acquire(context.Context, string) (func(), error) {
	return nil, domain.ErrLockTimeout
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []appbilling.InvoicePaidEvent
}

func (p *recordingPublisher) PublishInvoicePaid(_ context.Context, e appbilling.InvoicePaidEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// ── CompanyRepository ─────────────────────────────────────────────────────────

type memCompanyRepo struct {
	companies map[string]*entity.Company
}

var _ repository.CompanyRepository = (*memCompanyRepo)(nil)

func (r *memCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *memCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *memCompanyRepo) ListByAccount(_ context.Context, accountID string) ([]*entity.Company, error) {
	var out []*entity.Company
	for _, c := range r.companies {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ── AccountRepository ─────────────────────────────────────────────────────────

type memAccountRepo struct {
	accounts map[string]*entity.Account
}

var _ repository.AccountRepository = (*memAccountRepo)(nil)

func (r *memAccountRepo) Create(_ context.Context, a *entity.Account) error {
	r.accounts[a.ID] = a
	return nil
}

func (r *memAccountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}
