package billing_test

import (
	"context"
	"sort"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/billing"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
)

// memStore implementa todos los puertos de facturación en memoria.
type memStore struct {
	customers map[string]*entity.Customer
	providers map[string]*entity.ServiceProvider
	logos     map[int64]*entity.Logo
	ceos      map[string]entity.CEO
	links     map[[2]string]bool // {st_nr, ust_idnr}
	banks     map[string]entity.Bank
	accounts  []entity.BankAccount
	positions map[int64]*entity.Position
	invoices  map[string]*entity.Invoice
	refs      map[string]map[int64]bool
	nextID    int64
	terms     []string
}

func newMemStore() *memStore {
	return &memStore{
		customers: map[string]*entity.Customer{},
		providers: map[string]*entity.ServiceProvider{},
		logos:     map[int64]*entity.Logo{},
		ceos:      map[string]entity.CEO{},
		links:     map[[2]string]bool{},
		banks:     map[string]entity.Bank{},
		positions: map[int64]*entity.Position{},
		invoices:  map[string]*entity.Invoice{},
		refs:      map[string]map[int64]bool{},
	}
}

func (s *memStore) repos() billing.Repos {
	return billing.Repos{
		Customers: customerRepo{s}, Providers: providerRepo{s}, CEOs: ceoRepo{s},
		Banks: bankRepo{s}, Positions: positionRepo{s}, Invoices: invoiceRepo{s},
	}
}

// Run sin rollback real: los tests de error comprueban solo el error devuelto.
func (s *memStore) Run(_ context.Context, fn func(billing.Repos) error) error {
	return fn(s.repos())
}

// ── clientes ──

type customerRepo struct{ s *memStore }

func (r customerRepo) Create(_ context.Context, c *entity.Customer) error {
	if _, ok := r.s.customers[c.CustID]; ok {
		return domain.ErrDuplicate
	}
	r.s.customers[c.CustID] = c
	return nil
}
func (r customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	return r.s.customers[id], nil
}
func (r customerRepo) List(context.Context) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustID < out[j].CustID })
	return out, nil
}
func (r customerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.customers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.customers, id)
	return nil
}

// ── prestadores ──

type providerRepo struct{ s *memStore }

func (r providerRepo) Create(_ context.Context, p *entity.ServiceProvider) error {
	if _, ok := r.s.providers[p.UstIDNr]; ok {
		return domain.ErrDuplicate
	}
	cp := *p
	cp.CEOs, cp.Accounts = nil, nil
	r.s.providers[p.UstIDNr] = &cp
	return nil
}
func (r providerRepo) GetByID(_ context.Context, id string) (*entity.ServiceProvider, error) {
	p, ok := r.s.providers[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r providerRepo) List(context.Context) ([]*entity.ServiceProvider, error) {
	var out []*entity.ServiceProvider
	for _, p := range r.s.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UstIDNr < out[j].UstIDNr })
	return out, nil
}
func (r providerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.providers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.providers, id)
	for k := range r.s.links {
		if k[1] == id {
			delete(r.s.links, k)
		}
	}
	kept := r.s.accounts[:0]
	for _, a := range r.s.accounts {
		if a.UstIDNr != id {
			kept = append(kept, a)
		}
	}
	r.s.accounts = kept
	return nil
}
func (r providerRepo) ListCEOs(_ context.Context, id string) ([]entity.CEO, error) {
	out := []entity.CEO{}
	for k := range r.s.links {
		if k[1] == id {
			out = append(out, r.s.ceos[k[0]])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaxNumber < out[j].TaxNumber })
	return out, nil
}
func (r providerRepo) ListAccounts(_ context.Context, id string) ([]entity.BankAccount, error) {
	out := []entity.BankAccount{}
	for _, a := range r.s.accounts {
		if a.UstIDNr == id {
			a.BankName = r.s.banks[a.BIC].Name
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IBAN < out[j].IBAN })
	return out, nil
}
func (r providerRepo) CreateLogo(_ context.Context, l *entity.Logo) (int64, error) {
	r.s.nextID++
	l.ID = r.s.nextID
	r.s.logos[l.ID] = l
	return l.ID, nil
}
func (r providerRepo) GetLogo(_ context.Context, id int64) (*entity.Logo, error) {
	return r.s.logos[id], nil
}

type ceoRepo struct{ s *memStore }

func (r ceoRepo) GetByTaxNumber(_ context.Context, nr string) (*entity.CEO, error) {
	c, ok := r.s.ceos[nr]
	if !ok {
		return nil, nil
	}
	return &c, nil
}
func (r ceoRepo) Create(_ context.Context, c entity.CEO) error {
	r.s.ceos[c.TaxNumber] = c
	return nil
}
func (r ceoRepo) Link(_ context.Context, nr, ust string) error {
	r.s.links[[2]string{nr, ust}] = true
	return nil
}
func (r ceoRepo) IsLinked(_ context.Context, nr, ust string) (bool, error) {
	return r.s.links[[2]string{nr, ust}], nil
}
func (r ceoRepo) Unlink(_ context.Context, nr, ust string) error {
	k := [2]string{nr, ust}
	if !r.s.links[k] {
		return domain.ErrNotFound
	}
	delete(r.s.links, k)
	return nil
}

type bankRepo struct{ s *memStore }

func (r bankRepo) Ensure(_ context.Context, b entity.Bank) error {
	if _, ok := r.s.banks[b.BIC]; !ok {
		r.s.banks[b.BIC] = b
	}
	return nil
}
func (r bankRepo) CreateAccount(_ context.Context, a entity.BankAccount) error {
	r.s.accounts = append(r.s.accounts, a)
	return nil
}

// ── partidas y facturas ──

type positionRepo struct{ s *memStore }

func (r positionRepo) Create(_ context.Context, p *entity.Position) (int64, error) {
	r.s.nextID++
	p.ID = r.s.nextID
	r.s.positions[p.ID] = p
	return p.ID, nil
}
func (r positionRepo) GetByID(_ context.Context, id int64) (*entity.Position, error) {
	return r.s.positions[id], nil
}
func (r positionRepo) List(context.Context) ([]*entity.Position, error) {
	var out []*entity.Position
	for _, p := range r.s.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
func (r positionRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.positions[id]; !ok {
		return domain.ErrNotFound
	}
	for _, m := range r.s.refs {
		delete(m, id)
	}
	delete(r.s.positions, id)
	return nil
}
func (r positionRepo) ListInvoiceNumbers(_ context.Context, id int64) ([]string, error) {
	out := []string{}
	for nr, m := range r.s.refs {
		if m[id] {
			out = append(out, nr)
		}
	}
	sort.Strings(out)
	return out, nil
}

type invoiceRepo struct{ s *memStore }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if _, ok := r.s.invoices[inv.InvoiceNr]; ok {
		return domain.ErrDuplicate
	}
	cp := *inv
	cp.Positions = nil
	r.s.invoices[inv.InvoiceNr] = &cp
	r.s.refs[inv.InvoiceNr] = map[int64]bool{}
	return nil
}
func (r invoiceRepo) GetByNumber(_ context.Context, nr string) (*entity.Invoice, error) {
	inv, ok := r.s.invoices[nr]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}
func (r invoiceRepo) List(context.Context) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, nr := range r.numbers() {
		cp := *r.s.invoices[nr]
		out = append(out, &cp)
	}
	return out, nil
}
func (r invoiceRepo) numbers() []string {
	out := []string{}
	for nr := range r.s.invoices {
		out = append(out, nr)
	}
	sort.Strings(out)
	return out
}
func (r invoiceRepo) ListNumbers(context.Context) ([]string, error) { return r.numbers(), nil }
func (r invoiceRepo) Delete(_ context.Context, nr string) error {
	if _, ok := r.s.invoices[nr]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.invoices, nr)
	delete(r.s.refs, nr)
	return nil
}
func (r invoiceRepo) AttachPosition(_ context.Context, nr string, id int64) error {
	r.s.refs[nr][id] = true
	return nil
}
func (r invoiceRepo) DetachPosition(_ context.Context, nr string, id int64) error {
	if !r.s.refs[nr][id] {
		return domain.ErrNotFound
	}
	delete(r.s.refs[nr], id)
	return nil
}
func (r invoiceRepo) CountPositions(_ context.Context, nr string) (int, error) {
	return len(r.s.refs[nr]), nil
}
func (r invoiceRepo) ListPositions(_ context.Context, nr string) ([]entity.Position, error) {
	out := []entity.Position{}
	for id := range r.s.refs[nr] {
		out = append(out, *r.s.positions[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── búsqueda ──

type searchRepo struct{ s *memStore }

func (r searchRepo) Search(_ context.Context, view string, terms []string) (*repository.SearchResult, error) {
	r.s.terms = terms
	return &repository.SearchResult{Columns: []string{"view"}, Rows: [][]string{{view}}}, nil
}
