package export_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/export"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/exportdoc"
)

// ─── Fakes ───────────────────────────────────────────────────────────────────

type fakeInvoices struct {
	invoices  map[string]*entity.Invoice
	positions map[string][]entity.Position
	err       error
}

func (f *fakeInvoices) Create(context.Context, *entity.Invoice) error { return nil }
func (f *fakeInvoices) GetByNumber(_ context.Context, nr string) (*entity.Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	inv, ok := f.invoices[nr]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}
func (f *fakeInvoices) List(ctx context.Context) ([]*entity.Invoice, error) {
	nrs, _ := f.ListNumbers(ctx)
	out := make([]*entity.Invoice, 0, len(nrs))
	for _, nr := range nrs {
		cp := *f.invoices[nr]
		out = append(out, &cp)
	}
	return out, nil
}
func (f *fakeInvoices) ListNumbers(context.Context) ([]string, error) {
	out := []string{}
	for nr := range f.invoices {
		out = append(out, nr)
	}
	sort.Strings(out)
	return out, nil
}
func (f *fakeInvoices) Delete(context.Context, string) error                { return nil }
func (f *fakeInvoices) AttachPosition(context.Context, string, int64) error { return nil }
func (f *fakeInvoices) DetachPosition(context.Context, string, int64) error { return nil }
func (f *fakeInvoices) CountPositions(_ context.Context, nr string) (int, error) {
	return len(f.positions[nr]), nil
}
func (f *fakeInvoices) ListPositions(_ context.Context, nr string) ([]entity.Position, error) {
	out := []entity.Position{}
	return append(out, f.positions[nr]...), nil
}

type fakeCustomers struct{ m map[string]*entity.Customer }

func (f *fakeCustomers) Create(context.Context, *entity.Customer) error { return nil }
func (f *fakeCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	return f.m[id], nil
}
func (f *fakeCustomers) List(context.Context) ([]*entity.Customer, error) { return nil, nil }
func (f *fakeCustomers) Delete(context.Context, string) error             { return nil }

type fakeProviders struct {
	m        map[string]*entity.ServiceProvider
	ceos     []entity.CEO
	accounts []entity.BankAccount
	logo     *entity.Logo
}

func (f *fakeProviders) Create(context.Context, *entity.ServiceProvider) error { return nil }
func (f *fakeProviders) GetByID(_ context.Context, id string) (*entity.ServiceProvider, error) {
	return f.m[id], nil
}
func (f *fakeProviders) List(context.Context) ([]*entity.ServiceProvider, error) { return nil, nil }
func (f *fakeProviders) Delete(context.Context, string) error                    { return nil }
func (f *fakeProviders) ListCEOs(context.Context, string) ([]entity.CEO, error) {
	return append([]entity.CEO{}, f.ceos...), nil
}
func (f *fakeProviders) ListAccounts(context.Context, string) ([]entity.BankAccount, error) {
	return append([]entity.BankAccount{}, f.accounts...), nil
}
func (f *fakeProviders) CreateLogo(context.Context, *entity.Logo) (int64, error) { return 0, nil }
func (f *fakeProviders) GetLogo(_ context.Context, id int64) (*entity.Logo, error) {
	if f.logo == nil || f.logo.ID != id {
		return nil, nil
	}
	return f.logo, nil
}

// fakeRenderer escribe un PDF simbólico; falla para los números en failFor.
type fakeRenderer struct {
	failFor map[string]bool
	logos   []*entity.Logo
}

func (r *fakeRenderer) Render(doc *exportdoc.Document, logo *entity.Logo, w io.Writer) error {
	if r.failFor[doc.InvoiceNr()] {
		return errors.New("fallo de render")
	}
	r.logos = append(r.logos, logo)
	_, err := io.WriteString(w, "%PDF-fake "+doc.InvoiceNr())
	return err
}

type fakeBundler struct {
	password string
	files    []export.File
}

func (b *fakeBundler) Write(w io.Writer, password string, files []export.File) error {
	b.password, b.files = password, files
	_, err := io.WriteString(w, "PK")
	return err
}

type memStore struct{ files map[string][]byte }

func (s *memStore) Write(name string, data []byte) (string, error) {
	s.files[name] = data
	return "/export/" + name, nil
}
func (s *memStore) Exists(name string) (bool, error) {
	_, ok := s.files[name]
	return ok, nil
}

type fakeReport struct {
	rows []entity.InvoiceSummary
}

func (r *fakeReport) Generate(rows []entity.InvoiceSummary, _ time.Time) ([]byte, error) {
	r.rows = rows
	return []byte("%PDF-register"), nil
}

// ─── Fixture ─────────────────────────────────────────────────────────────────

type fixture struct {
	invoices  *fakeInvoices
	providers *fakeProviders
	renderer  *fakeRenderer
	bundler   *fakeBundler
	store     *memStore
	report    *fakeReport
	svc       *export.Service
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture() *fixture {
	logoID := int64(3)
	f := &fixture{
		invoices: &fakeInvoices{
			invoices: map[string]*entity.Invoice{
				"00007": {
					InvoiceNr: "00007", CreationDate: time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC),
					CustID: "00001", UstIDNr: "DE123456789",
					LaborCost: dec("100"), VATRateLabor: dec("19"), VATRatePositions: dec("19"),
				},
			},
			positions: map[string][]entity.Position{
				"00007": {{ID: 4, Name: "Fliesen", Description: "Bad", Area: dec("10.0"), UnitPrice: dec("25.50")}},
			},
		},
		providers: &fakeProviders{
			m: map[string]*entity.ServiceProvider{
				"DE123456789": {
					UstIDNr: "DE123456789", ProviderName: "Fliesen Meier GmbH", LogoID: &logoID,
					Address: &entity.Address{Street: "Werkstraße", Number: "3", ZIP: "12345", City: "Potsdam"},
				},
			},
			ceos:     []entity.CEO{{TaxNumber: "12/345", Name: "Hans Meier"}},
			accounts: []entity.BankAccount{{IBAN: "DE89370400440532013000", BIC: "COBADEFFXXX", BankName: "Commerzbank"}},
			logo:     &entity.Logo{ID: 3, FileName: "logo.png", MimeType: "image/png", Data: []byte{1}},
		},
		renderer: &fakeRenderer{failFor: map[string]bool{}},
		bundler:  &fakeBundler{},
		store:    &memStore{files: map[string][]byte{}},
		report:   &fakeReport{},
	}
	customers := &fakeCustomers{m: map[string]*entity.Customer{
		"00001": {CustID: "00001", FirstName: "Erika", LastName: "Mustermann", Gender: "w",
			Address: &entity.Address{Street: "Hauptstraße", Number: "12", ZIP: "10115", City: "Berlin", Country: "Deutschland"}},
	}}
	f.svc = export.NewService(export.Deps{
		Invoices:          f.invoices,
		Customers:         customers,
		Providers:         f.providers,
		Renderer:          f.renderer,
		Bundler:           f.bundler,
		Store:             f.store,
		Report:            f.report,
		MinPasswordLength: 8,
		Logger:            zerolog.Nop(),
	})
	return f
}

var ctx = context.Background()

// ─── Ensamblado ──────────────────────────────────────────────────────────────

func TestAssemble_SeccionesYCampos(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Assemble(ctx, "00007")
	require.NoError(t, err)

	assert.Equal(t, "00007", doc.InvoiceNr())
	assert.Equal(t, "15.03.2020", doc.Invoice.Get("CREATION_DATE"))
	assert.Equal(t, "19", doc.Invoice.Get("VAT_RATE_POSITIONS"))
	assert.Equal(t, "Mustermann", doc.Customer.Get("LAST_NAME"))
	assert.Equal(t, "Berlin", doc.Customer.Get("CITY"))
	assert.Equal(t, "Potsdam", doc.ServiceProvider.Get("CITY"))
	assert.Equal(t, "3", doc.ServiceProvider.Get("FK_LOGO_ID"))

	require.Len(t, doc.CEOs, 1)
	assert.Equal(t, "Hans Meier", doc.CEOs[0].Get("CEO_NAME"))
	require.Len(t, doc.Positions, 1)
	assert.Equal(t, "4", doc.Positions[0].Get("POS_ID"))
	assert.Equal(t, "25.5", doc.Positions[0].Get("UNIT_PRICE"))
	require.Len(t, doc.Accounts, 1)
	assert.Equal(t, "Commerzbank", doc.Accounts[0].Get("BANK_NAME"))
}

func TestAssemble_Determinista(t *testing.T) {
	f := newFixture()
	a, err := f.svc.Assemble(ctx, "00007")
	require.NoError(t, err)
	b, err := f.svc.Assemble(ctx, "00007")
	require.NoError(t, err)

	xa, err := a.ToXML()
	require.NoError(t, err)
	xb, err := b.ToXML()
	require.NoError(t, err)
	assert.Equal(t, xa, xb, "dos ensamblados sin escrituras producen el mismo XML")
}

func TestAssemble_FacturaInexistenteDevuelveDocumentoVacio(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Assemble(ctx, "99999")
	require.NoError(t, err)

	assert.True(t, doc.IsBlank())
	assert.NotNil(t, doc.Positions)
	assert.Empty(t, doc.Positions)
	assert.True(t, doc.Customer.IsEmpty())
}

func TestAssemble_SinCuentaBancaria(t *testing.T) {
	f := newFixture()
	f.providers.accounts = nil
	doc, err := f.svc.Assemble(ctx, "00007")
	require.NoError(t, err)

	assert.NotNil(t, doc.Accounts)
	assert.Empty(t, doc.Accounts)
}

func TestAssemble_PrestadorInexistente(t *testing.T) {
	f := newFixture()
	f.invoices.invoices["00007"].UstIDNr = "DE000000000"
	doc, err := f.svc.Assemble(ctx, "00007")
	require.NoError(t, err)

	assert.True(t, doc.ServiceProvider.IsEmpty())
	assert.Empty(t, doc.CEOs)
	assert.Empty(t, doc.Accounts)
	assert.Len(t, doc.Positions, 1)
}

func TestAssemble_ErrorDeInfraestructura(t *testing.T) {
	f := newFixture()
	f.invoices.err = errors.New("conexión perdida")
	_, err := f.svc.Assemble(ctx, "00007")
	assert.Error(t, err)
}

// ─── Exportación ─────────────────────────────────────────────────────────────

func TestExportInvoice_EscribeXMLyPDF(t *testing.T) {
	f := newFixture()
	res, err := f.svc.ExportInvoice(ctx, "00007")
	require.NoError(t, err)

	assert.Equal(t, "/export/rechnung_00007.pdf", res.PDFPath)
	assert.Equal(t, "/export/rechnung_00007.xml", res.XMLPath)
	require.Contains(t, f.store.files, "rechnung_00007.xml")

	digest, err := exportdoc.DigestXML(f.store.files["rechnung_00007.xml"])
	require.NoError(t, err)
	assert.Equal(t, digest, res.Digest)

	require.Len(t, f.renderer.logos, 1)
	require.NotNil(t, f.renderer.logos[0], "el logo del prestador llega al renderer")
	assert.Equal(t, "logo.png", f.renderer.logos[0].FileName)
}

func TestExportInvoice_Inexistente(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ExportInvoice(ctx, "99999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.store.files)
}

func TestBundle_ContrasenaCorta(t *testing.T) {
	f := newFixture()
	_, _, err := f.svc.Bundle(ctx, "00007", "kurz")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
}

func TestBundle_ContenidoYManifiesto(t *testing.T) {
	f := newFixture()
	data, name, err := f.svc.Bundle(ctx, "00007", "geheim123")
	require.NoError(t, err)

	assert.Equal(t, "rechnung_00007.zip", name)
	assert.Equal(t, []byte("PK"), data)
	assert.Equal(t, "geheim123", f.bundler.password)
	require.Len(t, f.bundler.files, 3)
	assert.Equal(t, export.BundleXMLName, f.bundler.files[0].Name)
	assert.Equal(t, export.BundlePDFName, f.bundler.files[1].Name)

	digest, err := exportdoc.DigestXML(f.bundler.files[0].Data)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(f.bundler.files[2].Data), "xml_c14n_sha256: "+digest))
}

func TestGenerateMissing_ContinuaTrasFallos(t *testing.T) {
	f := newFixture()
	base := *f.invoices.invoices["00007"]
	for _, nr := range []string{"00001", "00002", "00003"} {
		inv := base
		inv.InvoiceNr = nr
		f.invoices.invoices[nr] = &inv
	}
	f.store.files["rechnung_00001.pdf"] = []byte("ya existe")
	f.renderer.failFor["00003"] = true

	rep, err := f.svc.GenerateMissing(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"00002", "00007"}, rep.Exported)
	assert.Equal(t, 1, rep.Skipped)
	require.Len(t, rep.Failed, 1)
	assert.Equal(t, "00003", rep.Failed[0].InvoiceNr)
}

func TestRegister_TotalesPorFactura(t *testing.T) {
	f := newFixture()
	data, err := f.svc.Register(ctx)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-register", string(data))

	require.Len(t, f.report.rows, 1)
	row := f.report.rows[0]
	assert.Equal(t, "Erika Mustermann", row.CustomerName)
	assert.Equal(t, "Fliesen Meier GmbH", row.ProviderName)
	assert.True(t, dec("255").Equal(row.Net))
	assert.True(t, dec("48.45").Equal(row.VAT))
	assert.True(t, dec("303.45").Equal(row.Gross))
}

// ─── Verificación ────────────────────────────────────────────────────────────

func TestVerifyBundle_DigestCoincide(t *testing.T) {
	f := newFixture()
	_, _, err := f.svc.Bundle(ctx, "00007", "geheim123")
	require.NoError(t, err)

	digest, err := export.VerifyBundle(f.bundler.files)
	require.NoError(t, err)
	assert.Len(t, digest, 64)
}

func TestVerifyBundle_XMLModificado(t *testing.T) {
	f := newFixture()
	_, _, err := f.svc.Bundle(ctx, "00007", "geheim123")
	require.NoError(t, err)

	files := append([]export.File(nil), f.bundler.files...)
	files[0].Data = []byte(strings.Replace(string(files[0].Data), "Fliesen", "Parkett", 1))

	_, err = export.VerifyBundle(files)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestVerifyBundle_SinManifiesto(t *testing.T) {
	_, err := export.VerifyBundle([]export.File{{Name: export.BundleXMLName, Data: []byte("<invoice_data/>")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
