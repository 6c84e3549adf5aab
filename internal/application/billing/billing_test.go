package billing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/billing"
	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/validation"
)

var (
	ctx      = context.Background()
	validate = billing.Options{Validate: true}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func customerReq(id string) dto.CreateCustomerRequest {
	return dto.CreateCustomerRequest{
		CustID: id, FirstName: "Erika", LastName: "Mustermann", Gender: "w",
		Address: dto.AddressDTO{Street: "Hauptstraße", Number: "12", ZIP: "10115", City: "Berlin"},
	}
}

func providerReq(ust string, ceos ...dto.CEODTO) dto.CreateProviderRequest {
	return dto.CreateProviderRequest{
		UstIDNr: ust, ProviderName: "Fliesen Meier GmbH", PhoneNumber: "030 1234567",
		Address:  dto.AddressDTO{Street: "Werkstraße", Number: "3", ZIP: "12345", City: "Potsdam"},
		CEOs:     ceos,
		Accounts: []dto.BankAccountDTO{{IBAN: "DE89370400440532013000", BIC: "COBADEFFXXX", BankName: "Commerzbank"}},
	}
}

// seed crea un cliente y un prestador válidos.
func seed(t *testing.T, s *memStore) {
	t.Helper()
	_, err := billing.NewCustomerUseCase(s, customerRepo{s}, validate).Create(ctx, customerReq("00001"))
	require.NoError(t, err)
	_, err = billing.NewProviderUseCase(s, providerRepo{s}, ceoRepo{s}, validate).Create(ctx, providerReq("DE123456789"))
	require.NoError(t, err)
}

// ─── Clientes ────────────────────────────────────────────────────────────────

func TestCustomerCreate_GuardaConDireccion(t *testing.T) {
	s := newMemStore()
	uc := billing.NewCustomerUseCase(s, customerRepo{s}, validate)

	out, err := uc.Create(ctx, customerReq("00042"))
	require.NoError(t, err)
	assert.Equal(t, "00042", out.CustID)
	assert.Equal(t, "Berlin", out.Address.City)
	require.Contains(t, s.customers, "00042")
}

func TestCustomerCreate_Duplicado(t *testing.T) {
	s := newMemStore()
	uc := billing.NewCustomerUseCase(s, customerRepo{s}, validate)
	_, err := uc.Create(ctx, customerReq("00042"))
	require.NoError(t, err)

	_, err = uc.Create(ctx, customerReq("00042"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCustomerCreate_ValidacionSegunFlag(t *testing.T) {
	bad := customerReq("00000")
	bad.Address.Number = "12345"

	s := newMemStore()
	_, err := billing.NewCustomerUseCase(s, customerRepo{s}, validate).Create(ctx, bad)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2, "cust_id y number")

	_, err = billing.NewCustomerUseCase(s, customerRepo{s}, billing.Options{}).Create(ctx, bad)
	assert.NoError(t, err, "sin validación se acepta tal cual")
}

func TestCustomerGet_NoEncontrado(t *testing.T) {
	s := newMemStore()
	_, err := billing.NewCustomerUseCase(s, customerRepo{s}, validate).Get(ctx, "99999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Prestadores y CEOs ──────────────────────────────────────────────────────

func TestProviderCreate_CEOExistenteSeReutiliza(t *testing.T) {
	s := newMemStore()
	uc := billing.NewProviderUseCase(s, providerRepo{s}, ceoRepo{s}, validate)
	ceo := dto.CEODTO{TaxNumber: "12/345/67890", Name: "Hans Meier"}

	_, err := uc.Create(ctx, providerReq("DE111111111", ceo))
	require.NoError(t, err)
	out, err := uc.Create(ctx, providerReq("DE222222222", ceo))
	require.NoError(t, err)

	assert.Len(t, s.ceos, 1)
	assert.Len(t, s.links, 2)
	assert.Equal(t, []dto.CEODTO{ceo}, out.CEOs)
	require.Len(t, out.Accounts, 1)
	assert.Equal(t, "COBADEFFXXX", out.Accounts[0].BIC)
}

func TestProviderCreate_CEOConOtroNombre(t *testing.T) {
	s := newMemStore()
	uc := billing.NewProviderUseCase(s, providerRepo{s}, ceoRepo{s}, validate)
	_, err := uc.Create(ctx, providerReq("DE111111111", dto.CEODTO{TaxNumber: "1", Name: "Hans Meier"}))
	require.NoError(t, err)

	_, err = uc.Create(ctx, providerReq("DE222222222", dto.CEODTO{TaxNumber: "1", Name: "Otto Meier"}))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestProviderCreate_CEORepetidoEnLaPeticion(t *testing.T) {
	s := newMemStore()
	uc := billing.NewProviderUseCase(s, providerRepo{s}, ceoRepo{s}, validate)
	c := dto.CEODTO{TaxNumber: "1", Name: "Hans Meier"}

	_, err := uc.Create(ctx, providerReq("DE111111111", c, c))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, s.providers)
}

func TestProviderUnlinkCEO_ConservaRegistro(t *testing.T) {
	s := newMemStore()
	uc := billing.NewProviderUseCase(s, providerRepo{s}, ceoRepo{s}, validate)
	_, err := uc.Create(ctx, providerReq("DE111111111", dto.CEODTO{TaxNumber: "1", Name: "Hans Meier"}))
	require.NoError(t, err)

	require.NoError(t, uc.UnlinkCEO(ctx, "DE111111111", "1"))
	assert.Empty(t, s.links)
	assert.Contains(t, s.ceos, "1", "el CEO sigue en el registro")

	assert.ErrorIs(t, uc.UnlinkCEO(ctx, "DE111111111", "1"), domain.ErrNotFound)
}

func TestProviderLogo(t *testing.T) {
	s := newMemStore()
	uc := billing.NewProviderUseCase(s, providerRepo{s}, ceoRepo{s}, validate)
	req := providerReq("DE111111111")
	req.Logo = &dto.LogoDTO{FileName: "logo.png", MimeType: "image/png", Data: []byte{1, 2, 3}}
	out, err := uc.Create(ctx, req)
	require.NoError(t, err)
	assert.True(t, out.HasLogo)

	logo, err := uc.Logo(ctx, "DE111111111")
	require.NoError(t, err)
	assert.Equal(t, "logo.png", logo.FileName)

	_, err = uc.Create(ctx, providerReq("DE222222222"))
	require.NoError(t, err)
	_, err = uc.Logo(ctx, "DE222222222")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Facturas ────────────────────────────────────────────────────────────────

func invoiceReq(nr string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		InvoiceNr: nr, CreationDate: "2020-03-15", CustID: "00001", UstIDNr: "DE123456789",
		LaborCost: dec("100"),
		Positions: []dto.CreatePositionRequest{
			{Name: "Fliesen verlegen", Area: dec("10"), UnitPrice: dec("20.50")},
			{Name: "Fugen", Area: dec("5"), UnitPrice: dec("10")},
		},
	}
}

func TestInvoiceCreate_PartidasInlineYTotales(t *testing.T) {
	s := newMemStore()
	seed(t, s)
	uc := billing.NewInvoiceUseCase(s, invoiceRepo{s}, validate)

	out, err := uc.Create(ctx, invoiceReq("00007"))
	require.NoError(t, err)

	assert.Equal(t, "2020-03-15", out.CreationDate)
	require.Len(t, out.Positions, 2)
	assert.True(t, out.Positions[0].ID < out.Positions[1].ID, "ordenadas por POS_ID")
	assert.True(t, dec("19").Equal(out.VATRatePositions), "IVA por defecto")
	assert.Equal(t, "255", out.Totals.Net.String())
	assert.Equal(t, "48.45", out.Totals.VAT.String())
	assert.Equal(t, "303.45", out.Totals.Gross.String())
	assert.Equal(t, "15.97", out.Totals.LaborVAT.String())
}

func TestInvoiceCreate_VinculaPartidaExistente(t *testing.T) {
	s := newMemStore()
	seed(t, s)
	pos, err := billing.NewPositionUseCase(positionRepo{s}, validate).Create(ctx,
		dto.CreatePositionRequest{Name: "Anfahrt", Area: dec("1"), UnitPrice: dec("45")})
	require.NoError(t, err)

	req := invoiceReq("00008")
	req.Positions = nil
	req.PositionIDs = []int64{pos.ID, pos.ID}
	out, err := billing.NewInvoiceUseCase(s, invoiceRepo{s}, validate).Create(ctx, req)
	require.NoError(t, err)
	require.Len(t, out.Positions, 1, "ids repetidos se vinculan una vez")

	nrs, err := billing.NewPositionUseCase(positionRepo{s}, validate).Invoices(ctx, pos.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"00008"}, nrs)
}

func TestInvoiceCreate_ErroresDeReferencia(t *testing.T) {
	s := newMemStore()
	seed(t, s)
	uc := billing.NewInvoiceUseCase(s, invoiceRepo{s}, validate)

	req := invoiceReq("00009")
	req.CustID = "00002"
	_, err := uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cliente inexistente")

	req = invoiceReq("00009")
	req.Positions = nil
	req.PositionIDs = []int64{999}
	_, err = uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "partida inexistente")

	req = invoiceReq("00010")
	req.Positions = nil
	_, err = uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin partidas")

	req = invoiceReq("00011")
	req.CreationDate = "15.03.2020"
	_, err = uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "fecha mal formada")
}

func TestInvoiceCreate_Duplicada(t *testing.T) {
	s := newMemStore()
	seed(t, s)
	uc := billing.NewInvoiceUseCase(s, invoiceRepo{s}, validate)
	_, err := uc.Create(ctx, invoiceReq("00007"))
	require.NoError(t, err)

	_, err = uc.Create(ctx, invoiceReq("00007"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestInvoiceDelete_SoloSinPartidas(t *testing.T) {
	s := newMemStore()
	seed(t, s)
	uc := billing.NewInvoiceUseCase(s, invoiceRepo{s}, validate)
	out, err := uc.Create(ctx, invoiceReq("00007"))
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(ctx, "00007"), domain.ErrInvoiceHasLines)

	ids := []int64{out.Positions[0].ID, out.Positions[1].ID}
	require.NoError(t, uc.DetachPositions(ctx, "00007", ids))
	assert.Len(t, s.positions, 2, "las partidas desvinculadas siguen existiendo")

	require.NoError(t, uc.Delete(ctx, "00007"))
	_, err = uc.Get(ctx, "00007")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceDetach_FacturaInexistente(t *testing.T) {
	s := newMemStore()
	uc := billing.NewInvoiceUseCase(s, invoiceRepo{s}, validate)
	assert.ErrorIs(t, uc.DetachPositions(ctx, "00001", []int64{1}), domain.ErrNotFound)
	assert.ErrorIs(t, uc.DetachPositions(ctx, "00001", nil), domain.ErrInvalidInput)
}

func TestInvoiceList_Ordenado(t *testing.T) {
	s := newMemStore()
	seed(t, s)
	uc := billing.NewInvoiceUseCase(s, invoiceRepo{s}, validate)
	for _, nr := range []string{"00003", "00001", "00002"} {
		_, err := uc.Create(ctx, invoiceReq(nr))
		require.NoError(t, err)
	}

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "00001", list[0].InvoiceNr)
	assert.Equal(t, "00003", list[2].InvoiceNr)
}

// ─── Partidas y búsqueda ─────────────────────────────────────────────────────

func TestPositionCreate_Validacion(t *testing.T) {
	s := newMemStore()
	uc := billing.NewPositionUseCase(positionRepo{s}, validate)

	_, err := uc.Create(ctx, dto.CreatePositionRequest{Name: "", Area: dec("-1"), UnitPrice: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := uc.Create(ctx, dto.CreatePositionRequest{Name: "Silikon", Area: dec("2.5"), UnitPrice: dec("4")})
	require.NoError(t, err)
	assert.Equal(t, "10", out.LineTotal.String())
}

func TestSearch_SeparaTerminos(t *testing.T) {
	s := newMemStore()
	out, err := billing.NewSearchUseCase(searchRepo{s}).Search(ctx, "customers", "  berlin   muster ")
	require.NoError(t, err)

	assert.Equal(t, []string{"berlin", "muster"}, s.terms)
	assert.Equal(t, "customers", out.View)
}
