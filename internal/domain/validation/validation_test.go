package validation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/validation"
)

func TestCustomerNumber(t *testing.T) {
	assert.True(t, validation.CustomerNumber("00001"))
	assert.True(t, validation.CustomerNumber("99999"))
	assert.False(t, validation.CustomerNumber("00000"), "00000 está fuera de rango")
	assert.False(t, validation.CustomerNumber("1234"))
	assert.False(t, validation.CustomerNumber("123456"))
	assert.False(t, validation.CustomerNumber("12a45"))
}

func TestPhoneYMobile(t *testing.T) {
	assert.True(t, validation.Phone("+49 351 35266472"))
	assert.True(t, validation.Phone("0351 3488354"))
	assert.False(t, validation.Phone("0351-3488354"))

	assert.True(t, validation.Mobile("+49 17335266472"))
	assert.True(t, validation.Mobile("01733488624"))
	assert.False(t, validation.Mobile("0173 348"))
}

func TestLongitudes(t *testing.T) {
	assert.True(t, validation.HouseNumber("12a"))
	assert.False(t, validation.HouseNumber(""))
	assert.False(t, validation.HouseNumber("12345"))
	assert.True(t, validation.ZIP("01067"))
	assert.False(t, validation.ZIP("12345678"))
	assert.True(t, validation.IBAN("DE89370400440532013000"))
	assert.False(t, validation.IBAN("DE89370400440532013000X"))
	assert.True(t, validation.BIC("COBADEFFXXX"))
	assert.False(t, validation.UstIDNr("DE1234567890"))
}

func TestEmailYPositionNumber(t *testing.T) {
	assert.True(t, validation.Email("info@maler-mueller.de"))
	assert.False(t, validation.Email("info@localhost"))
	assert.True(t, validation.PositionNumber("0"))
	assert.False(t, validation.PositionNumber("-1"))
}

func TestVATRate(t *testing.T) {
	assert.True(t, validation.VATRate(decimal.Zero))
	assert.True(t, validation.VATRate(decimal.NewFromInt(100)))
	assert.False(t, validation.VATRate(decimal.NewFromInt(-1)))
	assert.False(t, validation.VATRate(decimal.RequireFromString("100.01")))
}

func TestCustomer_AcumulaErroresPorCampo(t *testing.T) {
	err := validation.Customer(&entity.Customer{
		CustID:  "1",
		Gender:  "x",
		Address: &entity.Address{Street: "Hauptstraße", Number: "12345", ZIP: "01067", City: "Dresden"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "debe envolver ErrInvalidInput")

	var fe validation.Errors
	require.True(t, errors.As(err, &fe))
	fields := make([]string, 0, len(fe))
	for _, e := range fe {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"cust_id", "last_name", "gender", "number"}, fields)
}

func TestServiceProvider_CamposOpcionales(t *testing.T) {
	p := &entity.ServiceProvider{
		UstIDNr:      "DE123456789",
		ProviderName: "Malerbetrieb Müller",
		Address:      &entity.Address{Street: "Am Markt", Number: "3", ZIP: "01067", City: "Dresden"},
	}
	assert.NoError(t, validation.ServiceProvider(p), "teléfono/email vacíos no se validan")

	p.Email = "kaputt"
	assert.Error(t, validation.ServiceProvider(p))
}

func TestInvoice(t *testing.T) {
	inv := &entity.Invoice{
		InvoiceNr:        "00007",
		CreationDate:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CustID:           "00001",
		UstIDNr:          "DE123456789",
		VATRateLabor:     decimal.NewFromInt(19),
		VATRatePositions: decimal.NewFromInt(19),
	}
	assert.NoError(t, validation.Invoice(inv))

	inv.VATRatePositions = decimal.NewFromInt(120)
	assert.Error(t, validation.Invoice(inv))
}
