package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/money"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Compute
// ──────────────────────────────────────────────────────────────────────────────

// Factura 00007: una partida 10 m² × 25,50 € al 19 %.
func TestCompute_EjemploFactura00007(t *testing.T) {
	tot := money.Compute([]money.Line{{Area: d("10.0"), UnitPrice: d("25.50")}}, decimal.Zero, d("19"), d("19"))

	assert.Equal(t, "255.00", tot.Net.StringFixed(2))
	assert.Equal(t, "48.45", tot.VAT.StringFixed(2))
	assert.Equal(t, "303.45", tot.Gross.StringFixed(2))
}

func TestCompute_SinPartidas(t *testing.T) {
	tot := money.Compute(nil, decimal.Zero, d("19"), d("19"))

	assert.True(t, tot.Net.IsZero(), "sin partidas el neto es 0")
	assert.True(t, tot.VAT.IsZero())
	assert.True(t, tot.Gross.IsZero())
}

// La suma decimal no acumula deriva: 0,1 × 3 líneas de 1,00 € da exactamente 0,30.
func TestCompute_SumaExacta(t *testing.T) {
	lines := []money.Line{
		{Area: d("0.1"), UnitPrice: d("1.00")},
		{Area: d("0.1"), UnitPrice: d("1.00")},
		{Area: d("0.1"), UnitPrice: d("1.00")},
	}
	tot := money.Compute(lines, decimal.Zero, d("19"), d("19"))
	assert.True(t, tot.Net.Equal(d("0.30")), "neto = %s", tot.Net)
}

func TestCompute_RedondeoComercial(t *testing.T) {
	// 12,50 × 7 % = 0,875 → 0,88
	tot := money.Compute([]money.Line{{Area: d("1"), UnitPrice: d("12.50")}}, decimal.Zero, d("7"), d("7"))
	assert.Equal(t, "0.88", tot.VAT.StringFixed(2))
	assert.Equal(t, "13.38", tot.Gross.StringFixed(2))
}

func TestCompute_IVAContenidoEnManoDeObra(t *testing.T) {
	tot := money.Compute([]money.Line{{Area: d("2"), UnitPrice: d("100")}}, d("119"), d("19"), d("19"))

	assert.Equal(t, "119.00", tot.Labor.StringFixed(2))
	assert.Equal(t, "19.00", tot.LaborVAT.StringFixed(2), "119 bruto al 19 % contiene 19 de IVA")
	assert.Equal(t, "238.00", tot.Gross.StringFixed(2), "la mano de obra no se suma al bruto")
}

func TestCompute_TiposDistintos(t *testing.T) {
	tot := money.Compute([]money.Line{{Area: d("1"), UnitPrice: d("100")}}, d("107"), d("19"), d("7"))
	assert.Equal(t, "19.00", tot.VAT.StringFixed(2))
	assert.Equal(t, "7.00", tot.LaborVAT.StringFixed(2))
}

// ──────────────────────────────────────────────────────────────────────────────
// Formato
// ──────────────────────────────────────────────────────────────────────────────

func TestFormatEUR(t *testing.T) {
	cases := map[string]string{
		"0":       "0,00 €",
		"303.45":  "303,45 €",
		"1234.5":  "1.234,50 €",
		"1000000": "1.000.000,00 €",
		"-48.455": "-48,46 €",
	}
	for in, want := range cases {
		assert.Equal(t, want, money.FormatEUR(d(in)), in)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "19", money.FormatPercent(d("19")))
	assert.Equal(t, "7,5", money.FormatPercent(d("7.50")))
}
