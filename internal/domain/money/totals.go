// Package money concentra la aritmética de importes de una factura.
// Todo se calcula con decimal; el redondeo es comercial (mitad hacia arriba, alejándose de cero)
// a dos decimales y solo se aplica a los importes que se muestran.
package money

import (
	"github.com/shopspring/decimal"
)

// Places decimales de los importes mostrados.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Line una partida para el cálculo: área/cantidad y precio unitario.
type Line struct {
	Area      decimal.Decimal
	UnitPrice decimal.Decimal
}

// Total importe exacto de la línea.
func (l Line) Total() decimal.Decimal {
	return l.Area.Mul(l.UnitPrice)
}

// Totals resultado del cálculo de una factura.
type Totals struct {
	Net      decimal.Decimal // suma de líneas, redondeada
	VAT      decimal.Decimal // IVA sobre Net al tipo de las partidas
	Gross    decimal.Decimal // Net + VAT
	VATRate  decimal.Decimal
	Labor    decimal.Decimal // Lohnkosten contenidos en Gross
	LaborVAT decimal.Decimal // IVA contenido en Labor
}

// Round redondeo comercial a dos decimales.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// VATOn IVA de un importe neto: net × rate / 100.
func VATOn(net, rate decimal.Decimal) decimal.Decimal {
	return Round(net.Mul(rate).Div(hundred))
}

// ContainedVAT IVA incluido en un importe bruto: gross × rate / (100 + rate).
func ContainedVAT(gross, rate decimal.Decimal) decimal.Decimal {
	den := hundred.Add(rate)
	if den.IsZero() {
		return decimal.Zero
	}
	return Round(gross.Mul(rate).Div(den))
}

// Compute calcula los totales. vatPositions y vatLabor se validan fuera (0..100).
// El coste de mano de obra es una cifra bruta ya contenida en las partidas; solo se
// informa junto con su IVA para la deducción fiscal (§35a EStG).
func Compute(lines []Line, labor, vatPositions, vatLabor decimal.Decimal) Totals {
	net := decimal.Zero
	for _, l := range lines {
		net = net.Add(l.Total())
	}
	net = Round(net)
	vat := VATOn(net, vatPositions)
	return Totals{
		Net:      net,
		VAT:      vat,
		Gross:    net.Add(vat),
		VATRate:  vatPositions,
		Labor:    Round(labor),
		LaborVAT: ContainedVAT(labor, vatLabor),
	}
}
