package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/money"
)

// DefaultVATRate tipo de IVA (MwSt.) por defecto en Alemania.
var DefaultVATRate = decimal.NewFromInt(19)

// Invoice cabecera de una factura (Rechnung). InvoiceNr es un string numérico de ancho fijo,
// único e inmutable.
type Invoice struct {
	InvoiceNr        string
	CreationDate     time.Time
	CustID           string
	UstIDNr          string
	LaborCost        decimal.Decimal
	VATRateLabor     decimal.Decimal
	VATRatePositions decimal.Decimal
	Positions        []Position
}

// InvoiceSummary fila del listado de facturas con totales ya calculados.
type InvoiceSummary struct {
	InvoiceNr    string
	CreationDate time.Time
	CustomerName string
	ProviderName string
	Net          decimal.Decimal
	VAT          decimal.Decimal
	Gross        decimal.Decimal
}

// Totals importes de la factura con las partidas cargadas en Positions.
func (inv *Invoice) Totals() money.Totals {
	lines := make([]money.Line, len(inv.Positions))
	for i, p := range inv.Positions {
		lines[i] = money.Line{Area: p.Area, UnitPrice: p.UnitPrice}
	}
	return money.Compute(lines, inv.LaborCost, inv.VATRatePositions, inv.VATRateLabor)
}
