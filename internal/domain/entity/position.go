package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position partida facturable. No pertenece a una sola factura: se asocia a
// cero o más facturas mediante ref_invoices_positions.
type Position struct {
	ID          int64
	Name        string
	Description string
	Area        decimal.Decimal // m² o cantidad
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
}

// LineTotal importe de la línea (área × precio unitario), sin redondear.
func (p *Position) LineTotal() decimal.Decimal {
	return p.Area.Mul(p.UnitPrice)
}
