package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Rechnungsregister ─────────────────────────────────────────────────────────

// RegisterReport listado de facturas con totales (Rechnungsregister) generado con Maroto v2.
type RegisterReport struct {
	author string
}

// NewRegisterReport construye el generador del listado.
func NewRegisterReport(author string) *RegisterReport {
	return &RegisterReport{author: author}
}

// Generate una fila por factura en el orden recibido y una fila final con la suma.
func (g *RegisterReport) Generate(rows []entity.InvoiceSummary, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Rechnungsregister", true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(registerHeaderRow(len(rows), generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(registerTableHeaderRow())

	net, vat, gross := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		m.AddRows(registerDetailRow(r))
		net, vat, gross = net.Add(r.Net), vat.Add(r.VAT), gross.Add(r.Gross)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(registerSumRow(net, vat, gross))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar registro: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func registerHeaderRow(count int, generatedAt time.Time) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("Rechnungsregister", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%d Rechnungen", count), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Stand: "+generatedAt.Format("02.01.2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

// registerTableHeaderRow cabecera de la tabla; las columnas suman 12.
func registerTableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Rechnungsnr.", 2, align.Left),
		h("Datum", 1, align.Left),
		h("Kunde", 2, align.Left),
		h("Dienstleister", 2, align.Left),
		h("Netto", 2, align.Right),
		h("MwSt.", 1, align.Right),
		h("Brutto", 2, align.Right),
	)
}

func registerDetailRow(r entity.InvoiceSummary) core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{
			Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		cell(r.InvoiceNr, 2, align.Left),
		cell(r.CreationDate.Format("02.01.2006"), 1, align.Left),
		cell(nonEmpty(r.CustomerName, "-"), 2, align.Left),
		cell(nonEmpty(r.ProviderName, "-"), 2, align.Left),
		cell(money.FormatEUR(r.Net), 2, align.Right),
		cell(money.FormatEUR(r.VAT), 1, align.Right),
		cell(money.FormatEUR(r.Gross), 2, align.Right),
	)
}

func registerSumRow(net, vat, gross decimal.Decimal) core.Row {
	value := func(s string, size int) core.Col {
		return col.New(size).Add(text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1, Right: 1,
		}))
	}
	return row.New(9).Add(
		col.New(7).Add(text.New("Summe", props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1, Left: 1,
		})),
		value(money.FormatEUR(net), 2),
		value(money.FormatEUR(vat), 1),
		value(money.FormatEUR(gross), 2),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
