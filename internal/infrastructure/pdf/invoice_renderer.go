package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/exportdoc"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/money"
)

const (
	logoMaxWidth  = 40.0
	logoMaxHeight = 22.0
	logoTop       = 12.0

	// Columnas de la tabla de partidas.
	colPos   = marginLeft
	colName  = marginLeft + 15
	colPrice = 35.0
	// metaValueX columna de valores de Rechnungsnummer/Kundennummer/Datum.
	metaValueX = marginLeft + 40

	documentDateLayout = "02.01.2006"
)

const missingAccountsText = "Bankverbindung ist in diesem Dokument nicht enthalten. " +
	"Bitte erfragen Sie die Kontodaten beim Rechnungssteller."

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// InvoiceRenderer genera el PDF de una factura (A4, Helvetica) a partir del
// documento de exportación.
type InvoiceRenderer struct {
	footerNote string
	author     string
}

// NewInvoiceRenderer footerNote se imprime a la izquierda del pie de cada página.
func NewInvoiceRenderer(footerNote string) *InvoiceRenderer {
	return &InvoiceRenderer{footerNote: footerNote, author: "rechnungsverwaltung"}
}

// Render escribe el PDF en out. logo puede ser nil; un logo ilegible se omite.
func (r *InvoiceRenderer) Render(doc *exportdoc.Document, logo *entity.Logo, out io.Writer) error {
	title := "Rechnung"
	if nr := doc.InvoiceNr(); nr != "" {
		title += " " + nr
	}
	c := newFPDFCanvas(title, r.author)
	r.draw(c, doc, logo)
	return c.Output(out)
}

// RenderFile escribe el PDF en path.
func (r *InvoiceRenderer) RenderFile(doc *exportdoc.Document, logo *entity.Logo, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pdf: crear %s: %w", path, err)
	}
	if err := r.Render(doc, logo, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// invoiceView valores ya formateados que necesita el dibujo.
type invoiceView struct {
	doc    *exportdoc.Document
	totals money.Totals
	logo   *preparedLogo
}

func (r *InvoiceRenderer) draw(c Canvas, doc *exportdoc.Document, logo *entity.Logo) {
	v := &invoiceView{doc: doc, totals: documentTotals(doc), logo: prepareLogo(logo)}

	w := newWriter(c,
		func(w *writer) { r.header(w, v) },
		func(w *writer) { r.footer(w) },
	)
	w.font("", bodyFontSize)
	w.start()

	r.addresses(w, v)
	r.metadata(w, v)
	r.greeting(w, v)
	r.positions(w, v)
	r.totals(w, v)
	r.closing(w, v)
	r.companyDetails(w, v)

	w.finish()
}

// ─── Cabecera y pie ─────────────────────────────────────────────────────────

func (r *InvoiceRenderer) header(w *writer, v *invoiceView) {
	c := w.c
	lineEnd := contentRight
	if v.logo != nil {
		x := contentRight - v.logo.width
		if err := c.Image("logo", v.logo.data, v.logo.imageType, x, logoTop, v.logo.width, v.logo.height); err != nil {
			// Sin logo la factura sigue siendo válida.
			v.logo = nil
		} else {
			lineEnd = x - 5
		}
	}

	p := v.doc.ServiceProvider
	sender := joinNonEmpty("   •   ",
		p.Get("PROVIDER_NAME"),
		joinNonEmpty(" ", p.Get("STREET"), p.Get("NUMBER")),
		joinNonEmpty(" ", p.Get("ZIP"), p.Get("CITY")),
	)
	w.font("", footerFontSize)
	if sender != "" {
		c.Text(marginLeft, marginTop+baseline, sender)
	}
	c.Line(marginLeft, marginTop+lineHeight, lineEnd, marginTop+lineHeight)
}

func (r *InvoiceRenderer) footer(w *writer) {
	c := w.c
	c.FillRect(marginLeft, footerY-6, contentWidth, 0.4)
	w.font("", footerFontSize)
	if r.footerNote != "" {
		c.Text(marginLeft, footerY, r.footerNote)
	}
	c.TextRight(contentRight, footerY, fmt.Sprintf("Seite %d von %s", c.PageNo(), totalPagesAlias))
}

// ─── Cuerpo ─────────────────────────────────────────────────────────────────

func (r *InvoiceRenderer) addresses(w *writer, v *invoiceView) {
	cu := v.doc.Customer
	w.font("", bodyFontSize)
	w.text(marginLeft, joinNonEmpty(" ", cu.Get("FIRST_NAME"), cu.Get("LAST_NAME")))
	w.text(marginLeft, joinNonEmpty(" ", cu.Get("STREET"), cu.Get("NUMBER")))
	w.text(marginLeft, joinNonEmpty(" ", cu.Get("ZIP"), cu.Get("CITY")))
	w.skip(10)

	p := v.doc.ServiceProvider
	w.text(marginLeft, p.Get("PROVIDER_NAME"))
	if ceo := firstCEO(v.doc); ceo != "" {
		w.text(marginLeft, ceo)
	}
	w.text(marginLeft, joinNonEmpty(" ", p.Get("STREET"), p.Get("NUMBER")))
	w.text(marginLeft, joinNonEmpty(" ", p.Get("ZIP"), p.Get("CITY")))
	w.skip(3)

	for _, contact := range []struct{ label, field string }{
		{"Mobil", "MOBILTELNR"},
		{"Tel.", "TELNR"},
		{"Fax", "FAXNR"},
		{"E-Mail", "EMAIL"},
		{"Web", "WEBSITE"},
	} {
		if value := p.Get(contact.field); value != "" {
			w.text(marginLeft, contact.label+": "+value)
		}
	}
	w.skip(8)
}

func (r *InvoiceRenderer) metadata(w *writer, v *invoiceView) {
	inv := v.doc.Invoice
	w.keep(8 + 3*lineHeight)
	w.font("B", 14)
	w.text(marginLeft, "Rechnung")
	w.skip(3)
	w.font("", bodyFontSize)
	for _, m := range []struct{ label, value string }{
		{"Rechnungsnummer:", inv.Get("INVOICE_NR")},
		{"Kundennummer:", inv.Get("FK_CUSTID")},
		{"Datum:", inv.Get("CREATION_DATE")},
	} {
		w.ensure(lineHeight)
		w.c.Text(marginLeft, w.y+baseline, m.label)
		w.c.Text(metaValueX, w.y+baseline, m.value)
		w.y += lineHeight
	}
	w.skip(8)
}

func (r *InvoiceRenderer) greeting(w *writer, v *invoiceView) {
	w.font("", bodyFontSize)
	w.text(marginLeft, salutation(v.doc.Customer))
	w.skip(2)
	w.lines(marginLeft, wrap(w.c, "vielen Dank für Ihren Auftrag, den wir wie folgt in Rechnung stellen.", contentWidth))
	w.skip(6)
}

func (r *InvoiceRenderer) positions(w *writer, v *invoiceView) {
	w.keep(2*lineHeight + 2)
	w.font("B", bodyFontSize)
	w.ensure(lineHeight)
	w.c.Text(colPos, w.y+baseline, "Pos.")
	w.c.Text(colName, w.y+baseline, "Bezeichnung")
	w.c.TextRight(contentRight, w.y+baseline, "Preis")
	w.y += lineHeight
	w.rule()

	descWidth := contentRight - colPrice - colName
	for i, pos := range v.doc.Positions {
		w.font("", bodyFontSize)
		desc := wrap(w.c, pos.Get("DESCRIPTION"), descWidth)
		if strings.TrimSpace(pos.Get("DESCRIPTION")) == "" {
			desc = nil
		}
		w.keep(float64(2+len(desc))*lineHeight + 2)

		w.font("B", bodyFontSize)
		w.ensure(lineHeight)
		w.c.Text(colPos, w.y+baseline, strconv.Itoa(i+1))
		w.c.Text(colName, w.y+baseline, pos.Get("NAME"))
		w.y += lineHeight

		w.font("", bodyFontSize)
		w.lines(colName+5, desc)

		area := parseDecimal(pos.Get("AREA"))
		price := parseDecimal(pos.Get("UNIT_PRICE"))
		detail := fmt.Sprintf("%s m²  EP: %s", money.FormatNumber(area, money.Places), money.FormatEUR(price))
		w.row(colName, detail, money.FormatEUR(money.Round(money.Line{Area: area, UnitPrice: price}.Total())))
		w.skip(2)
	}
	w.rule()
}

func (r *InvoiceRenderer) totals(w *writer, v *invoiceView) {
	t := v.totals
	w.keep(3*lineHeight + 4)
	w.font("", bodyFontSize)
	w.row(colName, "Nettobetrag:", money.FormatEUR(t.Net))
	w.row(colName, fmt.Sprintf("zzgl. %s %% MwSt.:", money.FormatPercent(t.VATRate)), money.FormatEUR(t.VAT))
	w.font("B", bodyFontSize)
	w.row(colName, "Bruttobetrag:", money.FormatEUR(t.Gross))
	w.font("", bodyFontSize)
	w.skip(6)

	payment := wrap(w.c, fmt.Sprintf(
		"Überweisen Sie bitte den offenen Betrag in Höhe von %s auf das unten aufgeführte Geschäftskonto.",
		money.FormatEUR(t.Gross)), contentWidth)
	w.keep(float64(len(payment)) * lineHeight)
	w.lines(marginLeft, payment)

	if t.Labor.IsPositive() {
		w.skip(2)
		labor := wrap(w.c, fmt.Sprintf(
			"Im Bruttobetrag sind %s Lohnkosten enthalten. Die darin enthaltene Mehrwertsteuer beträgt %s.",
			money.FormatEUR(t.Labor), money.FormatEUR(t.LaborVAT)), contentWidth)
		w.keep(float64(len(labor)) * lineHeight)
		w.lines(marginLeft, labor)
	}
	w.skip(8)
}

func (r *InvoiceRenderer) closing(w *writer, v *invoiceView) {
	w.font("", bodyFontSize)
	w.keep(3 * lineHeight)
	w.text(marginLeft, "Mit freundlichen Grüßen")
	w.skip(lineHeight)
	w.text(marginLeft, firstCEO(v.doc))
	w.skip(6)

	w.font("", 9)
	legal := wrap(w.c, "Sie sind verpflichtet, die Rechnung zu Steuerzwecken zwei Jahre lang aufzubewahren.", contentWidth)
	if month := serviceMonth(v.doc.Invoice.Get("CREATION_DATE")); month != "" {
		legal = append(legal, wrap(w.c, "Die aufgeführten Arbeiten wurden ausgeführt im "+month+".", contentWidth)...)
	}
	w.keep(float64(len(legal)) * lineHeight)
	w.lines(marginLeft, legal)
	w.skip(6)
}

func (r *InvoiceRenderer) companyDetails(w *writer, v *invoiceView) {
	p := v.doc.ServiceProvider

	w.font("", 9)
	seat := []string{
		p.Get("PROVIDER_NAME"),
		joinNonEmpty(" ", p.Get("STREET"), p.Get("NUMBER")),
		joinNonEmpty(" ", p.Get("ZIP"), p.Get("CITY")),
	}
	r.section(w, "Sitz des Unternehmens:", seat)

	var bank []string
	if len(v.doc.Accounts) == 0 {
		bank = wrap(w.c, missingAccountsText, contentWidth)
	}
	for _, acc := range v.doc.Accounts {
		bank = append(bank,
			acc.Get("BANK_NAME"),
			"IBAN: "+acc.Get("IBAN"),
			"BIC: "+acc.Get("BIC"),
		)
	}
	r.section(w, "Bankverbindung:", bank)

	var mgmt []string
	for _, ceo := range v.doc.CEOs {
		mgmt = append(mgmt, ceo.Get("CEO_NAME"), "St.-Nr.: "+ceo.Get("ST_NR"))
	}
	mgmt = append(mgmt, "USt-IdNr.: "+v.doc.Invoice.Get("FK_UST_IDNR"))
	r.section(w, "Geschäftsführung:", mgmt)
}

// section título en negrita seguido de sus líneas, juntos en la misma página si caben.
func (r *InvoiceRenderer) section(w *writer, title string, body []string) {
	w.keep(float64(1+len(body))*lineHeight + 3)
	w.font("B", 9)
	w.text(marginLeft, title)
	w.font("", 9)
	w.lines(marginLeft, body)
	w.skip(3)
}

// ─── Valores derivados ──────────────────────────────────────────────────────

// documentTotals recalcula los importes con las partidas del documento.
// Un tipo de IVA vacío usa el tipo general.
func documentTotals(doc *exportdoc.Document) money.Totals {
	lines := make([]money.Line, 0, len(doc.Positions))
	for _, p := range doc.Positions {
		lines = append(lines, money.Line{
			Area:      parseDecimal(p.Get("AREA")),
			UnitPrice: parseDecimal(p.Get("UNIT_PRICE")),
		})
	}
	return money.Compute(lines,
		parseDecimal(doc.Invoice.Get("LABOR_COST")),
		rateOrDefault(doc.Invoice.Get("VAT_RATE_POSITIONS")),
		rateOrDefault(doc.Invoice.Get("VAT_RATE_LABOR")),
	)
}

func rateOrDefault(s string) decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return entity.DefaultVATRate
	}
	return parseDecimal(s)
}

// parseDecimal "" o valores ilegibles cuentan como 0.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// salutation Herr/Frau según GENDER (m/w); cualquier otro valor usa la fórmula neutra.
func salutation(customer exportdoc.Record) string {
	last := customer.Get("LAST_NAME")
	if last == "" {
		return "Sehr geehrte Damen und Herren,"
	}
	switch strings.ToLower(strings.TrimSpace(customer.Get("GENDER"))) {
	case "m":
		return "Sehr geehrter Herr " + last + ","
	case "w", "f":
		return "Sehr geehrte Frau " + last + ","
	default:
		return "Sehr geehrte Damen und Herren,"
	}
}

// serviceMonth "März 2024" a partir de la fecha de la factura; "" si no se puede leer.
func serviceMonth(creationDate string) string {
	t, err := time.Parse(documentDateLayout, strings.TrimSpace(creationDate))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s %d", germanMonths[t.Month()-1], t.Year())
}

func firstCEO(doc *exportdoc.Document) string {
	if len(doc.CEOs) == 0 {
		return ""
	}
	return doc.CEOs[0].Get("CEO_NAME")
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// ─── Logo ───────────────────────────────────────────────────────────────────

type preparedLogo struct {
	data      []byte
	imageType string
	width     float64
	height    float64
}

// prepareLogo detecta el formato real de los bytes y ajusta el tamaño a la caja
// del logo conservando la proporción. Devuelve nil si la imagen no se puede leer.
func prepareLogo(logo *entity.Logo) *preparedLogo {
	if logo == nil || len(logo.Data) == 0 {
		return nil
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(logo.Data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return nil
	}
	imageType := map[string]string{"png": "PNG", "jpeg": "JPG", "gif": "GIF"}[format]
	if imageType == "" {
		return nil
	}
	ratio := float64(cfg.Height) / float64(cfg.Width)
	w, h := logoMaxWidth, logoMaxWidth*ratio
	if h > logoMaxHeight {
		h = logoMaxHeight
		w = h / ratio
	}
	return &preparedLogo{data: logo.Data, imageType: imageType, width: w, height: h}
}
