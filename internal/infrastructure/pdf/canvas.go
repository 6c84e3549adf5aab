package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Canvas superficie de dibujo en milímetros, origen arriba a la izquierda.
// Las cadenas llegan en UTF-8; la implementación decide la codificación.
type Canvas interface {
	AddPage()
	PageNo() int
	SetFont(style string, size float64)
	// Text dibuja s con la línea base en y.
	Text(x, y float64, s string)
	// TextRight dibuja s terminando en xRight.
	TextRight(xRight, y float64, s string)
	Line(x1, y1, x2, y2 float64)
	FillRect(x, y, w, h float64)
	Image(name string, data []byte, imageType string, x, y, w, h float64) error
	StringWidth(s string) float64
}

// totalPagesAlias lo sustituye fpdf por el número total de páginas al cerrar el documento.
const totalPagesAlias = "{nb}"

// fpdfCanvas Canvas sobre go-pdf/fpdf con fuentes core (Helvetica, Windows-1252).
type fpdfCanvas struct {
	pdf *fpdf.Fpdf
	enc *encoding.Encoder
}

func newFPDFCanvas(title, author string) *fpdfCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages(totalPagesAlias)
	c := &fpdfCanvas{
		pdf: pdf,
		enc: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
	}
	pdf.SetTitle(c.cp1252(title), false)
	pdf.SetAuthor(c.cp1252(author), false)
	pdf.SetCreator("rechnungsverwaltung", false)
	return c
}

// cp1252 convierte a la codificación de las fuentes core; los caracteres sin
// equivalente se sustituyen en lugar de fallar.
func (c *fpdfCanvas) cp1252(s string) string {
	out, err := c.enc.String(s)
	if err != nil {
		return s
	}
	return out
}

func (c *fpdfCanvas) AddPage()    { c.pdf.AddPage() }
func (c *fpdfCanvas) PageNo() int { return c.pdf.PageNo() }

func (c *fpdfCanvas) SetFont(style string, size float64) {
	c.pdf.SetFont("Helvetica", style, size)
}

func (c *fpdfCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, y, c.cp1252(s))
}

func (c *fpdfCanvas) TextRight(xRight, y float64, s string) {
	enc := c.cp1252(s)
	c.pdf.Text(xRight-c.pdf.GetStringWidth(enc), y, enc)
}

func (c *fpdfCanvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.SetLineWidth(0.2)
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *fpdfCanvas) FillRect(x, y, w, h float64) {
	c.pdf.SetFillColor(230, 230, 230)
	c.pdf.Rect(x, y, w, h, "F")
}

// Image registra la imagen y la dibuja. Un error de fpdf se limpia para que el
// resto del documento se pueda seguir generando sin la imagen.
func (c *fpdfCanvas) Image(name string, data []byte, imageType string, x, y, w, h float64) error {
	opts := fpdf.ImageOptions{ImageType: imageType}
	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if err := c.pdf.Error(); err != nil {
		c.pdf.ClearError()
		return fmt.Errorf("pdf: imagen %s: %w", name, err)
	}
	c.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if err := c.pdf.Error(); err != nil {
		c.pdf.ClearError()
		return fmt.Errorf("pdf: imagen %s: %w", name, err)
	}
	return nil
}

func (c *fpdfCanvas) StringWidth(s string) float64 {
	return c.pdf.GetStringWidth(c.cp1252(s))
}

// Output cierra el documento y lo escribe en w.
func (c *fpdfCanvas) Output(w io.Writer) error {
	if err := c.pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: escribir documento: %w", err)
	}
	return nil
}
