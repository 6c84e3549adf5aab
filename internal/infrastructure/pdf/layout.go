package pdf

import (
	"strings"
)

// Geometría de página A4 en mm.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 20.0
	marginRight  = 20.0
	marginTop    = 20.0
	contentRight = pageWidth - marginRight
	contentWidth = contentRight - marginLeft

	lineHeight = 5.0
	// baseline distancia desde el borde superior de una línea hasta su línea base.
	baseline = 3.8

	// bodyTop primera línea de contenido bajo la cabecera.
	bodyTop = 45.0
	// bodyLimit nada del cuerpo se dibuja por debajo; el pie ocupa el resto.
	bodyLimit = pageHeight - 25.0
	footerY   = pageHeight - 10.0

	bodyFontSize   = 10.0
	footerFontSize = 8.0
)

// writer escribe de arriba abajo y comprueba el espacio antes de dibujar.
// Cuando algo no cabe cierra la página con el pie, abre otra y repite la cabecera.
type writer struct {
	c      Canvas
	y      float64
	header func(w *writer)
	footer func(w *writer)

	fontStyle string
	fontSize  float64
}

func newWriter(c Canvas, header, footer func(w *writer)) *writer {
	return &writer{c: c, header: header, footer: footer, fontSize: bodyFontSize}
}

// start abre la primera página.
func (w *writer) start() {
	w.c.AddPage()
	w.decorate(w.header)
	w.y = bodyTop
}

// finish dibuja el pie de la última página.
func (w *writer) finish() {
	w.decorate(w.footer)
}

func (w *writer) newPage() {
	w.decorate(w.footer)
	w.c.AddPage()
	w.decorate(w.header)
	w.y = bodyTop
}

// decorate ejecuta cabecera o pie sin alterar la fuente del cuerpo.
func (w *writer) decorate(fn func(w *writer)) {
	if fn == nil {
		return
	}
	style, size := w.fontStyle, w.fontSize
	fn(w)
	w.font(style, size)
}

func (w *writer) font(style string, size float64) {
	w.fontStyle, w.fontSize = style, size
	w.c.SetFont(style, size)
}

// ensure garantiza h mm libres; si no los hay, salta de página.
func (w *writer) ensure(h float64) {
	if w.y+h > bodyLimit {
		w.newPage()
	}
}

// keep reserva un bloque de h mm en la misma página siempre que el bloque quepa
// en una página vacía. Un bloque más alto se reparte línea a línea.
func (w *writer) keep(h float64) {
	if h <= bodyLimit-bodyTop {
		w.ensure(h)
	}
}

func (w *writer) skip(h float64) {
	w.y += h
}

// text una línea a la izquierda en x.
func (w *writer) text(x float64, s string) {
	w.ensure(lineHeight)
	w.c.Text(x, w.y+baseline, s)
	w.y += lineHeight
}

// row una línea con texto a la izquierda y un importe alineado a la derecha.
func (w *writer) row(x float64, left, right string) {
	w.ensure(lineHeight)
	if left != "" {
		w.c.Text(x, w.y+baseline, left)
	}
	if right != "" {
		w.c.TextRight(contentRight, w.y+baseline, right)
	}
	w.y += lineHeight
}

// lines dibuja varias líneas ya partidas.
func (w *writer) lines(x float64, ls []string) {
	for _, l := range ls {
		w.text(x, l)
	}
}

// rule línea horizontal de margen a margen.
func (w *writer) rule() {
	w.ensure(2)
	w.c.Line(marginLeft, w.y+1, contentRight, w.y+1)
	w.y += 2
}

// wrap parte s en líneas de como máximo width mm con la fuente actual.
// Respeta los saltos de línea explícitos; una palabra más ancha que width se corta.
func wrap(c Canvas, s string, width float64) []string {
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := ""
		for _, word := range words {
			for c.StringWidth(word) > width {
				if cur != "" {
					out = append(out, cur)
					cur = ""
				}
				head, rest := cutToWidth(c, word, width)
				out = append(out, head)
				word = rest
			}
			if word == "" {
				continue
			}
			candidate := word
			if cur != "" {
				candidate = cur + " " + word
			}
			if c.StringWidth(candidate) <= width {
				cur = candidate
				continue
			}
			out = append(out, cur)
			cur = word
		}
		if cur != "" {
			out = append(out, cur)
		}
	}
	return out
}

// cutToWidth el prefijo más largo de word que cabe en width (al menos una runa).
func cutToWidth(c Canvas, word string, width float64) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && c.StringWidth(string(runes[:n+1])) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
