package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatEUR formatea con separador de miles '.' y coma decimal: 1234.5 → "1.234,50 €".
func FormatEUR(d decimal.Decimal) string {
	return FormatNumber(d, Places) + " €"
}

// FormatNumber formatea d con el número de decimales dado en notación alemana.
func FormatNumber(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart)
	if frac != "" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatPercent tipo de IVA sin ceros sobrantes: 19 → "19", 7.5 → "7,5".
func FormatPercent(rate decimal.Decimal) string {
	return strings.Replace(rate.String(), ".", ",", 1)
}

// groupThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
