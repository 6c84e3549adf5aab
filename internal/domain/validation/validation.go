// Package validation contiene las reglas de formato de los formularios de alta
// (Kundennummer, PLZ, teléfonos, IBAN, ...). Los errores se acumulan por campo.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
)

var (
	reFiveDigits = regexp.MustCompile(`^\d{5}$`)
	rePhone      = regexp.MustCompile(`^(\+?\d{2,3}\s?)?\d{2,4}\s?\d{5,}$`)
	reMobile     = regexp.MustCompile(`^(\+?\d{2,3}\s?)?\d{7,}$`)
	reEmail      = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	reDigits     = regexp.MustCompile(`^\d+$`)
)

var maxVAT = decimal.NewFromInt(100)

// FieldError error de un campo concreto.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// Errors lista de errores de campo. errors.Is(err, domain.ErrInvalidInput) es true.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

func (e Errors) Unwrap() error { return domain.ErrInvalidInput }

// Checker acumula errores de campo.
type Checker struct {
	errs Errors
}

// Check registra msg para field si ok es false.
func (c *Checker) Check(ok bool, field, msg string) {
	if !ok {
		c.errs = append(c.errs, FieldError{Field: field, Message: msg})
	}
}

// Optional como Check pero ignora valores vacíos.
func (c *Checker) Optional(value string, rule func(string) bool, field, msg string) {
	if value == "" {
		return
	}
	c.Check(rule(value), field, msg)
}

// Err devuelve nil o Errors.
func (c *Checker) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

// CustomerNumber Kundennummer: cinco dígitos entre 00001 y 99999.
func CustomerNumber(s string) bool {
	return reFiveDigits.MatchString(s) && s != "00000"
}

// InvoiceNumber número de factura de ancho fijo (cinco dígitos).
func InvoiceNumber(s string) bool {
	return reFiveDigits.MatchString(s)
}

func HouseNumber(s string) bool { return between(s, 1, 4) }
func ZIP(s string) bool         { return between(s, 1, 7) }
func UstIDNr(s string) bool     { return between(s, 1, 11) }
func IBAN(s string) bool        { return between(s, 1, 22) }
func BIC(s string) bool         { return between(s, 1, 12) }
func Description(s string) bool { return utf8.RuneCountInString(s) <= 1000 }
func Phone(s string) bool       { return rePhone.MatchString(s) }
func Mobile(s string) bool      { return reMobile.MatchString(s) }
func Email(s string) bool       { return reEmail.MatchString(s) }

// PositionNumber número de partida: solo dígitos (>= 0).
func PositionNumber(s string) bool { return reDigits.MatchString(s) }

// VATRate porcentaje entre 0 y 100 inclusive.
func VATRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(maxVAT)
}

// NonEmpty cadena con algo más que espacios.
func NonEmpty(s string) bool { return strings.TrimSpace(s) != "" }

func between(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}
