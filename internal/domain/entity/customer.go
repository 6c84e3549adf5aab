package entity

import "time"

// Valores de Gender usados para el saludo de la factura.
const (
	GenderMale    = "m"
	GenderFemale  = "w"
	GenderDiverse = "d"
)

// Customer cliente final (Kunde). CustID es la Kundennummer de 5 dígitos.
type Customer struct {
	CustID    string
	FirstName string
	LastName  string
	Gender    string
	AddressID int64
	Address   *Address
	CreatedAt time.Time
}

// FullName nombre completo tal como aparece en el bloque del destinatario.
func (c *Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
