package entity

import "time"

// Address dirección propia de un cliente o de un prestador de servicios.
type Address struct {
	ID        int64
	Street    string
	Number    string // número de casa, 1..4 caracteres
	ZIP       string
	City      string
	Country   string
	CreatedAt time.Time
}
