package entity

import "time"

// ServiceProvider prestador de servicios (Dienstleister) que emite las facturas.
// UstIDNr (USt-IdNr.) es la clave primaria.
type ServiceProvider struct {
	UstIDNr      string
	ProviderName string
	MobileNumber string
	PhoneNumber  string
	FaxNumber    string
	Email        string
	Website      string
	AddressID    int64
	Address      *Address
	LogoID       *int64
	CEOs         []CEO
	Accounts     []BankAccount
	CreatedAt    time.Time
}

// CEO registro compartido de gerentes, identificado por número fiscal (St.-Nr.).
// La relación con los prestadores vive en ref_labor_cost.
type CEO struct {
	TaxNumber string
	Name      string
}

// Bank banco identificado por BIC.
type Bank struct {
	BIC  string
	Name string
}

// BankAccount cuenta bancaria de un prestador.
type BankAccount struct {
	IBAN     string
	BIC      string
	BankName string
	UstIDNr  string
}

// Logo imagen del prestador tal como se guardó (bytes + mime type).
type Logo struct {
	ID        int64
	FileName  string
	Data      []byte
	MimeType  string
	CreatedAt time.Time
}
