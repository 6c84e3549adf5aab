package dto

import "github.com/shopspring/decimal"

// AddressDTO dirección embebida en cliente y prestador.
type AddressDTO struct {
	Street  string `json:"street"`
	Number  string `json:"number"`
	ZIP     string `json:"zip"`
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
}

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	CustID    string     `json:"cust_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Gender    string     `json:"gender"` // m, w, d
	Address   AddressDTO `json:"address"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	CustID    string     `json:"cust_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Gender    string     `json:"gender"`
	Address   AddressDTO `json:"address"`
}

// CEODTO gerente (número fiscal + nombre).
type CEODTO struct {
	TaxNumber string `json:"tax_number"`
	Name      string `json:"name"`
}

// BankAccountDTO cuenta bancaria; el banco se da de alta por BIC si no existe.
type BankAccountDTO struct {
	IBAN     string `json:"iban"`
	BIC      string `json:"bic"`
	BankName string `json:"bank_name"`
}

// LogoDTO imagen subida en base64 (encoding/json lo hace con []byte).
type LogoDTO struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// CreateProviderRequest body para POST /api/providers.
type CreateProviderRequest struct {
	UstIDNr      string           `json:"ust_idnr"`
	ProviderName string           `json:"provider_name"`
	MobileNumber string           `json:"mobile_number,omitempty"`
	PhoneNumber  string           `json:"phone_number,omitempty"`
	FaxNumber    string           `json:"fax_number,omitempty"`
	Email        string           `json:"email,omitempty"`
	Website      string           `json:"website,omitempty"`
	Address      AddressDTO       `json:"address"`
	CEOs         []CEODTO         `json:"ceos"`
	Accounts     []BankAccountDTO `json:"accounts"`
	Logo         *LogoDTO         `json:"logo,omitempty"`
}

// ProviderResponse prestador con CEOs y cuentas.
type ProviderResponse struct {
	UstIDNr      string           `json:"ust_idnr"`
	ProviderName string           `json:"provider_name"`
	MobileNumber string           `json:"mobile_number,omitempty"`
	PhoneNumber  string           `json:"phone_number,omitempty"`
	FaxNumber    string           `json:"fax_number,omitempty"`
	Email        string           `json:"email,omitempty"`
	Website      string           `json:"website,omitempty"`
	Address      AddressDTO       `json:"address"`
	HasLogo      bool             `json:"has_logo"`
	CEOs         []CEODTO         `json:"ceos"`
	Accounts     []BankAccountDTO `json:"accounts"`
}

// CreatePositionRequest body para POST /api/positions y partidas inline de una factura.
type CreatePositionRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Area        decimal.Decimal `json:"area"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PositionResponse partida en respuestas.
type PositionResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Area        decimal.Decimal `json:"area"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// PositionIDs vincula partidas existentes; Positions crea partidas nuevas en la misma transacción.
type CreateInvoiceRequest struct {
	InvoiceNr        string                  `json:"invoice_nr"`
	CreationDate     string                  `json:"creation_date,omitempty"` // YYYY-MM-DD; vacío = hoy
	CustID           string                  `json:"cust_id"`
	UstIDNr          string                  `json:"ust_idnr"`
	LaborCost        decimal.Decimal         `json:"labor_cost"`
	VATRateLabor     *decimal.Decimal        `json:"vat_rate_labor,omitempty"`
	VATRatePositions *decimal.Decimal        `json:"vat_rate_positions,omitempty"`
	PositionIDs      []int64                 `json:"position_ids,omitempty"`
	Positions        []CreatePositionRequest `json:"positions,omitempty"`
}

// DetachPositionsRequest body para POST /api/invoices/:nr/positions/detach.
type DetachPositionsRequest struct {
	PositionIDs []int64 `json:"position_ids"`
}

// TotalsResponse importes calculados de una factura.
type TotalsResponse struct {
	Net      decimal.Decimal `json:"net"`
	VATRate  decimal.Decimal `json:"vat_rate"`
	VAT      decimal.Decimal `json:"vat"`
	Gross    decimal.Decimal `json:"gross"`
	Labor    decimal.Decimal `json:"labor"`
	LaborVAT decimal.Decimal `json:"labor_vat"`
}

// InvoiceResponse factura con partidas y totales para GET /api/invoices/:nr.
type InvoiceResponse struct {
	InvoiceNr        string             `json:"invoice_nr"`
	CreationDate     string             `json:"creation_date"`
	CustID           string             `json:"cust_id"`
	UstIDNr          string             `json:"ust_idnr"`
	LaborCost        decimal.Decimal    `json:"labor_cost"`
	VATRateLabor     decimal.Decimal    `json:"vat_rate_labor"`
	VATRatePositions decimal.Decimal    `json:"vat_rate_positions"`
	Positions        []PositionResponse `json:"positions"`
	Totals           TotalsResponse     `json:"totals"`
	// Export resultado de la exportación automática, si está activa.
	Export *ExportResponse `json:"export,omitempty"`
}
