package dto

// ExportResponse archivos escritos por una exportación.
type ExportResponse struct {
	InvoiceNr string `json:"invoice_nr"`
	XMLPath   string `json:"xml_path"`
	PDFPath   string `json:"pdf_path"`
	Digest    string `json:"digest"`
}

// BundleRequest body para POST /api/invoices/:nr/bundle.
type BundleRequest struct {
	Password string `json:"password"`
}

// ExportFailure factura que no se pudo exportar en un lote.
type ExportFailure struct {
	InvoiceNr string `json:"invoice_nr"`
	Error     string `json:"error"`
}

// MissingReportResponse resultado de POST /api/exports/missing.
type MissingReportResponse struct {
	Exported []string        `json:"exported"`
	Skipped  int             `json:"skipped"`
	Failed   []ExportFailure `json:"failed"`
}
