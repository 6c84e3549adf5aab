package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Fields errores de validación por campo (solo con code VALIDATION).
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse respuesta simple para operaciones sin cuerpo propio.
type MessageResponse struct {
	Message string `json:"message"`
}

// SearchResponse resultado de GET /api/search/:view.
type SearchResponse struct {
	View    string     `json:"view"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}
