package repository

import "context"

// SearchResult filas de una vista de búsqueda con sus columnas en orden.
type SearchResult struct {
	Columns []string
	Rows    [][]string
}

// SearchRepository búsqueda libre sobre las vistas *_full.
type SearchRepository interface {
	Search(ctx context.Context, view string, terms []string) (*SearchResult, error)
}
