package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
)

var _ repository.SearchRepository = (*SearchRepo)(nil)

// searchView vista permitida y sus columnas en orden de presentación.
type searchView struct {
	name    string
	columns []string
	orderBy string
}

// searchViews lista blanca: el nombre de la vista nunca viene del cliente.
var searchViews = map[string]searchView{
	"invoices": {
		name: "view_invoices_full",
		columns: []string{"invoice_nr", "creation_date", "fk_custid", "customer_name", "fk_ust_idnr",
			"provider_name", "labor_cost", "vat_rate_labor", "vat_rate_positions", "net_total"},
		orderBy: "invoice_nr",
	},
	"customers": {
		name:    "view_customers_full",
		columns: []string{"custid", "first_name", "last_name", "gender", "street", "number", "zip", "city", "country"},
		orderBy: "custid",
	},
	"providers": {
		name: "view_service_provider_full",
		columns: []string{"ust_idnr", "provider_name", "telnr", "mobiltelnr", "faxnr", "email", "website",
			"street", "number", "zip", "city", "country", "ceos", "ibans"},
		orderBy: "ust_idnr",
	},
	"positions": {
		name:    "view_positions_full",
		columns: []string{"pos_id", "name", "description", "area", "unit_price", "line_total", "invoices"},
		orderBy: "pos_id",
	},
}

// SearchViews nombres aceptados por Search, en orden estable.
func SearchViews() []string {
	return []string{"customers", "invoices", "positions", "providers"}
}

// SearchRepo búsqueda libre sobre las vistas *_full.
type SearchRepo struct {
	pool *pgxpool.Pool
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepo {
	return &SearchRepo{pool: pool}
}

// Search devuelve todas las columnas de la vista como texto. Cada término debe
// aparecer en al menos una columna; sin términos devuelve la vista completa.
func (r *SearchRepo) Search(ctx context.Context, view string, terms []string) (*repository.SearchResult, error) {
	v, ok := searchViews[view]
	if !ok {
		return nil, fmt.Errorf("%w: vista de búsqueda desconocida %q", domain.ErrInvalidInput, view)
	}
	query, args := buildSearchQuery(v, terms)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", v.name, err)
	}
	defer rows.Close()

	res := &repository.SearchResult{Columns: v.columns, Rows: [][]string{}}
	for rows.Next() {
		cells := make([]string, len(v.columns))
		ptrs := make([]any, len(cells))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		res.Rows = append(res.Rows, cells)
	}
	return res, rows.Err()
}

// buildSearchQuery arma el SELECT con un placeholder por término, reutilizado en todas las columnas.
func buildSearchQuery(v searchView, terms []string) (string, []any) {
	selects := make([]string, len(v.columns))
	for i, c := range v.columns {
		selects[i] = "COALESCE(" + c + "::text, '')"
	}

	var (
		where []string
		args  []any
	)
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		args = append(args, "%"+escapeLike(t)+"%")
		ph := "$" + strconv.Itoa(len(args))
		ors := make([]string, len(v.columns))
		for i, c := range v.columns {
			ors[i] = "COALESCE(" + c + "::text, '') ILIKE " + ph
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(v.name)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(v.orderBy)
	return sb.String(), args
}

// escapeLike neutraliza los comodines de LIKE (la barra es el escape por defecto en PostgreSQL).
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
