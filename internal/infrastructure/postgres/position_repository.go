package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
)

var _ repository.PositionRepository = (*PositionRepo)(nil)

// PositionRepo partidas facturables.
type PositionRepo struct {
	q Querier
}

// NewPositionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPositionRepository(q Querier) *PositionRepo {
	return &PositionRepo{q: q}
}

const positionColumns = `pos_id, name, description, area, unit_price, creation_date`

func (r *PositionRepo) Create(ctx context.Context, p *entity.Position) (int64, error) {
	err := r.q.QueryRow(ctx, `
		INSERT INTO positions (name, description, area, unit_price, creation_date)
		VALUES ($1, $2, $3, $4, $5) RETURNING pos_id`,
		p.Name, p.Description, p.Area, p.UnitPrice, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return 0, fmt.Errorf("insert position: %w", err)
	}
	return p.ID, nil
}

func (r *PositionRepo) GetByID(ctx context.Context, id int64) (*entity.Position, error) {
	p, err := scanPosition(r.q.QueryRow(ctx, `SELECT `+positionColumns+` FROM positions WHERE pos_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get position: %w", err)
	}
	return p, nil
}

func (r *PositionRepo) List(ctx context.Context) ([]*entity.Position, error) {
	rows, err := r.q.Query(ctx, `SELECT `+positionColumns+` FROM positions ORDER BY pos_id`)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete quita la partida de todas las facturas y la borra.
func (r *PositionRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM ref_invoices_positions WHERE fk_positions_pos_id = $1`, id); err != nil {
		return fmt.Errorf("delete position links: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM positions WHERE pos_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListInvoiceNumbers facturas que usan la partida.
func (r *PositionRepo) ListInvoiceNumbers(ctx context.Context, id int64) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT fk_invoices_invoice_nr FROM ref_invoices_positions
		WHERE fk_positions_pos_id = $1 ORDER BY fk_invoices_invoice_nr`, id)
	if err != nil {
		return nil, fmt.Errorf("list position invoices: %w", err)
	}
	defer rows.Close()
	list := []string{}
	for rows.Next() {
		var nr string
		if err := rows.Scan(&nr); err != nil {
			return nil, fmt.Errorf("scan invoice nr: %w", err)
		}
		list = append(list, nr)
	}
	return list, rows.Err()
}

func scanPosition(row pgx.Row) (*entity.Position, error) {
	var p entity.Position
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Area, &p.UnitPrice, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
