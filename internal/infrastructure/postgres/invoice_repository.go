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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas y la tabla ref_invoices_positions.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `invoice_nr, creation_date, fk_custid, fk_ust_idnr, labor_cost, vat_rate_labor, vat_rate_positions`

// Create inserta la cabecera. Las partidas se vinculan con AttachPosition.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inv.InvoiceNr, inv.CreationDate, inv.CustID, inv.UstIDNr,
		inv.LaborCost, inv.VATRateLabor, inv.VATRatePositions,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: cliente o prestador inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByNumber nil, nil si no existe. No carga partidas.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, invoiceNr string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_nr = $1`, invoiceNr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) List(ctx context.Context) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY invoice_nr`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) ListNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT invoice_nr FROM invoices ORDER BY invoice_nr`)
	if err != nil {
		return nil, fmt.Errorf("list invoice numbers: %w", err)
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

// Delete borra la cabecera. El caso de uso comprueba antes que no queden partidas.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceNr string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE invoice_nr = $1`, invoiceNr)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvoiceHasLines
		}
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepo) AttachPosition(ctx context.Context, invoiceNr string, positionID int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ref_invoices_positions (fk_positions_pos_id, fk_invoices_invoice_nr)
		VALUES ($1, $2)`, positionID, invoiceNr)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: partida %d inexistente", domain.ErrInvalidInput, positionID)
		}
		return fmt.Errorf("attach position: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) DetachPosition(ctx context.Context, invoiceNr string, positionID int64) error {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM ref_invoices_positions
		WHERE fk_invoices_invoice_nr = $1 AND fk_positions_pos_id = $2`, invoiceNr, positionID)
	if err != nil {
		return fmt.Errorf("detach position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepo) CountPositions(ctx context.Context, invoiceNr string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM ref_invoices_positions WHERE fk_invoices_invoice_nr = $1`, invoiceNr,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invoice positions: %w", err)
	}
	return n, nil
}

func (r *InvoiceRepo) ListPositions(ctx context.Context, invoiceNr string) ([]entity.Position, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.pos_id, p.name, p.description, p.area, p.unit_price, p.creation_date
		FROM ref_invoices_positions ref JOIN positions p ON p.pos_id = ref.fk_positions_pos_id
		WHERE ref.fk_invoices_invoice_nr = $1
		ORDER BY p.pos_id`, invoiceNr)
	if err != nil {
		return nil, fmt.Errorf("list invoice positions: %w", err)
	}
	defer rows.Close()
	list := []entity.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	if err := row.Scan(
		&inv.InvoiceNr, &inv.CreationDate, &inv.CustID, &inv.UstIDNr,
		&inv.LaborCost, &inv.VATRateLabor, &inv.VATRatePositions,
	); err != nil {
		return nil, err
	}
	return &inv, nil
}
