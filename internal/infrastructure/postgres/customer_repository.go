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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `
	c.custid, c.first_name, c.last_name, c.gender, c.creation_date, COALESCE(c.fk_address_id, 0),
	COALESCE(a.street, ''), COALESCE(a.number, ''), COALESCE(a.zip, ''), COALESCE(a.city, ''), COALESCE(a.country, '')`

// Create inserta la dirección y después el cliente. Llamar dentro de una tx.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	if c.Address != nil {
		id, err := insertAddress(ctx, r.q, c.Address)
		if err != nil {
			return err
		}
		c.AddressID = id
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO customers (custid, first_name, last_name, gender, creation_date, fk_address_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.CustID, c.FirstName, c.LastName, c.Gender, c.CreatedAt, nullIfZero(c.AddressID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente con su dirección. nil, nil si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, custID string) (*entity.Customer, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers c LEFT JOIN addresses a ON a.id = c.fk_address_id
		WHERE c.custid = $1`, custID)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// List todos los clientes ordenados por Kundennummer.
func (r *CustomerRepo) List(ctx context.Context) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers c LEFT JOIN addresses a ON a.id = c.fk_address_id
		ORDER BY c.custid`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Delete borra el cliente y su dirección. Falla con ErrConflict si tiene facturas.
func (r *CustomerRepo) Delete(ctx context.Context, custID string) error {
	var addressID *int64
	err := r.q.QueryRow(ctx, `DELETE FROM customers WHERE custid = $1 RETURNING fk_address_id`, custID).Scan(&addressID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el cliente tiene facturas", domain.ErrConflict)
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if addressID != nil {
		if _, err := r.q.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, *addressID); err != nil {
			return fmt.Errorf("delete customer address: %w", err)
		}
	}
	return nil
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	var a entity.Address
	if err := row.Scan(
		&c.CustID, &c.FirstName, &c.LastName, &c.Gender, &c.CreatedAt, &c.AddressID,
		&a.Street, &a.Number, &a.ZIP, &a.City, &a.Country,
	); err != nil {
		return nil, err
	}
	if c.AddressID != 0 {
		a.ID = c.AddressID
		c.Address = &a
	}
	return &c, nil
}

func insertAddress(ctx context.Context, q Querier, a *entity.Address) (int64, error) {
	country := a.Country
	if country == "" {
		country = "Deutschland"
	}
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO addresses (street, number, zip, city, country)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		a.Street, a.Number, a.ZIP, a.City, country,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert address: %w", err)
	}
	a.ID = id
	a.Country = country
	return id, nil
}
