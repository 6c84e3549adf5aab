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

var (
	_ repository.CEORepository  = (*CEORepo)(nil)
	_ repository.BankRepository = (*BankRepo)(nil)
)

// CEORepo registro compartido de CEOs y tabla ref_labor_cost.
type CEORepo struct {
	q Querier
}

func NewCEORepository(q Querier) *CEORepo { return &CEORepo{q: q} }

func (r *CEORepo) GetByTaxNumber(ctx context.Context, taxNumber string) (*entity.CEO, error) {
	var c entity.CEO
	err := r.q.QueryRow(ctx, `SELECT st_nr, ceo_name FROM ceo WHERE st_nr = $1`, taxNumber).Scan(&c.TaxNumber, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ceo: %w", err)
	}
	return &c, nil
}

func (r *CEORepo) Create(ctx context.Context, c entity.CEO) error {
	if _, err := r.q.Exec(ctx, `INSERT INTO ceo (st_nr, ceo_name) VALUES ($1, $2)`, c.TaxNumber, c.Name); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ceo: %w", err)
	}
	return nil
}

func (r *CEORepo) Link(ctx context.Context, taxNumber, ustIDNr string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ref_labor_cost (fk_st_nr, fk_ust_idnr) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, taxNumber, ustIDNr)
	if err != nil {
		return fmt.Errorf("link ceo: %w", err)
	}
	return nil
}

func (r *CEORepo) IsLinked(ctx context.Context, taxNumber, ustIDNr string) (bool, error) {
	var linked bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM ref_labor_cost WHERE fk_st_nr = $1 AND fk_ust_idnr = $2)`,
		taxNumber, ustIDNr,
	).Scan(&linked)
	if err != nil {
		return false, fmt.Errorf("ceo link exists: %w", err)
	}
	return linked, nil
}

// Unlink borra solo la relación; la fila de ceo puede seguir vinculada a otros prestadores.
func (r *CEORepo) Unlink(ctx context.Context, taxNumber, ustIDNr string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM ref_labor_cost WHERE fk_st_nr = $1 AND fk_ust_idnr = $2`, taxNumber, ustIDNr)
	if err != nil {
		return fmt.Errorf("unlink ceo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BankRepo bancos (clave BIC) y cuentas.
type BankRepo struct {
	q Querier
}

func NewBankRepository(q Querier) *BankRepo { return &BankRepo{q: q} }

// Ensure crea el banco si el BIC no existe; un BIC existente conserva su nombre.
func (r *BankRepo) Ensure(ctx context.Context, b entity.Bank) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO bank (bic, bank_name) VALUES ($1, $2)
		ON CONFLICT (bic) DO NOTHING`, b.BIC, b.Name)
	if err != nil {
		return fmt.Errorf("ensure bank: %w", err)
	}
	return nil
}

func (r *BankRepo) CreateAccount(ctx context.Context, a entity.BankAccount) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO account (iban, fk_bank_id, fk_ust_idnr) VALUES ($1, $2, $3)`,
		a.IBAN, a.BIC, a.UstIDNr)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}
