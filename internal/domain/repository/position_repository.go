package repository

import (
	"context"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
)

// PositionRepository puerto de persistencia para partidas.
type PositionRepository interface {
	Create(ctx context.Context, position *entity.Position) (int64, error)
	GetByID(ctx context.Context, id int64) (*entity.Position, error)
	List(ctx context.Context) ([]*entity.Position, error)
	// Delete borra primero las filas de ref_invoices_positions.
	Delete(ctx context.Context, id int64) error
	ListInvoiceNumbers(ctx context.Context, id int64) ([]string, error)
}
