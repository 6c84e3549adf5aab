package repository

import (
	"context"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
)

// InvoiceRepository puerto de persistencia para facturas y su relación con partidas.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByNumber(ctx context.Context, invoiceNr string) (*entity.Invoice, error)
	List(ctx context.Context) ([]*entity.Invoice, error)
	ListNumbers(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, invoiceNr string) error

	AttachPosition(ctx context.Context, invoiceNr string, positionID int64) error
	DetachPosition(ctx context.Context, invoiceNr string, positionID int64) error
	CountPositions(ctx context.Context, invoiceNr string) (int, error)
	// ListPositions devuelve las partidas de la factura ordenadas por POS_ID.
	ListPositions(ctx context.Context, invoiceNr string) ([]entity.Position, error)
}
