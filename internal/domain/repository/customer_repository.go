package repository

import (
	"context"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
)

// CustomerRepository puerto de persistencia para clientes y su dirección.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, custID string) (*entity.Customer, error)
	List(ctx context.Context) ([]*entity.Customer, error)
	Delete(ctx context.Context, custID string) error
}
