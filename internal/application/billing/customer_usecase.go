package billing

import (
	"context"
	"time"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/validation"
)

// CustomerUseCase casos de uso para clientes (Kunden).
type CustomerUseCase struct {
	tx   TxRunner
	repo repository.CustomerRepository
	opts Options
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(tx TxRunner, repo repository.CustomerRepository, opts Options) *CustomerUseCase {
	return &CustomerUseCase{tx: tx, repo: repo, opts: opts}
}

// Create crea cliente y dirección en una transacción.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	customer := &entity.Customer{
		CustID:    in.CustID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Gender:    in.Gender,
		Address:   addressFromDTO(in.Address),
		CreatedAt: time.Now(),
	}
	if uc.opts.Validate {
		if err := validation.Customer(customer); err != nil {
			return nil, err
		}
	}
	existing, err := uc.repo.GetByID(ctx, in.CustID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	err = uc.tx.Run(ctx, func(r Repos) error {
		return r.Customers.Create(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	return customerToDTO(customer), nil
}

// Get devuelve el cliente o ErrNotFound.
func (uc *CustomerUseCase) Get(ctx context.Context, custID string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, custID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return customerToDTO(c), nil
}

// List todos los clientes ordenados por Kundennummer.
func (uc *CustomerUseCase) List(ctx context.Context) ([]*dto.CustomerResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, customerToDTO(c))
	}
	return out, nil
}

// Delete borra cliente y dirección. Con facturas asociadas el repositorio devuelve ErrConflict.
func (uc *CustomerUseCase) Delete(ctx context.Context, custID string) error {
	return uc.tx.Run(ctx, func(r Repos) error {
		return r.Customers.Delete(ctx, custID)
	})
}
