package billing

import (
	"context"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Customers repository.CustomerRepository
	Providers repository.ServiceProviderRepository
	CEOs      repository.CEORepository
	Banks     repository.BankRepository
	Positions repository.PositionRepository
	Invoices  repository.InvoiceRepository
}

// TxRunner ejecuta fn dentro de una transacción; si fn devuelve error se hace rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Options ajustes de los casos de uso que vienen de los feature flags.
type Options struct {
	Validate bool
}
