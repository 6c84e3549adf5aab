package repository

import (
	"context"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
)

// ServiceProviderRepository puerto de persistencia para prestadores, su dirección,
// logo, cuentas bancarias y la relación con el registro de CEOs.
type ServiceProviderRepository interface {
	Create(ctx context.Context, provider *entity.ServiceProvider) error
	GetByID(ctx context.Context, ustIDNr string) (*entity.ServiceProvider, error)
	List(ctx context.Context) ([]*entity.ServiceProvider, error)
	Delete(ctx context.Context, ustIDNr string) error

	ListCEOs(ctx context.Context, ustIDNr string) ([]entity.CEO, error)
	ListAccounts(ctx context.Context, ustIDNr string) ([]entity.BankAccount, error)

	CreateLogo(ctx context.Context, logo *entity.Logo) (int64, error)
	GetLogo(ctx context.Context, id int64) (*entity.Logo, error)
}

// CEORepository registro compartido de CEOs (clave: número fiscal).
type CEORepository interface {
	GetByTaxNumber(ctx context.Context, taxNumber string) (*entity.CEO, error)
	Create(ctx context.Context, ceo entity.CEO) error
	Link(ctx context.Context, taxNumber, ustIDNr string) error
	IsLinked(ctx context.Context, taxNumber, ustIDNr string) (bool, error)
	// Unlink solo borra la fila de ref_labor_cost; el CEO sigue en el registro.
	Unlink(ctx context.Context, taxNumber, ustIDNr string) error
}

// BankRepository bancos (por BIC) y cuentas.
type BankRepository interface {
	Ensure(ctx context.Context, bank entity.Bank) error
	CreateAccount(ctx context.Context, account entity.BankAccount) error
}
