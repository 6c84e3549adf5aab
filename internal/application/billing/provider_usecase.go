package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/validation"
)

// ProviderUseCase casos de uso para prestadores de servicios (Dienstleister).
type ProviderUseCase struct {
	tx        TxRunner
	providers repository.ServiceProviderRepository
	ceos      repository.CEORepository
	opts      Options
}

// NewProviderUseCase construye el caso de uso.
func NewProviderUseCase(tx TxRunner, providers repository.ServiceProviderRepository, ceos repository.CEORepository, opts Options) *ProviderUseCase {
	return &ProviderUseCase{tx: tx, providers: providers, ceos: ceos, opts: opts}
}

// Create da de alta prestador, logo, cuentas y CEOs en una sola transacción.
// Un CEO ya registrado con el mismo número fiscal y el mismo nombre se reutiliza;
// con otro nombre es ErrConflict.
func (uc *ProviderUseCase) Create(ctx context.Context, in dto.CreateProviderRequest) (*dto.ProviderResponse, error) {
	p := &entity.ServiceProvider{
		UstIDNr:      in.UstIDNr,
		ProviderName: in.ProviderName,
		MobileNumber: in.MobileNumber,
		PhoneNumber:  in.PhoneNumber,
		FaxNumber:    in.FaxNumber,
		Email:        in.Email,
		Website:      in.Website,
		Address:      addressFromDTO(in.Address),
		CreatedAt:    time.Now(),
	}
	for _, c := range in.CEOs {
		p.CEOs = append(p.CEOs, entity.CEO{TaxNumber: c.TaxNumber, Name: c.Name})
	}
	for _, a := range in.Accounts {
		p.Accounts = append(p.Accounts, entity.BankAccount{IBAN: a.IBAN, BIC: a.BIC, BankName: a.BankName, UstIDNr: in.UstIDNr})
	}

	if uc.opts.Validate {
		if err := validation.ServiceProvider(p); err != nil {
			return nil, err
		}
	}
	seen := make(map[string]bool, len(p.CEOs))
	for _, c := range p.CEOs {
		if seen[c.TaxNumber] {
			return nil, fmt.Errorf("%w: número fiscal %s repetido", domain.ErrInvalidInput, c.TaxNumber)
		}
		seen[c.TaxNumber] = true
	}

	existing, err := uc.providers.GetByID(ctx, in.UstIDNr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	err = uc.tx.Run(ctx, func(r Repos) error {
		if in.Logo != nil && len(in.Logo.Data) > 0 {
			id, err := r.Providers.CreateLogo(ctx, &entity.Logo{
				FileName:  in.Logo.FileName,
				MimeType:  in.Logo.MimeType,
				Data:      in.Logo.Data,
				CreatedAt: p.CreatedAt,
			})
			if err != nil {
				return err
			}
			p.LogoID = &id
		}
		if err := r.Providers.Create(ctx, p); err != nil {
			return err
		}
		for _, a := range p.Accounts {
			if err := r.Banks.Ensure(ctx, entity.Bank{BIC: a.BIC, Name: a.BankName}); err != nil {
				return err
			}
			if err := r.Banks.CreateAccount(ctx, a); err != nil {
				return err
			}
		}
		for _, c := range p.CEOs {
			known, err := r.CEOs.GetByTaxNumber(ctx, c.TaxNumber)
			if err != nil {
				return err
			}
			switch {
			case known == nil:
				if err := r.CEOs.Create(ctx, c); err != nil {
					return err
				}
			case known.Name != c.Name:
				return fmt.Errorf("%w: el número fiscal %s ya pertenece a %s", domain.ErrConflict, c.TaxNumber, known.Name)
			}
			if err := r.CEOs.Link(ctx, c.TaxNumber, p.UstIDNr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return providerToDTO(p), nil
}

// Get devuelve el prestador con CEOs y cuentas, o ErrNotFound.
func (uc *ProviderUseCase) Get(ctx context.Context, ustIDNr string) (*dto.ProviderResponse, error) {
	p, err := uc.load(ctx, ustIDNr)
	if err != nil {
		return nil, err
	}
	return providerToDTO(p), nil
}

func (uc *ProviderUseCase) load(ctx context.Context, ustIDNr string) (*entity.ServiceProvider, error) {
	p, err := uc.providers.GetByID(ctx, ustIDNr)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CEOs, err = uc.providers.ListCEOs(ctx, ustIDNr); err != nil {
		return nil, err
	}
	if p.Accounts, err = uc.providers.ListAccounts(ctx, ustIDNr); err != nil {
		return nil, err
	}
	return p, nil
}

// List prestadores con CEOs y cuentas.
func (uc *ProviderUseCase) List(ctx context.Context) ([]*dto.ProviderResponse, error) {
	list, err := uc.providers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProviderResponse, 0, len(list))
	for _, p := range list {
		full, err := uc.load(ctx, p.UstIDNr)
		if err != nil {
			return nil, err
		}
		out = append(out, providerToDTO(full))
	}
	return out, nil
}

// Delete borra prestador, dirección, cuentas y vínculos con CEOs. Los CEOs y bancos se conservan.
func (uc *ProviderUseCase) Delete(ctx context.Context, ustIDNr string) error {
	return uc.tx.Run(ctx, func(r Repos) error {
		return r.Providers.Delete(ctx, ustIDNr)
	})
}

// UnlinkCEO quita el CEO del prestador sin borrarlo del registro.
func (uc *ProviderUseCase) UnlinkCEO(ctx context.Context, ustIDNr, taxNumber string) error {
	return uc.ceos.Unlink(ctx, taxNumber, ustIDNr)
}

// Logo devuelve el logo del prestador o ErrNotFound si no tiene.
func (uc *ProviderUseCase) Logo(ctx context.Context, ustIDNr string) (*entity.Logo, error) {
	p, err := uc.providers.GetByID(ctx, ustIDNr)
	if err != nil {
		return nil, err
	}
	if p == nil || p.LogoID == nil {
		return nil, domain.ErrNotFound
	}
	logo, err := uc.providers.GetLogo(ctx, *p.LogoID)
	if err != nil {
		return nil, err
	}
	if logo == nil {
		return nil, domain.ErrNotFound
	}
	return logo, nil
}
