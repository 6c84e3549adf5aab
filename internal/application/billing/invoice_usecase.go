package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/validation"
)

const dateLayout = "2006-01-02"

// InvoiceUseCase alta, consulta y baja de facturas.
type InvoiceUseCase struct {
	tx       TxRunner
	invoices repository.InvoiceRepository
	opts     Options
	now      func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(tx TxRunner, invoices repository.InvoiceRepository, opts Options) *InvoiceUseCase {
	return &InvoiceUseCase{tx: tx, invoices: invoices, opts: opts, now: time.Now}
}

// Create crea la factura, da de alta las partidas inline y vincula todas en una transacción.
// Cliente y prestador deben existir.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	// ── 1. Cabecera ──
	date := uc.now()
	if s := strings.TrimSpace(in.CreationDate); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, validation.Errors{{Field: "creation_date", Message: "formato esperado YYYY-MM-DD"}}
		}
		date = d
	}
	inv := &entity.Invoice{
		InvoiceNr:        in.InvoiceNr,
		CreationDate:     date,
		CustID:           in.CustID,
		UstIDNr:          in.UstIDNr,
		LaborCost:        in.LaborCost,
		VATRateLabor:     entity.DefaultVATRate,
		VATRatePositions: entity.DefaultVATRate,
	}
	if in.VATRateLabor != nil {
		inv.VATRateLabor = *in.VATRateLabor
	}
	if in.VATRatePositions != nil {
		inv.VATRatePositions = *in.VATRatePositions
	}

	newPositions := make([]*entity.Position, 0, len(in.Positions))
	for _, p := range in.Positions {
		newPositions = append(newPositions, positionFromDTO(p))
	}

	// ── 2. Validación ──
	if uc.opts.Validate {
		if err := validation.Invoice(inv); err != nil {
			return nil, err
		}
		for _, p := range newPositions {
			if err := validation.Position(p); err != nil {
				return nil, err
			}
		}
	}
	if len(in.PositionIDs) == 0 && len(newPositions) == 0 {
		return nil, fmt.Errorf("%w: la factura necesita al menos una partida", domain.ErrInvalidInput)
	}

	// ── 3. Persistencia ──
	err := uc.tx.Run(ctx, func(r Repos) error {
		existing, err := r.Invoices.GetByNumber(ctx, inv.InvoiceNr)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		customer, err := r.Customers.GetByID(ctx, inv.CustID)
		if err != nil {
			return err
		}
		if customer == nil {
			return fmt.Errorf("%w: cliente %s inexistente", domain.ErrInvalidInput, inv.CustID)
		}
		provider, err := r.Providers.GetByID(ctx, inv.UstIDNr)
		if err != nil {
			return err
		}
		if provider == nil {
			return fmt.Errorf("%w: prestador %s inexistente", domain.ErrInvalidInput, inv.UstIDNr)
		}
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}

		attached := make(map[int64]bool)
		for _, id := range in.PositionIDs {
			if attached[id] {
				continue
			}
			p, err := r.Positions.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: partida %d inexistente", domain.ErrInvalidInput, id)
			}
			if err := r.Invoices.AttachPosition(ctx, inv.InvoiceNr, id); err != nil {
				return err
			}
			attached[id] = true
		}
		for _, p := range newPositions {
			id, err := r.Positions.Create(ctx, p)
			if err != nil {
				return err
			}
			if err := r.Invoices.AttachPosition(ctx, inv.InvoiceNr, id); err != nil {
				return err
			}
		}

		inv.Positions, err = r.Invoices.ListPositions(ctx, inv.InvoiceNr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoiceToDTO(inv), nil
}

// Get factura con partidas (ordenadas por POS_ID) y totales.
func (uc *InvoiceUseCase) Get(ctx context.Context, invoiceNr string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoices.GetByNumber(ctx, invoiceNr)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.Positions, err = uc.invoices.ListPositions(ctx, invoiceNr); err != nil {
		return nil, err
	}
	return invoiceToDTO(inv), nil
}

// List todas las facturas con totales, ordenadas por número.
func (uc *InvoiceUseCase) List(ctx context.Context) ([]*dto.InvoiceResponse, error) {
	list, err := uc.invoices.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		if inv.Positions, err = uc.invoices.ListPositions(ctx, inv.InvoiceNr); err != nil {
			return nil, err
		}
		out = append(out, invoiceToDTO(inv))
	}
	return out, nil
}

// DetachPositions desvincula partidas de la factura; las partidas siguen existiendo.
func (uc *InvoiceUseCase) DetachPositions(ctx context.Context, invoiceNr string, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: position_ids vacío", domain.ErrInvalidInput)
	}
	return uc.tx.Run(ctx, func(r Repos) error {
		inv, err := r.Invoices.GetByNumber(ctx, invoiceNr)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		for _, id := range ids {
			if err := r.Invoices.DetachPosition(ctx, invoiceNr, id); err != nil {
				return fmt.Errorf("partida %d: %w", id, err)
			}
		}
		return nil
	})
}

// Delete borra la factura solo si ya no tiene partidas vinculadas.
func (uc *InvoiceUseCase) Delete(ctx context.Context, invoiceNr string) error {
	return uc.tx.Run(ctx, func(r Repos) error {
		n, err := r.Invoices.CountPositions(ctx, invoiceNr)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrInvoiceHasLines
		}
		return r.Invoices.Delete(ctx, invoiceNr)
	})
}
