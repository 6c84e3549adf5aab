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

// PositionUseCase casos de uso para partidas.
type PositionUseCase struct {
	repo repository.PositionRepository
	opts Options
}

func NewPositionUseCase(repo repository.PositionRepository, opts Options) *PositionUseCase {
	return &PositionUseCase{repo: repo, opts: opts}
}

func positionFromDTO(in dto.CreatePositionRequest) *entity.Position {
	return &entity.Position{
		Name:        in.Name,
		Description: in.Description,
		Area:        in.Area,
		UnitPrice:   in.UnitPrice,
		CreatedAt:   time.Now(),
	}
}

func (uc *PositionUseCase) Create(ctx context.Context, in dto.CreatePositionRequest) (*dto.PositionResponse, error) {
	p := positionFromDTO(in)
	if uc.opts.Validate {
		if err := validation.Position(p); err != nil {
			return nil, err
		}
	}
	if _, err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	out := positionToDTO(p)
	return &out, nil
}

func (uc *PositionUseCase) Get(ctx context.Context, id int64) (*dto.PositionResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := positionToDTO(p)
	return &out, nil
}

func (uc *PositionUseCase) List(ctx context.Context) ([]dto.PositionResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PositionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, positionToDTO(p))
	}
	return out, nil
}

// Delete quita la partida de todas sus facturas y la borra.
func (uc *PositionUseCase) Delete(ctx context.Context, id int64) error {
	return uc.repo.Delete(ctx, id)
}

// Invoices números de factura que usan la partida.
func (uc *PositionUseCase) Invoices(ctx context.Context, id int64) ([]string, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return uc.repo.ListInvoiceNumbers(ctx, id)
}
