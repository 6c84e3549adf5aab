package billing

import (
	"context"
	"strings"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
)

// SearchUseCase búsqueda libre en los listados.
type SearchUseCase struct {
	repo repository.SearchRepository
}

func NewSearchUseCase(repo repository.SearchRepository) *SearchUseCase {
	return &SearchUseCase{repo: repo}
}

// Search parte query por espacios; cada término debe aparecer en alguna columna.
func (uc *SearchUseCase) Search(ctx context.Context, view, query string) (*dto.SearchResponse, error) {
	res, err := uc.repo.Search(ctx, view, strings.Fields(query))
	if err != nil {
		return nil, err
	}
	return &dto.SearchResponse{View: view, Columns: res.Columns, Rows: res.Rows}, nil
}
