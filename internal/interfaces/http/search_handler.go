package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/billing"
)

// SearchHandler búsqueda libre sobre las vistas de consulta.
type SearchHandler struct {
	uc *billing.SearchUseCase
}

// NewSearchHandler construye el handler.
func NewSearchHandler(uc *billing.SearchUseCase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

// Search godoc
// @Summary      Buscar en una vista
// @Description  Cada término de q debe aparecer en alguna columna de la fila (sin distinguir mayúsculas).
// @Tags         search
// @Security     Bearer
// @Produce      json
// @Param        view  path   string  true   "customers, invoices, positions o providers"
// @Param        q     query  string  false  "Términos separados por espacios"
// @Success      200   {object}  dto.SearchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/search/{view} [get]
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	res, err := h.uc.Search(c.UserContext(), c.Params("view"), c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
