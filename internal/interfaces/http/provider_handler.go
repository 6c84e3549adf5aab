package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/billing"
	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
)

// ProviderHandler prestadores de servicios, sus gerentes y su logo.
type ProviderHandler struct {
	uc *billing.ProviderUseCase
}

// NewProviderHandler construye el handler.
func NewProviderHandler(uc *billing.ProviderUseCase) *ProviderHandler {
	return &ProviderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear prestador
// @Description  Crea prestador, dirección, cuentas, gerentes y logo en una sola transacción.
// @Tags         providers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProviderRequest  true  "Prestador"
// @Success      201   {object}  dto.ProviderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/providers [post]
func (h *ProviderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProviderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	p, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// List GET /api/providers
func (h *ProviderHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Get GET /api/providers/:id
func (h *ProviderHandler) Get(c *fiber.Ctx) error {
	p, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// Delete DELETE /api/providers/:id
func (h *ProviderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Logo godoc
// @Summary      Logo del prestador
// @Tags         providers
// @Security     Bearer
// @Produce      image/png,image/jpeg,image/gif
// @Param        id  path  string  true  "USt-IdNr."
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/providers/{id}/logo [get]
func (h *ProviderHandler) Logo(c *fiber.Ctx) error {
	logo, err := h.uc.Logo(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if logo.MimeType != "" {
		c.Set(fiber.HeaderContentType, logo.MimeType)
	}
	return c.Send(logo.Data)
}

// UnlinkCEO DELETE /api/providers/:id/ceos/:taxnr
// Solo quita la relación; el registro del gerente se conserva.
func (h *ProviderHandler) UnlinkCEO(c *fiber.Ctx) error {
	if err := h.uc.UnlinkCEO(c.UserContext(), c.Params("id"), c.Params("taxnr")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
