package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/billing"
	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
	"github.com/jhoicas/rechnungsverwaltung/internal/application/export"
)

// InvoiceHandler facturas, sus partidas y sus exportaciones.
type InvoiceHandler struct {
	uc             *billing.InvoiceUseCase
	exporter       *export.Service
	exportOnCreate bool
	log            zerolog.Logger
}

// NewInvoiceHandler con exportOnCreate cada factura creada se exporta a PDF y XML en el acto.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, exporter *export.Service, exportOnCreate bool, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, exporter: exporter, exportOnCreate: exportOnCreate, log: log}
}

// Create godoc
// @Summary      Crear factura
// @Description  Crea la factura y asigna partidas existentes (position_ids) y nuevas (positions).
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	inv, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	if h.exportOnCreate {
		// La factura ya está guardada: un fallo de exportación no la invalida.
		res, err := h.exporter.ExportInvoice(c.UserContext(), inv.InvoiceNr)
		if err != nil {
			h.log.Error().Err(err).Str("invoice_nr", inv.InvoiceNr).Msg("exportación al crear la factura")
		} else {
			inv.Export = toExportResponse(res)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// List GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Get godoc
// @Summary      Factura con partidas y totales
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        nr   path  string  true  "Número de factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{nr} [get]
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	inv, err := h.uc.Get(c.UserContext(), c.Params("nr"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inv)
}

// Delete DELETE /api/invoices/:nr. Solo facturas sin partidas asignadas.
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("nr")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DetachPositions POST /api/invoices/:nr/positions/detach
func (h *InvoiceHandler) DetachPositions(c *fiber.Ctx) error {
	var in dto.DetachPositionsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.uc.DetachPositions(c.UserContext(), c.Params("nr"), in.PositionIDs); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF godoc
// @Summary      Descargar PDF de la factura
// @Tags         export
// @Security     Bearer
// @Produce      application/pdf
// @Param        nr   path  string  true  "Número de factura"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{nr}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	data, name, err := h.exporter.RenderPDF(c.UserContext(), c.Params("nr"))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, "application/pdf", name, data)
}

// XML GET /api/invoices/:nr/xml
func (h *InvoiceHandler) XML(c *fiber.Ctx) error {
	data, name, err := h.exporter.RenderXML(c.UserContext(), c.Params("nr"))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, "application/xml", name, data)
}

// Bundle godoc
// @Summary      ZIP cifrado (AES-256) con XML, PDF y manifiesto
// @Tags         export
// @Security     Bearer
// @Accept       json
// @Produce      application/zip
// @Param        nr    path  string             true  "Número de factura"
// @Param        body  body  dto.BundleRequest  true  "Contraseña del ZIP"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{nr}/bundle [post]
func (h *InvoiceHandler) Bundle(c *fiber.Ctx) error {
	var in dto.BundleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	data, name, err := h.exporter.Bundle(c.UserContext(), c.Params("nr"), in.Password)
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, "application/zip", name, data)
}

// Export POST /api/invoices/:nr/export: escribe PDF y XML en el directorio de exportación.
func (h *InvoiceHandler) Export(c *fiber.Ctx) error {
	res, err := h.exporter.ExportInvoice(c.UserContext(), c.Params("nr"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toExportResponse(res))
}

func toExportResponse(r *export.Result) *dto.ExportResponse {
	return &dto.ExportResponse{
		InvoiceNr: r.InvoiceNr,
		XMLPath:   r.XMLPath,
		PDFPath:   r.PDFPath,
		Digest:    r.Digest,
	}
}

func sendFile(c *fiber.Ctx, contentType, name string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Attachment(name)
	return c.Send(data)
}
