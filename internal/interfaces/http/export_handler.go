package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
	"github.com/jhoicas/rechnungsverwaltung/internal/application/export"
)

// ExportHandler operaciones de exportación sobre todas las facturas.
type ExportHandler struct {
	exporter *export.Service
}

// NewExportHandler construye el handler.
func NewExportHandler(exporter *export.Service) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// Missing godoc
// @Summary      Exportar facturas sin PDF
// @Description  Exporta cada factura que aún no tiene rechnung_<nr>.pdf. Un fallo no detiene el lote.
// @Tags         export
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MissingReportResponse
// @Router       /api/exports/missing [post]
func (h *ExportHandler) Missing(c *fiber.Ctx) error {
	rep, err := h.exporter.GenerateMissing(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MissingReportResponse{
		Exported: rep.Exported,
		Skipped:  rep.Skipped,
		Failed:   make([]dto.ExportFailure, 0, len(rep.Failed)),
	}
	for _, f := range rep.Failed {
		out.Failed = append(out.Failed, dto.ExportFailure{InvoiceNr: f.InvoiceNr, Error: f.Err.Error()})
	}
	return c.JSON(out)
}

// Register GET /api/exports/register: listado PDF de todas las facturas con totales.
func (h *ExportHandler) Register(c *fiber.Ctx) error {
	data, err := h.exporter.Register(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, "application/pdf", "rechnungsregister.pdf", data)
}
