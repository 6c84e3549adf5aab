package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/exportdoc"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
)

// Nombres dentro del paquete cifrado.
const (
	BundleXMLName      = "rechnung.xml"
	BundlePDFName      = "rechnung.pdf"
	BundleManifestName = "manifest.txt"
)

// PDFName nombre del PDF exportado de una factura.
func PDFName(invoiceNr string) string { return "rechnung_" + invoiceNr + ".pdf" }

// XMLName nombre del XML exportado de una factura.
func XMLName(invoiceNr string) string { return "rechnung_" + invoiceNr + ".xml" }

// BundleName nombre del ZIP cifrado de una factura.
func BundleName(invoiceNr string) string { return "rechnung_" + invoiceNr + ".zip" }

// Deps dependencias del servicio de exportación.
type Deps struct {
	Invoices          repository.InvoiceRepository
	Customers         repository.CustomerRepository
	Providers         repository.ServiceProviderRepository
	Renderer          Renderer
	Bundler           BundleWriter
	Store             FileStore
	Report            RegisterReport
	MinPasswordLength int
	Logger            zerolog.Logger
}

// Service exportación de facturas: archivos en disco, descargas y lotes.
type Service struct {
	assembler *Assembler
	deps      Deps
	log       zerolog.Logger
	now       func() time.Time
}

// NewService construye el servicio.
func NewService(d Deps) *Service {
	return &Service{
		assembler: NewAssembler(d.Invoices, d.Customers, d.Providers),
		deps:      d,
		log:       d.Logger.With().Str("component", "export").Logger(),
		now:       time.Now,
	}
}

// Result archivos escritos por ExportInvoice.
type Result struct {
	InvoiceNr string
	XMLPath   string
	PDFPath   string
	Digest    string
}

// Failure factura que falló dentro de un lote.
type Failure struct {
	InvoiceNr string
	Err       error
}

// Report resultado de GenerateMissing.
type Report struct {
	Exported []string
	Skipped  int
	Failed   []Failure
}

// Assemble expone el documento tal cual (para la CLI y los tests).
func (s *Service) Assemble(ctx context.Context, invoiceNr string) (*exportdoc.Document, error) {
	return s.assembler.Assemble(ctx, invoiceNr)
}

// ExportInvoice escribe rechnung_<nr>.xml y rechnung_<nr>.pdf en el directorio de exportación.
func (s *Service) ExportInvoice(ctx context.Context, invoiceNr string) (*Result, error) {
	doc, err := s.load(ctx, invoiceNr)
	if err != nil {
		return nil, err
	}

	// ── 1. XML de archivo ──
	xmlData, err := doc.ToXML()
	if err != nil {
		return nil, fmt.Errorf("export xml: %w", err)
	}
	digest, err := exportdoc.DigestXML(xmlData)
	if err != nil {
		return nil, err
	}
	xmlPath, err := s.deps.Store.Write(XMLName(invoiceNr), xmlData)
	if err != nil {
		return nil, err
	}

	// ── 2. PDF ──
	pdfData, err := s.render(ctx, doc)
	if err != nil {
		return nil, err
	}
	pdfPath, err := s.deps.Store.Write(PDFName(invoiceNr), pdfData)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("invoice_nr", invoiceNr).Str("pdf", pdfPath).Str("digest", digest).Msg("factura exportada")
	return &Result{InvoiceNr: invoiceNr, XMLPath: xmlPath, PDFPath: pdfPath, Digest: digest}, nil
}

// RenderPDF genera el PDF en memoria para descarga.
func (s *Service) RenderPDF(ctx context.Context, invoiceNr string) ([]byte, string, error) {
	doc, err := s.load(ctx, invoiceNr)
	if err != nil {
		return nil, "", err
	}
	data, err := s.render(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return data, PDFName(invoiceNr), nil
}

// RenderXML genera el XML de intercambio en memoria para descarga.
func (s *Service) RenderXML(ctx context.Context, invoiceNr string) ([]byte, string, error) {
	doc, err := s.load(ctx, invoiceNr)
	if err != nil {
		return nil, "", err
	}
	data, err := doc.ToXML()
	if err != nil {
		return nil, "", fmt.Errorf("export xml: %w", err)
	}
	return data, XMLName(invoiceNr), nil
}

// Bundle ZIP cifrado con XML, PDF y un manifiesto con el digest del XML.
func (s *Service) Bundle(ctx context.Context, invoiceNr, password string) ([]byte, string, error) {
	if len([]rune(password)) < s.deps.MinPasswordLength {
		return nil, "", fmt.Errorf("%w: mínimo %d caracteres", domain.ErrWeakPassword, s.deps.MinPasswordLength)
	}
	doc, err := s.load(ctx, invoiceNr)
	if err != nil {
		return nil, "", err
	}
	xmlData, err := doc.ToXML()
	if err != nil {
		return nil, "", fmt.Errorf("export xml: %w", err)
	}
	digest, err := exportdoc.DigestXML(xmlData)
	if err != nil {
		return nil, "", err
	}
	pdfData, err := s.render(ctx, doc)
	if err != nil {
		return nil, "", err
	}

	files := []File{
		{Name: BundleXMLName, Data: xmlData},
		{Name: BundlePDFName, Data: pdfData},
		{Name: BundleManifestName, Data: manifest(invoiceNr, digest, s.now())},
	}
	var buf bytes.Buffer
	if err := s.deps.Bundler.Write(&buf, password, files); err != nil {
		return nil, "", fmt.Errorf("export bundle: %w", err)
	}
	s.log.Info().Str("invoice_nr", invoiceNr).Int("bytes", buf.Len()).Msg("paquete cifrado generado")
	return buf.Bytes(), BundleName(invoiceNr), nil
}

func manifest(invoiceNr, digest string, at time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "invoice_nr: %s\n", invoiceNr)
	fmt.Fprintf(&b, "created: %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "files: %s, %s\n", BundleXMLName, BundlePDFName)
	fmt.Fprintf(&b, "xml_c14n_sha256: %s\n", digest)
	return []byte(b.String())
}

// GenerateMissing exporta todas las facturas sin PDF en el directorio de exportación.
// Un fallo no detiene el lote; se acumula en Report.Failed.
func (s *Service) GenerateMissing(ctx context.Context) (*Report, error) {
	numbers, err := s.deps.Invoices.ListNumbers(ctx)
	if err != nil {
		return nil, err
	}
	rep := &Report{Exported: []string{}, Failed: []Failure{}}
	for _, nr := range numbers {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		exists, err := s.deps.Store.Exists(PDFName(nr))
		if err != nil {
			rep.Failed = append(rep.Failed, Failure{InvoiceNr: nr, Err: err})
			continue
		}
		if exists {
			rep.Skipped++
			continue
		}
		if _, err := s.ExportInvoice(ctx, nr); err != nil {
			s.log.Warn().Err(err).Str("invoice_nr", nr).Msg("no se pudo exportar la factura")
			rep.Failed = append(rep.Failed, Failure{InvoiceNr: nr, Err: err})
			continue
		}
		rep.Exported = append(rep.Exported, nr)
	}
	s.log.Info().Int("exported", len(rep.Exported)).Int("skipped", rep.Skipped).Int("failed", len(rep.Failed)).
		Msg("exportación de facturas pendientes terminada")
	return rep, nil
}

// Register PDF con el listado de todas las facturas y sus totales.
func (s *Service) Register(ctx context.Context) ([]byte, error) {
	list, err := s.deps.Invoices.List(ctx)
	if err != nil {
		return nil, err
	}
	customers := map[string]string{}
	providers := map[string]string{}
	rows := make([]entity.InvoiceSummary, 0, len(list))
	for _, inv := range list {
		if inv.Positions, err = s.deps.Invoices.ListPositions(ctx, inv.InvoiceNr); err != nil {
			return nil, err
		}
		cname, ok := customers[inv.CustID]
		if !ok {
			c, err := s.deps.Customers.GetByID(ctx, inv.CustID)
			if err != nil {
				return nil, err
			}
			if c != nil {
				cname = c.FullName()
			}
			customers[inv.CustID] = cname
		}
		pname, ok := providers[inv.UstIDNr]
		if !ok {
			p, err := s.deps.Providers.GetByID(ctx, inv.UstIDNr)
			if err != nil {
				return nil, err
			}
			if p != nil {
				pname = p.ProviderName
			}
			providers[inv.UstIDNr] = pname
		}
		t := inv.Totals()
		rows = append(rows, entity.InvoiceSummary{
			InvoiceNr:    inv.InvoiceNr,
			CreationDate: inv.CreationDate,
			CustomerName: cname,
			ProviderName: pname,
			Net:          t.Net,
			VAT:          t.VAT,
			Gross:        t.Gross,
		})
	}
	return s.deps.Report.Generate(rows, s.now())
}

// load ensambla y convierte el documento vacío en ErrNotFound: no se exportan facturas inexistentes.
func (s *Service) load(ctx context.Context, invoiceNr string) (*exportdoc.Document, error) {
	doc, err := s.assembler.Assemble(ctx, invoiceNr)
	if err != nil {
		return nil, err
	}
	if doc.IsBlank() {
		return nil, fmt.Errorf("factura %s: %w", invoiceNr, domain.ErrNotFound)
	}
	return doc, nil
}

func (s *Service) render(ctx context.Context, doc *exportdoc.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.deps.Renderer.Render(doc, s.logo(ctx, doc), &buf); err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// logo carga el logo del prestador; cualquier problema se registra y se sigue sin logo.
func (s *Service) logo(ctx context.Context, doc *exportdoc.Document) *entity.Logo {
	raw := doc.ServiceProvider.Get("FK_LOGO_ID")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	logo, err := s.deps.Providers.GetLogo(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.log.Warn().Err(err).Int64("logo_id", id).Msg("logo no disponible")
		return nil
	}
	return logo
}
