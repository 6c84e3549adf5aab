package export

import (
	"io"
	"time"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/exportdoc"
)

// Renderer dibuja el documento como PDF. logo puede ser nil.
type Renderer interface {
	Render(doc *exportdoc.Document, logo *entity.Logo, w io.Writer) error
}

// File entrada de un paquete de exportación.
type File struct {
	Name string
	Data []byte
}

// BundleWriter escribe un archivo ZIP protegido con contraseña.
type BundleWriter interface {
	Write(w io.Writer, password string, files []File) error
}

// FileStore directorio de exportación.
type FileStore interface {
	// Write guarda data bajo name y devuelve la ruta completa.
	Write(name string, data []byte) (string, error)
	Exists(name string) (bool, error)
}

// RegisterReport genera el listado (Rechnungsausgangsbuch) de todas las facturas.
type RegisterReport interface {
	Generate(rows []entity.InvoiceSummary, generatedAt time.Time) ([]byte, error)
}
