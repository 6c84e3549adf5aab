// Package bundle empaqueta los archivos de exportación en un ZIP cifrado con AES-256.
package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/yeka/zip"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/export"
)

// ErrWrongPassword la contraseña no descifra la entrada.
var ErrWrongPassword = errors.New("bundle: contraseña incorrecta")

// ZipWriter implementa export.BundleWriter. Cada entrada se cifra por separado
// (WinZip AES-256); los nombres de archivo quedan visibles.
type ZipWriter struct{}

// NewZipWriter construye el escritor.
func NewZipWriter() *ZipWriter { return &ZipWriter{} }

// Write escribe el ZIP en w. Una contraseña vacía se rechaza: el paquete nunca sale sin cifrar.
func (z *ZipWriter) Write(w io.Writer, password string, files []export.File) error {
	if password == "" {
		return errors.New("bundle: contraseña vacía")
	}
	zw := zip.NewWriter(w)
	for _, f := range files {
		fw, err := zw.Encrypt(f.Name, password, zip.AES256Encryption)
		if err != nil {
			zw.Close()
			return fmt.Errorf("bundle: cifrar %s: %w", f.Name, err)
		}
		if _, err := io.Copy(fw, bytes.NewReader(f.Data)); err != nil {
			zw.Close()
			return fmt.Errorf("bundle: escribir %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("bundle: cerrar zip: %w", err)
	}
	return nil
}

// Open lee y descifra todas las entradas de un paquete.
func Open(data []byte, password string) ([]export.File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("bundle: leer zip: %w", err)
	}
	out := make([]export.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.IsEncrypted() {
			f.SetPassword(password)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrWrongPassword, f.Name)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			// La verificación HMAC de AES falla al terminar de leer.
			return nil, fmt.Errorf("%w: %s", ErrWrongPassword, f.Name)
		}
		out = append(out, export.File{Name: f.Name, Data: content})
	}
	return out, nil
}
