// Package filestore guarda los archivos exportados en un directorio local.
package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ExportDir implementa export.FileStore sobre un directorio.
type ExportDir struct {
	dir string
}

// New crea el directorio si no existe.
func New(dir string) (*ExportDir, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("filestore: directorio vacío")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: crear %s: %w", dir, err)
	}
	return &ExportDir{dir: dir}, nil
}

// Dir ruta del directorio de exportación.
func (s *ExportDir) Dir() string { return s.dir }

// Write escribe en un temporal y renombra, de modo que un lector nunca ve un
// archivo a medias. Sobrescribe si ya existe.
func (s *ExportDir) Write(name string, data []byte) (string, error) {
	target, err := s.path(name)
	if err != nil {
		return "", err
	}
	tmp := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("filestore: escribir %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("filestore: renombrar %s: %w", name, err)
	}
	return target, nil
}

// Exists true si name ya está en el directorio.
func (s *ExportDir) Exists(name string) (bool, error) {
	target, err := s.path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(target)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("filestore: %w", err)
	}
}

// path solo admite nombres simples dentro del directorio.
func (s *ExportDir) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("filestore: nombre no válido %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
