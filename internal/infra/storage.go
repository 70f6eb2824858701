package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Subdirectories under STORAGE_PATH.
const (
	DirOriginales = "imagenes/originales"
	DirProcesadas = "imagenes/procesadas"
	DirMiniaturas = "imagenes/miniaturas"
	DirOrdenes    = "pdf/ordenes"
)

// Storage is a local filesystem blob store rooted at one directory.
type Storage struct {
	root string
}

func NewStorage(root string) (*Storage, error) {
	for _, d := range []string{DirOriginales, DirProcesadas, DirMiniaturas, DirOrdenes} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", d, err)
		}
	}
	return &Storage{root: root}, nil
}

// Save writes data to dir/name and returns the path relative to the root.
func (s *Storage) Save(dir, name string, data []byte) (string, error) {
	rel := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(filepath.Join(s.root, rel), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", rel, err)
	}
	return rel, nil
}

// Read returns the contents of a relative path previously returned by Save.
func (s *Storage) Read(rel string) ([]byte, error) {
	full, err := s.Abs(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Abs resolves a relative path, refusing anything that escapes the root.
func (s *Storage) Abs(rel string) (string, error) {
	full := filepath.Join(s.root, filepath.Clean("/"+rel))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path %q outside root", rel)
	}
	return full, nil
}
