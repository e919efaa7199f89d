// Package storage guarda las fotos de los atendimentos en disco local.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/techfix-api/internal/application/services"
)

var _ services.PhotoStore = (*PhotoStore)(nil)

// ErrTooLarge la foto supera el máximo configurado.
var ErrTooLarge = errors.New("storage: foto excede o tamanho máximo")

// PhotoStore escribe en Dir y publica bajo URLPrefix (servido como estático por el router).
type PhotoStore struct {
	dir       string
	urlPrefix string
	maxBytes  int64
}

// DefaultURLPrefix prefijo cuando el configurado queda vacío (p. ej. "/").
const DefaultURLPrefix = "/uploads"

// NewPhotoStore crea el directorio si no existe. maxBytes <= 0 = sin límite.
// El prefijo siempre empieza con "/" y nunca es la raíz: Remove sólo acepta URLs bajo él.
func NewPhotoStore(dir, urlPrefix string, maxBytes int64) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear directorio: %w", err)
	}
	return &PhotoStore{dir: dir, urlPrefix: normalizePrefix(urlPrefix), maxBytes: maxBytes}, nil
}

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return DefaultURLPrefix
	}
	return "/" + p
}

// URLPrefix prefijo público ya normalizado; el router monta los estáticos ahí.
func (s *PhotoStore) URLPrefix() string { return s.urlPrefix }

// FileName nombre en disco: <uuid>-<nombre original con espacios como _>.
func FileName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" {
		base = "foto"
	}
	return uuid.NewString() + "-" + strings.Join(strings.Fields(base), "_")
}

// Save escribe la foto completa antes de devolver la URL. Un archivo a medio escribir se borra.
func (s *PhotoStore) Save(ctx context.Context, p services.PhotoUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := FileName(p.Filename)
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: crear archivo: %w", err)
	}
	src := p.Body
	if s.maxBytes > 0 {
		src = io.LimitReader(p.Body, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("storage: escribir foto: %w", err)
	}
	return path.Join(s.urlPrefix, name), nil
}

// Remove borra la foto de la URL. Una foto que ya no existe no es error.
func (s *PhotoStore) Remove(_ context.Context, url string) error {
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return fmt.Errorf("storage: url fuera de %s: %q", s.urlPrefix, url)
	}
	name := path.Base(url)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: borrar foto: %w", err)
	}
	return nil
}
