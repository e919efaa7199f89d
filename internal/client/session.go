package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/techfix-api/internal/application/dto"
)

// Session credenciales guardadas tras el login.
type Session struct {
	BaseURL string           `json:"base_url"`
	Token   string           `json:"token"`
	User    dto.UserResponse `json:"user"`
}

// SessionStore persiste la sesión entre ejecuciones del CLI. Load devuelve (nil, nil) sin sesión.
type SessionStore interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// SessionFilePath TECHFIX_SESSION_FILE o ~/.config/techfix/session.json.
func SessionFilePath() string {
	if p := os.Getenv("TECHFIX_SESSION_FILE"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "techfix-session.json")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "techfix", "session.json")
}

// FileSessionStore guarda la sesión como JSON (0600, contiene el token).
type FileSessionStore struct {
	path string
}

// NewFileSessionStore path vacío = SessionFilePath().
func NewFileSessionStore(path string) *FileSessionStore {
	if path == "" {
		path = SessionFilePath()
	}
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Path() string { return s.path }

func (s *FileSessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ler sessão %s: %w", s.path, err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("sessão %s corrompida: %w", s.path, err)
	}
	if sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

func (s *FileSessionStore) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar sessão: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("criar diretório da sessão: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("gravar sessão %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remover sessão %s: %w", s.path, err)
	}
	return nil
}

// MemorySessionStore sesión sólo en memoria (tests, ejecuciones efímeras).
type MemorySessionStore struct {
	sess *Session
}

func (m *MemorySessionStore) Load() (*Session, error) { return m.sess, nil }

func (m *MemorySessionStore) Save(s *Session) error {
	cp := *s
	m.sess = &cp
	return nil
}

func (m *MemorySessionStore) Clear() error {
	m.sess = nil
	return nil
}
