// Package client es el cliente HTTP tipado de la API de atendimentos que usa el tablero de terminal.
//
// Todas las llamadas autenticadas tratan igual la sesión vencida: un 401/403 borra la sesión guardada y
// devuelve ErrSessionExpired. Los fallos de red o respuestas que no son JSON devuelven ErrConnection y
// no tocan la sesión.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/techfix-api/internal/application/dto"
	"github.com/jhoicas/techfix-api/internal/domain/entity"
)

var (
	// ErrSessionExpired el servidor rechazó el token; la sesión local ya fue borrada.
	ErrSessionExpired = errors.New("sessão expirada, faça login novamente")
	// ErrConnection no hubo respuesta JSON utilizable del servidor.
	ErrConnection = errors.New("erro de conexão com o servidor")
	// ErrNoSession no hay sesión guardada.
	ErrNoSession = errors.New("nenhuma sessão ativa, execute \"techfix login\"")
)

// APIError respuesta de error de la API ({code, message}).
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("erro %d", e.Status)
	}
	return e.Message
}

// maxResponseBytes tope de lectura de respuestas JSON.
const maxResponseBytes = 4 << 20

// Client cliente de la API. No es seguro para uso concurrente con Login/Logout en paralelo.
type Client struct {
	baseURL    string
	store      SessionStore
	httpClient *http.Client
}

// Option configura el Client.
type Option func(*Client)

// WithHTTPClient reemplaza el http.Client (timeouts, transport de tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New construye el cliente. baseURL sin barra final, p. ej. "http://localhost:3000".
func New(baseURL string, store SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Session sesión actual o ErrNoSession.
func (c *Client) Session() (*Session, error) {
	s, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

// Login autentica y guarda la sesión.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	sess := &Session{BaseURL: c.baseURL, Token: out.Token, User: out.User}
	if err := c.store.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout borra la sesión local; el token no se revoca en el servidor.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// ListServices atendimentos visibles para la sesión (admin: todos; cliente: los de su CPF).
func (c *Client) ListServices(ctx context.Context) ([]*entity.Ticket, error) {
	var out []dto.ServiceResponse
	if err := c.authed(ctx, http.MethodGet, "/api/services", nil, &out); err != nil {
		return nil, err
	}
	tickets := make([]*entity.Ticket, 0, len(out))
	for _, r := range out {
		tickets = append(tickets, r.Entity())
	}
	return tickets, nil
}

// GetService un atendimento.
func (c *Client) GetService(ctx context.Context, id int64) (*entity.Ticket, error) {
	var out dto.ServiceResponse
	if err := c.authed(ctx, http.MethodGet, servicePath(id), nil, &out); err != nil {
		return nil, err
	}
	return out.Entity(), nil
}

// UpdateStatus cambia el estado (admin) y devuelve el atendimento actualizado.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status entity.Status) (*entity.Ticket, error) {
	var out dto.ServiceResponse
	if err := c.authed(ctx, http.MethodPut, servicePath(id)+"/status", dto.UpdateStatusRequest{Status: string(status)}, &out); err != nil {
		return nil, err
	}
	return out.Entity(), nil
}

// DeleteService elimina el atendimento (admin); devuelve el mensaje del servidor.
func (c *Client) DeleteService(ctx context.Context, id int64) (string, error) {
	var out dto.MessageResponse
	if err := c.authed(ctx, http.MethodDelete, servicePath(id), nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// CheckCPF consulta si el CPF ya tiene registro (admin).
func (c *Client) CheckCPF(ctx context.Context, cpf string) (*dto.CheckCPFResponse, error) {
	var out dto.CheckCPFResponse
	if err := c.authed(ctx, http.MethodGet, "/api/admin/clients/check-cpf/"+url.PathEscape(cpf), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadPDF orden de servicio en PDF; devuelve bytes y nombre de archivo sugerido.
func (c *Client) DownloadPDF(ctx context.Context, id int64) ([]byte, string, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, "", err
	}
	resp, err := c.send(ctx, http.MethodGet, servicePath(id)+"/pdf", sess.Token, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, true); err != nil {
		return nil, "", err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrConnection, err)
	}
	filename := fmt.Sprintf("atendimento_%d.pdf", id)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return data, filename, nil
}

func servicePath(id int64) string {
	return "/api/services/" + strconv.FormatInt(id, 10)
}

// authed llamada con el token de la sesión.
func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, sess.Token, body, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	resp, err := c.send(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, token != ""); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: resposta inválida: %v", ErrConnection, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("serializar requisição: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("criar requisição: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnection, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return resp, nil
}

// checkStatus traduce respuestas >= 400. En llamadas autenticadas 401/403 cierran la sesión.
func (c *Client) checkStatus(resp *http.Response, authed bool) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	if authed && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		if err := c.store.Clear(); err != nil {
			return fmt.Errorf("%w (%v)", ErrSessionExpired, err)
		}
		return ErrSessionExpired
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	var e dto.ErrorResponse
	if err := json.Unmarshal(raw, &e); err != nil {
		return fmt.Errorf("%w: status %d sem corpo JSON", ErrConnection, resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Code: e.Code, Message: e.Message}
}
