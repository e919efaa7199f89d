package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/techfix-api/internal/application/dto"
	"github.com/jhoicas/techfix-api/internal/application/services"
	"github.com/jhoicas/techfix-api/internal/domain"
	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
	apphttp "github.com/jhoicas/techfix-api/internal/interfaces/http"
	"github.com/jhoicas/techfix-api/pkg/logger"
)

// ── stubs ─────────────────────────────────────────────────────────────────────

type stubAccounts struct {
	registerErr error
	loginErr    error
	profileID   entity.Identity
}

func (s *stubAccounts) Register(_ context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &dto.UserResponse{ID: 3, Email: in.Email, CPF: in.CPF, Role: entity.RoleClient}, nil
}

func (s *stubAccounts) Login(_ context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &dto.LoginResponse{Message: "Login bem-sucedido!", Token: "tok", User: dto.UserResponse{Email: in.Email}}, nil
}

func (s *stubAccounts) UpdateProfile(_ context.Context, id entity.Identity, in dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	s.profileID = id
	return &dto.ProfileResponse{Message: "Perfil atualizado com sucesso!", User: dto.UserResponse{ID: id.UserID, Name: in.Name}}, nil
}

type stubTickets struct {
	tickets   []*entity.Ticket
	pagedWith *dto.ListQuery
	created   dto.CreateServiceRequest
	photo     *services.PhotoUpload
	photoData string
	status    string
	err       error
}

func (s *stubTickets) Create(_ context.Context, _ entity.Identity, in dto.CreateServiceRequest, photo *services.PhotoUpload) (*entity.Ticket, error) {
	s.created, s.photo = in, photo
	if photo != nil {
		b, _ := io.ReadAll(photo.Body)
		s.photoData = string(b)
	}
	return &entity.Ticket{ID: 10, ClientName: in.ClientName, Status: entity.StatusReceived}, s.err
}

func (s *stubTickets) List(context.Context, entity.Identity) ([]*entity.Ticket, error) {
	return s.tickets, s.err
}

func (s *stubTickets) ListPage(_ context.Context, _ entity.Identity, q dto.ListQuery) (listing.Page, listing.Metrics, error) {
	s.pagedWith = &q
	return listing.Page{Items: s.tickets, Page: 1, PageSize: 5, Total: len(s.tickets), TotalPages: 1},
		listing.Metrics{Total: len(s.tickets)}, s.err
}

func (s *stubTickets) Get(_ context.Context, _ entity.Identity, id int64) (*entity.Ticket, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Ticket{ID: id, Status: entity.StatusAnalysis}, nil
}

func (s *stubTickets) UpdateStatus(_ context.Context, _ entity.Identity, id int64, status string) (*entity.Ticket, error) {
	s.status = status
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Ticket{ID: id, Status: entity.Status(status)}, nil
}

func (s *stubTickets) Delete(context.Context, entity.Identity, int64) error { return s.err }

type stubPDF struct{}

func (stubPDF) DownloadTicketPDF(_ context.Context, _ entity.Identity, id int64) ([]byte, string, error) {
	return []byte("%PDF-1.3"), fmt.Sprintf("atendimento_%d.pdf", id), nil
}

type stubClients struct{}

func (stubClients) CheckCPF(_ context.Context, raw string) (*dto.CheckCPFResponse, error) {
	if raw == "123" {
		return nil, fmt.Errorf("%w: CPF deve conter 11 dígitos", domain.ErrValidation)
	}
	return &dto.CheckCPFResponse{Exists: true, Message: "Este CPF já está cadastrado."}, nil
}

func (stubClients) GetByCPF(context.Context, string) (*dto.UserResponse, error) {
	return nil, fmt.Errorf("%w: cliente não encontrado", domain.ErrNotFound)
}

func (stubClients) Create(_ context.Context, in dto.CreateClientRequest) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: 4, Name: in.Name, CPF: in.CPF, Role: entity.RoleClient}, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

type testServer struct {
	app      *fiber.App
	accounts *stubAccounts
	tickets  *stubTickets
}

func newTestServer() *testServer {
	s := &testServer{accounts: &stubAccounts{}, tickets: &stubTickets{}}
	s.app = fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	s.app.Use(apphttp.RequestLogger(logger.Nop()))
	apphttp.Router(s.app, apphttp.RouterDeps{
		Accounts: s.accounts,
		Tickets:  s.tickets,
		PDF:      stubPDF{},
		Clients:  stubClients{},
		Verifier: testJWT,
	})
	return s
}

func (s *testServer) do(t *testing.T, req *http.Request, role string) *http.Response {
	t.Helper()
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// ── auth ──────────────────────────────────────────────────────────────────────

func TestRegister_201ConMensaje(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, jsonRequest(http.MethodPost, "/api/auth/register",
		`{"email":"ana@example.com","password":"secret1","cpf":"111.444.777-35"}`), "")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var body dto.RegisterResponse
	decode(t, resp, &body)
	assert.Equal(t, "Usuário cadastrado com sucesso!", body.Message)
	assert.Equal(t, "ana@example.com", body.User.Email)
}

func TestRegister_MapeaErroresDeDominio(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: email já cadastrado", domain.ErrConflict), http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("%w: CPF sem atendimentos", domain.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("%w: senha muito curta", domain.ErrValidation), http.StatusBadRequest, "VALIDATION"},
	}
	for _, tc := range cases {
		s := newTestServer()
		s.accounts.registerErr = tc.err
		resp := s.do(t, jsonRequest(http.MethodPost, "/api/auth/register", `{"email":"a@b.c"}`), "")

		assert.Equal(t, tc.status, resp.StatusCode)
		var body dto.ErrorResponse
		decode(t, resp, &body)
		assert.Equal(t, tc.code, body.Code)
		assert.NotContains(t, body.Message, ": ", "el prefijo del sentinel no se expone")
	}
}

func TestLogin_ErrorInternoNoExponeDetalle(t *testing.T) {
	s := newTestServer()
	s.accounts.loginErr = errors.New("dial tcp 10.0.0.1:5432: connection refused")
	resp := s.do(t, jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`), "")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.NotContains(t, body.Message, "10.0.0.1")
}

func TestLogin_CuerpoInvalido(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, jsonRequest(http.MethodPost, "/api/auth/login", `{"email":`), "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateProfile_UsaIdentidadDelToken(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, jsonRequest(http.MethodPut, "/api/users/profile", `{"name":"Ana Maria"}`), entity.RoleClient)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.ProfileResponse
	decode(t, resp, &body)
	assert.Equal(t, "Ana Maria", body.User.Name)
	assert.Equal(t, int64(7), s.accounts.profileID.UserID)
	assert.Equal(t, testClientCPF, s.accounts.profileID.CPF)
}

func TestUpdateProfile_SinToken401(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, jsonRequest(http.MethodPut, "/api/users/profile", `{}`), "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ── services ──────────────────────────────────────────────────────────────────

func TestListServices_SinParametrosDevuelveArray(t *testing.T) {
	s := newTestServer()
	s.tickets.tickets = []*entity.Ticket{{ID: 1, Status: entity.StatusAnalysis, CreatedAt: time.Now()}}
	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/services", nil), entity.RoleClient)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body []dto.ServiceResponse
	decode(t, resp, &body)
	require.Len(t, body, 1)
	assert.Nil(t, s.tickets.pagedWith)
}

func TestListServices_VacioEsArrayNoNull(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/services", nil), entity.RoleClient)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))
}

func TestListServices_ConParametrosPagina(t *testing.T) {
	s := newTestServer()
	s.tickets.tickets = []*entity.Ticket{{ID: 1}, {ID: 2}}
	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/services?status=analysis&q=ana&page=1&page_size=5", nil), entity.RoleAdmin)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.ServicePageResponse
	decode(t, resp, &body)
	assert.Len(t, body.Items, 2)
	assert.Equal(t, 2, body.Metrics.Total)
	require.NotNil(t, s.tickets.pagedWith)
	assert.Equal(t, "analysis", s.tickets.pagedWith.Status)
	assert.Equal(t, "ana", s.tickets.pagedWith.Q)
	assert.Equal(t, 5, s.tickets.pagedWith.PageSize)
}

func TestListServices_PaginaNoNumerica400(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/services?page=abc", nil), entity.RoleAdmin)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func multipartRequest(t *testing.T, fields map[string]string, photoName, photoBody string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photoName != "" {
		fw, err := w.CreateFormFile("photo", photoName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(photoBody))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/services", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestCreateService_MultipartConFoto(t *testing.T) {
	s := newTestServer()
	req := multipartRequest(t, map[string]string{
		"clientName":    "Ana Souza",
		"clientCpf":     "111.444.777-35",
		"clientPhone":   "(11) 98765-4321",
		"equipmentType": "Notebook",
		"serviceType":   "Troca de tela",
		"description":   "Tela quebrada",
	}, "tela.png", "PNGDATA")
	resp := s.do(t, req, entity.RoleAdmin)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var body dto.CreateServiceResponse
	decode(t, resp, &body)
	assert.Equal(t, "Serviço criado com sucesso", body.Message)
	assert.Equal(t, int64(10), body.Service.ID)

	assert.Equal(t, "Ana Souza", s.tickets.created.ClientName)
	assert.Equal(t, "111.444.777-35", s.tickets.created.ClientCPF)
	assert.Equal(t, "Tela quebrada", s.tickets.created.Description)
	require.NotNil(t, s.tickets.photo)
	assert.Equal(t, "tela.png", s.tickets.photo.Filename)
	assert.Equal(t, int64(len("PNGDATA")), s.tickets.photo.Size)
	assert.Equal(t, "PNGDATA", s.tickets.photoData)
}

func TestCreateService_SinFoto(t *testing.T) {
	s := newTestServer()
	req := multipartRequest(t, map[string]string{"clientName": "Ana"}, "", "")
	resp := s.do(t, req, entity.RoleAdmin)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, s.tickets.photo)
}

func TestCreateService_Cliente403(t *testing.T) {
	s := newTestServer()
	req := multipartRequest(t, map[string]string{"clientName": "Ana"}, "", "")
	resp := s.do(t, req, entity.RoleClient)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, s.tickets.created.ClientName, "el caso de uso no se alcanza")
}

func TestGetService_IDInvalido400(t *testing.T) {
	s := newTestServer()
	for _, path := range []string{"/api/services/abc", "/api/services/0"} {
		resp := s.do(t, httptest.NewRequest(http.MethodGet, path, nil), entity.RoleAdmin)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestGetService_NoEncontrado404(t *testing.T) {
	s := newTestServer()
	s.tickets.err = fmt.Errorf("%w: atendimento não encontrado", domain.ErrNotFound)
	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/services/99", nil), entity.RoleClient)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "atendimento não encontrado", body.Message)
}

func TestUpdateStatus_PasaEstadoAlCasoDeUso(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, jsonRequest(http.MethodPut, "/api/services/5/status", `{"status":"finished"}`), entity.RoleAdmin)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.ServiceResponse
	decode(t, resp, &body)
	assert.Equal(t, "finished", body.Status)
	assert.Equal(t, "finished", s.tickets.status)
}

func TestUpdateStatus_Cliente403(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, jsonRequest(http.MethodPut, "/api/services/5/status", `{"status":"finished"}`), entity.RoleClient)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, s.tickets.status)
}

func TestDeleteService_Mensaje(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, httptest.NewRequest(http.MethodDelete, "/api/services/12", nil), entity.RoleAdmin)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.MessageResponse
	decode(t, resp, &body)
	assert.Equal(t, "Serviço #12 excluído com sucesso.", body.Message)
}

func TestDownloadPDF_Cabeceras(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/services/3/pdf", nil), entity.RoleClient)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="atendimento_3.pdf"`)
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

// ── clients ───────────────────────────────────────────────────────────────────

func TestCheckCPF(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/clients/check-cpf/11144477735", nil), entity.RoleAdmin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.CheckCPFResponse
	decode(t, resp, &body)
	assert.True(t, body.Exists)

	resp = s.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/clients/check-cpf/123", nil), entity.RoleAdmin)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminClients_Cliente403(t *testing.T) {
	s := newTestServer()
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/admin/clients/check-cpf/11144477735", nil),
		jsonRequest(http.MethodPost, "/api/admin/clients", `{"name":"Ana"}`),
		httptest.NewRequest(http.MethodGet, "/api/clients/by-cpf/11144477735", nil),
	} {
		resp := s.do(t, req, entity.RoleClient)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, req.URL.Path)
	}
}

func TestCreateClient_201(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, jsonRequest(http.MethodPost, "/api/admin/clients", `{"name":"Ana","cpf":"11144477735"}`), entity.RoleAdmin)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var body dto.CreateClientResponse
	decode(t, resp, &body)
	assert.Equal(t, "Ana", body.Client.Name)
}

func TestClientByCPF_404(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/clients/by-cpf/11144477735", nil), entity.RoleAdmin)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ── transversales ─────────────────────────────────────────────────────────────

func TestRequestLogger_RequestID(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/services", nil), entity.RoleAdmin)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp = s.do(t, req, entity.RoleAdmin)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestRutaInexistente_JSON404(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/nada", nil), "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "NOT_FOUND", body.Code)
}
