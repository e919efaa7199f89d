package auth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/techfix-api/internal/application/auth"
	"github.com/jhoicas/techfix-api/internal/application/dto"
	"github.com/jhoicas/techfix-api/internal/domain"
	"github.com/jhoicas/techfix-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*entity.User
}

func newMemUsers() *memUsers {
	return &memUsers{nextID: 1, byID: map[int64]*entity.User{}}
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.byID {
		if cur.CPF == u.CPF || (u.Email != "" && cur.Email == u.Email) {
			return domain.ErrConflict
		}
	}
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) find(match func(*entity.User) bool) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Email != "" && u.Email == email }), nil
}

func (m *memUsers) GetByCPF(_ context.Context, cpf string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.CPF == cpf }), nil
}

func (m *memUsers) ClaimPreRecord(_ context.Context, cpf, email, hash string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.CPF == cpf && u.PasswordHash == "" {
			u.Email = email
			u.PasswordHash = hash
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

type ticketCount map[string]int

func (c ticketCount) CountByCPF(_ context.Context, cpf string) (int, error) {
	return c[cpf], nil
}

var jwtCfg = auth.JWTConfig{Secret: "test-secret", ExpMinutes: 60, Issuer: "techfix-test"}

func newUC(users *memUsers, tickets ticketCount, allowUnknown bool) *auth.AuthUseCase {
	return auth.NewAuthUseCase(users, tickets, jwtCfg, allowUnknown)
}

func hashOf(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// ──────────────────────────────────────────────────────────────────────────────
// Register
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_CompletaPreRegistroYLoginFunciona(t *testing.T) {
	users := newMemUsers()
	require.NoError(t, users.Create(context.Background(), &entity.User{Name: "Ana", CPF: "11144477735", Role: entity.RoleClient}))
	uc := newUC(users, ticketCount{"11144477735": 1}, false)

	out, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "ana@x.com", Password: "secret1", CPF: "111.444.777-35"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.ID, "actualiza la fila existente en vez de insertar")
	assert.Equal(t, "Ana", out.Name)
	assert.Equal(t, "ana@x.com", out.Email)

	login, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "11144477735", login.User.CPF)

	id, err := uc.Authenticate(login.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.UserID)
	assert.Equal(t, entity.RoleClient, id.Role)
	assert.Equal(t, "11144477735", id.CPF)
}

func TestRegister_CPFDesconocidoSinAtendimentos_Forbidden(t *testing.T) {
	uc := newUC(newMemUsers(), ticketCount{}, false)
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "n@x.com", Password: "secret1", CPF: "52998224725"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRegister_CPFConAtendimentosSinRegistro_CreaCliente(t *testing.T) {
	users := newMemUsers()
	uc := newUC(users, ticketCount{"52998224725": 2}, false)

	out, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "n@x.com", Password: "secret1", CPF: "52998224725"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleClient, out.Role)

	stored, _ := users.GetByCPF(context.Background(), "52998224725")
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash, "la password se guarda hasheada")
}

func TestRegister_ModoSeedPermiteCPFDesconocido(t *testing.T) {
	uc := newUC(newMemUsers(), ticketCount{}, true)
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "n@x.com", Password: "secret1", CPF: "52998224725"})
	assert.NoError(t, err)
}

func TestRegister_CuentaActiva_Conflict(t *testing.T) {
	users := newMemUsers()
	require.NoError(t, users.Create(context.Background(), &entity.User{
		Email: "ana@x.com", PasswordHash: hashOf(t, "secret1"), CPF: "11144477735", Role: entity.RoleClient,
	}))
	uc := newUC(users, ticketCount{"11144477735": 1, "52998224725": 1}, false)

	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "otra@x.com", Password: "secret1", CPF: "11144477735"})
	assert.ErrorIs(t, err, domain.ErrConflict, "CPF con cuenta activa")

	_, err = uc.Register(context.Background(), dto.RegisterRequest{Email: "ana@x.com", Password: "secret1", CPF: "52998224725"})
	assert.ErrorIs(t, err, domain.ErrConflict, "email en uso")
}

func TestRegister_Validaciones(t *testing.T) {
	uc := newUC(newMemUsers(), ticketCount{}, true)
	cases := map[string]dto.RegisterRequest{
		"sin email":     {Password: "secret1", CPF: "11144477735"},
		"sin password":  {Email: "a@x.com", CPF: "11144477735"},
		"sin cpf":       {Email: "a@x.com", Password: "secret1"},
		"cpf corto":     {Email: "a@x.com", Password: "secret1", CPF: "1234"},
		"password < 6":  {Email: "a@x.com", Password: "12345", CPF: "11144477735"},
		"cpf con letra": {Email: "a@x.com", Password: "secret1", CPF: "1114447773a"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_Fallas(t *testing.T) {
	users := newMemUsers()
	require.NoError(t, users.Create(context.Background(), &entity.User{Name: "Pre", CPF: "11144477735", Email: "pre@x.com", Role: entity.RoleClient}))
	require.NoError(t, users.Create(context.Background(), &entity.User{
		Email: "ana@x.com", PasswordHash: hashOf(t, "secret1"), CPF: "52998224725", Role: entity.RoleClient,
	}))
	uc := newUC(users, ticketCount{}, false)

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "email inexistente")

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "pre@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "cuenta sin password")

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "ana@x.com", Password: "errada"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "password incorrecta")

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "ana@x.com"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthenticate_TokenInvalido(t *testing.T) {
	_, err := jwtCfg.Authenticate("")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = jwtCfg.Authenticate("no.es.jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	other := auth.JWTConfig{Secret: "otro", ExpMinutes: 60}
	tok, err := other.Issue(&entity.User{ID: 1, Role: entity.RoleAdmin})
	require.NoError(t, err)
	_, err = jwtCfg.Authenticate(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "firma de otro secret")

	expired := auth.JWTConfig{Secret: jwtCfg.Secret, ExpMinutes: -1}
	tok, err = expired.Issue(&entity.User{ID: 1, Role: entity.RoleAdmin})
	require.NoError(t, err)
	_, err = jwtCfg.Authenticate(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "token vencido")
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateProfile
// ──────────────────────────────────────────────────────────────────────────────

func seedActive(t *testing.T, users *memUsers) *entity.User {
	t.Helper()
	u := &entity.User{Name: "Ana", Email: "ana@x.com", PasswordHash: hashOf(t, "secret1"), CPF: "11144477735", Role: entity.RoleClient}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestUpdateProfile_ActualizaYRenuevaToken(t *testing.T) {
	users := newMemUsers()
	u := seedActive(t, users)
	uc := newUC(users, ticketCount{}, false)

	out, err := uc.UpdateProfile(context.Background(), entity.Identity{UserID: u.ID}, dto.UpdateProfileRequest{
		Name: "Ana Maria", Email: "ana@x.com", Phone: "(11) 98765-4321", CEP: "01310-100", Cidade: "São Paulo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", out.User.Name)
	assert.Equal(t, "11987654321", out.User.Phone)
	assert.Equal(t, "01310100", out.User.CEP)

	id, err := uc.Authenticate(out.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", id.Name)
	assert.Equal(t, "São Paulo", id.Cidade)
}

func TestUpdateProfile_Validaciones(t *testing.T) {
	users := newMemUsers()
	u := seedActive(t, users)
	uc := newUC(users, ticketCount{}, false)
	id := entity.Identity{UserID: u.ID}

	_, err := uc.UpdateProfile(context.Background(), id, dto.UpdateProfileRequest{Email: "ana@x.com"})
	assert.ErrorIs(t, err, domain.ErrValidation, "nombre requerido")

	_, err = uc.UpdateProfile(context.Background(), id, dto.UpdateProfileRequest{Name: "Ana", Email: "ana@x.com", Phone: "123"})
	assert.ErrorIs(t, err, domain.ErrValidation, "teléfono corto")

	_, err = uc.UpdateProfile(context.Background(), id, dto.UpdateProfileRequest{Name: "Ana", Email: "ana@x.com", CEP: "0131"})
	assert.ErrorIs(t, err, domain.ErrValidation, "cep corto")

	_, err = uc.UpdateProfile(context.Background(), id, dto.UpdateProfileRequest{Name: "Ana", Email: "ana@x.com", NewPassword: "123", CurrentPassword: "secret1"})
	assert.ErrorIs(t, err, domain.ErrValidation, "nueva password corta")
}

func TestUpdateProfile_EmailDeOtraCuenta_Conflict(t *testing.T) {
	users := newMemUsers()
	u := seedActive(t, users)
	require.NoError(t, users.Create(context.Background(), &entity.User{Email: "bruno@x.com", PasswordHash: "h", CPF: "52998224725", Role: entity.RoleClient}))
	uc := newUC(users, ticketCount{}, false)

	_, err := uc.UpdateProfile(context.Background(), entity.Identity{UserID: u.ID}, dto.UpdateProfileRequest{Name: "Ana", Email: "bruno@x.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateProfile_CambioDePassword(t *testing.T) {
	users := newMemUsers()
	u := seedActive(t, users)
	uc := newUC(users, ticketCount{}, false)
	id := entity.Identity{UserID: u.ID}

	_, err := uc.UpdateProfile(context.Background(), id, dto.UpdateProfileRequest{Name: "Ana", Email: "ana@x.com", NewPassword: "nova123", CurrentPassword: "errada"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = uc.UpdateProfile(context.Background(), id, dto.UpdateProfileRequest{Name: "Ana", Email: "ana@x.com", NewPassword: "nova123", CurrentPassword: "secret1"})
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "ana@x.com", Password: "nova123"})
	assert.NoError(t, err)
}

func TestUpdateProfile_SinPasswordPreviaNoExigeActual(t *testing.T) {
	users := newMemUsers()
	pre := &entity.User{Name: "Pre", CPF: "11144477735", Role: entity.RoleClient}
	require.NoError(t, users.Create(context.Background(), pre))
	uc := newUC(users, ticketCount{}, false)

	_, err := uc.UpdateProfile(context.Background(), entity.Identity{UserID: pre.ID}, dto.UpdateProfileRequest{
		Name: "Pre", Email: "pre@x.com", NewPassword: "nova123",
	})
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "pre@x.com", Password: "nova123"})
	assert.NoError(t, err)
}

func TestUpdateProfile_UsuarioInexistente_NotFound(t *testing.T) {
	uc := newUC(newMemUsers(), ticketCount{}, false)
	_, err := uc.UpdateProfile(context.Background(), entity.Identity{UserID: 99}, dto.UpdateProfileRequest{Name: "A", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
