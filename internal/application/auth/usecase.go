package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/techfix-api/internal/application/dto"
	"github.com/jhoicas/techfix-api/internal/domain"
	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/repository"
	"github.com/jhoicas/techfix-api/pkg/brdoc"
	"github.com/jhoicas/techfix-api/pkg/jwt"
)

const minPasswordLen = 6

var tracer = otel.Tracer("github.com/jhoicas/techfix-api/internal/application/auth")

// TicketCounter lo único que el registro necesita del Ticket Store.
type TicketCounter interface {
	CountByCPF(ctx context.Context, cpf string) (int, error)
}

// JWTConfig configuración para generación y verificación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Issue firma un token con la identidad del usuario.
func (c JWTConfig) Issue(u *entity.User) (string, error) {
	return jwt.Generate(c.Secret, c.Issuer, c.ExpMinutes, jwt.Payload{
		ID:     u.ID,
		Role:   u.Role,
		CPF:    u.CPF,
		Name:   u.Name,
		Email:  u.Email,
		Phone:  u.Phone,
		CEP:    u.CEP,
		Estado: u.Estado,
		Cidade: u.Cidade,
		Bairro: u.Bairro,
	})
}

// Authenticate valida el token y devuelve la identidad. Token vacío, malformado, vencido o
// con firma inválida devuelve ErrUnauthenticated.
func (c JWTConfig) Authenticate(token string) (*entity.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: token não fornecido", domain.ErrUnauthenticated)
	}
	p, err := jwt.Parse(c.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: token inválido", domain.ErrUnauthenticated)
	}
	return &entity.Identity{
		UserID: p.ID,
		Role:   p.Role,
		CPF:    p.CPF,
		Name:   p.Name,
		Email:  p.Email,
		Phone:  p.Phone,
		CEP:    p.CEP,
		Estado: p.Estado,
		Cidade: p.Cidade,
		Bairro: p.Bairro,
	}, nil
}

// AuthUseCase casos de uso de autenticación: registro, login y perfil.
type AuthUseCase struct {
	userRepo        repository.UserRepository
	tickets         TicketCounter
	jwtCfg          JWTConfig
	allowUnknownCPF bool
}

// NewAuthUseCase construye el caso de uso de auth. allowUnknownCPF habilita el registro de CPFs
// sin pre-registro ni atendimentos (modo seed/desarrollo).
func NewAuthUseCase(userRepo repository.UserRepository, tickets TicketCounter, jwtCfg JWTConfig, allowUnknownCPF bool) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, tickets: tickets, jwtCfg: jwtCfg, allowUnknownCPF: allowUnknownCPF}
}

// Authenticate delega en la configuración JWT.
func (uc *AuthUseCase) Authenticate(token string) (*entity.Identity, error) {
	return uc.jwtCfg.Authenticate(token)
}

// Register crea la cuenta del cliente. Un pre-registro del CPF se completa en el lugar; un CPF
// desconocido sólo se acepta si ya tiene atendimentos.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (_ *dto.UserResponse, err error) {
	ctx, span := tracer.Start(ctx, "auth.Register")
	defer func() { endSpan(span, err) }()

	email := strings.TrimSpace(in.Email)
	cpf := brdoc.Digits(in.CPF)
	if email == "" || in.Password == "" || strings.TrimSpace(in.CPF) == "" {
		return nil, fmt.Errorf("%w: email, senha e CPF são obrigatórios", domain.ErrValidation)
	}
	if !brdoc.IsCPF(cpf) {
		return nil, fmt.Errorf("%w: CPF deve conter 11 dígitos", domain.ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: senha deve ter pelo menos %d caracteres", domain.ErrValidation, minPasswordLen)
	}

	byEmail, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if byEmail != nil {
		return nil, fmt.Errorf("%w: email ou CPF já cadastrado", domain.ErrConflict)
	}
	byCPF, err := uc.userRepo.GetByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if byCPF != nil && byCPF.PasswordHash != "" {
		return nil, fmt.Errorf("%w: email ou CPF já cadastrado", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if byCPF != nil {
		claimed, err := uc.userRepo.ClaimPreRecord(ctx, cpf, email, string(hash))
		if err != nil {
			return nil, err
		}
		if claimed == nil {
			// Otro registro concurrente completó el pre-registro primero.
			return nil, fmt.Errorf("%w: email ou CPF já cadastrado", domain.ErrConflict)
		}
		span.SetAttributes(attribute.Bool("auth.pre_record", true))
		out := dto.ToUserResponse(claimed)
		return &out, nil
	}

	if !uc.allowUnknownCPF {
		n, err := uc.tickets.CountByCPF(ctx, cpf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: cadastro não permitido, nenhum serviço encontrado para este CPF", domain.ErrForbidden)
		}
	}

	now := time.Now()
	user := &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		CPF:          cpf,
		Role:         entity.RoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	out := dto.ToUserResponse(user)
	return &out, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (_ *dto.LoginResponse, err error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer func() { endSpan(span, err) }()

	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email e senha são obrigatórios", domain.ErrValidation)
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: email ou senha inválidos", domain.ErrUnauthenticated)
	}
	if user.PasswordHash == "" {
		return nil, fmt.Errorf("%w: cadastro pendente", domain.ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("%w: email ou senha inválidos", domain.ErrUnauthenticated)
	}
	token, err := uc.jwtCfg.Issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Message: "Login bem-sucedido!",
		Token:   token,
		User:    dto.ToUserResponse(user),
	}, nil
}

// UpdateProfile edita los datos del usuario autenticado y devuelve un token nuevo con esos datos.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, id entity.Identity, in dto.UpdateProfileRequest) (_ *dto.ProfileResponse, err error) {
	ctx, span := tracer.Start(ctx, "auth.UpdateProfile")
	defer func() { endSpan(span, err) }()

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: nome e email são obrigatórios", domain.ErrValidation)
	}
	phone := brdoc.Digits(in.Phone)
	if strings.TrimSpace(in.Phone) != "" && !brdoc.IsPhone(phone) {
		return nil, fmt.Errorf("%w: telefone deve ter 10 ou 11 dígitos, ou ser deixado em branco", domain.ErrValidation)
	}
	cep := brdoc.Digits(in.CEP)
	if strings.TrimSpace(in.CEP) != "" && !brdoc.IsCEP(cep) {
		return nil, fmt.Errorf("%w: CEP deve ter 8 dígitos", domain.ErrValidation)
	}

	user, err := uc.userRepo.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuário não encontrado", domain.ErrNotFound)
	}

	if email != user.Email {
		other, err := uc.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, fmt.Errorf("%w: este email já está em uso por outra conta", domain.ErrConflict)
		}
	}

	if in.NewPassword != "" {
		if len(in.NewPassword) < minPasswordLen {
			return nil, fmt.Errorf("%w: nova senha deve ter pelo menos %d caracteres", domain.ErrValidation, minPasswordLen)
		}
		if user.PasswordHash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
				return nil, fmt.Errorf("%w: senha atual incorreta", domain.ErrUnauthenticated)
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	user.Name = name
	user.Email = email
	user.Phone = phone
	user.CEP = cep
	user.Estado = strings.TrimSpace(in.Estado)
	user.Cidade = strings.TrimSpace(in.Cidade)
	user.Bairro = strings.TrimSpace(in.Bairro)
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	token, err := uc.jwtCfg.Issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{
		Message: "Perfil atualizado com sucesso!",
		User:    dto.ToUserResponse(user),
		Token:   token,
	}, nil
}

// endSpan marca el span como error sólo para fallas inesperadas; los errores de dominio son
// respuestas normales de la API.
func endSpan(span trace.Span, err error) {
	if err != nil && !domain.IsDomainError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
