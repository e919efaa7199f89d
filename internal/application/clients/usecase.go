// Package clients maneja los pre-registros de clientes que crea un admin.
package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/techfix-api/internal/application/dto"
	"github.com/jhoicas/techfix-api/internal/domain"
	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/repository"
	"github.com/jhoicas/techfix-api/pkg/brdoc"
)

// ClientUseCase consulta y alta de clientes por CPF.
type ClientUseCase struct {
	users repository.UserRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(users repository.UserRepository) *ClientUseCase {
	return &ClientUseCase{users: users}
}

func cleanCPF(raw string) (string, error) {
	cpf := brdoc.Digits(raw)
	if !brdoc.IsCPF(cpf) {
		return "", fmt.Errorf("%w: CPF é obrigatório e deve ter 11 dígitos", domain.ErrValidation)
	}
	return cpf, nil
}

// CheckCPF indica si ya existe un usuario (pre-registro o cuenta) con el CPF.
func (uc *ClientUseCase) CheckCPF(ctx context.Context, raw string) (*dto.CheckCPFResponse, error) {
	cpf, err := cleanCPF(raw)
	if err != nil {
		return nil, err
	}
	u, err := uc.users.GetByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return &dto.CheckCPFResponse{Exists: false}, nil
	}
	return &dto.CheckCPFResponse{Exists: true, Message: "Este CPF já está cadastrado."}, nil
}

// GetByCPF devuelve el usuario del CPF o ErrNotFound.
func (uc *ClientUseCase) GetByCPF(ctx context.Context, raw string) (*dto.UserResponse, error) {
	cpf, err := cleanCPF(raw)
	if err != nil {
		return nil, err
	}
	u, err := uc.users.GetByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: cliente não cadastrado", domain.ErrNotFound)
	}
	out := dto.ToUserResponse(u)
	return &out, nil
}

// Create inserta un pre-registro (sin email ni password). Un CPF ya cadastrado devuelve ErrConflict.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.CreateClientRequest) (*dto.UserResponse, error) {
	cpf, err := cleanCPF(in.CPF)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nome é obrigatório", domain.ErrValidation)
	}
	phone := brdoc.Digits(in.Phone)
	if strings.TrimSpace(in.Phone) != "" && !brdoc.IsPhone(phone) {
		return nil, fmt.Errorf("%w: telefone deve ter 10 ou 11 dígitos", domain.ErrValidation)
	}
	cep := brdoc.Digits(in.CEP)
	if strings.TrimSpace(in.CEP) != "" && !brdoc.IsCEP(cep) {
		return nil, fmt.Errorf("%w: CEP deve ter 8 dígitos", domain.ErrValidation)
	}

	existing, err := uc.users.GetByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: este CPF já está cadastrado", domain.ErrConflict)
	}

	now := time.Now()
	u := &entity.User{
		Name:      name,
		CPF:       cpf,
		Phone:     phone,
		Role:      entity.RoleClient,
		CEP:       cep,
		Estado:    strings.TrimSpace(in.Estado),
		Cidade:    strings.TrimSpace(in.Cidade),
		Bairro:    strings.TrimSpace(in.Bairro),
		CreatedAt: now,
		UpdatedAt: now,
	}
	// La restricción única de cpf cubre la carrera con otro alta simultánea (ErrConflict).
	if err := uc.users.Create(ctx, u); err != nil {
		return nil, err
	}
	out := dto.ToUserResponse(u)
	return &out, nil
}
