package repository

import (
	"context"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get* devuelven (nil, nil) cuando no hay fila.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByCPF(ctx context.Context, cpf string) (*entity.User, error)
	// ClaimPreRecord define email y password en el pre-registro del CPF sólo si aún no tiene
	// password. Devuelve (nil, nil) si no había pre-registro libre.
	ClaimPreRecord(ctx context.Context, cpf, email, passwordHash string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}
