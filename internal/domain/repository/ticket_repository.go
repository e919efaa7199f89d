package repository

import (
	"context"
	"time"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
)

// TicketRepository puerto de persistencia del Ticket Store.
type TicketRepository interface {
	// Create inserta el atendimento y completa ID.
	Create(ctx context.Context, t *entity.Ticket) error
	GetByID(ctx context.Context, id int64) (*entity.Ticket, error)
	// ListAll todos los atendimentos, más recientes primero, con RegisteredUserName.
	ListAll(ctx context.Context) ([]*entity.Ticket, error)
	// ListByCPF atendimentos de un CPF, más recientes primero.
	ListByCPF(ctx context.Context, cpf string) ([]*entity.Ticket, error)
	CountByCPF(ctx context.Context, cpf string) (int, error)
	// UpdateStatus devuelve (nil, nil) si el id no existe.
	UpdateStatus(ctx context.Context, id int64, status entity.Status, at time.Time) (*entity.Ticket, error)
	// Delete devuelve false si el id no existe.
	Delete(ctx context.Context, id int64) (bool, error)
}
