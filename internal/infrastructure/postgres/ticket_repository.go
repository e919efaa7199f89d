package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

const ticketColumns = `s.id, s.client_cpf, s.client_name, COALESCE(s.client_phone, ''), s.equipment_type,
	COALESCE(s.service_type, ''), s.description, s.status, COALESCE(s.photo_url, ''),
	COALESCE(s.admin_id, 0), s.created_at, s.updated_at`

// TicketRepo Ticket Store sobre la tabla services.
type TicketRepo struct {
	db Querier
}

// NewTicketRepository construye el adaptador (pool o tx).
func NewTicketRepository(db Querier) *TicketRepo {
	return &TicketRepo{db: db}
}

func scanTicket(row pgx.Row, extra ...any) (*entity.Ticket, error) {
	var t entity.Ticket
	var status string
	dest := []any{
		&t.ID, &t.ClientCPF, &t.ClientName, &t.ClientPhone, &t.EquipmentType,
		&t.ServiceType, &t.Description, &status, &t.PhotoURL,
		&t.AdminID, &t.CreatedAt, &t.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	t.Status = entity.Status(status)
	return &t, nil
}

// Create inserta el atendimento y completa su ID.
func (r *TicketRepo) Create(ctx context.Context, t *entity.Ticket) error {
	query := `
		INSERT INTO services (client_cpf, client_name, client_phone, equipment_type, service_type,
		                      description, status, photo_url, admin_id, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), NULLIF($9, 0), $10, $11)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		t.ClientCPF, t.ClientName, t.ClientPhone, t.EquipmentType, t.ServiceType,
		t.Description, string(t.Status), t.PhotoURL, t.AdminID, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

// GetByID obtiene un atendimento; (nil, nil) si no existe.
func (r *TicketRepo) GetByID(ctx context.Context, id int64) (*entity.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM services s WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return t, nil
}

// ListAll todos los atendimentos con el nombre del usuario registrado del CPF.
func (r *TicketRepo) ListAll(ctx context.Context) ([]*entity.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `, COALESCE(u.name, '')
		FROM services s
		LEFT JOIN users u ON u.cpf = s.client_cpf
		ORDER BY s.created_at DESC, s.id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()
	list := []*entity.Ticket{}
	for rows.Next() {
		var registered string
		t, err := scanTicket(rows, &registered)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		t.RegisteredUserName = registered
		list = append(list, t)
	}
	return list, rows.Err()
}

// ListByCPF atendimentos del CPF, más recientes primero.
func (r *TicketRepo) ListByCPF(ctx context.Context, cpf string) ([]*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM services s WHERE s.client_cpf = $1 ORDER BY s.created_at DESC, s.id DESC`
	rows, err := r.db.Query(ctx, query, cpf)
	if err != nil {
		return nil, fmt.Errorf("list services by cpf: %w", err)
	}
	defer rows.Close()
	list := []*entity.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// CountByCPF cantidad de atendimentos del CPF.
func (r *TicketRepo) CountByCPF(ctx context.Context, cpf string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM services WHERE client_cpf = $1`, cpf).Scan(&n); err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	return n, nil
}

// UpdateStatus cambia el estado y refresca updated_at (nunca por debajo de created_at).
func (r *TicketRepo) UpdateStatus(ctx context.Context, id int64, status entity.Status, at time.Time) (*entity.Ticket, error) {
	query := `
		UPDATE services s SET status = $2, updated_at = GREATEST($3, s.created_at)
		WHERE s.id = $1
		RETURNING ` + ticketColumns
	t, err := scanTicket(r.db.QueryRow(ctx, query, id, string(status), at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update service status: %w", err)
	}
	return t, nil
}

// Delete borra el atendimento; false si no existía.
func (r *TicketRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete service: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
