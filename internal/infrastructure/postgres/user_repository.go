package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/techfix-api/internal/domain"
	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// Las columnas opcionales se leen con COALESCE: el dominio usa "" como ausencia.
const userColumns = `id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(password_hash, ''), cpf,
	COALESCE(phone, ''), role, COALESCE(cep, ''), COALESCE(estado, ''), COALESCE(cidade, ''),
	COALESCE(bairro, ''), created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	db Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios (pool o tx).
func NewUserRepository(db Querier) *UserRepo {
	return &UserRepo{db: db}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CPF,
		&u.Phone, &u.Role, &u.CEP, &u.Estado, &u.Cidade,
		&u.Bairro, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// conflictErr traduce la violación de unicidad al error de dominio.
func conflictErr(err error) error {
	switch uniqueConstraint(err) {
	case "users_email_key":
		return fmt.Errorf("%w: email já cadastrado", domain.ErrConflict)
	case "users_cpf_key":
		return fmt.Errorf("%w: CPF já cadastrado", domain.ErrConflict)
	}
	return fmt.Errorf("%w: email ou CPF já cadastrado", domain.ErrConflict)
}

// Create persiste un nuevo usuario (cuenta o pre-registro) y completa su ID.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, cpf, phone, role, cep, estado, cidade, bairro, created_at, updated_at)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), NULLIF($3, ''), $4, NULLIF($5, ''), $6,
		        NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, $12)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.CPF, user.Phone, user.Role,
		user.CEP, user.Estado, user.Cidade, user.Bairro, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return conflictErr(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, "get user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail obtiene un usuario por email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

// GetByCPF obtiene un usuario por CPF.
func (r *UserRepo) GetByCPF(ctx context.Context, cpf string) (*entity.User, error) {
	return r.getOne(ctx, "get user by cpf", `SELECT `+userColumns+` FROM users WHERE cpf = $1`, cpf)
}

func (r *UserRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ClaimPreRecord completa el pre-registro en una sola sentencia condicional. Si otro registro
// ya definió la password no hay fila y se devuelve (nil, nil).
func (r *UserRepo) ClaimPreRecord(ctx context.Context, cpf, email, passwordHash string) (*entity.User, error) {
	query := `
		UPDATE users SET email = $2, password_hash = $3, updated_at = now()
		WHERE cpf = $1 AND password_hash IS NULL
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, cpf, email, passwordHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, conflictErr(err)
		}
		return nil, fmt.Errorf("claim pre-record: %w", err)
	}
	return u, nil
}

// Update actualiza los datos editables de un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET name = NULLIF($2, ''), email = NULLIF($3, ''), password_hash = NULLIF($4, ''),
		       phone = NULLIF($5, ''), cep = NULLIF($6, ''), estado = NULLIF($7, ''),
		       cidade = NULLIF($8, ''), bairro = NULLIF($9, ''), updated_at = $10
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Phone,
		user.CEP, user.Estado, user.Cidade, user.Bairro, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return conflictErr(err)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: usuário não encontrado", domain.ErrNotFound)
	}
	return nil
}

// UpsertAdmin crea la cuenta admin del CPF o rota su email y password. Lo usa el seed.
func (r *UserRepo) UpsertAdmin(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, cpf, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'admin', now(), now())
		ON CONFLICT (cpf) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, password_hash = EXCLUDED.password_hash,
		    role = 'admin', updated_at = now()
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, user.CPF))
	if err != nil {
		if isUniqueViolation(err) {
			return conflictErr(err)
		}
		return fmt.Errorf("upsert admin: %w", err)
	}
	*user = *u
	return nil
}
