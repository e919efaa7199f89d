package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User cuenta de admin o cliente. Un pre-registro (creado por un admin) tiene Name y CPF
// pero Email y PasswordHash vacíos hasta que el cliente se registra.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string // bcrypt; vacío = pre-registro
	CPF          string
	Phone        string
	Role         string
	CEP          string
	Estado       string
	Cidade       string
	Bairro       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasCredentials indica una cuenta activa (email + password definidos).
func (u *User) HasCredentials() bool {
	return u.Email != "" && u.PasswordHash != ""
}

// IsAdmin indica si el usuario es administrador.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity es lo que el Auth Gate adjunta a cada request a partir del token.
type Identity struct {
	UserID int64
	Role   string
	CPF    string
	Name   string
	Email  string
	Phone  string
	CEP    string
	Estado string
	Cidade string
	Bairro string
}

// IsAdmin indica si la identidad tiene rol admin.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
