package dto

import "github.com/jhoicas/techfix-api/internal/domain/entity"

// RegisterRequest entrada para auto-registro de un cliente.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	CPF      string `json:"cpf"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest campos editables del perfil. CurrentPassword sólo se exige si hay NewPassword
// y la cuenta ya tiene password.
type UpdateProfileRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	CEP             string `json:"cep"`
	Estado          string `json:"estado"`
	Cidade          string `json:"cidade"`
	Bairro          string `json:"bairro"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
}

// UserResponse salida de un usuario (sin password). Mismos campos que el payload del token.
type UserResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	CPF    string `json:"cpf"`
	Phone  string `json:"phone"`
	Role   string `json:"role"`
	CEP    string `json:"cep"`
	Estado string `json:"estado"`
	Cidade string `json:"cidade"`
	Bairro string `json:"bairro"`
}

// RegisterResponse salida de registro.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// ProfileResponse salida de actualización de perfil; Token refleja los datos editados.
type ProfileResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

// ToUserResponse mapea la entidad a la respuesta pública.
func ToUserResponse(u *entity.User) UserResponse {
	if u == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		CPF:    u.CPF,
		Phone:  u.Phone,
		Role:   u.Role,
		CEP:    u.CEP,
		Estado: u.Estado,
		Cidade: u.Cidade,
		Bairro: u.Bairro,
	}
}
