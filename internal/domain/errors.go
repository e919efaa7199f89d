package domain

import "errors"

// Errores de dominio (sin dependencias externas). Los casos de uso los envuelven con
// fmt.Errorf("%w: detalle", ...) y la capa HTTP los clasifica con errors.Is.
var (
	ErrValidation      = errors.New("dados inválidos")
	ErrUnauthenticated = errors.New("não autenticado")
	ErrForbidden       = errors.New("acesso negado")
	ErrConflict        = errors.New("conflito com um registro existente")
	ErrNotFound        = errors.New("recurso não encontrado")
)

// IsDomainError indica si err es (o envuelve) uno de los errores de dominio.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound)
}
