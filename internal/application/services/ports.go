package services

import (
	"context"
	"io"

	"github.com/jhoicas/techfix-api/internal/domain/repository"
	"github.com/jhoicas/techfix-api/internal/presenter"
)

// TxRunner ejecuta una función dentro de una transacción que incluye atendimentos y usuarios.
// Si fn retorna error se hace rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		tickets repository.TicketRepository,
		users repository.UserRepository,
	) error) error
}

// PhotoUpload foto recibida en el formulario de alta.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PhotoStore guarda fotos y devuelve la URL pública que se persiste en photo_url.
type PhotoStore interface {
	Save(ctx context.Context, p PhotoUpload) (url string, err error)
	// Remove borra la foto de una URL devuelta por Save; una foto ya inexistente no es error.
	Remove(ctx context.Context, url string) error
}

// TicketPDFGenerator renderiza la orden de servicio a partir del detalle ya formateado.
type TicketPDFGenerator interface {
	GenerateTicketPDF(ctx context.Context, d presenter.Detail) ([]byte, error)
}
