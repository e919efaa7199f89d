package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
	"github.com/jhoicas/techfix-api/internal/domain/repository"
	"github.com/jhoicas/techfix-api/internal/presenter"
)

// PDFUseCase genera la orden de servicio (PDF) de un atendimento.
type PDFUseCase struct {
	tickets   repository.TicketRepository
	generator TicketPDFGenerator
	loc       *time.Location
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(tickets repository.TicketRepository, generator TicketPDFGenerator, loc *time.Location) *PDFUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &PDFUseCase{tickets: tickets, generator: generator, loc: loc}
}

// DownloadTicketPDF aplica la misma visibilidad que el detalle y renderiza el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si el atendimento no existe o no es del cliente.
func (uc *PDFUseCase) DownloadTicketPDF(ctx context.Context, id entity.Identity, ticketID int64) (pdfBytes []byte, filename string, err error) {
	ctx, span := tracer.Start(ctx, "services.DownloadTicketPDF")
	defer func() { endSpan(span, err) }()

	t, err := getVisible(ctx, uc.tickets, id, ticketID)
	if err != nil {
		return nil, "", err
	}
	// La orden impresa no lleva el control de estado.
	detail := presenter.NewDetail(t, listing.ClientView(), uc.loc)

	pdfBytes, err = uc.generator.GenerateTicketPDF(ctx, detail)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("atendimento_%d.pdf", t.ID), nil
}
