// Package services implementa el ciclo de vida de los atendimentos: alta, listado por rol,
// cambio de estado y baja, más el listado paginado y la orden de servicio en PDF.
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/techfix-api/internal/application/dto"
	"github.com/jhoicas/techfix-api/internal/domain"
	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
	"github.com/jhoicas/techfix-api/internal/domain/repository"
	"github.com/jhoicas/techfix-api/pkg/brdoc"
	"github.com/jhoicas/techfix-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/techfix-api/internal/application/services")

var (
	photoExts  = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}
	photoMimes = map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true, "image/gif": true}
)

// Options parámetros del caso de uso.
type Options struct {
	MaxPhotoBytes int64          // 0 = sin límite
	Location      *time.Location // zona para el filtro por fecha; nil = time.Local
}

// ServiceUseCase casos de uso sobre atendimentos.
type ServiceUseCase struct {
	tickets repository.TicketRepository
	tx      TxRunner
	photos  PhotoStore
	opts    Options
	log     *logger.Logger
}

// NewServiceUseCase construye el caso de uso inyectando sus dependencias.
func NewServiceUseCase(tickets repository.TicketRepository, tx TxRunner, photos PhotoStore, opts Options, log *logger.Logger) *ServiceUseCase {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ServiceUseCase{tickets: tickets, tx: tx, photos: photos, opts: opts, log: log.Named("services")}
}

// Create abre un atendimento (sólo admin). El estado inicial es siempre received. Si el CPF no
// tiene usuario se crea un pre-registro en la misma transacción. La foto se guarda antes del
// insert y se borra si el insert falla.
func (uc *ServiceUseCase) Create(ctx context.Context, id entity.Identity, in dto.CreateServiceRequest, photo *PhotoUpload) (_ *entity.Ticket, err error) {
	ctx, span := tracer.Start(ctx, "services.Create")
	defer func() { endSpan(span, err) }()

	if !id.IsAdmin() {
		return nil, fmt.Errorf("%w: apenas administradores podem criar serviços", domain.ErrForbidden)
	}
	t, err := newTicket(in, id.UserID)
	if err != nil {
		return nil, err
	}
	if photo != nil {
		if err := uc.validatePhoto(photo); err != nil {
			return nil, err
		}
		url, err := uc.photos.Save(ctx, *photo)
		if err != nil {
			return nil, fmt.Errorf("services: guardar foto: %w", err)
		}
		t.PhotoURL = url
	}

	err = uc.tx.Run(ctx, func(tickets repository.TicketRepository, users repository.UserRepository) error {
		owner, err := users.GetByCPF(ctx, t.ClientCPF)
		if err != nil {
			return err
		}
		if owner != nil && owner.IsAdmin() {
			return fmt.Errorf("%w: o CPF informado pertence a um administrador", domain.ErrForbidden)
		}
		if owner == nil {
			pre := &entity.User{
				Name:      t.ClientName,
				CPF:       t.ClientCPF,
				Phone:     t.ClientPhone,
				Role:      entity.RoleClient,
				CreatedAt: t.CreatedAt,
				UpdatedAt: t.CreatedAt,
			}
			if err := users.Create(ctx, pre); err != nil {
				return fmt.Errorf("services: pre-registro: %w", err)
			}
		}
		return tickets.Create(ctx, t)
	})
	if err != nil {
		if t.PhotoURL != "" {
			if rmErr := uc.photos.Remove(ctx, t.PhotoURL); rmErr != nil {
				uc.log.Warn().Err(rmErr).Str("photo_url", t.PhotoURL).Msg("no se pudo borrar la foto tras fallar el alta")
			}
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int64("ticket.id", t.ID))
	return t, nil
}

func newTicket(in dto.CreateServiceRequest, adminID int64) (*entity.Ticket, error) {
	name := strings.TrimSpace(in.ClientName)
	cpf := brdoc.Digits(in.ClientCPF)
	phone := brdoc.Digits(in.ClientPhone)
	equipment := strings.TrimSpace(in.EquipmentType)
	description := strings.TrimSpace(in.Description)

	if name == "" || equipment == "" || description == "" || strings.TrimSpace(in.ClientCPF) == "" || strings.TrimSpace(in.ClientPhone) == "" {
		return nil, fmt.Errorf("%w: nome, CPF, telefone, tipo de equipamento e descrição são obrigatórios", domain.ErrValidation)
	}
	if !brdoc.IsCPF(cpf) {
		return nil, fmt.Errorf("%w: CPF do cliente deve ter 11 dígitos", domain.ErrValidation)
	}
	if !brdoc.IsPhone(phone) {
		return nil, fmt.Errorf("%w: telefone do cliente deve ter 10 ou 11 dígitos", domain.ErrValidation)
	}
	now := time.Now()
	return &entity.Ticket{
		ClientCPF:     cpf,
		ClientName:    name,
		ClientPhone:   phone,
		EquipmentType: equipment,
		ServiceType:   strings.TrimSpace(in.ServiceType),
		Description:   description,
		Status:        entity.StatusReceived,
		AdminID:       adminID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (uc *ServiceUseCase) validatePhoto(p *PhotoUpload) error {
	ext := strings.ToLower(filepath.Ext(p.Filename))
	mime := strings.ToLower(strings.TrimSpace(strings.Split(p.ContentType, ";")[0]))
	if !photoExts[ext] || !photoMimes[mime] {
		return fmt.Errorf("%w: apenas imagens são permitidas (jpeg, jpg, png, gif)", domain.ErrValidation)
	}
	if uc.opts.MaxPhotoBytes > 0 && p.Size > uc.opts.MaxPhotoBytes {
		return fmt.Errorf("%w: a foto excede o tamanho máximo de %d bytes", domain.ErrValidation, uc.opts.MaxPhotoBytes)
	}
	return nil
}

// List devuelve los atendimentos visibles para la identidad, más recientes primero:
// todos para admin, sólo los del propio CPF para cliente.
func (uc *ServiceUseCase) List(ctx context.Context, id entity.Identity) (_ []*entity.Ticket, err error) {
	ctx, span := tracer.Start(ctx, "services.List")
	defer func() { endSpan(span, err) }()

	if id.IsAdmin() {
		return uc.tickets.ListAll(ctx)
	}
	if id.CPF == "" {
		return []*entity.Ticket{}, nil
	}
	return uc.tickets.ListByCPF(ctx, id.CPF)
}

// ListPage aplica el List Engine en el servidor sobre el conjunto visible. Las métricas se
// calculan sobre el conjunto visible completo, no sobre la página.
func (uc *ServiceUseCase) ListPage(ctx context.Context, id entity.Identity, q dto.ListQuery) (listing.Page, listing.Metrics, error) {
	f := listing.Filters{Status: strings.TrimSpace(q.Status), Query: q.Q, Date: strings.TrimSpace(q.Date)}
	if f.Status == "" {
		f.Status = listing.StatusAll
	}
	if f.Status != listing.StatusAll && !entity.Status(f.Status).Valid() {
		return listing.Page{}, listing.Metrics{}, fmt.Errorf("%w: status inválido %q", domain.ErrValidation, f.Status)
	}
	if f.Date != "" {
		if _, err := time.Parse(listing.DateLayout, f.Date); err != nil {
			return listing.Page{}, listing.Metrics{}, fmt.Errorf("%w: data deve estar no formato AAAA-MM-DD", domain.ErrValidation)
		}
	}
	q.DefaultPage()

	all, err := uc.List(ctx, id)
	if err != nil {
		return listing.Page{}, listing.Metrics{}, err
	}
	page := listing.Apply(all, f, q.Page, q.PageSize, uc.opts.Location)
	return page, listing.ComputeMetrics(all), nil
}

// Get devuelve un atendimento. Para un cliente, un atendimento de otro CPF se reporta como
// inexistente.
func (uc *ServiceUseCase) Get(ctx context.Context, id entity.Identity, ticketID int64) (*entity.Ticket, error) {
	return getVisible(ctx, uc.tickets, id, ticketID)
}

func getVisible(ctx context.Context, tickets repository.TicketRepository, id entity.Identity, ticketID int64) (*entity.Ticket, error) {
	t, err := tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t == nil || (!id.IsAdmin() && t.ClientCPF != id.CPF) {
		return nil, fmt.Errorf("%w: serviço não encontrado", domain.ErrNotFound)
	}
	return t, nil
}

// UpdateStatus cambia el estado (sólo admin). Cualquier estado puede pasar a cualquier otro.
func (uc *ServiceUseCase) UpdateStatus(ctx context.Context, id entity.Identity, ticketID int64, status string) (_ *entity.Ticket, err error) {
	ctx, span := tracer.Start(ctx, "services.UpdateStatus", trace.WithAttributes(attribute.Int64("ticket.id", ticketID)))
	defer func() { endSpan(span, err) }()

	if !id.IsAdmin() {
		return nil, fmt.Errorf("%w: apenas administradores podem alterar o status", domain.ErrForbidden)
	}
	s := entity.Status(strings.TrimSpace(status))
	if s == "" {
		return nil, fmt.Errorf("%w: novo status é obrigatório", domain.ErrValidation)
	}
	if !s.Valid() {
		return nil, fmt.Errorf("%w: status inválido %q", domain.ErrValidation, status)
	}
	t, err := uc.tickets.UpdateStatus(ctx, ticketID, s, time.Now())
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: serviço não encontrado", domain.ErrNotFound)
	}
	return t, nil
}

// Delete borra el atendimento (sólo admin) y luego, best-effort, su foto.
func (uc *ServiceUseCase) Delete(ctx context.Context, id entity.Identity, ticketID int64) (err error) {
	ctx, span := tracer.Start(ctx, "services.Delete", trace.WithAttributes(attribute.Int64("ticket.id", ticketID)))
	defer func() { endSpan(span, err) }()

	if !id.IsAdmin() {
		return fmt.Errorf("%w: apenas administradores podem excluir serviços", domain.ErrForbidden)
	}
	t, err := uc.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%w: serviço não encontrado", domain.ErrNotFound)
	}
	deleted, err := uc.tickets.Delete(ctx, ticketID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: serviço não encontrado", domain.ErrNotFound)
	}
	if t.HasPhoto() {
		if rmErr := uc.photos.Remove(ctx, t.PhotoURL); rmErr != nil {
			uc.log.Warn().Err(rmErr).Int64("ticket_id", ticketID).Str("photo_url", t.PhotoURL).Msg("no se pudo borrar la foto del atendimento")
		}
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil && !domain.IsDomainError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
