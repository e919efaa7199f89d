package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/techfix-api/internal/application/dto"
	"github.com/jhoicas/techfix-api/internal/application/services"
	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
)

// TicketService casos de uso de atendimentos; lo implementa *services.ServiceUseCase.
type TicketService interface {
	Create(ctx context.Context, id entity.Identity, in dto.CreateServiceRequest, photo *services.PhotoUpload) (*entity.Ticket, error)
	List(ctx context.Context, id entity.Identity) ([]*entity.Ticket, error)
	ListPage(ctx context.Context, id entity.Identity, q dto.ListQuery) (listing.Page, listing.Metrics, error)
	Get(ctx context.Context, id entity.Identity, ticketID int64) (*entity.Ticket, error)
	UpdateStatus(ctx context.Context, id entity.Identity, ticketID int64, status string) (*entity.Ticket, error)
	Delete(ctx context.Context, id entity.Identity, ticketID int64) error
}

// TicketPDFService descarga de la orden en PDF; la implementa *services.PDFUseCase.
type TicketPDFService interface {
	DownloadTicketPDF(ctx context.Context, id entity.Identity, ticketID int64) ([]byte, string, error)
}

// ServiceHandler endpoints /api/services.
type ServiceHandler struct {
	uc  TicketService
	pdf TicketPDFService
}

// NewServiceHandler construye el handler de atendimentos.
func NewServiceHandler(uc TicketService, pdf TicketPDFService) *ServiceHandler {
	return &ServiceHandler{uc: uc, pdf: pdf}
}

func ticketID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

// List godoc
// @Summary      Listar atendimentos
// @Description  Admin ve todos; cliente sólo los de su CPF. Sin page/page_size devuelve el array completo; con ellos, dto.ServicePageResponse.
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        status     query  string  false  "received | analysis | maintenance | finished | canceled | all"
// @Param        q          query  string  false  "texto libre (nombre, CPF, equipo, servicio, #id)"
// @Param        date       query  string  false  "día de creación YYYY-MM-DD"
// @Param        page       query  int     false  "página (desde 1)"
// @Param        page_size  query  int     false  "tamaño de página"
// @Success      200  {array}   dto.ServiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/services [get]
func (h *ServiceHandler) List(c *fiber.Ctx) error {
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parâmetros de consulta inválidos")
	}
	id := GetIdentity(c)
	if !q.IsPaged() {
		list, err := h.uc.List(c.UserContext(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(dto.ToServiceResponses(list))
	}
	page, metrics, err := h.uc.ListPage(c.UserContext(), id, q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToServicePageResponse(page, metrics))
}

// Create godoc
// @Summary      Crear atendimento
// @Description  multipart/form-data; la foto es opcional (jpeg, png, gif).
// @Tags         services
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        clientName     formData  string  true   "nombre del cliente"
// @Param        clientCpf      formData  string  true   "CPF"
// @Param        clientPhone    formData  string  false  "teléfono"
// @Param        equipmentType  formData  string  true   "equipo"
// @Param        serviceType    formData  string  false  "servicio"
// @Param        description    formData  string  true   "descripción del problema"
// @Param        photo          formData  file    false  "foto del equipo"
// @Success      201  {object}  dto.CreateServiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/services [post]
func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateServiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo da requisição inválido")
	}

	var photo *services.PhotoUpload
	if form, err := c.MultipartForm(); err == nil {
		if files := form.File["photo"]; len(files) > 0 {
			fh := files[0]
			f, err := fh.Open()
			if err != nil {
				return badRequest(c, "INVALID_PHOTO", "não foi possível ler a foto")
			}
			defer f.Close()
			photo = &services.PhotoUpload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(fiber.HeaderContentType),
				Size:        fh.Size,
				Body:        f,
			}
		}
	}

	t, err := h.uc.Create(c.UserContext(), GetIdentity(c), in, photo)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateServiceResponse{
		Message: "Serviço criado com sucesso",
		Service: dto.ToServiceResponse(t),
	})
}

// Get godoc
// @Summary      Obtener atendimento
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "ID del atendimento"
// @Success      200  {object}  dto.ServiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/services/{id} [get]
func (h *ServiceHandler) Get(c *fiber.Ctx) error {
	id, ok := ticketID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	t, err := h.uc.Get(c.UserContext(), GetIdentity(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToServiceResponse(t))
}

// DownloadPDF godoc
// @Summary      Orden de servicio en PDF
// @Tags         services
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  int  true  "ID del atendimento"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/services/{id}/pdf [get]
func (h *ServiceHandler) DownloadPDF(c *fiber.Ctx) error {
	id, ok := ticketID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	data, filename, err := h.pdf.DownloadTicketPDF(c.UserContext(), GetIdentity(c), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}

// UpdateStatus godoc
// @Summary      Cambiar estado
// @Description  Cualquier estado a cualquier otro; repetir el actual sólo refresca updated_at.
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                      true  "ID del atendimento"
// @Param        body  body  dto.UpdateStatusRequest  true  "nuevo estado"
// @Success      200  {object}  dto.ServiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/services/{id}/status [put]
func (h *ServiceHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := ticketID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo da requisição inválido")
	}
	t, err := h.uc.UpdateStatus(c.UserContext(), GetIdentity(c), id, in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToServiceResponse(t))
}

// Delete godoc
// @Summary      Eliminar atendimento
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "ID del atendimento"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/services/{id} [delete]
func (h *ServiceHandler) Delete(c *fiber.Ctx) error {
	id, ok := ticketID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	if err := h.uc.Delete(c.UserContext(), GetIdentity(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("Serviço #%d excluído com sucesso.", id)})
}
