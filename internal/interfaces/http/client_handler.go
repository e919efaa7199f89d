package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/techfix-api/internal/application/dto"
)

// ClientDirectory consultas y alta de clientes; la implementa *clients.ClientUseCase.
type ClientDirectory interface {
	CheckCPF(ctx context.Context, raw string) (*dto.CheckCPFResponse, error)
	GetByCPF(ctx context.Context, raw string) (*dto.UserResponse, error)
	Create(ctx context.Context, in dto.CreateClientRequest) (*dto.UserResponse, error)
}

// ClientHandler endpoints de clientes (admin).
type ClientHandler struct {
	uc ClientDirectory
}

// NewClientHandler construye el handler de clientes.
func NewClientHandler(uc ClientDirectory) *ClientHandler {
	return &ClientHandler{uc: uc}
}

// CheckCPF godoc
// @Summary      Verificar CPF
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        cpf  path  string  true  "CPF"
// @Success      200  {object}  dto.CheckCPFResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/clients/check-cpf/{cpf} [get]
func (h *ClientHandler) CheckCPF(c *fiber.Ctx) error {
	out, err := h.uc.CheckCPF(c.UserContext(), c.Params("cpf"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByCPF godoc
// @Summary      Cliente por CPF
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        cpf  path  string  true  "CPF"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/by-cpf/{cpf} [get]
func (h *ClientHandler) GetByCPF(c *fiber.Ctx) error {
	out, err := h.uc.GetByCPF(c.UserContext(), c.Params("cpf"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Pre-registrar cliente
// @Description  Crea el cliente sin credenciales; se activa luego con /api/auth/register.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateClientRequest  true  "datos del cliente"
// @Success      201   {object}  dto.CreateClientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/clients [post]
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo da requisição inválido")
	}
	user, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateClientResponse{
		Message: "Cliente cadastrado com sucesso!",
		Client:  *user,
	})
}
