package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Accounts  AccountService
	Tickets   TicketService
	PDF       TicketPDFService
	Clients   ClientDirectory
	Verifier  TokenVerifier
	UploadDir string // directorio servido en UploadURL; vacío = sin estáticos
	UploadURL string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.UploadDir != "" {
		app.Static(deps.UploadURL, deps.UploadDir)
	}

	api := app.Group("/api")
	authMW := AuthMiddleware(deps.Verifier)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth (público)
	authHandler := NewAuthHandler(deps.Accounts)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Perfil propio
	users := api.Group("/users", authMW)
	users.Put("/profile", authHandler.UpdateProfile)

	// Atendimentos: lectura para ambos roles, escritura sólo admin
	serviceHandler := NewServiceHandler(deps.Tickets, deps.PDF)
	svc := api.Group("/services", authMW)
	svc.Get("/", serviceHandler.List)
	svc.Post("/", adminOnly, serviceHandler.Create)
	svc.Get("/:id", serviceHandler.Get)
	svc.Get("/:id/pdf", serviceHandler.DownloadPDF)
	svc.Put("/:id/status", adminOnly, serviceHandler.UpdateStatus)
	svc.Delete("/:id", adminOnly, serviceHandler.Delete)

	// Clientes (admin)
	clientHandler := NewClientHandler(deps.Clients)
	admin := api.Group("/admin", authMW, adminOnly)
	admin.Get("/clients/check-cpf/:cpf", clientHandler.CheckCPF)
	admin.Post("/clients", clientHandler.Create)
	api.Get("/clients/by-cpf/:cpf", authMW, adminOnly, clientHandler.GetByCPF)
}
