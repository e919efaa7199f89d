package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/techfix-api/internal/application/auth"
	"github.com/jhoicas/techfix-api/internal/application/clients"
	"github.com/jhoicas/techfix-api/internal/application/services"
	infrapdf "github.com/jhoicas/techfix-api/internal/infrastructure/pdf"
	"github.com/jhoicas/techfix-api/internal/infrastructure/postgres"
	"github.com/jhoicas/techfix-api/internal/infrastructure/storage"
	"github.com/jhoicas/techfix-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/techfix-api/internal/interfaces/http"
	"github.com/jhoicas/techfix-api/pkg/config"
	"github.com/jhoicas/techfix-api/pkg/logger"

	_ "github.com/jhoicas/techfix-api/docs"
)

// multipartOverhead margen sobre UPLOADS_MAX_BYTES para los campos de texto del formulario.
const multipartOverhead = 1 << 20

// @title                       TechFix API
// @version                     1.0
// @description                 Atendimentos de assistência técnica: ciclo de vida, clientes e autenticação.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	shutdownTracing := telemetry.Setup(ctx, cfg.App.Name, cfg.Telemetry, log)

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar schema")
	}

	userRepo := postgres.NewUserRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	photos, err := storage.NewPhotoStore(cfg.Uploads.Dir, cfg.Uploads.URLPrefix, cfg.Uploads.MaxBytes)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Uploads.Dir).Msg("directorio de fotos")
	}

	jwtCfg := auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}
	if cfg.Auth.AllowUnknownCPF {
		log.Warn().Msg("auto-registro de CPF sin atendimentos habilitado")
	}
	authUC := auth.NewAuthUseCase(userRepo, ticketRepo, jwtCfg, cfg.Auth.AllowUnknownCPF)
	serviceUC := services.NewServiceUseCase(ticketRepo, txRunner, photos, services.Options{
		MaxPhotoBytes: cfg.Uploads.MaxBytes,
		Location:      time.Local,
	}, log)
	// PDF: orden de servicio impresa
	pdfUC := services.NewPDFUseCase(ticketRepo, infrapdf.NewMarotoPDFGenerator(cfg.App.Name), time.Local)
	clientUC := clients.NewClientUseCase(userRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    int(cfg.Uploads.MaxBytes) + multipartOverhead,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "TechFix API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Accounts:  authUC,
		Tickets:   serviceUC,
		PDF:       pdfUC,
		Clients:   clientUC,
		Verifier:  jwtCfg,
		UploadDir: cfg.Uploads.Dir,
		UploadURL: photos.URLPrefix(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
