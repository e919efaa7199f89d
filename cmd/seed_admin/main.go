// seed_admin aplica el schema y crea (o rota) la cuenta de administrador del taller.
//
// Uso: go run ./cmd/seed_admin --email admin@techfix.com --cpf 52998224725 [--name "Administrador"]
// La password se lee de ADMIN_PASSWORD o se pide por terminal sin eco.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/infrastructure/postgres"
	"github.com/jhoicas/techfix-api/pkg/brdoc"
	"github.com/jhoicas/techfix-api/pkg/config"
	"github.com/jhoicas/techfix-api/pkg/logger"
)

const minPasswordLen = 6

func main() {
	var (
		email = pflag.String("email", "", "email del administrador")
		cpf   = pflag.String("cpf", "", "CPF del administrador (11 dígitos)")
		name  = pflag.String("name", "Administrador", "nombre visible")
	)
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_admin"})

	admin, err := adminFromFlags(*email, *cpf, *name)
	if err != nil {
		log.Fatal().Err(err).Msg("parámetros inválidos")
	}
	password, err := readPassword()
	if err != nil {
		log.Fatal().Err(err).Msg("password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash de password")
	}
	admin.PasswordHash = string(hash)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar schema")
	}
	if err := postgres.NewUserRepository(pool).UpsertAdmin(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("crear administrador")
	}
	log.Info().Int64("id", admin.ID).Str("email", admin.Email).Msg("administrador listo")
}

func adminFromFlags(email, cpf, name string) (*entity.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("--email es obligatorio")
	}
	cpf = brdoc.Digits(cpf)
	if !brdoc.IsCPF(cpf) {
		return nil, fmt.Errorf("--cpf debe tener 11 dígitos")
	}
	return &entity.User{Name: strings.TrimSpace(name), Email: email, CPF: cpf, Role: entity.RoleAdmin}, nil
}

func readPassword() (string, error) {
	if p := os.Getenv("ADMIN_PASSWORD"); p != "" {
		return checkPassword(p)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("defina ADMIN_PASSWORD o ejecute en una terminal")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return checkPassword(string(raw))
}

func checkPassword(p string) (string, error) {
	if len(p) < minPasswordLen {
		return "", fmt.Errorf("la password debe tener al menos %d caracteres", minPasswordLen)
	}
	return p, nil
}
