// techfix es el cliente de terminal del taller: login, tablero de atendimentos y descarga de PDF.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/jhoicas/techfix-api/internal/client"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
	"github.com/jhoicas/techfix-api/internal/tui"
)

const defaultServer = "http://localhost:3000"

// command subcomando del CLI.
type command struct {
	summary string
	run     func(ctx context.Context, env *cliEnv, args []string) error
}

// cliEnv dependencias compartidas por los subcomandos.
type cliEnv struct {
	client *client.Client
	store  *client.FileSessionStore
	in     io.Reader
	out    io.Writer
}

var commands = map[string]command{
	"login":     {"inicia sessão e guarda o token", runLogin},
	"logout":    {"encerra a sessão local", runLogout},
	"whoami":    {"mostra o usuário da sessão", runWhoami},
	"dashboard": {"abre o painel de atendimentos", runDashboard},
	"pdf":       {"baixa a ordem de serviço: techfix pdf <id> [destino]", runPDF},
	"check-cpf": {"verifica se um CPF tem cadastro (admin)", runCheckCPF},
}

var commandOrder = []string{"login", "logout", "whoami", "dashboard", "pdf", "check-cpf"}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "erro: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	var server, sessionFile string
	flagSet := pflag.NewFlagSet("techfix", pflag.ContinueOnError)
	flagSet.StringVar(&server, "server", "", "URL da API (padrão: a da sessão, TECHFIX_SERVER ou "+defaultServer+")")
	flagSet.StringVar(&sessionFile, "session-file", "", "arquivo de sessão (padrão: "+client.SessionFilePath()+")")
	flagSet.BoolP("help", "h", false, "mostra a ajuda")
	flagSet.SetInterspersed(false)

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	name := "dashboard"
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}
	cmd, ok := commands[name]
	if !ok {
		printHelp(flagSet)
		return fmt.Errorf("comando desconhecido: %s", name)
	}

	store := client.NewFileSessionStore(sessionFile)
	env := &cliEnv{
		client: client.New(resolveServer(server, store), store),
		store:  store,
		in:     os.Stdin,
		out:    os.Stdout,
	}
	return cmd.run(context.Background(), env, args)
}

// resolveServer flag > TECHFIX_SERVER > URL de la sesión guardada > default.
func resolveServer(flagValue string, store client.SessionStore) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("TECHFIX_SERVER"); v != "" {
		return v
	}
	if sess, err := store.Load(); err == nil && sess != nil && sess.BaseURL != "" {
		return sess.BaseURL
	}
	return defaultServer
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "TechFix: painel de atendimentos no terminal.\n\nUso:\n  techfix [flags] <comando> [args]\n\nComandos:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(os.Stderr, "\nFlags:\n%s", flagSet.FlagUsages())
}

func runLogin(ctx context.Context, env *cliEnv, args []string) error {
	flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := flagSet.StringP("email", "e", "", "email da conta")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	reader := bufio.NewReader(env.in)
	if *email == "" {
		fmt.Fprint(env.out, "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("ler email: %w", err)
		}
		*email = strings.TrimSpace(line)
	}
	password, err := readPassword(env, reader)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	sess, err := env.client.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "Bem-vindo, %s! Sessão salva em %s\n", displayName(sess), env.store.Path())
	return nil
}

// readPassword sin eco si stdin es terminal; si no, una línea del reader (scripts).
func readPassword(env *cliEnv, reader *bufio.Reader) (string, error) {
	if p := os.Getenv("TECHFIX_PASSWORD"); p != "" {
		return p, nil
	}
	fmt.Fprint(env.out, "Senha: ")
	if f, ok := env.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(env.out)
		if err != nil {
			return "", fmt.Errorf("ler senha: %w", err)
		}
		return string(raw), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("ler senha: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(_ context.Context, env *cliEnv, _ []string) error {
	if err := env.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(env.out, "Sessão encerrada.")
	return nil
}

func runWhoami(_ context.Context, env *cliEnv, _ []string) error {
	sess, err := env.client.Session()
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "%s <%s> (%s) em %s\n", displayName(sess), sess.User.Email, sess.User.Role, sess.BaseURL)
	return nil
}

func runDashboard(_ context.Context, env *cliEnv, _ []string) error {
	sess, err := env.client.Session()
	if err != nil {
		return err
	}
	model := tui.New(env.client, listing.ViewFor(sess.User.Role), time.Local)
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok && m.SessionExpired() {
		return client.ErrSessionExpired
	}
	return nil
}

func runPDF(ctx context.Context, env *cliEnv, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: techfix pdf <id> [destino]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("id inválido: %s", args[0])
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	data, filename, err := env.client.DownloadPDF(ctx, id)
	if err != nil {
		return err
	}
	dest := filepath.Base(filename)
	if len(args) > 1 {
		dest = args[1]
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("salvar pdf: %w", err)
	}
	fmt.Fprintf(env.out, "PDF salvo em %s (%d bytes)\n", dest, len(data))
	return nil
}

func runCheckCPF(ctx context.Context, env *cliEnv, args []string) error {
	if len(args) != 1 {
		return errors.New("uso: techfix check-cpf <cpf>")
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	res, err := env.client.CheckCPF(ctx, args[0])
	if err != nil {
		return err
	}
	if res.Exists {
		fmt.Fprintln(env.out, "CPF cadastrado.")
	} else {
		fmt.Fprintln(env.out, "CPF sem cadastro.")
	}
	if res.Message != "" {
		fmt.Fprintln(env.out, res.Message)
	}
	return nil
}

func displayName(sess *client.Session) string {
	if sess.User.Name != "" {
		return sess.User.Name
	}
	return sess.User.Email
}
