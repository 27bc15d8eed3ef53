package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jrsteele09/skillup-auth/client"
	"github.com/jrsteele09/skillup-auth/internal/config"
	"github.com/jrsteele09/skillup-auth/internal/logging"
	"github.com/jrsteele09/skillup-auth/session"
	"github.com/jrsteele09/skillup-auth/validation"
)

const usage = `usage: authctl [-api URL] [-db PATH] <command> [flags]

commands:
  register  -name NAME -email EMAIL -password PASSWORD [-confirm PASSWORD] -agree-terms
  login     -email EMAIL -password PASSWORD
  logout
  me
  refresh
  status
  strength  PASSWORD
  watch     keep the session fresh until interrupted
`

func main() {
	_ = godotenv.Load()
	logging.Setup(config.EnvVars{}.GetEnv(), config.EnvVars{}.GetLogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "authctl:", err)
		os.Exit(1)
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".skillup", "session.db")
	}
	return filepath.Join(home, ".skillup", "session.db")
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("authctl", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	apiURL := fs.String("api", config.GetEnv("SKILLUP_API_URL", "http://localhost:8080"), "gateway base URL")
	dbPath := fs.String("db", defaultDBPath(), "session database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	if cmd == "strength" {
		return strength(cmdArgs, out)
	}

	sessionConfig, err := config.LoadSession()
	if err != nil {
		return err
	}
	kv, err := session.OpenSQLite(*dbPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	api := client.New(*apiURL)
	store := session.NewStore(kv)
	manager := session.NewManager(api, store, session.WithRefreshInterval(sessionConfig.GetRefreshInterval()))

	switch cmd {
	case "register":
		return register(ctx, manager, cmdArgs, out)
	case "login":
		return login(ctx, manager, cmdArgs, out)
	case "logout":
		if err := manager.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Logged out")
		return nil
	case "me":
		user := manager.CurrentUser(ctx)
		if user == nil {
			return errors.New("not signed in, or the session has expired")
		}
		printUser(out, user)
		return nil
	case "refresh":
		refreshed, err := manager.Refresh(ctx)
		if err != nil {
			return err
		}
		if !refreshed {
			return errors.New("no session to refresh")
		}
		fmt.Fprintln(out, "Session refreshed")
		return nil
	case "status":
		return status(ctx, manager, out)
	case "watch":
		return watch(ctx, manager, out)
	}
	fs.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}

func register(ctx context.Context, m *session.Manager, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(out)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	confirm := fs.String("confirm", "", "password confirmation, defaults to -password")
	agree := fs.Bool("agree-terms", false, "accept the terms and conditions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *confirm == "" {
		*confirm = *password
	}

	user, err := m.Register(ctx, session.RegistrationForm{
		FullName:        *name,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *confirm,
		AgreeTerms:      *agree,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Registration successful! Please log in with your credentials.")
	printUser(out, user)
	return nil
}

func login(ctx context.Context, m *session.Manager, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(out)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := m.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s\n", user.DisplayName())
	return nil
}

func status(ctx context.Context, m *session.Manager, out io.Writer) error {
	if !m.IsAuthenticated(ctx) {
		fmt.Fprintln(out, "Signed out")
		return nil
	}
	user, err := m.CachedUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s\n", user.DisplayName())
	return nil
}

func watch(ctx context.Context, m *session.Manager, out io.Writer) error {
	if !m.IsAuthenticated(ctx) {
		return errors.New("not signed in")
	}
	if _, err := m.Foreground(ctx); err != nil {
		return err
	}
	m.Start(ctx)
	defer m.Close()
	fmt.Fprintln(out, "Keeping the session fresh, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

func strength(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: authctl strength PASSWORD")
	}
	s := validation.PasswordStrength(args[0])
	fmt.Fprintf(out, "%s (%d/5)\n", s.Label(), s.Score)
	return nil
}

func printUser(out io.Writer, u *client.User) {
	fmt.Fprintf(out, "  id:    %s\n  email: %s\n", u.ID, u.Email)
	if u.FullName != "" {
		fmt.Fprintf(out, "  name:  %s\n", strings.TrimSpace(u.FullName))
	}
}
