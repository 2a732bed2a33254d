package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/target/eventdesk/config"
	"github.com/target/eventdesk/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second
)

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: bootstrap.ConfigureLogger(cfg.Logging),
		Config: cfg,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		cmdCtx.Logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"db-reset": {
			name:        "db-reset",
			description: "Drop the database schema, run migrations, and optionally seed data",
			run:         runDBReset,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Seed a demo admin and events through the configured gateway",
			run:         runDBSeed,
		},
		"create-admin": {
			name:        "create-admin",
			description: "Create an admin account with a bcrypt password hash",
			run:         runCreateAdmin,
		},
		"list-events": {
			name:        "list-events",
			description: "Print events with their status and registration counts",
			run:         runListEvents,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: eventdesk-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-24s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
}

type dbResetOptions struct {
	Timeout     time.Duration
	Yes         bool
	Seed        bool
	AllowRemote bool
}

type dbSeedOptions struct {
	Timeout       time.Duration
	AllowRemote   bool
	AdminEmail    string
	AdminPassword string
}

type createAdminOptions struct {
	Email    string
	Password string
	Timeout  time.Duration
}

type listEventsOptions struct {
	Search  string
	Status  string
	Timeout time.Duration
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func requirePositive(d time.Duration) error {
	if d <= 0 {
		return errors.New("--timeout must be greater than zero")
	}
	return nil
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := newFlagSet("migrate")
	opts := migrateOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")
	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if err := requirePositive(opts.Timeout); err != nil {
		return migrateOptions{}, err
	}
	return opts, nil
}

func parseDBResetFlags(args []string) (dbResetOptions, error) {
	fs := newFlagSet("db-reset")
	opts := dbResetOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for reset operations to complete")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	fs.BoolVar(&opts.Seed, "seed", false, "Run database seeding after reset completes")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")
	if err := fs.Parse(args); err != nil {
		return dbResetOptions{}, err
	}
	if err := requirePositive(opts.Timeout); err != nil {
		return dbResetOptions{}, err
	}
	return opts, nil
}

func parseDBSeedFlags(args []string) (dbSeedOptions, error) {
	fs := newFlagSet("db-seed")
	opts := dbSeedOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for seeding to complete")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")
	fs.StringVar(&opts.AdminEmail, "admin-email", "", "Also create this admin (skipped when empty)")
	fs.StringVar(&opts.AdminPassword, "admin-password", "", "Password for --admin-email")
	if err := fs.Parse(args); err != nil {
		return dbSeedOptions{}, err
	}
	if err := requirePositive(opts.Timeout); err != nil {
		return dbSeedOptions{}, err
	}
	if opts.AdminEmail != "" && opts.AdminPassword == "" {
		return dbSeedOptions{}, errors.New("--admin-password is required with --admin-email")
	}
	return opts, nil
}

func parseCreateAdminFlags(args []string) (createAdminOptions, error) {
	fs := newFlagSet("create-admin")
	opts := createAdminOptions{}
	fs.StringVar(&opts.Email, "email", "", "Admin email address")
	fs.StringVar(&opts.Password, "password", "", "Admin password (falls back to EVENTDESK_ADMIN_PASSWORD)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait")
	if err := fs.Parse(args); err != nil {
		return createAdminOptions{}, err
	}
	if opts.Password == "" {
		opts.Password = os.Getenv("EVENTDESK_ADMIN_PASSWORD")
	}
	if opts.Email == "" || opts.Password == "" {
		return createAdminOptions{}, errors.New("--email and --password are required")
	}
	if err := requirePositive(opts.Timeout); err != nil {
		return createAdminOptions{}, err
	}
	return opts, nil
}

func parseListEventsFlags(args []string) (listEventsOptions, error) {
	fs := newFlagSet("list-events")
	opts := listEventsOptions{}
	fs.StringVar(&opts.Search, "q", "", "Case-insensitive search over title, description and venue")
	fs.StringVar(&opts.Status, "status", "all", "Status filter: all, published, draft, featured, closed")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait")
	if err := fs.Parse(args); err != nil {
		return listEventsOptions{}, err
	}
	if err := requirePositive(opts.Timeout); err != nil {
		return listEventsOptions{}, err
	}
	return opts, nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
