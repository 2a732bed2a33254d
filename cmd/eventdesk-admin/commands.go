package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/eventdesk/internal/bootstrap"
	"github.com/target/eventdesk/internal/devseed"
	domainevents "github.com/target/eventdesk/internal/domain/events"
	"github.com/target/eventdesk/internal/domain/model"
	"github.com/target/eventdesk/internal/http/ui/events"
)

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}
	if err := requirePostgres(&cmdCtx.Config, "migrate"); err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runDBReset(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBResetFlags(args)
	if err != nil {
		return err
	}
	if err := requirePostgres(&cmdCtx.Config, "db-reset"); err != nil {
		return err
	}
	remote, err := guardRemoteHost(cmdCtx, opts.AllowRemote, "drop and recreate the public schema")
	if err != nil {
		return err
	}
	if !opts.Yes && !remote {
		if err := confirm(cmdCtx.Out, os.Stdin, fmt.Sprintf("This drops every table in database %q.", cmdCtx.Config.Postgres.Name)); err != nil {
			return err
		}
	}

	err = withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("resetting database schema", "database", cmdCtx.Config.Postgres.Name)
		if resetErr := cmdCtx.resetDatabase(ctx, db); resetErr != nil {
			return fmt.Errorf("reset schema: %w", resetErr)
		}
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		return nil
	})
	if err != nil || !opts.Seed {
		return err
	}
	return seed(cmdCtx, opts.Timeout, devseed.Options{})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBSeedFlags(args)
	if err != nil {
		return err
	}
	if _, guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote, "seed development data"); guardErr != nil {
		return guardErr
	}
	return seed(cmdCtx, opts.Timeout, devseed.Options{AdminEmail: opts.AdminEmail, AdminPassword: opts.AdminPassword})
}

func seed(cmdCtx *commandContext, timeout time.Duration, opts devseed.Options) error {
	return withServices(cmdCtx, timeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		cmdCtx.Logger.Info("seeding development data")
		if err := devseed.Run(ctx, devseed.Services{Events: svcs.Events, Auth: svcs.Auth}, opts, cmdCtx.Logger); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
		cmdCtx.Logger.Info("database seeding completed successfully")
		return nil
	})
}

func runCreateAdmin(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateAdminFlags(args)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, opts.Timeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		admin, err := svcs.Auth.CreateAdmin(ctx, opts.Email, opts.Password)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		return writef(cmdCtx.Out, "Created admin %s (%s)\n", admin.Email, admin.ID)
	})
}

func runListEvents(cmdCtx *commandContext, args []string) error {
	opts, err := parseListEventsFlags(args)
	if err != nil {
		return err
	}
	loc, err := cmdCtx.Config.Location()
	if err != nil {
		return err
	}
	return withServices(cmdCtx, opts.Timeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		list, err := svcs.Events.List(ctx)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		return printEvents(cmdCtx.Out, list, opts, loc)
	})
}

// printEvents writes the stats line followed by the filtered event table.
func printEvents(w io.Writer, list []model.Event, opts listEventsOptions, loc *time.Location) error {
	stats := domainevents.ComputeStats(list)
	if err := writef(w, "Total: %d  Published: %d  Drafts: %d  Registrations: %d\n\n",
		stats.Total, stats.Published, stats.Drafts, stats.TotalRegistrations); err != nil {
		return err
	}

	filtered := domainevents.Filter(list, opts.Search, domainevents.ParseStatusFilter(opts.Status))
	if len(filtered) == 0 {
		return writeln(w, "No events match.")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "ID\tTITLE\tDATE\tSTATUS\tREGISTERED\n"); err != nil {
		return err
	}
	for _, e := range filtered {
		labels := make([]string, 0, 3)
		for _, b := range domainevents.Badges(e) {
			labels = append(labels, b.Label)
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Title, e.EventDate.In(loc).Format("2006-01-02 15:04"),
			strings.Join(labels, ","), events.CountLabel(e)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func guardRemoteHost(cmdCtx *commandContext, allow bool, action string) (bool, error) {
	if requirePostgres(&cmdCtx.Config, action) != nil {
		return false, nil
	}
	host := cmdCtx.Config.Postgres.Host
	if !isLikelyRemoteHost(host) {
		return false, nil
	}
	if !allow {
		return true, fmt.Errorf(
			"refusing to run against potentially remote database host %q; re-run with --allow-remote if this is intentional",
			host,
		)
	}
	if err := writef(os.Stderr, "\nWARNING: database host %q does not look like a local address.\nThis operation will %s.\n",
		host, action); err != nil {
		return true, fmt.Errorf("print remote host warning: %w", err)
	}
	return true, confirmTyped(os.Stderr, os.Stdin, host)
}

func (cmdCtx *commandContext) resetDatabase(ctx context.Context, db *sql.DB) error {
	statements := []string{
		"DROP SCHEMA public CASCADE",
		"CREATE SCHEMA public",
		"GRANT ALL ON SCHEMA public TO public",
	}
	if user := strings.TrimSpace(cmdCtx.Config.Postgres.User); user != "" && !strings.EqualFold(user, "public") {
		statements = append(statements, "GRANT ALL ON SCHEMA public TO "+quoteIdentifier(user))
	}
	for _, stmt := range statements {
		cmdCtx.Logger.DebugContext(ctx, "executing reset statement", "sql", stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" || h == "localhost" || strings.HasSuffix(h, ".local") {
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}

// confirm asks a yes/no question; anything but y or yes aborts.
func confirm(w io.Writer, r io.Reader, warning string) error {
	if err := writef(w, "%s\nContinue? [y/N]: ", warning); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && resp == "" {
		return errAborted
	}
	switch strings.ToLower(strings.TrimSpace(resp)) {
	case "y", "yes":
		return nil
	default:
		return errAborted
	}
}

// confirmTyped requires the operator to type want exactly.
func confirmTyped(w io.Writer, r io.Reader, want string) error {
	if err := writef(w, "Type %q to continue or press enter to abort: ", want); err != nil {
		return fmt.Errorf("print remote host prompt: %w", err)
	}
	resp, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && resp == "" {
		return errAborted
	}
	if strings.TrimSpace(resp) != want {
		if writeErr := writeln(w, "\nRemote safeguard check failed; aborting."); writeErr != nil {
			return fmt.Errorf("print remote safeguard failure: %w", writeErr)
		}
		return errAborted
	}
	return nil
}
