// Command crmctl signs in to the CRM backend and prints dashboards as JSON.
//
// Usage:
//
//	crmctl [flags] login --email you@example.com --password ...
//	crmctl [flags] whoami
//	crmctl [flags] views
//	crmctl [flags] dashboard [--view analytics]
//	crmctl [flags] watch [--schedule "@every 30s"]
//	crmctl [flags] logout
//
// The token is kept in the configured session store (a file by default), so
// commands after login reuse the session.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/straye-as/crm-console/internal/access"
	"github.com/straye-as/crm-console/internal/config"
	"github.com/straye-as/crm-console/internal/console"
	"github.com/straye-as/crm-console/internal/domain"
	"github.com/straye-as/crm-console/internal/jobs"
	"github.com/straye-as/crm-console/internal/logger"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	email    string
	password string
	view     string
}

func run(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("crmctl", pflag.ContinueOnError)
	fs.String("base-url", "", "CRM backend base URL")
	fs.String("session-store", "file", "token store: memory, file or redis")
	fs.String("session-path", "", "directory of the file token store")
	fs.String("redis-addr", "", "redis address for the redis token store")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("schedule", "", "cron expression used by watch")

	var opts options
	fs.StringVar(&opts.email, "email", "", "login email")
	fs.StringVar(&opts.password, "password", "", "login password (or CRM_PASSWORD)")
	fs.StringVar(&opts.view, "view", "", "view to render instead of the current one")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("missing command: login, logout, whoami, views, dashboard or watch")
	}

	v := viper.New()
	for key, flag := range map[string]string{
		"api.baseURL":       "base-url",
		"session.store":     "session-store",
		"session.filePath":  "session-path",
		"session.redisAddr": "redis-addr",
		"logging.level":     "log-level",
		"refresh.schedule":  "schedule",
	} {
		f := fs.Lookup(flag)
		// Unset flags must not shadow config file and env values, except
		// for defaults that differ from the library's
		if f.Changed || flag == "session-store" {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", flag, err)
			}
		}
	}

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	c, err := console.New(console.Deps{Config: cfg, Logger: log})
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("Failed to close console", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.password == "" {
		opts.password = os.Getenv("CRM_PASSWORD")
	}

	switch cmd := fs.Arg(0); cmd {
	case "login":
		return login(ctx, c, opts, stdout)
	case "logout":
		c.Logout(ctx)
		_, err := fmt.Fprintln(stdout, "Logged out")
		return err
	case "whoami":
		user, err := c.Restore(ctx)
		if err != nil {
			return err
		}
		return writeJSON(stdout, user)
	case "views":
		user, err := c.Restore(ctx)
		if err != nil {
			return err
		}
		return writeJSON(stdout, access.AccessibleViews(user.Role))
	case "dashboard":
		if _, err := c.Restore(ctx); err != nil {
			return err
		}
		return printDashboard(c, opts.view, stdout)
	case "watch":
		if _, err := c.Restore(ctx); err != nil {
			return err
		}
		return watch(ctx, c, cfg, opts.view, log, stdout)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func login(ctx context.Context, c *console.Console, opts options, stdout io.Writer) error {
	if opts.email == "" || opts.password == "" {
		return errors.New("login requires --email and --password (or CRM_PASSWORD)")
	}
	user, err := c.Login(ctx, opts.email, opts.password)
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]any{
		"user": user,
		"view": c.CurrentView(),
	})
}

func printDashboard(c *console.Console, view string, stdout io.Writer) error {
	var (
		dash *console.Dashboard
		err  error
	)
	if view != "" {
		dash, err = c.DashboardFor(access.View(view), time.Now())
	} else {
		dash, err = c.Dashboard(time.Now())
	}
	if err != nil {
		return err
	}
	return writeJSON(stdout, dash)
}

// watch prints the dashboard after every scheduled refresh until interrupted
// or until the session expires
func watch(ctx context.Context, c *console.Console, cfg *config.Config, view string, log *zap.Logger, stdout io.Writer) error {
	if err := printDashboard(c, view, stdout); err != nil {
		return err
	}

	expired := make(chan error, 1)
	jobLog := logger.WithComponent(log, logger.ComponentJobs)
	scheduler := jobs.NewScheduler(jobLog)
	err := jobs.RegisterRefreshJob(scheduler, c, jobLog, cfg.Refresh.Schedule, cfg.Refresh.TimeoutDuration(), func(err error) {
		if errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrNotAuthenticated) {
			select {
			case expired <- err:
			default:
			}
			return
		}
		if perr := printDashboard(c, view, stdout); perr != nil {
			log.Warn("Failed to render dashboard", zap.Error(perr))
		}
	})
	if err != nil {
		return err
	}

	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-expired:
		return err
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
