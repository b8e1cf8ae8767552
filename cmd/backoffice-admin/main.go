package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/noe-create/medidhub-cpv-sub001/config"
	"github.com/noe-create/medidhub-cpv-sub001/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	// needsConfig is false for commands that never touch Postgres or Redis.
	needsConfig bool
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// connect opens the user directory; tests swap it for fakes.
	connect connectFn
	// limiter opens the login throttle; nil result means Redis is disabled.
	limiter limiterFn
}

func main() {
	logger := bootstrap.InitLogger(config.LogConfig{Level: "info", Format: "text"}, os.Stderr)
	os.Exit(runCLI(os.Args[1:], logger)) //nolint:forbidigo // CLI exit status is the command result
}

func runCLI(args []string, logger *slog.Logger) int {
	cmdCtx := &commandContext{
		Ctx:     context.Background(),
		Logger:  logger,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		connect: connectDirectory,
		limiter: connectLimiter,
	}
	return dispatch(cmdCtx, args, bootstrap.LoadConfig)
}

func dispatch(cmdCtx *commandContext, args []string, load func() (config.AppConfig, error)) int {
	if len(args) < 1 {
		if err := printUsage(cmdCtx.Stderr); err != nil {
			cmdCtx.Logger.Error("print usage failed", "error", err)
		}
		return 2
	}

	cmdName := args[0]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(cmdCtx.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			cmdCtx.Logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(cmdCtx.Stderr); err != nil {
			cmdCtx.Logger.Error("print usage failed", "error", err)
		}
		return 2
	}

	if cmd.needsConfig {
		cfg, err := load()
		if err != nil {
			cmdCtx.Logger.ErrorContext(cmdCtx.Ctx, "load config", "error", err)
			return 1
		}
		cmdCtx.Config = cfg
	}

	if err := cmd.run(cmdCtx, args[1:]); err != nil {
		cmdCtx.Logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", err)
		return 1
	}
	return 0
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			needsConfig: true,
			run:         runMigrations,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Run migrations and seed development roles, users and settings",
			needsConfig: true,
			run:         runDBSeed,
		},
		"create-role": {
			name:        "create-role",
			description: "Create a role",
			needsConfig: true,
			run:         runCreateRole,
		},
		"grant": {
			name:        "grant",
			description: "Grant permissions to a role",
			needsConfig: true,
			run:         runGrant,
		},
		"create-user": {
			name:        "create-user",
			description: "Create a user under an existing role",
			needsConfig: true,
			run:         runCreateUser,
		},
		"set-password": {
			name:        "set-password",
			description: "Replace a user's password",
			needsConfig: true,
			run:         runSetPassword,
		},
		"unlock-user": {
			name:        "unlock-user",
			description: "Clear failed login attempts for a username",
			needsConfig: true,
			run:         runUnlockUser,
		},
		"list-permissions": {
			name:        "list-permissions",
			description: "Print the permission catalog",
			run:         runListPermissions,
		},
		"hash-password": {
			name:        "hash-password",
			description: "Print a bcrypt hash for a password read from stdin",
			run:         runHashPassword,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: backoffice-admin <command> [flags]\n\n"); err != nil {
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
		if err := writef(w, "  %-20s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
