package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/passwords"
	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	"github.com/noe-create/medidhub-cpv-sub001/internal/service"
)

const defaultMigrationTimeout = 5 * time.Minute

type migrateOptions struct {
	Timeout time.Duration
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(cmdCtx, args)
	if err != nil {
		return err
	}
	return withDirectory(cmdCtx, opts.Timeout, func(ctx context.Context, dir *directory) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := dir.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func parseMigrateFlags(cmdCtx *commandContext, args []string) (migrateOptions, error) {
	fs := newFlagSet(cmdCtx, "migrate")
	opts := migrateOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete")
	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runCreateRole(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "create-role")
	name := fs.String("name", "", "Role name (e.g. Recepcion)")
	perms := fs.String("permissions", "", "Comma-separated permissions to grant right away")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := model.ValidateRoleName(*name); err != nil {
		return err
	}
	grants, err := parsePermissions(*perms, true)
	if err != nil {
		return err
	}

	return withDirectory(cmdCtx, defaultCommandTimeout, func(ctx context.Context, dir *directory) error {
		role, createErr := dir.Roles.Create(ctx, *name)
		if createErr != nil {
			return fmt.Errorf("create role: %w", createErr)
		}
		if len(grants) > 0 {
			if grantErr := dir.Roles.Grant(ctx, role.Name, grants); grantErr != nil {
				return fmt.Errorf("grant permissions: %w", grantErr)
			}
		}
		return writef(cmdCtx.Stdout, "created role %q (id %d) with %d permission(s)\n", role.Name, role.ID, len(grants))
	})
}

func runGrant(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "grant")
	role := fs.String("role", "", "Role name")
	perms := fs.String("permissions", "", "Comma-separated permissions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*role) == "" {
		return errors.New("--role is required")
	}
	grants, err := parsePermissions(*perms, false)
	if err != nil {
		return err
	}

	return withDirectory(cmdCtx, defaultCommandTimeout, func(ctx context.Context, dir *directory) error {
		if grantErr := dir.Roles.Grant(ctx, *role, grants); grantErr != nil {
			return fmt.Errorf("grant permissions: %w", grantErr)
		}
		return writef(cmdCtx.Stdout, "granted %s to %q\n", strings.Join(grants, ", "), strings.TrimSpace(*role))
	})
}

func runCreateUser(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "create-user")
	username := fs.String("username", "", "Login name")
	role := fs.String("role", "", "Existing role name")
	cost := fs.Int("cost", 0, "bcrypt cost (0 uses the library default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := model.ValidateUsername(*username); err != nil {
		return err
	}
	if strings.TrimSpace(*role) == "" {
		return errors.New("--role is required")
	}
	hash, err := readAndHashPassword(cmdCtx.Stdin, *cost)
	if err != nil {
		return err
	}

	return withDirectory(cmdCtx, defaultCommandTimeout, func(ctx context.Context, dir *directory) error {
		user, createErr := dir.Users.Create(ctx, &model.CreateUserRequest{
			Username:     *username,
			PasswordHash: hash,
			RoleName:     *role,
		})
		if createErr != nil {
			return fmt.Errorf("create user: %w", createErr)
		}
		return writef(cmdCtx.Stdout, "created user %q (id %d) with role %q\n", user.Username, user.ID, user.RoleName)
	})
}

func runSetPassword(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "set-password")
	username := fs.String("username", "", "Login name")
	cost := fs.Int("cost", 0, "bcrypt cost (0 uses the library default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" {
		return errors.New("--username is required")
	}
	hash, err := readAndHashPassword(cmdCtx.Stdin, *cost)
	if err != nil {
		return err
	}

	return withDirectory(cmdCtx, defaultCommandTimeout, func(ctx context.Context, dir *directory) error {
		if setErr := dir.Users.SetPassword(ctx, *username, hash); setErr != nil {
			return fmt.Errorf("set password: %w", setErr)
		}
		return writef(cmdCtx.Stdout, "password updated for %q\n", strings.TrimSpace(*username))
	})
}

func runUnlockUser(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "unlock-user")
	username := fs.String("username", "", "Login name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" {
		return errors.New("--username is required")
	}

	limiter, closeFn, err := cmdCtx.limiter(cmdCtx)
	if err != nil {
		return err
	}
	if limiter == nil {
		return writeln(cmdCtx.Stderr, "Redis is disabled; logins are not throttled")
	}
	if closeFn != nil {
		defer func() {
			if cerr := closeFn(); cerr != nil {
				cmdCtx.Logger.Warn("redis close failed", "error", cerr)
			}
		}()
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 10*time.Second)
	defer cancel()
	if resetErr := limiter.Reset(ctx, service.UsernameThrottleKey(*username)); resetErr != nil {
		return fmt.Errorf("reset throttle: %w", resetErr)
	}
	return writef(cmdCtx.Stdout, "cleared failed logins for %q\n", strings.TrimSpace(*username))
}

func runListPermissions(cmdCtx *commandContext, _ []string) error {
	for _, p := range domainauth.KnownPermissions() {
		if err := writeln(cmdCtx.Stdout, string(p)); err != nil {
			return err
		}
	}
	return nil
}

func runHashPassword(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "hash-password")
	cost := fs.Int("cost", 0, "bcrypt cost (0 uses the library default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	hash, err := readAndHashPassword(cmdCtx.Stdin, *cost)
	if err != nil {
		return err
	}
	return writeln(cmdCtx.Stdout, hash)
}

func newFlagSet(cmdCtx *commandContext, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	return fs
}

// parsePermissions splits a comma list and rejects names outside the catalog.
func parsePermissions(raw string, allowEmpty bool) ([]string, error) {
	known := domainauth.NewPermissionSet(domainauth.KnownPermissions()...)
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if !known.Has(domainauth.Permission(p)) {
			return nil, fmt.Errorf("unknown permission %q (see list-permissions)", p)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 && !allowEmpty {
		return nil, errors.New("--permissions is required")
	}
	return out, nil
}

// readAndHashPassword reads the first line of r so passwords stay out of shell history.
func readAndHashPassword(r io.Reader, cost int) (string, error) {
	if r == nil {
		return "", errors.New("password must be provided on stdin")
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if err := model.ValidatePassword(password); err != nil {
		return "", err
	}
	return passwords.Bcrypt{Cost: cost}.Hash(password)
}
