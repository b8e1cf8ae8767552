// Package devseed fills a development database with roles, users and appearance settings.
// Every step is idempotent: existing rows are left alone.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/passwords"
	"github.com/noe-create/medidhub-cpv-sub001/internal/data"
	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	apperrors "github.com/noe-create/medidhub-cpv-sub001/internal/errors"
)

// DefaultPassword is used for every seeded user unless Options.Password is set.
const DefaultPassword = "cpv-desarrollo"

// RoleStore creates roles and grants permissions.
type RoleStore interface {
	Create(ctx context.Context, name string) (*model.Role, error)
	Grant(ctx context.Context, roleName string, permissions []string) error
}

// UserStore creates directory users.
type UserStore interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.UserRecord, error)
}

// SettingsStore reads and writes system_settings.
type SettingsStore interface {
	List(ctx context.Context, prefix string) ([]model.Setting, error)
	UpsertAll(ctx context.Context, settings []model.Setting) error
}

// Hasher hashes seeded passwords.
type Hasher interface {
	Hash(password string) (string, error)
}

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Roles    RoleStore
	Users    UserStore
	Settings SettingsStore
	Hasher   Hasher
}

// NewServices builds the Postgres-backed stores.
func NewServices(db *sql.DB) Services {
	return Services{
		Roles:    data.NewRoleRepo(db),
		Users:    data.NewUserRepo(db),
		Settings: data.NewSettingsRepo(db),
		Hasher:   passwords.Bcrypt{},
	}
}

// Options tweaks the seed.
type Options struct {
	Password string
}

type seedRole struct {
	name  string
	perms []domainauth.Permission
}

type seedUser struct {
	username string
	role     string
}

func defaultRoles() []seedRole {
	return []seedRole{
		// Superusuario is created by the initial migration and needs no grants.
		{name: domainauth.DefaultSuperuserRole},
		{name: "Administrador", perms: []domainauth.Permission{
			domainauth.PermSettingsManage,
			domainauth.PermDatabaseView,
			domainauth.PermUsersManage,
			domainauth.PermRolesManage,
		}},
		{name: "Recepcion", perms: []domainauth.Permission{
			domainauth.PermPatientsManage,
			domainauth.PermCompaniesManage,
			domainauth.PermAppointmentsManage,
		}},
		{name: "Medico", perms: []domainauth.Permission{
			domainauth.PermPatientsManage,
			domainauth.PermTreatmentsManage,
			domainauth.PermCIE10Manage,
		}},
	}
}

func defaultUsers() []seedUser {
	return []seedUser{
		{username: "admin", role: domainauth.DefaultSuperuserRole},
		{username: "administrador", role: "Administrador"},
		{username: "recepcion", role: "Recepcion"},
		{username: "medico", role: "Medico"},
	}
}

// Run seeds roles, then users, then appearance settings. It keeps going after a
// failed item and reports the number of failures at the end.
func Run(ctx context.Context, svcs Services, opts Options, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	password := opts.Password
	if password == "" {
		password = DefaultPassword
	}
	if err := model.ValidatePassword(password); err != nil {
		return err
	}

	failures := seedRoles(ctx, svcs.Roles, logger)
	failures += seedUsers(ctx, svcs, password, logger)
	if err := seedAppearance(ctx, svcs.Settings, logger); err != nil {
		logger.ErrorContext(ctx, "failed to seed appearance settings", "error", err)
		failures++
	}
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func seedRoles(ctx context.Context, roles RoleStore, logger *slog.Logger) int {
	failures := 0
	for _, r := range defaultRoles() {
		msg := "created role"
		if _, err := roles.Create(ctx, r.name); err != nil {
			if !apperrors.IsConflict(err) {
				logger.ErrorContext(ctx, "failed to create role", "name", r.name, "error", err)
				failures++
				continue
			}
			msg = "role already exists"
		}
		logger.InfoContext(ctx, msg, "name", r.name)

		if len(r.perms) == 0 {
			continue
		}
		perms := make([]string, len(r.perms))
		for i, p := range r.perms {
			perms[i] = string(p)
		}
		if err := roles.Grant(ctx, r.name, perms); err != nil {
			logger.ErrorContext(ctx, "failed to grant permissions", "role", r.name, "error", err)
			failures++
		}
	}
	return failures
}

func seedUsers(ctx context.Context, svcs Services, password string, logger *slog.Logger) int {
	hash, err := svcs.Hasher.Hash(password)
	if err != nil {
		logger.ErrorContext(ctx, "failed to hash seed password", "error", err)
		return 1
	}
	failures := 0
	for _, u := range defaultUsers() {
		_, err := svcs.Users.Create(ctx, &model.CreateUserRequest{
			Username:     u.username,
			PasswordHash: hash,
			RoleName:     u.role,
		})
		switch {
		case err == nil:
			logger.InfoContext(ctx, "created user", "username", u.username, "role", u.role)
		case apperrors.IsConflict(err):
			logger.InfoContext(ctx, "user already exists", "username", u.username)
		default:
			logger.ErrorContext(ctx, "failed to create user", "username", u.username, "error", err)
			failures++
		}
	}
	return failures
}

// seedAppearance writes the defaults only when no appearance key has been saved yet.
func seedAppearance(ctx context.Context, settings SettingsStore, logger *slog.Logger) error {
	rows, err := settings.List(ctx, "appearance.")
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		logger.InfoContext(ctx, "appearance settings already present", "count", len(rows))
		return nil
	}
	a := model.DefaultAppearance()
	a.ClinicName = "Salud CPV (desarrollo)"
	if err := settings.UpsertAll(ctx, a.Settings()); err != nil {
		return err
	}
	logger.InfoContext(ctx, "seeded appearance settings")
	return nil
}
