package core

import (
	"context"
	"time"

	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Service implementations depend on these interfaces, not on internal/data.

// UserRepository is the user directory consulted at login and by the admin CLI.
type UserRepository interface {
	// FindByUsername returns the user with role name and permission ids.
	// A missing user is a NotFound AppError.
	FindByUsername(ctx context.Context, username string) (*model.UserRecord, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.UserRecord, error)
	SetPassword(ctx context.Context, username, passwordHash string) error
}

// RoleRepository manages roles and their permission grants.
type RoleRepository interface {
	Create(ctx context.Context, name string) (*model.Role, error)
	Grant(ctx context.Context, roleName string, permissions []string) error
}

// SettingsRepository reads and writes system_settings rows.
type SettingsRepository interface {
	// List returns rows whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]model.Setting, error)
	// UpsertAll writes every row in a single transaction; on any failure nothing is written.
	UpsertAll(ctx context.Context, settings []model.Setting) error
}

// DatabaseInfoRepository reports live server information.
type DatabaseInfoRepository interface {
	Info(ctx context.Context) (*model.DatabaseInfo, error)
}
