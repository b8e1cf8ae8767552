package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/noe-create/medidhub-cpv-sub001/internal/data/pgxutil"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	apperrors "github.com/noe-create/medidhub-cpv-sub001/internal/errors"
)

// RoleRepo manages roles and role_permissions.
type RoleRepo struct {
	DB *sql.DB
}

// NewRoleRepo creates a new RoleRepo.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db}
}

// Create inserts a role. A duplicate name is a Conflict.
func (r *RoleRepo) Create(ctx context.Context, name string) (*model.Role, error) {
	if err := model.ValidateRoleName(name); err != nil {
		return nil, apperrors.ValidationField("name", err.Error())
	}
	var out model.Role
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`INSERT INTO roles (name) VALUES ($1) RETURNING id, name, created_at`,
			strings.TrimSpace(name))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Role])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Grant adds permissions to a role in one transaction. Existing grants are kept.
// An unknown permission id aborts the whole grant.
func (r *RoleRepo) Grant(ctx context.Context, roleName string, permissions []string) error {
	if len(permissions) == 0 {
		return apperrors.ValidationField("permissions", "at least one permission is required")
	}
	return pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		var roleID int64
		err := tx.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, strings.TrimSpace(roleName)).Scan(&roleID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFoundf("Role %q not found", strings.TrimSpace(roleName))
		}
		if err != nil {
			return apperrors.MapDBError(err)
		}

		batch := &pgx.Batch{}
		for _, p := range permissions {
			batch.Queue(`
				INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, roleID, strings.TrimSpace(p))
		}
		br := tx.SendBatch(ctx, batch)
		for _, p := range permissions {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return apperrors.Wrapf(apperrors.MapDBError(err), apperrors.ErrCodeValidation,
					"unknown permission %q", p)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("grant batch: %w", err)
		}
		return nil
	}})
}
