package data

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/noe-create/medidhub-cpv-sub001/internal/data/pgxutil"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	apperrors "github.com/noe-create/medidhub-cpv-sub001/internal/errors"
)

// SettingsRepo stores system_settings key/value rows.
type SettingsRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSettingsRepo creates a new SettingsRepo with real time provider.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewSettingsRepoWithTimeProvider creates a SettingsRepo with a custom clock.
func NewSettingsRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *SettingsRepo {
	return &SettingsRepo{DB: db, timeProvider: tp}
}

// List returns rows whose key starts with prefix, ordered by key.
func (r *SettingsRepo) List(ctx context.Context, prefix string) ([]model.Setting, error) {
	var out []model.Setting
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT key, value, updated_at FROM system_settings
			WHERE starts_with(key, $1)
			ORDER BY key
		`, prefix)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Setting])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// UpsertAll writes every row in one transaction.
func (r *SettingsRepo) UpsertAll(ctx context.Context, settings []model.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	now := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		for _, s := range settings {
			if strings.TrimSpace(s.Key) == "" {
				return apperrors.ValidationField("key", "setting key is required")
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO system_settings (key, value, updated_at) VALUES ($1, $2, $3)
				ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
			`, s.Key, s.Value, now); err != nil {
				return err
			}
		}
		return nil
	}})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}
