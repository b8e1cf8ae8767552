package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/noe-create/medidhub-cpv-sub001/internal/data/pgxutil"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	apperrors "github.com/noe-create/medidhub-cpv-sub001/internal/errors"
)

// DatabaseInfoRepo reads server facts for the diagnostics page.
type DatabaseInfoRepo struct {
	DB *sql.DB
}

// NewDatabaseInfoRepo creates a new DatabaseInfoRepo.
func NewDatabaseInfoRepo(db *sql.DB) *DatabaseInfoRepo {
	return &DatabaseInfoRepo{DB: db}
}

// Info queries the server and attaches the pool statistics.
func (r *DatabaseInfoRepo) Info(ctx context.Context) (*model.DatabaseInfo, error) {
	var out model.DatabaseInfo
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT current_setting('server_version') AS server_version,
			       current_database()                AS database,
			       current_user                      AS current_user,
			       pg_database_size(current_database()) AS size_bytes
		`)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.DatabaseInfo])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out.Stats = r.DB.Stats()
	return &out, nil
}

// Health pings the database.
func (r *DatabaseInfoRepo) Health(ctx context.Context) error {
	if r.DB == nil {
		return ErrNilDB
	}
	return r.DB.PingContext(ctx)
}
