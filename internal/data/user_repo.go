package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/noe-create/medidhub-cpv-sub001/internal/data/pgxutil"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	apperrors "github.com/noe-create/medidhub-cpv-sub001/internal/errors"
)

// userSelect joins the role and folds its grants into a sorted array so one
// round trip yields the whole session snapshot.
const userSelect = `
	SELECT u.id, u.username, u.password_hash, u.active, u.role_id,
	       r.name AS role_name,
	       COALESCE(array_agg(rp.permission_id ORDER BY rp.permission_id)
	                FILTER (WHERE rp.permission_id IS NOT NULL), '{}') AS permissions,
	       u.created_at, u.last_login_at
	FROM users u
	JOIN roles r ON r.id = u.role_id
	LEFT JOIN role_permissions rp ON rp.role_id = r.id
`

const userGroupBy = ` GROUP BY u.id, r.name`

// UserRepo provides database operations for the user directory.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a UserRepo with a custom clock.
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// FindByUsername loads a user with its role name and permission ids.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.UserRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.ValidationField("username", "username is required")
	}
	return r.findOne(ctx, userSelect+` WHERE u.username = $1`+userGroupBy, username)
}

func (r *UserRepo) findOne(ctx context.Context, query string, args ...any) (*model.UserRecord, error) {
	var out model.UserRecord
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.UserRecord])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.MapDBError(fmt.Errorf("find user: %w", err))
	}
	return &out, nil
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("touch last login: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("User not found")
	}
	return nil
}

// Create inserts a user under an existing role, resolved by name.
func (r *UserRepo) Create(ctx context.Context, req *model.CreateUserRequest) (*model.UserRecord, error) {
	if req == nil {
		return nil, errors.New("create user request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role_id, created_at)
		SELECT $1, $2, r.id, $4 FROM roles r WHERE r.name = $3
		RETURNING id
	`,
		strings.TrimSpace(req.Username),
		req.PasswordHash,
		strings.TrimSpace(req.RoleName),
		r.timeProvider.Now().UTC(),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("Role %q not found", strings.TrimSpace(req.RoleName))
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return r.findOne(ctx, userSelect+` WHERE u.id = $1`+userGroupBy, id)
}

// SetPassword replaces a user's password hash.
func (r *UserRepo) SetPassword(ctx context.Context, username, passwordHash string) error {
	if strings.TrimSpace(passwordHash) == "" {
		return apperrors.ValidationField("password", "password hash is required")
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE username = $1`,
		strings.TrimSpace(username), passwordHash)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("set password: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("User not found")
	}
	return nil
}
