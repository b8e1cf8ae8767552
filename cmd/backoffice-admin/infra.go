package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noe-create/medidhub-cpv-sub001/internal/bootstrap"
	"github.com/noe-create/medidhub-cpv-sub001/internal/data"
	"github.com/noe-create/medidhub-cpv-sub001/internal/devseed"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
)

const defaultCommandTimeout = 2 * time.Minute

type userStore interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.UserRecord, error)
	SetPassword(ctx context.Context, username, passwordHash string) error
}

type roleStore interface {
	Create(ctx context.Context, name string) (*model.Role, error)
	Grant(ctx context.Context, roleName string, permissions []string) error
}

// directory is the slice of the database the admin commands write to.
type directory struct {
	Users userStore
	Roles roleStore
	// Migrate applies pending migrations.
	Migrate func(ctx context.Context) error
	// Seed loads development roles, users and settings.
	Seed  func(ctx context.Context, opts devseed.Options) error
	Close func() error
}

type throttleResetter interface {
	Reset(ctx context.Context, key string) error
}

type (
	connectFn func(cmdCtx *commandContext) (*directory, error)
	limiterFn func(cmdCtx *commandContext) (throttleResetter, func() error, error)
)

func connectDirectory(cmdCtx *commandContext) (*directory, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return &directory{
		Users: data.NewUserRepo(db),
		Roles: data.NewRoleRepo(db),
		Migrate: func(ctx context.Context) error {
			return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
		},
		Seed: func(ctx context.Context, opts devseed.Options) error {
			return devseed.Run(ctx, devseed.NewServices(db), opts, cmdCtx.Logger)
		},
		Close: db.Close,
	}, nil
}

func connectLimiter(cmdCtx *commandContext) (throttleResetter, func() error, error) {
	cfg := cmdCtx.Config
	if !cfg.Redis.Enabled {
		return nil, nil, nil
	}
	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{RedisConfig: cfg.Redis, Logger: cmdCtx.Logger})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	limiter := bootstrap.BuildLoginLimiter(bootstrap.AuthConfig{App: &cfg, RedisClient: client, Logger: cmdCtx.Logger})
	return limiter, client.Close, nil
}

// withDirectory runs f against the database with a timeout and Ctrl-C handling.
func withDirectory(cmdCtx *commandContext, timeout time.Duration, f func(context.Context, *directory) error) error {
	if cmdCtx.connect == nil {
		return errors.New("no database connector configured")
	}
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dir, err := cmdCtx.connect(cmdCtx)
	if err != nil {
		return err
	}
	if dir.Close != nil {
		defer func() {
			if cerr := dir.Close(); cerr != nil {
				cmdCtx.Logger.Warn("db close failed", "error", cerr)
			}
		}()
	}
	return f(ctx, dir)
}
