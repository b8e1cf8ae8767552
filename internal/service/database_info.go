package service

import (
	"context"
	"fmt"

	"github.com/noe-create/medidhub-cpv-sub001/internal/core"
	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
)

// DatabaseInfoServiceOptions groups dependencies for DatabaseInfoService.
type DatabaseInfoServiceOptions struct {
	Repo       core.DatabaseInfoRepository
	Connection model.ConnectionSummary
	Auth       Authorizer
}

// DatabaseInfoService backs the diagnostics page.
type DatabaseInfoService struct {
	repo core.DatabaseInfoRepository
	conn model.ConnectionSummary
	auth Authorizer
}

// NewDatabaseInfoService constructs a new DatabaseInfoService.
func NewDatabaseInfoService(opts DatabaseInfoServiceOptions) *DatabaseInfoService {
	if opts.Repo == nil || opts.Auth == nil {
		panic("database info service: Repo and Auth are required")
	}
	return &DatabaseInfoService{repo: opts.Repo, conn: opts.Connection, auth: opts.Auth}
}

// Describe authorizes database.view and returns the connection summary with live info.
// The summary never carries the password.
func (s *DatabaseInfoService) Describe(ctx context.Context, sess domainauth.Session) (*model.DatabaseReport, error) {
	if err := s.auth.Authorize(ctx, sess, domainauth.PermDatabaseView); err != nil {
		return nil, err
	}
	info, err := s.repo.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("database info: %w", err)
	}
	return &model.DatabaseReport{Connection: s.conn, Info: *info}, nil
}
