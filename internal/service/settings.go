package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/noe-create/medidhub-cpv-sub001/internal/core"
	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	apperrors "github.com/noe-create/medidhub-cpv-sub001/internal/errors"
)

const appearancePrefix = "appearance."

// Authorizer is the permission check services run before any side effect.
type Authorizer interface {
	Authorize(ctx context.Context, sess domainauth.Session, perm domainauth.Permission) error
}

// SettingsServiceOptions groups dependencies for SettingsService.
type SettingsServiceOptions struct {
	Repo  core.SettingsRepository
	Cache *core.AppearanceCache // optional
	Auth  Authorizer
}

// SettingsService reads and updates the clinic appearance settings.
type SettingsService struct {
	repo   core.SettingsRepository
	cache  *core.AppearanceCache
	auth   Authorizer
	logger *slog.Logger
}

// NewSettingsService constructs a new SettingsService.
func NewSettingsService(opts SettingsServiceOptions) *SettingsService {
	if opts.Repo == nil || opts.Auth == nil {
		panic("settings service: Repo and Auth are required")
	}
	return &SettingsService{
		repo:   opts.Repo,
		cache:  opts.Cache,
		auth:   opts.Auth,
		logger: slog.Default().With("component", "settings"),
	}
}

// Get returns the appearance settings, reading through the cache.
// Cache failures fall back to the database.
func (s *SettingsService) Get(ctx context.Context) (model.AppearanceSettings, error) {
	cached, hit, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "appearance cache read failed", "error", err)
	}
	if hit {
		return cached, nil
	}

	rows, err := s.repo.List(ctx, appearancePrefix)
	if err != nil {
		return model.AppearanceSettings{}, fmt.Errorf("list settings: %w", err)
	}
	out := model.AppearanceFromSettings(rows)
	if err := s.cache.Put(ctx, out); err != nil {
		s.logger.WarnContext(ctx, "appearance cache write failed", "error", err)
	}
	return out, nil
}

// Update authorizes settings.manage, validates, and writes all keys atomically.
func (s *SettingsService) Update(
	ctx context.Context,
	sess domainauth.Session,
	in model.AppearanceSettings,
) (model.AppearanceSettings, error) {
	if err := s.auth.Authorize(ctx, sess, domainauth.PermSettingsManage); err != nil {
		return model.AppearanceSettings{}, err
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		var ve *model.SettingsValidationError
		if errors.As(err, &ve) {
			return model.AppearanceSettings{}, apperrors.ValidationField(
				strings.TrimPrefix(ve.Key, appearancePrefix), ve.Error())
		}
		return model.AppearanceSettings{}, apperrors.Validation(err.Error())
	}

	if err := s.repo.UpsertAll(ctx, in.Settings()); err != nil {
		return model.AppearanceSettings{}, fmt.Errorf("save settings: %w", err)
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "appearance cache invalidate failed", "error", err)
	}
	s.logger.InfoContext(ctx, "appearance settings updated", "username", sess.Username())
	return in, nil
}
