// Package mocks provides gomock implementations of the repository ports in internal/core.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	users := mocks.NewMockUserRepository(ctrl)
//	users.EXPECT().FindByUsername(gomock.Any(), "ana").Return(rec, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/noe-create/medidhub-cpv-sub001/internal/core UserRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=role_repository_mock.go github.com/noe-create/medidhub-cpv-sub001/internal/core RoleRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=settings_repository_mock.go github.com/noe-create/medidhub-cpv-sub001/internal/core SettingsRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=database_info_repository_mock.go github.com/noe-create/medidhub-cpv-sub001/internal/core DatabaseInfoRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/noe-create/medidhub-cpv-sub001/internal/core CacheRepository
