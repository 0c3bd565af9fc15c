package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/storeit-dev/storeit/internal/cache"
	"github.com/storeit-dev/storeit/internal/logging"
	"github.com/storeit-dev/storeit/pkg/types"
	"go.uber.org/zap"
)

var (
	ErrUnauthenticated    = errors.New("user not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrOnlyOwner          = errors.New("forbidden: only the owner can modify this file")
	ErrNotShared          = errors.New("forbidden: you are not allowed to modify this file")
	ErrOnlySelfRemoval    = errors.New("forbidden: you can only remove yourself")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func unauthenticated() *types.AppError {
	return &types.AppError{Error: ErrUnauthenticated, Code: http.StatusUnauthorized}
}

// Refresher invalidates cached rendered output for a navigational path after
// a successful mutation. Its own failures are logged, never surfaced.
type Refresher interface {
	Refresh(ctx context.Context, path string)
}

type viewRefresher struct {
	cache cache.Cacher
}

func NewViewRefresher(cacher cache.Cacher) Refresher {
	return &viewRefresher{cache: cacher}
}

func (r *viewRefresher) Refresh(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := r.cache.Delete(cache.KeyView(path)); err != nil {
		logging.FromContext(ctx).Warn("view refresh failed",
			zap.String("path", path), zap.Error(err))
	}
}
