package store

import (
	"context"

	"github.com/restoboard/restoboard/internal/domain"
	"github.com/restoboard/restoboard/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

// Store persists per-user mapping collections and threshold configs.
// Mapping writes are whole-collection replace-on-save: concurrent saves
// from two sessions resolve as last-write-wins.
type Store interface {
	LoadMappings(ctx context.Context, userKey string) ([]*domain.RestaurantGroup, error)
	SaveMappings(ctx context.Context, userKey string, groups []*domain.RestaurantGroup) error
	GetThresholds(ctx context.Context, userKey string) (*domain.ThresholdConfig, error)
	SaveThresholds(ctx context.Context, userKey string, cfg *domain.ThresholdConfig) error
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}
