package threshold

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/restoboard/restoboard/internal/domain"
	"github.com/restoboard/restoboard/internal/pkg/constants"
	"github.com/restoboard/restoboard/internal/pkg/store"
)

// Defaults applied until the user saves their own config.
const (
	DefaultDiscountThresholdPct = 15.0
	DefaultAdsThresholdPct      = 5.0
)

type Service struct {
	store store.Store
}

func NewService(store store.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, userKey string) (*domain.ThresholdConfig, error) {
	cfg, err := s.store.GetThresholds(ctx, userKey)
	if err != nil {
		if errors.Is(err, constants.ErrDBNotFound) {
			return &domain.ThresholdConfig{
				DiscountThresholdPct: DefaultDiscountThresholdPct,
				AdsThresholdPct:      DefaultAdsThresholdPct,
			}, nil
		}
		return nil, fmt.Errorf("store.GetThresholds: %w", err)
	}

	return cfg, nil
}

// Update persists the config with one-decimal precision.
func (s *Service) Update(ctx context.Context, userKey string, cfg *domain.ThresholdConfig) (*domain.ThresholdConfig, error) {
	rounded := &domain.ThresholdConfig{
		DiscountThresholdPct: roundOneDecimal(cfg.DiscountThresholdPct),
		AdsThresholdPct:      roundOneDecimal(cfg.AdsThresholdPct),
	}

	if err := s.store.SaveThresholds(ctx, userKey, rounded); err != nil {
		return nil, fmt.Errorf("store.SaveThresholds: %w", err)
	}

	return rounded, nil
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
