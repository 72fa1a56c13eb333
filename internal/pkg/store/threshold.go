package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/restoboard/restoboard/internal/domain"
)

var thresholdColumns = []string{"discount_threshold_pct", "ads_threshold_pct"}

func (s *store) GetThresholds(ctx context.Context, userKey string) (*domain.ThresholdConfig, error) {
	query := builder().Select(thresholdColumns...).
		From(tableThresholds).
		Where(sq.Eq{"user_key": userKey})

	var cfg domain.ThresholdConfig
	err := s.pool.QueryRowx(ctx, query).Scan(&cfg.DiscountThresholdPct, &cfg.AdsThresholdPct)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &cfg, nil
}

func (s *store) SaveThresholds(ctx context.Context, userKey string, cfg *domain.ThresholdConfig) error {
	query := builder().Insert(tableThresholds).
		Columns("user_key", "discount_threshold_pct", "ads_threshold_pct").
		Values(userKey, cfg.DiscountThresholdPct, cfg.AdsThresholdPct).
		Suffix(`
on conflict (user_key)
do update
set
	discount_threshold_pct = excluded.discount_threshold_pct,
	ads_threshold_pct = excluded.ads_threshold_pct,
	updated_at = now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}
