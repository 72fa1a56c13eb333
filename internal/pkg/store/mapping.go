package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/restoboard/restoboard/internal/domain"
	"github.com/restoboard/restoboard/internal/pkg/constants"
)

// mappingDoc is the persisted payload shape: one jsonb document per user.
type mappingDoc struct {
	UserKey  string                    `json:"userKey"`
	Mappings []*domain.RestaurantGroup `json:"mappings"`
}

func (s *store) LoadMappings(ctx context.Context, userKey string) ([]*domain.RestaurantGroup, error) {
	query := builder().Select("mappings").
		From(tableMappings).
		Where(sq.Eq{"user_key": userKey})

	var raw []byte
	err := s.pool.QueryRowx(ctx, query).Scan(&raw)
	if err != nil {
		if errors.Is(wrapErr(err), constants.ErrDBNotFound) {
			return []*domain.RestaurantGroup{}, nil
		}
		return nil, wrapErr(err)
	}

	var doc mappingDoc
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal mappings: %w", err)
	}

	return doc.Mappings, nil
}

func (s *store) SaveMappings(ctx context.Context, userKey string, groups []*domain.RestaurantGroup) error {
	raw, err := sonic.Marshal(mappingDoc{UserKey: userKey, Mappings: groups})
	if err != nil {
		return fmt.Errorf("marshal mappings: %w", err)
	}

	query := builder().Insert(tableMappings).
		Columns("user_key", "mappings").
		Values(userKey, raw).
		Suffix(`on conflict (user_key) do update set mappings=excluded.mappings, updated_at=now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}
