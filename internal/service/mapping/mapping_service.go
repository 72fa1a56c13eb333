// Package mapping owns the RestaurantGroup ↔ platform id relationship.
// The invariant across every operation: a platform id is active in at
// most one (group, channel) slot per user account.
package mapping

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/restoboard/restoboard/internal/domain"
	"github.com/restoboard/restoboard/internal/pkg/constants"
	"github.com/restoboard/restoboard/internal/pkg/logger"
	"github.com/restoboard/restoboard/internal/pkg/store"
)

// SyncWarning is returned by mutating calls when the local collection
// advanced but the backing store write failed. Local state stays the
// interim source of truth until the next successful save.
const SyncWarning = "saved locally but failed to sync"

// ConflictError reports the current owner of a platform id when an
// unconfirmed assignment would move it.
type ConflictError struct {
	Owner domain.PlatformOwner
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("platform id already assigned to %q on %s", e.Owner.GroupName, e.Owner.Channel)
}

func (e *ConflictError) Unwrap() error {
	return constants.ErrPlatformIDConflict
}

type Service struct {
	store store.Store

	mu    sync.Mutex
	cache map[string][]*domain.RestaurantGroup
}

func NewService(store store.Store) *Service {
	return &Service{
		store: store,
		cache: make(map[string][]*domain.RestaurantGroup),
	}
}

// load returns the user's collection, reading through to the store on
// first touch. Callers must hold s.mu.
func (s *Service) load(ctx context.Context, userKey string) ([]*domain.RestaurantGroup, error) {
	if groups, ok := s.cache[userKey]; ok {
		return groups, nil
	}

	groups, err := s.store.LoadMappings(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("store.LoadMappings: %w", err)
	}

	s.cache[userKey] = groups
	return groups, nil
}

// save replaces the whole collection. A store failure is degraded to a
// warning: the in-memory collection is kept, nothing is rolled back.
func (s *Service) save(ctx context.Context, userKey string, groups []*domain.RestaurantGroup) string {
	s.cache[userKey] = groups
	if err := s.store.SaveMappings(ctx, userKey, groups); err != nil {
		logger.Warnf(ctx, "mapping: save for %s failed, keeping local state: %s", userKey, err.Error())
		return SyncWarning
	}
	return ""
}

// ListGroups returns a deep copy taken under the lock: callers (the
// report fan-out included) iterate their snapshot while edits keep
// mutating the cached maps.
func (s *Service) ListGroups(ctx context.Context, userKey string) ([]*domain.RestaurantGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	return cloneGroups(groups), nil
}

func (s *Service) CreateGroup(ctx context.Context, userKey, name string) (*domain.RestaurantGroup, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.load(ctx, userKey)
	if err != nil {
		return nil, "", err
	}

	group := &domain.RestaurantGroup{
		ID:        uuid.NewString(),
		Name:      name,
		Platforms: make(map[domain.Channel]string),
		CreatedAt: time.Now().UTC(),
	}

	warning := s.save(ctx, userKey, append(groups, group))
	return group.Clone(), warning, nil
}

// AssignPlatformID sets a (group, channel) slot. When the platform id is
// already owned elsewhere this is a move: without confirm the current
// owner is reported back via ConflictError, with confirm the old slot is
// cleared first. Re-assigning the identical triple is a no-op.
func (s *Service) AssignPlatformID(
	ctx context.Context,
	userKey, groupID string,
	channel domain.Channel,
	platformID string,
	confirm bool,
) (*domain.AssignResult, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.load(ctx, userKey)
	if err != nil {
		return nil, "", err
	}

	target := findGroup(groups, groupID)
	if target == nil {
		return nil, "", constants.ErrGroupNotFound
	}

	ownerGroup, ownerChannel := findOwner(groups, platformID)
	if ownerGroup != nil && ownerGroup.ID == groupID && ownerChannel == channel {
		// Identical triple: idempotent, no save.
		return &domain.AssignResult{Group: target.Clone()}, "", nil
	}

	if ownerGroup != nil && !confirm {
		return nil, "", &ConflictError{Owner: domain.PlatformOwner{
			GroupID:   ownerGroup.ID,
			GroupName: ownerGroup.Name,
			Channel:   ownerChannel,
		}}
	}

	result := &domain.AssignResult{}
	if ownerGroup != nil {
		delete(ownerGroup.Platforms, ownerChannel)
		result.MovedFrom = &domain.PlatformOwner{
			GroupID:   ownerGroup.ID,
			GroupName: ownerGroup.Name,
			Channel:   ownerChannel,
		}
		if ownerGroup.ID != groupID && ownerGroup.Empty() {
			// Flagged for confirmation only; never auto-deleted.
			result.EmptiedGroup = ownerGroup.Clone()
		}
	}

	if target.Platforms == nil {
		target.Platforms = make(map[domain.Channel]string)
	}
	target.Platforms[channel] = platformID
	result.Group = target.Clone()

	warning := s.save(ctx, userKey, groups)
	return result, warning, nil
}

// DetectDuplicates buckets groups holding exactly one platform id by
// their normalized name. Buckets with more than one member are merge
// candidates for the user to confirm.
func (s *Service) DetectDuplicates(ctx context.Context, userKey string) ([]domain.DuplicateBucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.load(ctx, userKey)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string][]*domain.RestaurantGroup)
	for _, g := range groups {
		if g.AssignedCount() != 1 {
			continue
		}
		key := NormalizeName(g.Name)
		buckets[key] = append(buckets[key], g)
	}

	keys := make([]string, 0, len(buckets))
	for key, members := range buckets {
		if len(members) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	candidates := make([]domain.DuplicateBucket, 0, len(keys))
	for _, key := range keys {
		candidates = append(candidates, domain.DuplicateBucket{Key: key, Groups: cloneGroups(buckets[key])})
	}

	return candidates, nil
}

// MergeGroups unions the sources' platform maps into the target and
// deletes the sources. The target's existing slot wins on collision; the
// discarded source assignment is reported back, never silently dropped.
func (s *Service) MergeGroups(ctx context.Context, userKey, targetID string, sourceIDs []string) (*domain.MergeResult, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.load(ctx, userKey)
	if err != nil {
		return nil, "", err
	}

	target := findGroup(groups, targetID)
	if target == nil {
		return nil, "", constants.ErrGroupNotFound
	}

	sources := make([]*domain.RestaurantGroup, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		if id == targetID {
			return nil, "", constants.ErrMergeTargetInSources
		}
		src := findGroup(groups, id)
		if src == nil {
			return nil, "", constants.ErrGroupNotFound
		}
		sources = append(sources, src)
	}

	if target.Platforms == nil {
		target.Platforms = make(map[domain.Channel]string)
	}

	result := &domain.MergeResult{}
	deleted := make(map[string]bool, len(sources))
	for _, src := range sources {
		for channel, platformID := range src.Platforms {
			if existing := target.Platforms[channel]; existing != "" {
				result.Discarded = append(result.Discarded, domain.DiscardedAssignment{
					GroupID:    src.ID,
					GroupName:  src.Name,
					Channel:    channel,
					PlatformID: platformID,
				})
				continue
			}
			target.Platforms[channel] = platformID
		}
		deleted[src.ID] = true
	}

	kept := make([]*domain.RestaurantGroup, 0, len(groups))
	for _, g := range groups {
		if !deleted[g.ID] {
			kept = append(kept, g)
		}
	}

	result.Target = target.Clone()
	warning := s.save(ctx, userKey, kept)
	return result, warning, nil
}

// DeleteGroup removes a group. With onlyIfEmpty the call is the explicit
// confirmation step after a move emptied the group, and refuses groups
// that still hold platform ids.
func (s *Service) DeleteGroup(ctx context.Context, userKey, groupID string, onlyIfEmpty bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.load(ctx, userKey)
	if err != nil {
		return "", err
	}

	group := findGroup(groups, groupID)
	if group == nil {
		return "", constants.ErrGroupNotFound
	}
	if onlyIfEmpty && !group.Empty() {
		return "", constants.ErrGroupNotEmpty
	}

	kept := make([]*domain.RestaurantGroup, 0, len(groups)-1)
	for _, g := range groups {
		if g.ID != groupID {
			kept = append(kept, g)
		}
	}

	return s.save(ctx, userKey, kept), nil
}

func cloneGroups(groups []*domain.RestaurantGroup) []*domain.RestaurantGroup {
	clones := make([]*domain.RestaurantGroup, len(groups))
	for i, g := range groups {
		clones[i] = g.Clone()
	}
	return clones
}

func findGroup(groups []*domain.RestaurantGroup, id string) *domain.RestaurantGroup {
	for _, g := range groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func findOwner(groups []*domain.RestaurantGroup, platformID string) (*domain.RestaurantGroup, domain.Channel) {
	for _, g := range groups {
		for channel, pid := range g.Platforms {
			if pid == platformID {
				return g, channel
			}
		}
	}
	return nil, ""
}
