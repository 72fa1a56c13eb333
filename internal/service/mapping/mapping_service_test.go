package mapping

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/restoboard/restoboard/internal/domain"
	"github.com/restoboard/restoboard/internal/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	saved   map[string][]*domain.RestaurantGroup
	saveErr error
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string][]*domain.RestaurantGroup)}
}

func (f *fakeStore) LoadMappings(_ context.Context, userKey string) ([]*domain.RestaurantGroup, error) {
	return f.saved[userKey], nil
}

func (f *fakeStore) SaveMappings(_ context.Context, userKey string, groups []*domain.RestaurantGroup) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[userKey] = groups
	return nil
}

func (f *fakeStore) GetThresholds(context.Context, string) (*domain.ThresholdConfig, error) {
	return nil, constants.ErrDBNotFound
}

func (f *fakeStore) SaveThresholds(context.Context, string, *domain.ThresholdConfig) error {
	return nil
}

const user = "user-1"

func mustCreate(t *testing.T, svc *Service, name string) *domain.RestaurantGroup {
	t.Helper()
	group, warning, err := svc.CreateGroup(context.Background(), user, name)
	require.NoError(t, err)
	require.Empty(t, warning)
	return group
}

func mustAssign(t *testing.T, svc *Service, groupID string, ch domain.Channel, pid string, confirm bool) *domain.AssignResult {
	t.Helper()
	res, _, err := svc.AssignPlatformID(context.Background(), user, groupID, ch, pid, confirm)
	require.NoError(t, err)
	return res
}

// getGroup re-reads the group's current state; returned groups are
// snapshots, so assertions after a mutation must fetch again.
func getGroup(t *testing.T, svc *Service, id string) *domain.RestaurantGroup {
	t.Helper()
	groups, err := svc.ListGroups(context.Background(), user)
	require.NoError(t, err)
	for _, g := range groups {
		if g.ID == id {
			return g
		}
	}
	t.Fatalf("group %s not found", id)
	return nil
}

// ownerCount returns how many (group, channel) slots hold the platform id.
func ownerCount(t *testing.T, svc *Service, pid string) int {
	t.Helper()
	groups, err := svc.ListGroups(context.Background(), user)
	require.NoError(t, err)

	count := 0
	for _, g := range groups {
		for _, p := range g.Platforms {
			if p == pid {
				count++
			}
		}
	}
	return count
}

func TestAssignPlatformIDIdempotent(t *testing.T) {
	svc := NewService(newFakeStore())
	group := mustCreate(t, svc, "Biryani House")

	mustAssign(t, svc, group.ID, domain.ChannelZomato, "19251816", false)
	res := mustAssign(t, svc, group.ID, domain.ChannelZomato, "19251816", false)

	assert.Nil(t, res.MovedFrom)
	assert.Nil(t, res.EmptiedGroup)
	assert.Equal(t, 1, ownerCount(t, svc, "19251816"))
}

func TestAssignPlatformIDMoveNeedsConfirmation(t *testing.T) {
	svc := NewService(newFakeStore())
	groupA := mustCreate(t, svc, "Biryani House A")
	groupB := mustCreate(t, svc, "Biryani House B")

	mustAssign(t, svc, groupA.ID, domain.ChannelZomato, "19251816", false)

	// Unconfirmed move reports the current owner and changes nothing.
	_, _, err := svc.AssignPlatformID(context.Background(), user, groupB.ID, domain.ChannelSwiggy, "19251816", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrPlatformIDConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, groupA.ID, conflict.Owner.GroupID)
	assert.Equal(t, "Biryani House A", conflict.Owner.GroupName)
	assert.Equal(t, domain.ChannelZomato, conflict.Owner.Channel)
	assert.Equal(t, "19251816", getGroup(t, svc, groupA.ID).Platforms[domain.ChannelZomato])

	// Confirmed move clears the old slot and flags the emptied owner.
	res := mustAssign(t, svc, groupB.ID, domain.ChannelSwiggy, "19251816", true)
	assert.NotContains(t, getGroup(t, svc, groupA.ID).Platforms, domain.ChannelZomato)
	require.NotNil(t, res.MovedFrom)
	assert.Equal(t, groupA.ID, res.MovedFrom.GroupID)
	require.NotNil(t, res.EmptiedGroup, "group A lost its last platform id and must be flagged")
	assert.Equal(t, groupA.ID, res.EmptiedGroup.ID)
	assert.Equal(t, 1, ownerCount(t, svc, "19251816"))
}

func TestAssignPlatformIDMoveWithinGroup(t *testing.T) {
	svc := NewService(newFakeStore())
	group := mustCreate(t, svc, "Tandoor Express")

	mustAssign(t, svc, group.ID, domain.ChannelZomato, "555", false)
	res := mustAssign(t, svc, group.ID, domain.ChannelSwiggy, "555", true)

	assert.Nil(t, res.EmptiedGroup, "moving within the same group never flags it")
	assert.Equal(t, 1, ownerCount(t, svc, "555"))
	assert.Equal(t, "555", res.Group.Platforms[domain.ChannelSwiggy])
	assert.NotContains(t, res.Group.Platforms, domain.ChannelZomato)
}

func TestUniquenessInvariantAcrossOperations(t *testing.T) {
	svc := NewService(newFakeStore())
	a := mustCreate(t, svc, "Cafe One")
	b := mustCreate(t, svc, "Cafe Two")
	c := mustCreate(t, svc, "Cafe Three")

	mustAssign(t, svc, a.ID, domain.ChannelZomato, "p1", false)
	mustAssign(t, svc, a.ID, domain.ChannelSwiggy, "p2", false)
	mustAssign(t, svc, b.ID, domain.ChannelZomato, "p3", false)
	mustAssign(t, svc, c.ID, domain.ChannelTakeaway, "p4", false)
	mustAssign(t, svc, b.ID, domain.ChannelTakeaway, "p1", true)

	_, _, err := svc.MergeGroups(context.Background(), user, a.ID, []string{b.ID})
	require.NoError(t, err)
	_, err = svc.DeleteGroup(context.Background(), user, c.ID, false)
	require.NoError(t, err)

	for _, pid := range []string{"p1", "p2", "p3"} {
		assert.LessOrEqual(t, ownerCount(t, svc, pid), 1, "platform id %s owned more than once", pid)
	}
}

func TestDetectDuplicates(t *testing.T) {
	svc := NewService(newFakeStore())
	a := mustCreate(t, svc, "Spice Villa 1")
	b := mustCreate(t, svc, "spice  villa 2")
	c := mustCreate(t, svc, "Spice Villa")
	d := mustCreate(t, svc, "Other Place")

	mustAssign(t, svc, a.ID, domain.ChannelZomato, "z1", false)
	mustAssign(t, svc, b.ID, domain.ChannelSwiggy, "s1", false)
	// c has two slots: excluded from the heuristic even though the name matches.
	mustAssign(t, svc, c.ID, domain.ChannelZomato, "z2", false)
	mustAssign(t, svc, c.ID, domain.ChannelSwiggy, "s2", false)
	mustAssign(t, svc, d.ID, domain.ChannelTakeaway, "t1", false)

	buckets, err := svc.DetectDuplicates(context.Background(), user)
	require.NoError(t, err)

	require.Len(t, buckets, 1)
	assert.Equal(t, "spice villa", buckets[0].Key)
	require.Len(t, buckets[0].Groups, 2)

	// Candidates only: nothing was merged.
	groups, err := svc.ListGroups(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, groups, 4)
}

func TestMergeGroupsReportsDiscardedCollisions(t *testing.T) {
	svc := NewService(newFakeStore())
	target := mustCreate(t, svc, "Main")
	src := mustCreate(t, svc, "Dup")

	mustAssign(t, svc, target.ID, domain.ChannelZomato, "keep", false)
	mustAssign(t, svc, src.ID, domain.ChannelZomato, "lose", false)
	mustAssign(t, svc, src.ID, domain.ChannelSwiggy, "moved", false)

	result, warning, err := svc.MergeGroups(context.Background(), user, target.ID, []string{src.ID})
	require.NoError(t, err)
	assert.Empty(t, warning)

	assert.Equal(t, "keep", result.Target.Platforms[domain.ChannelZomato], "target's slot wins")
	assert.Equal(t, "moved", result.Target.Platforms[domain.ChannelSwiggy])
	require.Len(t, result.Discarded, 1)
	assert.Equal(t, "lose", result.Discarded[0].PlatformID)
	assert.Equal(t, "Dup", result.Discarded[0].GroupName)
	assert.Equal(t, domain.ChannelZomato, result.Discarded[0].Channel)

	groups, err := svc.ListGroups(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, groups, 1, "source deleted after merge")
}

func TestMergeGroupsRejectsTargetInSources(t *testing.T) {
	svc := NewService(newFakeStore())
	target := mustCreate(t, svc, "Main")

	_, _, err := svc.MergeGroups(context.Background(), user, target.ID, []string{target.ID})
	assert.ErrorIs(t, err, constants.ErrMergeTargetInSources)
}

func TestDeleteGroupOnlyIfEmpty(t *testing.T) {
	svc := NewService(newFakeStore())
	group := mustCreate(t, svc, "Busy Place")
	mustAssign(t, svc, group.ID, domain.ChannelZomato, "z9", false)

	_, err := svc.DeleteGroup(context.Background(), user, group.ID, true)
	assert.ErrorIs(t, err, constants.ErrGroupNotEmpty)

	_, err = svc.DeleteGroup(context.Background(), user, group.ID, false)
	require.NoError(t, err)

	groups, err := svc.ListGroups(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestSaveFailureKeepsLocalState(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)
	group := mustCreate(t, svc, "Flaky Sync")

	st.saveErr = errors.New("store down")

	_, warning, err := svc.AssignPlatformID(context.Background(), user, group.ID, domain.ChannelZomato, "z1", false)
	require.NoError(t, err, "a failed sync is a warning, not an error")
	assert.Equal(t, SyncWarning, warning)

	// Local collection stays the interim source of truth.
	groups, err := svc.ListGroups(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "z1", groups[0].Platforms[domain.ChannelZomato])
}

func TestListGroupsReturnsDetachedSnapshots(t *testing.T) {
	svc := NewService(newFakeStore())
	group := mustCreate(t, svc, "Snapshot Test")
	mustAssign(t, svc, group.ID, domain.ChannelZomato, "z1", false)

	snapshot := getGroup(t, svc, group.ID)
	snapshot.Platforms[domain.ChannelSwiggy] = "tampered"

	assert.NotContains(t, getGroup(t, svc, group.ID).Platforms, domain.ChannelSwiggy,
		"mutating a returned group must not leak into the service")
}

// Confirmed moves mutate platform maps while readers range over their
// snapshots. Run with the race detector enabled.
func TestConcurrentListAndAssign(t *testing.T) {
	svc := NewService(newFakeStore())
	a := mustCreate(t, svc, "Racer A")
	b := mustCreate(t, svc, "Racer B")
	mustAssign(t, svc, a.ID, domain.ChannelZomato, "shared", false)

	const iterations = 200
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		targets := []string{b.ID, a.ID}
		for i := 0; i < iterations; i++ {
			_, _, err := svc.AssignPlatformID(context.Background(), user, targets[i%2], domain.ChannelZomato, "shared", true)
			assert.NoError(t, err)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			groups, err := svc.ListGroups(context.Background(), user)
			assert.NoError(t, err)
			for _, g := range groups {
				for range g.Platforms {
				}
			}
		}
	}()

	wg.Wait()
	assert.Equal(t, 1, ownerCount(t, svc, "shared"))
}
