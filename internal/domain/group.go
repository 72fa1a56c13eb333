package domain

import "time"

// RestaurantGroup is the user-defined logical restaurant that groups
// platform ids across channels for one real-world location.
type RestaurantGroup struct {
	ID        string             `json:"id" db:"id"`
	Name      string             `json:"name" db:"name"`
	Platforms map[Channel]string `json:"platforms" db:"platforms"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
}

// Clone returns a copy whose platform map is detached from the
// original, so readers can hold it without synchronizing with editors.
func (g *RestaurantGroup) Clone() *RestaurantGroup {
	clone := *g
	clone.Platforms = make(map[Channel]string, len(g.Platforms))
	for channel, pid := range g.Platforms {
		clone.Platforms[channel] = pid
	}
	return &clone
}

// Empty reports whether the group has no platform id left in any slot.
func (g *RestaurantGroup) Empty() bool {
	for _, pid := range g.Platforms {
		if pid != "" {
			return false
		}
	}
	return true
}

// AssignedCount returns the number of non-empty platform slots.
func (g *RestaurantGroup) AssignedCount() int {
	n := 0
	for _, pid := range g.Platforms {
		if pid != "" {
			n++
		}
	}
	return n
}

// PlatformOwner identifies the (group, channel) slot currently holding a
// platform id.
type PlatformOwner struct {
	GroupID   string  `json:"groupId"`
	GroupName string  `json:"groupName"`
	Channel   Channel `json:"channel"`
}

// AssignResult reports the outcome of a confirmed platform id assignment.
// EmptiedGroup is set when the move left the previous owner with no
// platform ids; the group is flagged, never auto-deleted.
type AssignResult struct {
	Group        *RestaurantGroup `json:"group"`
	MovedFrom    *PlatformOwner   `json:"movedFrom,omitempty"`
	EmptiedGroup *RestaurantGroup `json:"emptiedGroup,omitempty"`
}

// DuplicateBucket is a set of single-platform groups whose normalized
// names collide. Merge candidates only; the caller must confirm.
type DuplicateBucket struct {
	Key    string             `json:"key"`
	Groups []*RestaurantGroup `json:"groups"`
}

// DiscardedAssignment is a source platform id dropped during a merge
// because the target already held that channel slot.
type DiscardedAssignment struct {
	GroupID    string  `json:"groupId"`
	GroupName  string  `json:"groupName"`
	Channel    Channel `json:"channel"`
	PlatformID string  `json:"platformId"`
}

// MergeResult is the outcome of merging source groups into a target.
type MergeResult struct {
	Target    *RestaurantGroup      `json:"target"`
	Discarded []DiscardedAssignment `json:"discarded,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
