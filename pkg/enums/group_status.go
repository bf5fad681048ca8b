package enums

import "fmt"

// GroupStatus is the lifecycle status of a grading group (shipping batch).
type GroupStatus string

const (
	GroupStatusDraft       GroupStatus = "draft"
	GroupStatusReadyToShip GroupStatus = "ready_to_ship"
	GroupStatusAtPSA       GroupStatus = "at_psa"
	GroupStatusReturned    GroupStatus = "returned"
	GroupStatusClosed      GroupStatus = "closed"
)

// GroupStatusOrder is the total order over group statuses. Index is rank.
var GroupStatusOrder = []GroupStatus{
	GroupStatusDraft,
	GroupStatusReadyToShip,
	GroupStatusAtPSA,
	GroupStatusReturned,
	GroupStatusClosed,
}

var groupStatusRanks = buildGroupRanks()

func buildGroupRanks() map[GroupStatus]int {
	ranks := make(map[GroupStatus]int, len(GroupStatusOrder))
	for i, status := range GroupStatusOrder {
		ranks[status] = i
	}
	return ranks
}

// String implements fmt.Stringer.
func (g GroupStatus) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GroupStatus.
func (g GroupStatus) IsValid() bool {
	_, ok := groupStatusRanks[g]
	return ok
}

// Rank returns the integer position of the status in the group progression.
func (g GroupStatus) Rank() (int, error) {
	rank, ok := groupStatusRanks[g]
	if !ok {
		return 0, fmt.Errorf("unknown group status %q", g)
	}
	return rank, nil
}

// IsEditable reports whether group membership may still be mutated.
func (g GroupStatus) IsEditable() bool {
	return g == GroupStatusDraft || g == GroupStatusReadyToShip
}

// ParseGroupStatus converts raw input into a GroupStatus.
func ParseGroupStatus(value string) (GroupStatus, error) {
	status := GroupStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid group status %q", value)
	}
	return status, nil
}
