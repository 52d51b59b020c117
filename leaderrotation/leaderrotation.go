// Package leaderrotation provides the leader election policies consumed by the committer.
package leaderrotation

import (
	"fmt"

	"github.com/relab/dagbft"
	"github.com/relab/dagbft/modules"
)

// LeaderRotation decides which authority leads a given round.
// The policy is opaque to the committer; it only requires that all honest nodes
// use the same policy so they elect the same leaders.
type LeaderRotation interface {
	// GetLeader returns the authority that leads the given round.
	// The leader offset selects among multiple leaders of the same round
	// in multi-leader configurations.
	GetLeader(round dagbft.Round, leaderOffset uint32) dagbft.AuthorityIndex
}

// Builder constructs a LeaderRotation for a committee.
// Implementations register a Builder with the modules registry.
type Builder func(committee *dagbft.Committee) LeaderRotation

// New constructs the named leader rotation policy for the given committee.
func New(name string, committee *dagbft.Committee) (LeaderRotation, error) {
	builder, ok := modules.Get[Builder](name)
	if !ok {
		return nil, fmt.Errorf("unknown leader rotation policy %q", name)
	}
	return builder(committee), nil
}
