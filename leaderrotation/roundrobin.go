package leaderrotation

import (
	"github.com/relab/dagbft"
	"github.com/relab/dagbft/modules"
)

func init() {
	modules.Register("round-robin", func() Builder { return NewRoundRobin })
}

type roundRobin struct {
	committee *dagbft.Committee
}

// GetLeader returns the authority that leads the given round.
func (rr roundRobin) GetLeader(round dagbft.Round, leaderOffset uint32) dagbft.AuthorityIndex {
	return dagbft.AuthorityIndex((uint32(round) + leaderOffset) % uint32(rr.committee.Size()))
}

// NewRoundRobin returns a new round-robin leader rotation implementation.
// It cycles through the authorities in index order, ignoring stake.
func NewRoundRobin(committee *dagbft.Committee) LeaderRotation {
	return roundRobin{committee: committee}
}
