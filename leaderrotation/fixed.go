package leaderrotation

import "github.com/relab/dagbft"

type fixed struct {
	leader dagbft.AuthorityIndex
}

// GetLeader returns the configured authority regardless of round.
func (f fixed) GetLeader(_ dagbft.Round, _ uint32) dagbft.AuthorityIndex {
	return f.leader
}

// NewFixed returns a new fixed-leader leader rotation implementation.
func NewFixed(leader dagbft.AuthorityIndex) LeaderRotation {
	return fixed{leader}
}
