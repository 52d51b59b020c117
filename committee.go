package dagbft

import "fmt"

// Committee is the stake table for an epoch. It is immutable: all nodes must agree
// on the committee for the commit rule to be safe, so it is created once per epoch
// and shared by read-only reference.
type Committee struct {
	stakes     []Stake
	totalStake Stake
}

// NewCommittee creates a committee from the stake of each authority.
// The authority at index i of the slice gets AuthorityIndex(i).
func NewCommittee(stakes []Stake) *Committee {
	if len(stakes) == 0 {
		panic("dagbft: empty committee")
	}
	var total Stake
	for i, stake := range stakes {
		if stake == 0 {
			panic(fmt.Sprintf("dagbft: authority %d has zero stake", i))
		}
		total += stake
	}
	return &Committee{
		stakes:     append([]Stake(nil), stakes...),
		totalStake: total,
	}
}

// NewEqualStakeCommittee creates a committee of n authorities with one unit of stake each.
func NewEqualStakeCommittee(n int) *Committee {
	stakes := make([]Stake, n)
	for i := range stakes {
		stakes[i] = 1
	}
	return NewCommittee(stakes)
}

// Size returns the number of authorities in the committee.
func (c *Committee) Size() int {
	return len(c.stakes)
}

// Stake returns the voting weight of the given authority.
func (c *Committee) Stake(authority AuthorityIndex) Stake {
	return c.stakes[authority]
}

// TotalStake returns the sum of all authorities' stake.
func (c *Committee) TotalStake() Stake {
	return c.totalStake
}

// QuorumThreshold returns the minimum aggregate stake that proves a majority of
// honest authorities participated (the 2f+1 equivalent for weighted stake).
func (c *Committee) QuorumThreshold() Stake {
	return 2*c.totalStake/3 + 1
}

// ValidityThreshold returns the minimum aggregate stake that proves at least one
// honest authority participated (the f+1 equivalent for weighted stake).
func (c *Committee) ValidityThreshold() Stake {
	return c.totalStake/3 + 1
}

// ReachedQuorum reports whether the given stake meets the quorum threshold.
func (c *Committee) ReachedQuorum(stake Stake) bool {
	return stake >= c.QuorumThreshold()
}

// ReachedValidity reports whether the given stake meets the validity threshold.
func (c *Committee) ReachedValidity(stake Stake) bool {
	return stake >= c.ValidityThreshold()
}

// Authorities calls f for each authority in the committee, in index order.
func (c *Committee) Authorities(f func(AuthorityIndex, Stake)) {
	for i, stake := range c.stakes {
		f(AuthorityIndex(i), stake)
	}
}
