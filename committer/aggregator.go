package committer

import "github.com/relab/dagbft"

// StakeAggregator accumulates stake contributed by distinct authorities and
// reports when a threshold is crossed. Each authority is counted at most once,
// so a Byzantine authority cannot inflate the tally by contributing twice.
//
// All threshold comparisons in the commit rule go through this type: blame
// counting, leader support, and certificate counting all use the same
// aggregation, which keeps the safety argument uniform.
type StakeAggregator struct {
	committee *dagbft.Committee
	threshold dagbft.Stake
	seen      map[dagbft.AuthorityIndex]struct{}
	stake     dagbft.Stake
}

// NewQuorumAggregator returns an aggregator with the committee's quorum threshold.
func NewQuorumAggregator(committee *dagbft.Committee) *StakeAggregator {
	return newAggregator(committee, committee.QuorumThreshold())
}

// NewValidityAggregator returns an aggregator with the committee's validity threshold.
func NewValidityAggregator(committee *dagbft.Committee) *StakeAggregator {
	return newAggregator(committee, committee.ValidityThreshold())
}

func newAggregator(committee *dagbft.Committee, threshold dagbft.Stake) *StakeAggregator {
	return &StakeAggregator{
		committee: committee,
		threshold: threshold,
		seen:      make(map[dagbft.AuthorityIndex]struct{}),
	}
}

// Add adds the authority's stake to the tally and reports whether the tally now
// meets the threshold. Adding an authority that was already counted is a no-op
// that returns the current threshold state.
func (a *StakeAggregator) Add(authority dagbft.AuthorityIndex) bool {
	if _, ok := a.seen[authority]; !ok {
		a.seen[authority] = struct{}{}
		a.stake += a.committee.Stake(authority)
	}
	return a.stake >= a.threshold
}

// Stake returns the cumulative stake counted so far.
func (a *StakeAggregator) Stake() dagbft.Stake {
	return a.stake
}
