package committer

import (
	"github.com/relab/dagbft"
	"github.com/relab/dagbft/leaderrotation"
	"github.com/relab/dagbft/logging"
)

// UniversalCommitter composes multiple BaseCommitter instances: one per round
// offset when pipelining is enabled, so that every round is some instance's
// leader round, and one per leader offset when several authorities lead the
// same round. It drives them in round order and assembles the global decided
// leader sequence.
type UniversalCommitter struct {
	dag        DAG
	committers []*BaseCommitter
	logger     logging.Logger
}

// TryDecide returns the longest sequence of decided leaders after lastDecided,
// in round order. It walks candidate leader rounds from the highest round that
// can have a decision down to lastDecided, trying the direct rule first and
// falling back to the indirect rule using the later decisions accumulated in
// the same pass. The sequence ends just before the first still-undecided
// leader: later decided slots cannot be released until the gap resolves.
//
// Calling TryDecide again with the same lastDecided and an unchanged DAG
// returns the same sequence; a grown DAG can only extend it.
func (u *UniversalCommitter) TryDecide(lastDecided dagbft.Slot) []dagbft.LeaderStatus {
	// Decisions require a full wave, so the last candidate leader round is two
	// rounds below the highest round in the DAG.
	highestRound := u.dag.HighestRound()
	if highestRound < 2 || highestRound-2 < lastDecided.Round {
		return nil
	}

	// Later rounds must be decided first: they are the anchors the indirect
	// rule consults for earlier rounds.
	var leaders []dagbft.LeaderStatus
outer:
	for round := highestRound - 2; ; round-- {
		for i := len(u.committers) - 1; i >= 0; i-- {
			committer := u.committers[i]
			slot, ok := committer.ElectLeader(round)
			if !ok {
				continue
			}
			if slot == lastDecided {
				break outer
			}
			status := committer.TryDirectDecide(slot)
			if !status.IsDecided() {
				status = committer.TryIndirectDecide(slot, leaders)
			}
			u.logger.Debugf("[%s] decided %s", committer, status)
			leaders = append([]dagbft.LeaderStatus{status}, leaders...)
		}
		if round <= lastDecided.Round || round == 0 {
			break
		}
	}

	// the decided sequence is the longest decided prefix, without genesis
	var sequence []dagbft.LeaderStatus
	for _, status := range leaders {
		if status.Round() == 0 {
			continue
		}
		if !status.IsDecided() {
			break
		}
		sequence = append(sequence, status)
	}
	return sequence
}

// GetLeaders returns the authorities expected to lead the given round,
// in committer order.
func (u *UniversalCommitter) GetLeaders(round dagbft.Round) []dagbft.AuthorityIndex {
	var authorities []dagbft.AuthorityIndex
	for _, committer := range u.committers {
		if slot, ok := committer.ElectLeader(round); ok {
			authorities = append(authorities, slot.Author)
		}
	}
	return authorities
}

// Committers returns the composed BaseCommitter instances.
// Callers use it to schedule when to query each instance.
func (u *UniversalCommitter) Committers() []*BaseCommitter {
	return u.committers
}

// UniversalCommitterBuilder constructs a UniversalCommitter.
type UniversalCommitterBuilder struct {
	committee       *dagbft.Committee
	dag             DAG
	leaderRotation  leaderrotation.LeaderRotation
	waveLength      uint32
	numberOfLeaders uint32
	pipelined       bool
}

// NewBuilder returns a builder with a single non-pipelined, single-leader
// committer instance of the minimum wave length.
func NewBuilder(committee *dagbft.Committee, dag DAG, rotation leaderrotation.LeaderRotation) *UniversalCommitterBuilder {
	return &UniversalCommitterBuilder{
		committee:       committee,
		dag:             dag,
		leaderRotation:  rotation,
		waveLength:      MinWaveLength,
		numberOfLeaders: 1,
	}
}

// WithWaveLength sets the wave length of all committer instances.
func (b *UniversalCommitterBuilder) WithWaveLength(waveLength uint32) *UniversalCommitterBuilder {
	b.waveLength = waveLength
	return b
}

// WithPipeline enables one committer instance per round offset,
// making every round a leader round of some instance.
func (b *UniversalCommitterBuilder) WithPipeline(pipelined bool) *UniversalCommitterBuilder {
	b.pipelined = pipelined
	return b
}

// WithNumberOfLeaders sets how many authorities lead each leader round.
func (b *UniversalCommitterBuilder) WithNumberOfLeaders(n uint32) *UniversalCommitterBuilder {
	b.numberOfLeaders = n
	return b
}

// Build creates the committer instances described by the builder.
func (b *UniversalCommitterBuilder) Build() *UniversalCommitter {
	roundOffsets := uint32(1)
	if b.pipelined {
		roundOffsets = b.waveLength
	}
	var committers []*BaseCommitter
	for roundOffset := uint32(0); roundOffset < roundOffsets; roundOffset++ {
		for leaderOffset := uint32(0); leaderOffset < b.numberOfLeaders; leaderOffset++ {
			committers = append(committers, New(b.committee, b.dag, b.leaderRotation, Options{
				WaveLength:   b.waveLength,
				LeaderOffset: leaderOffset,
				RoundOffset:  roundOffset,
			}))
		}
	}
	return &UniversalCommitter{
		dag:        b.dag,
		committers: committers,
		logger:     logging.New("committer"),
	}
}
