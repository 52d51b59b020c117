// Package committer implements the wave-based commit rule over the block DAG.
//
// The DAG is divided into waves of waveLength consecutive rounds. The first
// round of a wave is its leader round, the last its decision round. A block at
// the round after the leader round is a vote for a leader block if it causally
// supports it, and a block at the decision round is a certificate for a leader
// block if its ancestors include a quorum of votes. A leader with a quorum of
// certificates at its decision round is committed directly; a leader that a
// quorum of voters provably never saw is skipped directly. Everything else
// stays undecided until a later committed leader (an anchor) settles it
// indirectly through its causal history.
//
// A BaseCommitter decides a single leader slot per wave. Multiple instances
// with staggered round offsets (pipelining) and distinct leader offsets
// (multiple leaders per round) are composed by the UniversalCommitter.
package committer

import (
	"fmt"

	"github.com/relab/dagbft"
	"github.com/relab/dagbft/leaderrotation"
	"github.com/relab/dagbft/logging"
)

// MinWaveLength is the shortest usable wave: a wave needs at least a leader
// round, a voting round, and a decision round.
const MinWaveLength = 3

// Options configures a single BaseCommitter instance.
type Options struct {
	// WaveLength is the number of rounds in a wave. Must be at least MinWaveLength.
	WaveLength uint32
	// LeaderOffset selects among the leaders of a round in multi-leader configurations.
	LeaderOffset uint32
	// RoundOffset staggers this instance's waves for pipelining.
	// Must be less than WaveLength.
	RoundOffset uint32
}

// BaseCommitter decides whether the leader of a single slot per wave is
// committed, skipped, or undecided. Its methods are pure, synchronous,
// read-only functions of the current DAG; it holds no mutable state, so a
// single instance may be queried from multiple goroutines.
type BaseCommitter struct {
	committee      *dagbft.Committee
	dag            DAG
	leaderRotation leaderrotation.LeaderRotation
	logger         logging.Logger
	opts           Options
}

// New returns a BaseCommitter reading from the given DAG.
// New panics if the options are inconsistent.
func New(committee *dagbft.Committee, dag DAG, rotation leaderrotation.LeaderRotation, opts Options) *BaseCommitter {
	if opts.WaveLength < MinWaveLength {
		panic(fmt.Sprintf("committer: wave length %d is below the minimum %d", opts.WaveLength, MinWaveLength))
	}
	if opts.RoundOffset >= opts.WaveLength {
		panic(fmt.Sprintf("committer: round offset %d is not below the wave length %d", opts.RoundOffset, opts.WaveLength))
	}
	return &BaseCommitter{
		committee:      committee,
		dag:            dag,
		leaderRotation: rotation,
		logger:         logging.New("committer"),
		opts:           opts,
	}
}

func (c *BaseCommitter) String() string {
	return fmt.Sprintf("Committer-L%d-R%d", c.opts.LeaderOffset, c.opts.RoundOffset)
}

// WaveNumber returns the wave that the given round belongs to.
func (c *BaseCommitter) WaveNumber(round dagbft.Round) dagbft.WaveNumber {
	if round < dagbft.Round(c.opts.RoundOffset) {
		return 0
	}
	return dagbft.WaveNumber((uint32(round) - c.opts.RoundOffset) / c.opts.WaveLength)
}

// LeaderRound returns the first round of the given wave.
func (c *BaseCommitter) LeaderRound(wave dagbft.WaveNumber) dagbft.Round {
	return dagbft.Round(uint32(wave)*c.opts.WaveLength + c.opts.RoundOffset)
}

// DecisionRound returns the last round of the given wave.
func (c *BaseCommitter) DecisionRound(wave dagbft.WaveNumber) dagbft.Round {
	return dagbft.Round(uint32(wave)*c.opts.WaveLength + c.opts.WaveLength - 1 + c.opts.RoundOffset)
}

// ElectLeader returns the leader slot this committer instance decides at the
// given round. It returns false if the round is not one of this instance's
// leader rounds.
func (c *BaseCommitter) ElectLeader(round dagbft.Round) (dagbft.Slot, bool) {
	wave := c.WaveNumber(round)
	if c.LeaderRound(wave) != round {
		return dagbft.Slot{}, false
	}
	return dagbft.NewSlot(round, c.leaderRotation.GetLeader(round, c.opts.LeaderOffset)), true
}

// TryDirectDecide applies the direct decision rule to the given leader slot:
// Skip if a quorum of voting-round blocks ignore the leader, Commit if one
// leader block has a quorum of certificates at the decision round, and
// Undecided otherwise.
func (c *BaseCommitter) TryDirectDecide(leader dagbft.Slot) dagbft.LeaderStatus {
	// A quorum of blame proves that no certificate for the leader can ever form.
	votingRound := leader.Round + 1
	if c.enoughLeaderBlame(votingRound, leader.Author) {
		return dagbft.NewSkip(leader)
	}

	// There can be more than one leader block only if the leader equivocated.
	wave := c.WaveNumber(leader.Round)
	decisionRound := c.DecisionRound(wave)
	var supported []*dagbft.Block
	for _, leaderBlock := range c.dag.UncommittedBlocksAtSlot(leader) {
		if c.enoughLeaderSupport(decisionRound, leaderBlock) {
			supported = append(supported, leaderBlock)
		}
	}
	switch len(supported) {
	case 0:
		return dagbft.NewUndecided(leader)
	case 1:
		return dagbft.NewCommit(supported[0])
	default:
		c.logger.Panicf("[%s] more than one certified block for %s", c, leader)
		return dagbft.LeaderStatus{} // unreachable
	}
}

// TryIndirectDecide applies the indirect decision rule to the given leader
// slot. The laterLeaders sequence must hold the statuses of leader slots at
// rounds after the given slot, in ascending round order; the caller maintains
// it as decisions accumulate.
func (c *BaseCommitter) TryIndirectDecide(leader dagbft.Slot, laterLeaders []dagbft.LeaderStatus) dagbft.LeaderStatus {
	// The anchor is the first committed leader with a round strictly past this
	// leader's own decision round.
	for _, anchor := range laterLeaders {
		if anchor.Round() < leader.Round+dagbft.Round(c.opts.WaveLength) {
			continue
		}
		switch {
		case anchor.IsCommit():
			return c.decideLeaderFromAnchor(anchor.Block(), leader)
		case anchor.IsSkip():
			// a skipped anchor carries no information about this leader
		default:
			// cannot look past an undecided leader without risking inconsistency
			return dagbft.NewUndecided(leader)
		}
	}
	return dagbft.NewUndecided(leader)
}

// decideLeaderFromAnchor decides the leader slot from the causal history of a
// committed anchor block: Commit if some decision-round ancestor of the anchor
// certifies a leader block, Skip otherwise. Since the anchor is already
// committed, any honest path through the DAG reaches the same decision.
func (c *BaseCommitter) decideLeaderFromAnchor(anchor *dagbft.Block, leader dagbft.Slot) dagbft.LeaderStatus {
	wave := c.WaveNumber(leader.Round)
	decisionRound := c.DecisionRound(wave)
	potentialCertificates := c.dag.AncestorsAtRound(anchor, decisionRound)

	var certified []*dagbft.Block
	for _, leaderBlock := range c.dag.UncommittedBlocksAtSlot(leader) {
		// the votes cache is only valid for a single leader block
		allVotes := make(map[dagbft.BlockRef]bool)
		for _, potentialCertificate := range potentialCertificates {
			if c.isCertificate(potentialCertificate, leaderBlock, allVotes) {
				certified = append(certified, leaderBlock)
				break
			}
		}
	}
	switch len(certified) {
	case 0:
		return dagbft.NewSkip(leader)
	case 1:
		return dagbft.NewCommit(certified[0])
	default:
		c.logger.Panicf("[%s] more than one certified block at wave %d for %s", c, wave, leader)
		return dagbft.LeaderStatus{} // unreachable
	}
}

// enoughLeaderBlame reports whether a quorum of distinct authorities proposed a
// block at votingRound without referencing any block by the leader authority.
func (c *BaseCommitter) enoughLeaderBlame(votingRound dagbft.Round, leader dagbft.AuthorityIndex) bool {
	blame := NewQuorumAggregator(c.committee)
	for _, votingBlock := range c.dag.UncommittedBlocksAtRound(votingRound) {
		if referencesAuthor(votingBlock, leader) {
			continue
		}
		c.logger.Debugf("[%s] %s blames leader %s", c, votingBlock.Reference(), leader)
		if blame.Add(votingBlock.Author()) {
			return true
		}
	}
	return false
}

func referencesAuthor(block *dagbft.Block, author dagbft.AuthorityIndex) bool {
	for _, ancestor := range block.Ancestors() {
		if ancestor.Author == author {
			return true
		}
	}
	return false
}

// enoughLeaderSupport reports whether a quorum of distinct authorities
// certified the leader block at the decision round.
func (c *BaseCommitter) enoughLeaderSupport(decisionRound dagbft.Round, leaderBlock *dagbft.Block) bool {
	decisionBlocks := c.dag.UncommittedBlocksAtRound(decisionRound)

	// quickly reject if the decision round cannot muster a quorum at all
	var totalStake dagbft.Stake
	for _, decisionBlock := range decisionBlocks {
		totalStake += c.committee.Stake(decisionBlock.Author())
	}
	if !c.committee.ReachedQuorum(totalStake) {
		return false
	}

	certificates := NewQuorumAggregator(c.committee)
	allVotes := make(map[dagbft.BlockRef]bool)
	for _, decisionBlock := range decisionBlocks {
		if !c.isCertificate(decisionBlock, leaderBlock, allVotes) {
			continue
		}
		c.logger.Debugf("[%s] %s is a certificate for leader %s", c, decisionBlock.Reference(), leaderBlock.Reference())
		if certificates.Add(decisionBlock.Author()) {
			return true
		}
	}
	return false
}

// isCertificate reports whether the ancestors of potentialCertificate include a
// quorum of votes for the leader block. allVotes memoizes vote checks; it must
// only be reused for the same leader block.
func (c *BaseCommitter) isCertificate(potentialCertificate, leaderBlock *dagbft.Block, allVotes map[dagbft.BlockRef]bool) bool {
	votes := NewQuorumAggregator(c.committee)
	for _, ref := range potentialCertificate.Ancestors() {
		vote, ok := allVotes[ref]
		if !ok {
			vote = c.checkVote(ref, leaderBlock)
			allVotes[ref] = vote
		}
		if !vote {
			continue
		}
		c.logger.Debugf("[%s] %s is a vote for leader %s", c, ref, leaderBlock.Reference())
		if votes.Add(ref.Author) {
			return true
		}
	}
	return false
}

func (c *BaseCommitter) checkVote(ref dagbft.BlockRef, leaderBlock *dagbft.Block) bool {
	potentialVote, ok := c.dag.Get(ref)
	if !ok {
		// A missing block is only legitimate when it may have been pruned.
		// Anywhere else it means the storage layer lost a referenced ancestor.
		if !c.dag.GCEnabled() || ref.Round > c.dag.GCRound() {
			c.logger.Panicf("block not found in storage: %s, and is not below gc round %d", ref, c.dag.GCRound())
		}
		return false
	}
	return c.isVote(potentialVote, leaderBlock)
}

// isVote reports whether potentialVote causally supports the leader block at
// its slot.
func (c *BaseCommitter) isVote(potentialVote, leaderBlock *dagbft.Block) bool {
	ref, ok := c.findSupportedBlock(leaderBlock.Slot(), potentialVote)
	return ok && ref == leaderBlock.Reference()
}

// findSupportedBlock walks from's ancestors looking for the unique block that
// from causally supports at the leader slot. Ancestors are visited in their
// fixed order and only the first answer is returned: since an honest author's
// blocks form a chain, two blocks by the same author that share an ancestor
// resolve the slot identically, so an honest chain cannot switch its vote.
//
// The walk uses an explicit stack to bound recursion depth on adversarial DAGs.
func (c *BaseCommitter) findSupportedBlock(leader dagbft.Slot, from *dagbft.Block) (dagbft.BlockRef, bool) {
	if from.Round() < leader.Round {
		return dagbft.BlockRef{}, false
	}
	stack := [][]dagbft.BlockRef{from.Ancestors()}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(*top) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		ref := (*top)[0]
		*top = (*top)[1:]
		if ref.Slot() == leader {
			return ref, true
		}
		// weak links may point to blocks with lower rounds than strong links;
		// those cannot reach the slot
		if ref.Round <= leader.Round {
			continue
		}
		block, ok := c.dag.Get(ref)
		if !ok {
			c.logger.Panicf("block not found in storage: %s", ref)
		}
		stack = append(stack, block.Ancestors())
	}
	return dagbft.BlockRef{}, false
}
