package committer

import "github.com/relab/dagbft"

// DAG is the read-only view of the block DAG that the commit rule consumes.
// It is implemented by blockdag.DAG; the committer holds only a non-owning
// handle, shared with the writer that appends verified blocks.
type DAG interface {
	// Get retrieves a block by its reference.
	Get(ref dagbft.BlockRef) (*dagbft.Block, bool)
	// UncommittedBlocksAtSlot returns all blocks at the given slot.
	UncommittedBlocksAtSlot(slot dagbft.Slot) []*dagbft.Block
	// UncommittedBlocksAtRound returns all blocks at the given round.
	UncommittedBlocksAtRound(round dagbft.Round) []*dagbft.Block
	// AncestorsAtRound returns all blocks at the given round that are causal
	// ancestors of from.
	AncestorsAtRound(from *dagbft.Block, round dagbft.Round) []*dagbft.Block
	// HighestRound returns the highest round for which the DAG holds a block.
	HighestRound() dagbft.Round
	// GCEnabled reports whether garbage collection is enabled.
	GCEnabled() bool
	// GCRound returns the pruning watermark; blocks at or below it may be absent.
	GCRound() dagbft.Round
}
