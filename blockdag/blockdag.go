// Package blockdag provides the shared store for the block DAG.
//
// The store is append-only: blocks are added by a single external writer as they
// are verified, and read concurrently by the committer instances. All queries
// take their own read lock, so a query observes the DAG as of lock acquisition.
package blockdag

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/relab/dagbft"
	"github.com/relab/dagbft/logging"
)

// DAG stores verified blocks indexed by reference, round, and slot.
type DAG struct {
	committee *dagbft.Committee
	logger    logging.Logger
	gcEnabled bool

	mut          sync.RWMutex
	blocks       map[dagbft.BlockRef]*dagbft.Block
	byRound      map[dagbft.Round][]*dagbft.Block
	bySlot       map[dagbft.Slot][]*dagbft.Block
	highestRound dagbft.Round
	gcRound      dagbft.Round
}

// Option configures a DAG.
type Option func(*DAG)

// WithGC enables garbage collection of pruned rounds.
// With GC enabled, blocks at or below the GC round may legitimately be absent.
func WithGC() Option {
	return func(d *DAG) {
		d.gcEnabled = true
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger logging.Logger) Option {
	return func(d *DAG) {
		d.logger = logger
	}
}

// New creates a DAG seeded with the genesis blocks for the given committee.
func New(committee *dagbft.Committee, opts ...Option) *DAG {
	d := &DAG{
		committee: committee,
		logger:    logging.New("blockdag"),
		blocks:    make(map[dagbft.BlockRef]*dagbft.Block),
		byRound:   make(map[dagbft.Round][]*dagbft.Block),
		bySlot:    make(map[dagbft.Slot][]*dagbft.Block),
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, block := range Genesis(committee) {
		d.insert(block)
	}
	return d
}

// Add stores the given verified blocks. Each block is validated against the
// current DAG; failures are reported per block and do not prevent the remaining
// blocks from being stored. Adding a block twice is a no-op.
func (d *DAG) Add(blocks ...*dagbft.Block) (err error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	for _, block := range blocks {
		if addErr := d.add(block); addErr != nil {
			err = multierr.Append(err, addErr)
		}
	}
	return err
}

func (d *DAG) add(block *dagbft.Block) error {
	if block.Round() == 0 {
		return fmt.Errorf("block %s: genesis blocks cannot be added", block.Reference())
	}
	if _, ok := d.blocks[block.Reference()]; ok {
		return nil
	}
	if int(block.Author()) >= d.committee.Size() {
		return fmt.Errorf("block %s: author not in committee", block.Reference())
	}
	if len(block.StrongAncestors()) == 0 {
		return fmt.Errorf("block %s: no strong ancestors", block.Reference())
	}
	for _, ancestor := range block.StrongAncestors() {
		if ancestor.Round != block.Round()-1 {
			return fmt.Errorf("block %s: strong ancestor %s is not at the preceding round", block.Reference(), ancestor)
		}
		if err := d.checkAncestor(block, ancestor); err != nil {
			return err
		}
	}
	for _, ancestor := range block.WeakAncestors() {
		if ancestor.Round >= block.Round() {
			return fmt.Errorf("block %s: weak ancestor %s is not at a lower round", block.Reference(), ancestor)
		}
		if err := d.checkAncestor(block, ancestor); err != nil {
			return err
		}
	}
	d.insert(block)
	return nil
}

func (d *DAG) checkAncestor(block *dagbft.Block, ancestor dagbft.BlockRef) error {
	if _, ok := d.blocks[ancestor]; ok {
		return nil
	}
	if d.gcEnabled && ancestor.Round <= d.gcRound {
		// pruned history; the reference is allowed to dangle
		return nil
	}
	return fmt.Errorf("block %s: missing ancestor %s", block.Reference(), ancestor)
}

func (d *DAG) insert(block *dagbft.Block) {
	d.blocks[block.Reference()] = block
	d.byRound[block.Round()] = append(d.byRound[block.Round()], block)
	d.bySlot[block.Slot()] = append(d.bySlot[block.Slot()], block)
	if block.Round() > d.highestRound {
		d.highestRound = block.Round()
	}
}

// Get retrieves a block by its reference.
func (d *DAG) Get(ref dagbft.BlockRef) (*dagbft.Block, bool) {
	d.mut.RLock()
	defer d.mut.RUnlock()

	block, ok := d.blocks[ref]
	return block, ok
}

// UncommittedBlocksAtRound returns all blocks at the given round,
// ordered by author and digest.
func (d *DAG) UncommittedBlocksAtRound(round dagbft.Round) []*dagbft.Block {
	d.mut.RLock()
	defer d.mut.RUnlock()

	return sortBlocks(append([]*dagbft.Block(nil), d.byRound[round]...))
}

// UncommittedBlocksAtSlot returns all blocks at the given slot.
// More than one block can occupy a slot only if its authority equivocated.
func (d *DAG) UncommittedBlocksAtSlot(slot dagbft.Slot) []*dagbft.Block {
	d.mut.RLock()
	defer d.mut.RUnlock()

	return sortBlocks(append([]*dagbft.Block(nil), d.bySlot[slot]...))
}

// AncestorsAtRound returns all blocks at the given round that are causal
// ancestors of from. The walk is iterative to bound stack depth on adversarial
// inputs.
func (d *DAG) AncestorsAtRound(from *dagbft.Block, round dagbft.Round) []*dagbft.Block {
	d.mut.RLock()
	defer d.mut.RUnlock()

	var found []*dagbft.Block
	visited := make(map[dagbft.BlockRef]bool)
	worklist := append([]dagbft.BlockRef(nil), from.Ancestors()...)
	for len(worklist) > 0 {
		ref := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if visited[ref] || ref.Round < round {
			continue
		}
		visited[ref] = true
		block, ok := d.blocks[ref]
		if !ok {
			if d.gcEnabled && ref.Round <= d.gcRound {
				continue
			}
			d.logger.Panicf("block not found in storage: %s", ref)
		}
		if ref.Round == round {
			found = append(found, block)
			continue
		}
		worklist = append(worklist, block.Ancestors()...)
	}
	return sortBlocks(found)
}

// HighestRound returns the highest round for which the DAG holds a block.
func (d *DAG) HighestRound() dagbft.Round {
	d.mut.RLock()
	defer d.mut.RUnlock()

	return d.highestRound
}

// GCEnabled reports whether garbage collection is enabled.
func (d *DAG) GCEnabled() bool {
	return d.gcEnabled
}

// GCRound returns the current pruning watermark.
// Blocks at or below this round may have been evicted from the store.
func (d *DAG) GCRound() dagbft.Round {
	d.mut.RLock()
	defer d.mut.RUnlock()

	return d.gcRound
}

// SetGCRound advances the pruning watermark and evicts blocks at or below it.
// The watermark never moves backwards. SetGCRound panics if GC is not enabled.
func (d *DAG) SetGCRound(round dagbft.Round) {
	if !d.gcEnabled {
		d.logger.Panicf("SetGCRound(%d) called with GC disabled", round)
	}

	d.mut.Lock()
	defer d.mut.Unlock()

	if round <= d.gcRound {
		return
	}
	for r := d.gcRound; r <= round; r++ {
		for _, block := range d.byRound[r] {
			delete(d.blocks, block.Reference())
			delete(d.bySlot, block.Slot())
		}
		delete(d.byRound, r)
	}
	d.gcRound = round
	d.logger.Debugf("pruned rounds up to %d", round)
}

func sortBlocks(blocks []*dagbft.Block) []*dagbft.Block {
	sort.Slice(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.Author() != b.Author() {
			return a.Author() < b.Author()
		}
		ad, bd := a.Digest(), b.Digest()
		for k := range ad {
			if ad[k] != bd[k] {
				return ad[k] < bd[k]
			}
		}
		return false
	})
	return blocks
}
