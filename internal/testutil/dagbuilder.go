// Package testutil provides helpers for assembling synthetic block DAGs,
// used by tests and by the simulator.
package testutil

import (
	"fmt"

	"github.com/relab/dagbft"
	"github.com/relab/dagbft/blockdag"
)

// DAGBuilder assembles a block DAG layer by layer. Each layer holds one round
// of blocks; by default every authority proposes a block referencing the entire
// previous layer. Deviations from full connectivity (withheld blocks, omitted
// references, equivocations) are configured per layer.
//
// DAGBuilder panics on malformed layers; it is a test fixture, not a
// production path.
type DAGBuilder struct {
	committee *dagbft.Committee
	dag       *blockdag.DAG
	round     dagbft.Round
	lastRefs  []dagbft.BlockRef
}

// NewDAGBuilder returns a builder appending to the given DAG, starting from
// its genesis layer.
func NewDAGBuilder(committee *dagbft.Committee, dag *blockdag.DAG) *DAGBuilder {
	var refs []dagbft.BlockRef
	for _, block := range blockdag.Genesis(committee) {
		refs = append(refs, block.Reference())
	}
	return &DAGBuilder{
		committee: committee,
		dag:       dag,
		lastRefs:  refs,
	}
}

// Round returns the round of the last persisted layer.
func (b *DAGBuilder) Round() dagbft.Round {
	return b.round
}

// LastReferences returns the references of the last persisted layer.
func (b *DAGBuilder) LastReferences() []dagbft.BlockRef {
	return append([]dagbft.BlockRef(nil), b.lastRefs...)
}

// Layer starts configuring the next layer.
func (b *DAGBuilder) Layer() *LayerBuilder {
	return &LayerBuilder{
		builder:       b,
		skipProposers: make(map[dagbft.AuthorityIndex]bool),
		omitAuthors:   make(map[dagbft.AuthorityIndex]map[dagbft.AuthorityIndex]bool),
		omitRefs:      make(map[dagbft.BlockRef]map[dagbft.AuthorityIndex]bool),
		equivocations: make(map[dagbft.AuthorityIndex]int),
	}
}

// Layers persists fully connected layers up to and including the given round.
func (b *DAGBuilder) Layers(to dagbft.Round) *DAGBuilder {
	for b.round < to {
		b.Layer().Persist()
	}
	return b
}

// LayerBuilder configures a single layer before it is persisted.
type LayerBuilder struct {
	builder       *DAGBuilder
	skipProposers map[dagbft.AuthorityIndex]bool
	omitAuthors   map[dagbft.AuthorityIndex]map[dagbft.AuthorityIndex]bool
	omitRefs      map[dagbft.BlockRef]map[dagbft.AuthorityIndex]bool
	equivocations map[dagbft.AuthorityIndex]int
}

// SkipBlock withholds this layer's block of the given authorities.
func (l *LayerBuilder) SkipBlock(authorities ...dagbft.AuthorityIndex) *LayerBuilder {
	for _, authority := range authorities {
		l.skipProposers[authority] = true
	}
	return l
}

// OmitReferencesTo makes the given proposers omit all previous-layer blocks by
// author from their ancestors. With no proposers given, every proposer omits them.
func (l *LayerBuilder) OmitReferencesTo(author dagbft.AuthorityIndex, proposers ...dagbft.AuthorityIndex) *LayerBuilder {
	l.omitAuthors[author] = proposerSet(proposers)
	return l
}

// OmitReference makes the given proposers omit one specific previous-layer
// block from their ancestors. With no proposers given, every proposer omits it.
func (l *LayerBuilder) OmitReference(ref dagbft.BlockRef, proposers ...dagbft.AuthorityIndex) *LayerBuilder {
	l.omitRefs[ref] = proposerSet(proposers)
	return l
}

// Equivocate makes the given authority propose n distinct blocks in this layer.
func (l *LayerBuilder) Equivocate(authority dagbft.AuthorityIndex, n int) *LayerBuilder {
	l.equivocations[authority] = n
	return l
}

// proposerSet returns the set of proposers an omission applies to;
// nil means all proposers.
func proposerSet(proposers []dagbft.AuthorityIndex) map[dagbft.AuthorityIndex]bool {
	if len(proposers) == 0 {
		return nil
	}
	set := make(map[dagbft.AuthorityIndex]bool, len(proposers))
	for _, p := range proposers {
		set[p] = true
	}
	return set
}

func (l *LayerBuilder) applies(set map[dagbft.AuthorityIndex]bool, proposer dagbft.AuthorityIndex) bool {
	return set == nil || set[proposer]
}

// Persist builds the layer's blocks and adds them to the DAG.
// It returns the round of the new layer.
func (l *LayerBuilder) Persist() dagbft.Round {
	b := l.builder
	round := b.round + 1

	var blocks []*dagbft.Block
	b.committee.Authorities(func(proposer dagbft.AuthorityIndex, _ dagbft.Stake) {
		if l.skipProposers[proposer] {
			return
		}
		var ancestors []dagbft.BlockRef
		for _, ref := range b.lastRefs {
			if set, ok := l.omitAuthors[ref.Author]; ok && l.applies(set, proposer) {
				continue
			}
			if set, ok := l.omitRefs[ref]; ok && l.applies(set, proposer) {
				continue
			}
			ancestors = append(ancestors, ref)
		}
		copies := 1
		if n, ok := l.equivocations[proposer]; ok && n > 1 {
			copies = n
		}
		for i := 0; i < copies; i++ {
			cmd := dagbft.Command(fmt.Sprintf("%d:%d:%d", round, proposer, i))
			blocks = append(blocks, dagbft.NewBlock(round, proposer, ancestors, len(ancestors), cmd))
		}
	})

	if err := b.dag.Add(blocks...); err != nil {
		panic(fmt.Sprintf("testutil: failed to persist layer %d: %v", round, err))
	}

	b.round = round
	b.lastRefs = make([]dagbft.BlockRef, 0, len(blocks))
	for _, block := range blocks {
		b.lastRefs = append(b.lastRefs, block.Reference())
	}
	return round
}
