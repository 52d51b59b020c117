package dagbft_test

import (
	"testing"

	"github.com/relab/dagbft"
)

func TestBlockDigestDistinguishesContents(t *testing.T) {
	ancestor := dagbft.NewBlock(0, 0, nil, 0, "").Reference()
	base := dagbft.NewBlock(1, 0, []dagbft.BlockRef{ancestor}, 1, "a")

	variants := []*dagbft.Block{
		dagbft.NewBlock(2, 0, []dagbft.BlockRef{ancestor}, 1, "a"),
		dagbft.NewBlock(1, 1, []dagbft.BlockRef{ancestor}, 1, "a"),
		dagbft.NewBlock(1, 0, []dagbft.BlockRef{ancestor}, 0, "a"),
		dagbft.NewBlock(1, 0, []dagbft.BlockRef{ancestor}, 1, "b"),
		dagbft.NewBlock(1, 0, nil, 0, "a"),
	}
	for _, variant := range variants {
		if variant.Digest() == base.Digest() {
			t.Errorf("blocks %s and %s share a digest", base, variant)
		}
	}

	same := dagbft.NewBlock(1, 0, []dagbft.BlockRef{ancestor}, 1, "a")
	if same.Digest() != base.Digest() {
		t.Error("identical blocks have different digests")
	}
}

func TestBlockAncestorPartition(t *testing.T) {
	strong := dagbft.NewBlock(1, 0, nil, 0, "s").Reference()
	weak := dagbft.NewBlock(0, 1, nil, 0, "w").Reference()
	block := dagbft.NewBlock(2, 2, []dagbft.BlockRef{strong, weak}, 1, "")

	if got := block.StrongAncestors(); len(got) != 1 || got[0] != strong {
		t.Errorf("StrongAncestors() = %v, want [%s]", got, strong)
	}
	if got := block.WeakAncestors(); len(got) != 1 || got[0] != weak {
		t.Errorf("WeakAncestors() = %v, want [%s]", got, weak)
	}
	if got := block.Ancestors(); len(got) != 2 || got[0] != strong || got[1] != weak {
		t.Errorf("Ancestors() = %v, want strong links first", got)
	}
}

func TestBlockReferenceRoundTrip(t *testing.T) {
	block := dagbft.NewBlock(3, 1, nil, 0, "cmd")
	ref := block.Reference()
	if ref.Round != 3 || ref.Author != 1 || ref.Digest != block.Digest() {
		t.Errorf("Reference() = %s does not match the block", ref)
	}
	if ref.Slot() != block.Slot() {
		t.Errorf("Reference().Slot() = %s, want %s", ref.Slot(), block.Slot())
	}
	if ref.Slot() != dagbft.NewSlot(3, 1) {
		t.Errorf("Slot() = %s, want %s", ref.Slot(), dagbft.NewSlot(3, 1))
	}
}

func TestNewBlockPanicsOnBadStrongCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewBlock() with numStrong > len(ancestors) did not panic")
		}
	}()
	dagbft.NewBlock(1, 0, nil, 1, "")
}

func TestLeaderStatusVariants(t *testing.T) {
	slot := dagbft.NewSlot(3, 1)
	block := dagbft.NewBlock(3, 1, nil, 0, "")

	commit := dagbft.NewCommit(block)
	if !commit.IsCommit() || !commit.IsDecided() || commit.IsSkip() {
		t.Errorf("NewCommit() classified wrong: %s", commit)
	}
	if commit.Slot() != slot || commit.Block() != block {
		t.Errorf("NewCommit() lost the block: %s", commit)
	}

	skip := dagbft.NewSkip(slot)
	if !skip.IsSkip() || !skip.IsDecided() || skip.IsCommit() {
		t.Errorf("NewSkip() classified wrong: %s", skip)
	}
	if skip.Block() != nil {
		t.Errorf("NewSkip() carries a block: %s", skip)
	}

	undecided := dagbft.NewUndecided(slot)
	if undecided.IsDecided() || undecided.IsCommit() || undecided.IsSkip() {
		t.Errorf("NewUndecided() classified wrong: %s", undecided)
	}
	if undecided.Round() != 3 || undecided.Authority() != 1 {
		t.Errorf("NewUndecided() lost the slot: %s", undecided)
	}
}
