package dagbft

import "fmt"

type statusKind uint8

const (
	statusUndecided statusKind = iota
	statusCommit
	statusSkip
)

// LeaderStatus is the outcome of the commit rule for a single leader slot.
// It is one of three variants:
//
//   - Commit: the leader block is certified and will be part of the committed sequence.
//   - Skip: no certificate for this slot can ever form; the slot is passed over.
//   - Undecided: the DAG does not yet contain enough information either way.
//
// Commit and Skip are final; only Undecided slots may change as the DAG grows.
type LeaderStatus struct {
	kind  statusKind
	slot  Slot
	block *Block
}

// NewCommit returns the Commit status for the given leader block.
func NewCommit(block *Block) LeaderStatus {
	return LeaderStatus{kind: statusCommit, slot: block.Slot(), block: block}
}

// NewSkip returns the Skip status for the given slot.
func NewSkip(slot Slot) LeaderStatus {
	return LeaderStatus{kind: statusSkip, slot: slot}
}

// NewUndecided returns the Undecided status for the given slot.
func NewUndecided(slot Slot) LeaderStatus {
	return LeaderStatus{kind: statusUndecided, slot: slot}
}

// IsCommit reports whether the status is Commit.
func (s LeaderStatus) IsCommit() bool {
	return s.kind == statusCommit
}

// IsSkip reports whether the status is Skip.
func (s LeaderStatus) IsSkip() bool {
	return s.kind == statusSkip
}

// IsDecided reports whether the status is final (Commit or Skip).
func (s LeaderStatus) IsDecided() bool {
	return s.kind != statusUndecided
}

// Slot returns the leader slot this status applies to.
func (s LeaderStatus) Slot() Slot {
	return s.slot
}

// Round returns the round of the leader slot.
func (s LeaderStatus) Round() Round {
	return s.slot.Round
}

// Authority returns the leader authority of the slot.
func (s LeaderStatus) Authority() AuthorityIndex {
	return s.slot.Author
}

// Block returns the committed leader block, or nil unless the status is Commit.
func (s LeaderStatus) Block() *Block {
	return s.block
}

func (s LeaderStatus) String() string {
	switch s.kind {
	case statusCommit:
		return fmt.Sprintf("Commit(%s)", s.block.Reference())
	case statusSkip:
		return fmt.Sprintf("Skip(%s)", s.slot)
	default:
		return fmt.Sprintf("Undecided(%s)", s.slot)
	}
}
