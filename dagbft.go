// Package dagbft defines the core types used by the DAG-based BFT commit engine.
//
// The engine decides, for every leader slot of a structured DAG of blocks, whether
// that slot's leader is committed, skipped, or still undecided, using only the local
// DAG structure and stake-weighted voting. The decision logic lives in the committer
// package; the DAG itself is kept by the blockdag package; which authority leads a
// given round is decided by a leaderrotation implementation.
//
// These types are value objects shared by all of the above: they carry no behavior
// beyond accessors and formatting, and they are immutable once created.
package dagbft

import "fmt"

// AuthorityIndex uniquely identifies a member of the committee.
// Indexes are assigned densely starting at 0 and are stable for an epoch.
type AuthorityIndex uint32

func (a AuthorityIndex) String() string {
	return fmt.Sprintf("A%d", uint32(a))
}

// Stake is the voting weight of an authority.
type Stake uint64

// Round is the logical height of a block in the DAG.
type Round uint32

// WaveNumber identifies a group of waveLength consecutive rounds.
// A wave contains one leader round and one decision round.
type WaveNumber uint32

// Slot is a (round, authority) coordinate where a leader block may exist.
// Under Byzantine behavior more than one block may occupy a slot.
type Slot struct {
	Round  Round
	Author AuthorityIndex
}

// NewSlot returns the slot at the given coordinates.
func NewSlot(round Round, author AuthorityIndex) Slot {
	return Slot{Round: round, Author: author}
}

func (s Slot) String() string {
	return fmt.Sprintf("%s%d", s.Author, s.Round)
}
