package dagbft

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
)

// BlockDigest is a SHA256 hash of a block's contents.
type BlockDigest [32]byte

func (d BlockDigest) String() string {
	return base64.StdEncoding.EncodeToString(d[:])
}

// BlockRef uniquely identifies a block by its position in the DAG and its digest.
type BlockRef struct {
	Round  Round
	Author AuthorityIndex
	Digest BlockDigest
}

// Slot returns the slot coordinate of the referenced block.
func (r BlockRef) Slot() Slot {
	return NewSlot(r.Round, r.Author)
}

func (r BlockRef) String() string {
	return fmt.Sprintf("B%d(%s;%.6s)", r.Round, r.Author, r.Digest.String())
}

// Command is an opaque transaction payload carried by a block.
//
// The string type is used because it is immutable and can hold arbitrary bytes of any length.
type Command string

// Block contains a proposed command, the proposer's position in the DAG,
// and ordered references to the blocks it extends.
//
// Ancestor references come in two kinds: strong links, which point at blocks of the
// immediately preceding round, and weak links, which may point further back to pick
// up blocks from slow authorities. Strong links always precede weak links in the
// ancestor order, and the order is fixed at creation; the commit rule depends on it.
type Block struct {
	// keep a copy of the digest to avoid hashing multiple times
	digest    BlockDigest
	round     Round
	author    AuthorityIndex
	ancestors []BlockRef
	numStrong int
	cmd       Command
}

// NewBlock creates a new Block. The ancestors slice must list strong links first;
// numStrong is the number of leading strong links.
func NewBlock(round Round, author AuthorityIndex, ancestors []BlockRef, numStrong int, cmd Command) *Block {
	if numStrong > len(ancestors) {
		panic("dagbft: numStrong exceeds number of ancestors")
	}
	b := &Block{
		round:     round,
		author:    author,
		ancestors: ancestors,
		numStrong: numStrong,
		cmd:       cmd,
	}
	// cache the digest immediately because it is too racy to do it in Digest()
	b.digest = sha256.Sum256(b.ToBytes())
	return b
}

// Digest returns the digest of the block.
func (b *Block) Digest() BlockDigest {
	return b.digest
}

// Round returns the round in which the block was proposed.
func (b *Block) Round() Round {
	return b.round
}

// Author returns the id of the authority that proposed the block.
func (b *Block) Author() AuthorityIndex {
	return b.author
}

// Reference returns the unique reference to this block.
func (b *Block) Reference() BlockRef {
	return BlockRef{Round: b.round, Author: b.author, Digest: b.digest}
}

// Slot returns the slot coordinate of the block.
func (b *Block) Slot() Slot {
	return NewSlot(b.round, b.author)
}

// Ancestors returns all ancestor references in their fixed order, strong links first.
// The returned slice must not be modified.
func (b *Block) Ancestors() []BlockRef {
	return b.ancestors
}

// StrongAncestors returns the strong ancestor references.
func (b *Block) StrongAncestors() []BlockRef {
	return b.ancestors[:b.numStrong]
}

// WeakAncestors returns the weak ancestor references.
func (b *Block) WeakAncestors() []BlockRef {
	return b.ancestors[b.numStrong:]
}

// Command returns the transaction payload of the block.
func (b *Block) Command() Command {
	return b.cmd
}

// ToBytes returns the raw byte form of the Block, to be used for hashing, etc.
func (b *Block) ToBytes() []byte {
	var buf []byte
	var numBuf [4]byte
	binary.LittleEndian.PutUint32(numBuf[:], uint32(b.round))
	buf = append(buf, numBuf[:]...)
	binary.LittleEndian.PutUint32(numBuf[:], uint32(b.author))
	buf = append(buf, numBuf[:]...)
	binary.LittleEndian.PutUint32(numBuf[:], uint32(b.numStrong))
	buf = append(buf, numBuf[:]...)
	for _, ancestor := range b.ancestors {
		binary.LittleEndian.PutUint32(numBuf[:], uint32(ancestor.Round))
		buf = append(buf, numBuf[:]...)
		binary.LittleEndian.PutUint32(numBuf[:], uint32(ancestor.Author))
		buf = append(buf, numBuf[:]...)
		buf = append(buf, ancestor.Digest[:]...)
	}
	buf = append(buf, []byte(b.cmd)...)
	return buf
}

func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Block{ %s, digest: %.6s, ancestors: [", b.Slot(), b.digest.String())
	for i, ancestor := range b.ancestors {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(ancestor.String())
	}
	sb.WriteString("] }")
	return sb.String()
}
