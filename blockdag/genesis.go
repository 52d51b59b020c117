package blockdag

import "github.com/relab/dagbft"

// Genesis returns the round-0 block of every authority in the committee.
// Genesis blocks have no ancestors and carry no payload, so every node derives
// the exact same set; it is the starting point all higher blocks build on.
func Genesis(committee *dagbft.Committee) []*dagbft.Block {
	blocks := make([]*dagbft.Block, 0, committee.Size())
	committee.Authorities(func(authority dagbft.AuthorityIndex, _ dagbft.Stake) {
		blocks = append(blocks, dagbft.NewBlock(0, authority, nil, 0, ""))
	})
	return blocks
}
