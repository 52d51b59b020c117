package leaderrotation

import (
	"hash/fnv"
	"math/rand"

	wr "github.com/mroth/weightedrand"

	"github.com/relab/dagbft"
	"github.com/relab/dagbft/modules"
)

func init() {
	modules.Register("weighted", func() Builder { return NewWeighted })
}

type weighted struct {
	chooser *wr.Chooser
}

// GetLeader returns a stake-weighted pseudorandom leader for the given round.
// The choice is seeded from the round and leader offset only, so every honest
// node picks the same leader without exchanging messages.
func (w weighted) GetLeader(round dagbft.Round, leaderOffset uint32) dagbft.AuthorityIndex {
	h := fnv.New64a()
	var seed [8]byte
	seed[0] = byte(round)
	seed[1] = byte(round >> 8)
	seed[2] = byte(round >> 16)
	seed[3] = byte(round >> 24)
	seed[4] = byte(leaderOffset)
	seed[5] = byte(leaderOffset >> 8)
	seed[6] = byte(leaderOffset >> 16)
	seed[7] = byte(leaderOffset >> 24)
	h.Write(seed[:])
	rs := rand.New(rand.NewSource(int64(h.Sum64())))
	return w.chooser.PickSource(rs).(dagbft.AuthorityIndex)
}

// NewWeighted returns a leader rotation implementation where an authority's
// chance of leading a round is proportional to its stake.
func NewWeighted(committee *dagbft.Committee) LeaderRotation {
	choices := make([]wr.Choice, 0, committee.Size())
	committee.Authorities(func(authority dagbft.AuthorityIndex, stake dagbft.Stake) {
		choices = append(choices, wr.Choice{Item: authority, Weight: uint(stake)})
	})
	chooser, err := wr.NewChooser(choices...)
	if err != nil {
		panic(err)
	}
	return weighted{chooser: chooser}
}
