package committer_test

import (
	"testing"

	"github.com/relab/dagbft"
	"github.com/relab/dagbft/blockdag"
	"github.com/relab/dagbft/committer"
	"github.com/relab/dagbft/leaderrotation"
)

func newWaveCommitter(t *testing.T, waveLength, roundOffset uint32) *committer.BaseCommitter {
	t.Helper()
	committee := dagbft.NewEqualStakeCommittee(4)
	dag := blockdag.New(committee)
	return committer.New(committee, dag, leaderrotation.NewRoundRobin(committee), committer.Options{
		WaveLength:  waveLength,
		RoundOffset: roundOffset,
	})
}

func TestWaveArithmetic(t *testing.T) {
	for _, waveLength := range []uint32{3, 4, 5} {
		for roundOffset := uint32(0); roundOffset < waveLength; roundOffset++ {
			c := newWaveCommitter(t, waveLength, roundOffset)

			for round := dagbft.Round(roundOffset); round < 100; round++ {
				wave := c.WaveNumber(round)
				if leaderRound := c.LeaderRound(wave); leaderRound > round {
					t.Errorf("W=%d R=%d: LeaderRound(WaveNumber(%d)) = %d > %d", waveLength, roundOffset, round, leaderRound, round)
				}
				if decisionRound := c.DecisionRound(wave); decisionRound < round {
					t.Errorf("W=%d R=%d: DecisionRound(WaveNumber(%d)) = %d < %d", waveLength, roundOffset, round, decisionRound, round)
				}
			}

			for wave := dagbft.WaveNumber(0); wave < 30; wave++ {
				gap := c.DecisionRound(wave) - c.LeaderRound(wave)
				if gap != dagbft.Round(waveLength-1) {
					t.Errorf("W=%d R=%d: wave %d spans %d rounds, want %d", waveLength, roundOffset, wave, gap+1, waveLength)
				}
				if c.WaveNumber(c.LeaderRound(wave)) != wave {
					t.Errorf("W=%d R=%d: WaveNumber(LeaderRound(%d)) != %d", waveLength, roundOffset, wave, wave)
				}
			}
		}
	}
}

func TestWaveNumberSaturatesBelowOffset(t *testing.T) {
	c := newWaveCommitter(t, 3, 2)
	for round := dagbft.Round(0); round < 2; round++ {
		if wave := c.WaveNumber(round); wave != 0 {
			t.Errorf("WaveNumber(%d) = %d, want 0", round, wave)
		}
	}
}

func TestLeaderRoundsWithOffset(t *testing.T) {
	c := newWaveCommitter(t, 3, 1)
	// leader rounds of this instance are 1, 4, 7, ...
	for round := dagbft.Round(0); round < 9; round++ {
		_, ok := c.ElectLeader(round)
		want := round%3 == 1
		if ok != want {
			t.Errorf("ElectLeader(%d) = %v, want %v", round, ok, want)
		}
	}
}
