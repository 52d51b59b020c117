package committer_test

import (
	"testing"

	"github.com/relab/dagbft"
	"github.com/relab/dagbft/blockdag"
	"github.com/relab/dagbft/committer"
	"github.com/relab/dagbft/internal/testutil"
	"github.com/relab/dagbft/leaderrotation"
)

func universalSetup(t *testing.T) (*testutil.DAGBuilder, *committer.UniversalCommitterBuilder) {
	t.Helper()
	committee := dagbft.NewEqualStakeCommittee(4)
	dag := blockdag.New(committee)
	builder := testutil.NewDAGBuilder(committee, dag)
	return builder, committer.NewBuilder(committee, dag, leaderrotation.NewRoundRobin(committee))
}

func TestUniversalDirectCommit(t *testing.T) {
	builder, cb := universalSetup(t)
	u := cb.Build()
	builder.Layers(7)

	// candidate leader rounds are 3 and 0; round 0 is the last decided slot
	lastDecided := dagbft.NewSlot(0, 0)
	sequence := u.TryDecide(lastDecided)
	if len(sequence) != 1 {
		t.Fatalf("TryDecide(%s) decided %d leaders, want 1", lastDecided, len(sequence))
	}
	status := sequence[0]
	if !status.IsCommit() || status.Round() != 3 || status.Authority() != 3 {
		t.Errorf("decided %s, want Commit at round 3 by A3", status)
	}
}

func TestUniversalIdempotent(t *testing.T) {
	builder, cb := universalSetup(t)
	u := cb.Build()
	builder.Layers(7)

	lastDecided := dagbft.NewSlot(0, 0)
	first := u.TryDecide(lastDecided)
	second := u.TryDecide(lastDecided)
	if len(first) != len(second) {
		t.Fatalf("repeated TryDecide decided %d then %d leaders", len(first), len(second))
	}
	for i := range first {
		if first[i].String() != second[i].String() {
			t.Errorf("decision %d changed from %s to %s", i, first[i], second[i])
		}
	}
}

func TestUniversalAdvancesLastDecided(t *testing.T) {
	builder, cb := universalSetup(t)
	u := cb.Build()
	builder.Layers(7)

	lastDecided := dagbft.NewSlot(0, 0)
	sequence := u.TryDecide(lastDecided)
	if len(sequence) != 1 {
		t.Fatalf("decided %d leaders, want 1", len(sequence))
	}
	lastDecided = sequence[0].Slot()

	builder.Layers(10)
	sequence = u.TryDecide(lastDecided)
	if len(sequence) != 1 {
		t.Fatalf("TryDecide(%s) decided %d leaders, want 1", lastDecided, len(sequence))
	}
	status := sequence[0]
	if !status.IsCommit() || status.Round() != 6 || status.Authority() != 2 {
		t.Errorf("decided %s, want Commit at round 6 by A2", status)
	}
}

func TestUniversalPipelined(t *testing.T) {
	// with pipelining every round is some instance's leader round
	builder, cb := universalSetup(t)
	u := cb.WithPipeline(true).Build()
	builder.Layers(8)

	lastDecided := dagbft.NewSlot(0, 0)
	sequence := u.TryDecide(lastDecided)
	if len(sequence) != 6 {
		t.Fatalf("decided %d leaders, want 6", len(sequence))
	}
	for i, status := range sequence {
		wantRound := dagbft.Round(i + 1)
		wantAuthor := dagbft.AuthorityIndex(wantRound % 4)
		if !status.IsCommit() || status.Round() != wantRound || status.Authority() != wantAuthor {
			t.Errorf("decision %d is %s, want Commit at round %d by %s", i, status, wantRound, wantAuthor)
		}
	}
}

func TestUniversalMultipleLeaders(t *testing.T) {
	builder, cb := universalSetup(t)
	u := cb.WithNumberOfLeaders(2).Build()
	builder.Layers(7)

	lastDecided := dagbft.NewSlot(0, 0)
	sequence := u.TryDecide(lastDecided)
	if len(sequence) != 2 {
		t.Fatalf("decided %d leaders, want 2", len(sequence))
	}
	// leaders of the same round appear in committer order
	for i, wantAuthor := range []dagbft.AuthorityIndex{3, 0} {
		status := sequence[i]
		if !status.IsCommit() || status.Round() != 3 || status.Authority() != wantAuthor {
			t.Errorf("decision %d is %s, want Commit at round 3 by %s", i, status, wantAuthor)
		}
	}
}

func TestUniversalStopsAtUndecidedLeader(t *testing.T) {
	// the round-3 leader gathers only two votes: no blame quorum, no
	// certificate quorum, and no later anchor to settle it indirectly.
	builder, cb := universalSetup(t)
	u := cb.Build()
	builder.Layers(3)
	builder.Layer().OmitReferencesTo(3, 0, 1).Persist()
	builder.Layers(5)

	sequence := u.TryDecide(dagbft.NewSlot(0, 0))
	if len(sequence) != 0 {
		t.Fatalf("decided %d leaders, want none while the round-3 leader is undecided", len(sequence))
	}
}

func TestUniversalNothingToDecide(t *testing.T) {
	builder, cb := universalSetup(t)
	u := cb.Build()

	// only genesis: no round can have a decision yet
	if sequence := u.TryDecide(dagbft.NewSlot(0, 0)); len(sequence) != 0 {
		t.Fatalf("decided %d leaders on a genesis-only DAG", len(sequence))
	}

	// the last decided round is too close to the DAG's highest round
	builder.Layers(4)
	if sequence := u.TryDecide(dagbft.NewSlot(3, 3)); len(sequence) != 0 {
		t.Fatalf("decided %d leaders past round 3 with highest round 4", len(sequence))
	}
}

func TestUniversalGetLeaders(t *testing.T) {
	_, cb := universalSetup(t)
	u := cb.WithNumberOfLeaders(2).Build()

	if got := u.GetLeaders(3); len(got) != 2 || got[0] != 3 || got[1] != 0 {
		t.Errorf("GetLeaders(3) = %v, want [A3 A0]", got)
	}
	if got := u.GetLeaders(4); len(got) != 0 {
		t.Errorf("GetLeaders(4) = %v, want none", got)
	}
}

func TestUniversalCommitters(t *testing.T) {
	_, cb := universalSetup(t)
	u := cb.WithPipeline(true).WithNumberOfLeaders(2).Build()
	if got := len(u.Committers()); got != 6 {
		t.Errorf("Build() composed %d committers, want 6", got)
	}
}
