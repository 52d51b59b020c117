package cli

import (
	"fmt"
	"math/rand"

	"github.com/relab/dagbft"
	"github.com/relab/dagbft/blockdag"
	"github.com/relab/dagbft/committer"
	"github.com/relab/dagbft/internal/profiling"
	"github.com/relab/dagbft/internal/testutil"
	"github.com/relab/dagbft/leaderrotation"
	"github.com/relab/dagbft/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run the committer over a synthetic block DAG.",
	Long: `Builds a synthetic block DAG round by round, with optional crashed and
equivocating authorities, and feeds it to the committer. Prints the decided
leader sequence as decisions become available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulation()
	},
}

func init() {
	rootCmd.AddCommand(simCmd)

	simCmd.Flags().Uint32("authorities", 4, "number of authorities in the committee")
	simCmd.Flags().Uint32("rounds", 30, "number of DAG rounds to build")
	simCmd.Flags().Uint32("wave-length", committer.MinWaveLength, "rounds per wave")
	simCmd.Flags().Uint32("leaders", 1, "number of leaders per round")
	simCmd.Flags().Bool("pipeline", false, "enable pipelined committers")
	simCmd.Flags().String("leader-rotation", "round-robin", "leader rotation policy")
	simCmd.Flags().Uint32("crashes", 0, "number of authorities that stop proposing halfway in")
	simCmd.Flags().Uint32("equivocators", 0, "number of authorities that equivocate every round")
	simCmd.Flags().Float64("omission-rate", 0, "probability that a proposer omits a reference")
	simCmd.Flags().Uint32("gc-depth", 0, "rounds kept below the last commit (0 disables GC)")
	simCmd.Flags().Int64("seed", 1, "random seed for omissions")
	simCmd.Flags().String("cpu-profile", "", "file to save cpu profile to")
	simCmd.Flags().String("mem-profile", "", "file to save memory profile to")
	simCmd.Flags().String("trace", "", "file to save execution trace to")
	simCmd.Flags().String("fgprof-profile", "", "file to save fgprof profile to")
	cobra.CheckErr(viper.BindPFlags(simCmd.Flags()))
}

func runSimulation() error {
	stopProfilers, err := profiling.StartProfilers(
		viper.GetString("cpu-profile"),
		viper.GetString("mem-profile"),
		viper.GetString("trace"),
		viper.GetString("fgprof-profile"),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := stopProfilers(); err != nil {
			fmt.Println("failed to stop profilers:", err)
		}
	}()

	logger := logging.New("sim")

	numAuthorities := viper.GetUint32("authorities")
	rounds := dagbft.Round(viper.GetUint32("rounds"))
	gcDepth := dagbft.Round(viper.GetUint32("gc-depth"))
	crashes := viper.GetUint32("crashes")
	equivocators := viper.GetUint32("equivocators")
	if equivocators > numAuthorities {
		equivocators = numAuthorities
	}
	omissionRate := viper.GetFloat64("omission-rate")
	rnd := rand.New(rand.NewSource(viper.GetInt64("seed")))

	committee := dagbft.NewEqualStakeCommittee(int(numAuthorities))
	rotation, err := leaderrotation.New(viper.GetString("leader-rotation"), committee)
	if err != nil {
		return err
	}

	var dagOpts []blockdag.Option
	if gcDepth > 0 {
		dagOpts = append(dagOpts, blockdag.WithGC())
	}
	dag := blockdag.New(committee, dagOpts...)

	uc := committer.NewBuilder(committee, dag, rotation).
		WithWaveLength(viper.GetUint32("wave-length")).
		WithPipeline(viper.GetBool("pipeline")).
		WithNumberOfLeaders(viper.GetUint32("leaders")).
		Build()

	builder := testutil.NewDAGBuilder(committee, dag)
	lastDecided := dagbft.NewSlot(0, 0)
	committed := 0

	for round := dagbft.Round(1); round <= rounds; round++ {
		layer := builder.Layer()
		for a := uint32(0); a < crashes && a < numAuthorities; a++ {
			// crashed authorities stop proposing halfway through the run
			if round > rounds/2 {
				layer.SkipBlock(dagbft.AuthorityIndex(a))
			}
		}
		for a := numAuthorities - equivocators; a < numAuthorities; a++ {
			layer.Equivocate(dagbft.AuthorityIndex(a), 2)
		}
		if omissionRate > 0 {
			for _, ref := range builder.LastReferences() {
				for p := uint32(0); p < numAuthorities; p++ {
					if rnd.Float64() < omissionRate {
						layer.OmitReference(ref, dagbft.AuthorityIndex(p))
					}
				}
			}
		}
		layer.Persist()

		sequence := uc.TryDecide(lastDecided)
		for _, status := range sequence {
			if status.IsCommit() {
				committed++
			}
			logger.Infof("round %d: %s", round, status)
			lastDecided = status.Slot()
		}
		if gcDepth > 0 && lastDecided.Round > gcDepth {
			dag.SetGCRound(lastDecided.Round - gcDepth)
		}
	}

	fmt.Printf("built %d rounds, committed %d leaders, last decided %s\n", rounds, committed, lastDecided)
	return nil
}
