package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/relab/dagbft/logging"
	"github.com/relab/dagbft/modules"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var (
	listModules bool
	cfgFile     string

	rootCmd = &cobra.Command{
		Use:   "dagbft",
		Short: "A command-line utility for experimenting with the DAG commit rule.",
		Long: `dagbft is a command-line utility for experimenting with the DAG-based commit rule.
It builds synthetic block DAGs, including DAGs with crashed or equivocating
authorities, runs the committer over them, and prints the decided leader sequence.

To run a simulation, use the 'dagbft sim' command.
Use 'dagbft help sim' to view all parameters for this command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !listModules {
				return cmd.Usage()
			}
			for iface, names := range modules.List() {
				fmt.Println(iface, ":")
				for _, n := range names {
					fmt.Println("\t", n)
				}
			}
			return nil
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().BoolVar(&listModules, "list-modules", false, "list available modules")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dagbft.yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "sets the log level (debug, info, warn, error)")
	cobra.CheckErr(viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")))
	rootCmd.PersistentFlags().StringSlice("log-components", []string{}, "set the log level on a per-component basis.")
	cobra.CheckErr(viper.BindPFlag("log-components", rootCmd.PersistentFlags().Lookup("log-components")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".dagbft" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".dagbft")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	logging.SetLogLevel(viper.GetString("log-level"))
	for _, component := range viper.GetStringSlice("log-components") {
		name, level, ok := strings.Cut(component, ":")
		if !ok {
			fmt.Fprintf(os.Stderr, "invalid log-components entry %q, expected name:level\n", component)
			os.Exit(1)
		}
		logging.SetComponentLogLevel(name, level)
	}
}
