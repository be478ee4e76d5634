// Package cmd wires the command line interface: validate runs the full
// metadata pipeline, verify checks sequence file presence only, and prepare
// drafts a sample table from a directory of reads.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omicslab/sra-engine/pkg/config"
	"github.com/omicslab/sra-engine/pkg/logging"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

// defaultConfigFile is picked up from the working directory when --config is
// not given, matching the config.json the lab's transfer tooling ships.
const defaultConfigFile = "config.json"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sra-engine",
	Short: "Validate and normalize SRA metagenome submission metadata.",
	Long: `sra-engine validates sample and project metadata tables against NCBI SRA
submission rules, repairs what it can in place, reconciles the two tables
against each other, and checks that every referenced sequence file exists.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		if getBool(cmd, "version") {
			fmt.Print("sra-engine ")
			if Version != "" {
				// Built via "make"
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Printf("%s", info.Main.Version)
			} else {
				// Unknown, perhaps "go run"
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
			return
		}
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().String("config", "", "path to a JSON or YAML config file (default config.json when present)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("strict", false, "fail on any recorded issue instead of repairing and reporting")
}

// setup builds the logger and loads configuration for a subcommand run.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	logger, err := logging.New(getBool(cmd, "verbose"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	path := getString(cmd, "config")
	if path == "" && config.Exists(defaultConfigFile) {
		path = defaultConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if path != "" {
		logger.Debug("configuration loaded", zap.String("path", path))
	}
	return cfg, logger, nil
}
