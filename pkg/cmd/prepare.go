package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omicslab/sra-engine/pkg/prepare"
	"github.com/omicslab/sra-engine/pkg/resolve"
	"github.com/omicslab/sra-engine/pkg/tabular"
)

// prepareCmd drafts sample metadata from a directory of sequence files.
var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Draft a sample metadata table from a directory of sequence files.",
	Long: `Prepare scans a directory for fastq files, pairs forward and reverse reads
by their name markers (_R1/_R2, _1/_2, _forward/_reverse, _f/_r), and writes a
sample metadata table pre-filled with the configured defaults and contact
columns. The draft is a starting point; run validate on it after editing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		dir := getString(cmd, "file-dir")
		if dir == "" {
			return fmt.Errorf("--file-dir is required")
		}
		files, err := resolve.ScanSequenceDir(dir, getBool(cmd, "recursive"))
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no sequence files found under %s", dir)
		}

		pairs := resolve.PairReads(files)
		table := prepare.FromReadPairs(pairs, cfg)

		output := getString(cmd, "output")
		if err := tabular.Write(table, output); err != nil {
			return err
		}

		paired := 0
		for _, p := range pairs {
			if p.Paired() {
				paired++
			}
		}
		logger.Info("sample metadata drafted",
			zap.String("file_dir", dir),
			zap.Int("files", len(files)),
			zap.Int("samples", table.Len()),
			zap.Int("paired", paired),
			zap.String("output", output))
		return nil
	},
}

func init() {
	prepareCmd.Flags().String("file-dir", "", "directory to scan for sequence files")
	prepareCmd.Flags().Bool("recursive", false, "descend into subdirectories while scanning")
	prepareCmd.Flags().String("output", "sample_metadata.tsv", "path for the drafted table (tsv, txt, xlsx)")
	rootCmd.AddCommand(prepareCmd)
}
