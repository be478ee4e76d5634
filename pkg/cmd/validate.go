package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omicslab/sra-engine/pkg/pipeline"
)

// validateCmd runs the full pipeline over one or both metadata tables.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate metadata tables and write repaired copies.",
	Long: `Validate sample and/or project metadata, repair what is repairable, check
that every referenced sequence file exists, and write validated copies plus a
JSON run report. With --strict any recorded issue fails the run and nothing
is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		req := pipeline.RunRequest{
			SamplePath:    getString(cmd, "sample-metadata"),
			ProjectPath:   getString(cmd, "project-metadata"),
			FileDir:       getString(cmd, "file-dir"),
			OutputDir:     getString(cmd, "output-dir"),
			DropMissing:   getBool(cmd, "drop-missing-files"),
			Strict:        getBool(cmd, "strict"),
			Workers:       getInt(cmd, "workers"),
			WriteManifest: getBool(cmd, "manifest"),
		}

		report, runErr := pipeline.NewRunner(cfg, logger).Run(cmd.Context(), req)
		if report != nil {
			for _, issue := range report.Issues {
				logIssue(logger, issue)
			}
			logger.Info("run summary",
				zap.String("run_id", report.RunID.String()),
				zap.Int("warnings", report.Warnings),
				zap.Int("errors", report.Errors),
				zap.Int("files_checked", report.Files.Checked),
				zap.Int("files_missing", report.Files.Missing),
				zap.Strings("dropped_keys", report.DroppedKeys))
		}
		return runErr
	},
}

func init() {
	validateCmd.Flags().String("sample-metadata", "", "path to the sample metadata table (tsv, txt, xlsx)")
	validateCmd.Flags().String("project-metadata", "", "path to the project metadata table (tsv, txt, xlsx)")
	validateCmd.Flags().String("file-dir", "", "base directory for relative sequence file references")
	validateCmd.Flags().String("output-dir", pipeline.DefaultOutputDir, "directory for validated outputs")
	validateCmd.Flags().Bool("drop-missing-files", false, "drop samples referencing missing files from both tables")
	validateCmd.Flags().Int("workers", 0, "concurrent file checks (0 uses performance.max_workers)")
	validateCmd.Flags().Bool("manifest", false, "write file_manifest.txt listing every present file")
	rootCmd.AddCommand(validateCmd)
}
