package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omicslab/sra-engine/pkg/models"
)

// Get an expected flag, or exit if an error arises.
func getBool(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func getInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// logIssue renders one validation issue at the severity it carries. Only
// populated locator fields are attached.
func logIssue(logger *zap.Logger, issue models.Issue) {
	fields := make([]zap.Field, 0, 4)
	if issue.Table != "" {
		fields = append(fields, zap.String("table", string(issue.Table)))
	}
	if issue.Column != "" {
		fields = append(fields, zap.String("column", issue.Column))
	}
	if issue.Row >= 0 {
		fields = append(fields, zap.Int("row", issue.Row))
	}
	if issue.Key != "" {
		fields = append(fields, zap.String("key", issue.Key))
	}

	if issue.Severity == models.SeverityError {
		logger.Error(issue.Message, fields...)
		return
	}
	logger.Warn(issue.Message, fields...)
}
