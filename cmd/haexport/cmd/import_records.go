package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/records"
)

var importRecordsCmd = &cobra.Command{
	Use:   "import-records FILE",
	Short: "Import assessments from a YAML records file as a new run",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportRecords,
}

func init() {
	rootCmd.AddCommand(importRecordsCmd)
}

func runImportRecords(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	f, err := records.LoadFile(args[0])
	if err != nil {
		return err
	}

	database, st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	res, err := st.ImportRecords(ctx, f.Import())
	if err != nil {
		return fmt.Errorf("failed to import records: %w", err)
	}

	logger.Info("records imported",
		zap.String("run_id", string(res.RunID)),
		zap.Int("assessments", res.Assessments),
		zap.Int("responses", res.Responses),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "run_id=%s\n", res.RunID)
	return nil
}
