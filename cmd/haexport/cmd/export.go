package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/core/export"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/core/store"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/layout"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a run to a fixed-width file and record validation findings",
	Long: `export compiles the rules of a mapping set, renders one line per assessment of
the run in event date order, writes the file and stores every validation
finding. The spec is selected by --spec-id or by --spec and --spec-version;
the mapping set by --mapping-set-id or by --mapping-set name.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("spec-id", "", "export spec id")
	exportCmd.Flags().String("spec", "", "export spec name")
	exportCmd.Flags().String("spec-version", "", "export spec version")
	exportCmd.Flags().String("mapping-set-id", "", "mapping set id")
	exportCmd.Flags().String("mapping-set", layout.DefaultMappingSet, "mapping set name")
	exportCmd.Flags().String("run-id", "", "run id to export")
	exportCmd.Flags().StringP("out", "o", "", "output file (default: output_dir/file_pattern)")
	exportCmd.Flags().String("output-dir", "", "output directory (overrides export.output_dir)")
	exportCmd.Flags().Int("workers", 0, "render workers (overrides export.workers)")
	exportCmd.MarkFlagRequired("run-id")
	exportCmd.MarkFlagsMutuallyExclusive("spec-id", "spec")
	exportCmd.MarkFlagsMutuallyExclusive("mapping-set-id", "mapping-set")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.Export.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("workers") {
		workers, _ := flags.GetInt("workers")
		if workers <= 0 {
			return fmt.Errorf("--workers must be positive, got %d", workers)
		}
		cfg.Export.Workers = workers
	}

	rawRunID, _ := flags.GetString("run-id")
	runID, err := types.ParseRunID(rawRunID)
	if err != nil {
		return fmt.Errorf("invalid --run-id %q: %w", rawRunID, err)
	}

	database, st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	specID, err := resolveSpec(ctx, cmd, st)
	if err != nil {
		return err
	}
	setID, err := resolveMappingSet(ctx, cmd, st, specID)
	if err != nil {
		return err
	}

	svc, err := export.NewService(st, &cfg.Export, logger)
	if err != nil {
		return fmt.Errorf("failed to create export service: %w", err)
	}

	out, _ := flags.GetString("out")
	res, err := svc.Run(ctx, export.Request{
		SpecID:       specID,
		MappingSetID: setID,
		RunID:        runID,
		OutputPath:   out,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "export_file_id=%s path=%s records=%d findings=%d\n",
		res.ExportFileID, res.Path, res.RecordCount, res.FindingCount)
	for _, c := range res.ErrorCounts {
		fmt.Fprintf(w, "  %s\t%d\n", c.ErrorCode, c.Count)
	}
	return nil
}

func resolveSpec(ctx context.Context, cmd *cobra.Command, st *store.Store) (types.ExportSpecID, error) {
	flags := cmd.Flags()
	if flags.Changed("spec-id") {
		raw, _ := flags.GetString("spec-id")
		id, err := types.ParseExportSpecID(raw)
		if err != nil {
			return "", fmt.Errorf("invalid --spec-id %q: %w", raw, err)
		}
		return id, nil
	}

	name, _ := flags.GetString("spec")
	version, _ := flags.GetString("spec-version")
	if name == "" || version == "" {
		return "", fmt.Errorf("--spec-id or both --spec and --spec-version required")
	}
	spec, err := st.FindExportSpec(ctx, name, version)
	if err != nil {
		return "", err
	}
	return spec.ID, nil
}

func resolveMappingSet(ctx context.Context, cmd *cobra.Command, st *store.Store, specID types.ExportSpecID) (types.MappingSetID, error) {
	flags := cmd.Flags()
	if flags.Changed("mapping-set-id") {
		raw, _ := flags.GetString("mapping-set-id")
		id, err := types.ParseMappingSetID(raw)
		if err != nil {
			return "", fmt.Errorf("invalid --mapping-set-id %q: %w", raw, err)
		}
		return id, nil
	}

	name, _ := flags.GetString("mapping-set")
	set, err := st.FindMappingSet(ctx, specID, name)
	if err != nil {
		return "", err
	}
	return set.ID, nil
}
