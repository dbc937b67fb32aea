package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/layout"
)

var checkLayoutCmd = &cobra.Command{
	Use:   "check-layout FILE",
	Short: "Validate a layout file and compile its mapping rules",
	Long: `check-layout loads a YAML layout, checks field geometry and compiles every
inline mapping rule without touching the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckLayout,
}

func init() {
	rootCmd.AddCommand(checkLayoutCmd)
}

func runCheckLayout(cmd *cobra.Command, args []string) error {
	_, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	f, err := layout.LoadFile(args[0])
	if err != nil {
		return err
	}
	plan, err := f.Compile()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	rules := len(f.RuleDefs())
	logger.Info("layout ok",
		zap.String("spec", f.SpecName),
		zap.String("version", f.SpecVersion),
		zap.Int("row_length", f.RowLength),
		zap.Int("fields", len(plan)),
		zap.Int("rules", rules),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%s@%s: %d fields, %d rules, row length %d\n",
		f.SpecName, f.SpecVersion, len(plan), rules, f.RowLength)
	return nil
}
