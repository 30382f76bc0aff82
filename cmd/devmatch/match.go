package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/internal/repositories"
	"github.com/alimgiray/devmatch/internal/services"
	"github.com/alimgiray/devmatch/pkg/config"
	"github.com/alimgiray/devmatch/pkg/database"
	"github.com/alimgiray/devmatch/pkg/logger"
	"github.com/spf13/cobra"
)

// reportFlags are shared by match and run
type reportFlags struct {
	threshold float64
	output    string
	format    string
	save      bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.threshold, "threshold", "t", config.DefaultThreshold, "similarity threshold in (0, 1], overrides MATCH_THRESHOLD")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "report file, - for stdout (default devs_similarity_t=<threshold>.<format>)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "csv", "report format: csv, xlsx or json")
	cmd.Flags().BoolVar(&f.save, "save", false, "store the run and its matches in the database")
}

var (
	matchInput string
	matchFlags reportFlags
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Report developer identities that likely belong to the same person",
	Long: `Read a name,email CSV and write every pair of identities judged to be the
same developer, with the raw criteria values that led to each match.

Examples:
  devmatch match --input devs.csv
  devmatch match --input devs.csv --threshold 0.85 --format xlsx
  devmatch match --input devs.csv --output - --save`,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchInput, "input", "i", "devs.csv", "developer CSV file")
	matchFlags.register(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	f, err := os.Open(matchInput)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	devs, err := services.NewReportService().ReadDevelopersCSV(f)
	if err != nil {
		return fmt.Errorf("failed to read developers: %w", err)
	}

	return matchAndReport(cmd, matchInput, devs, &matchFlags)
}

func matchAndReport(cmd *cobra.Command, source string, devs []models.Developer, flags *reportFlags) error {
	threshold := thresholdFlag(cmd, flags.threshold)
	if err := models.ValidateThreshold(threshold); err != nil {
		return err
	}

	format, err := services.ParseReportFormat(flags.format)
	if err != nil {
		return err
	}

	report, err := executeMatch(cmd.Context(), source, threshold, devs, flags.save)
	if err != nil {
		return err
	}

	reportService := services.NewReportService()
	output := flags.output
	if output == "" {
		output = reportService.ReportFileName(threshold, format)
	}

	out, closeOut, err := createOutput(output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := writeReport(out, reportService, format, report); err != nil {
		closeOut()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := closeOut(); err != nil {
		return err
	}

	logger.Infof("Wrote %d matches from %d developers to %s", len(report.Matches), len(devs), output)
	return nil
}

// executeMatch runs the matcher in memory, or through a stored run when save is set
func executeMatch(ctx context.Context, source string, threshold float64, devs []models.Developer, save bool) (*models.MatchReport, error) {
	matcher := newMatchService()
	if !save {
		return matcher.Match(ctx, devs, threshold)
	}

	if err := database.Init(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	runService := services.NewMatchRunService(
		repositories.NewMatchRunRepository(database.DB),
		repositories.NewMatchEvidenceRepository(database.DB),
		services.NewJobService(repositories.NewJobRepository(database.DB)),
		matcher,
	)

	run, report, err := runService.RunNow(ctx, source, threshold, devs)
	if err != nil {
		return nil, err
	}
	logger.Infof("Saved run %s", run.ID)
	return report, nil
}

func writeReport(out io.Writer, reportService *services.ReportService, format services.ReportFormat, report *models.MatchReport) error {
	switch format {
	case services.ReportFormatXLSX:
		return reportService.WriteXLSX(out, report)
	case services.ReportFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	default:
		return reportService.WriteCSV(out, report)
	}
}
