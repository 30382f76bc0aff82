package main

import (
	"context"
	"fmt"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/internal/services"
	"github.com/alimgiray/devmatch/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	collectRepo   string
	collectGitHub string
	collectOutput string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect developer identities from a repository history",
	Long: `Collect every distinct (name, email) author and committer identity of a
repository and write them as a name,email CSV.

Examples:
  devmatch collect --repo . --output devs.csv
  devmatch collect --repo https://github.com/owner/name
  devmatch collect --github owner/name --output -`,
	RunE: runCollect,
}

func init() {
	addSourceFlags(collectCmd, &collectRepo, &collectGitHub)
	collectCmd.Flags().StringVarP(&collectOutput, "output", "o", "devs.csv", "output CSV file, - for stdout")
}

func addSourceFlags(cmd *cobra.Command, repo, gh *string) {
	cmd.Flags().StringVarP(repo, "repo", "r", "", "local repository path or remote git URL")
	cmd.Flags().StringVar(gh, "github", "", "GitHub repository as owner/name, read through the API")
	cmd.MarkFlagsOneRequired("repo", "github")
	cmd.MarkFlagsMutuallyExclusive("repo", "github")
}

func runCollect(cmd *cobra.Command, args []string) error {
	devs, err := collectDevelopers(cmd.Context(), collectRepo, collectGitHub)
	if err != nil {
		return err
	}

	out, closeOut, err := createOutput(collectOutput)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := services.NewReportService().WriteDevelopersCSV(out, devs); err != nil {
		closeOut()
		return fmt.Errorf("failed to write developers: %w", err)
	}
	if err := closeOut(); err != nil {
		return err
	}

	logger.Infof("Collected %d developers into %s", len(devs), collectOutput)
	return nil
}

// collectDevelopers reads identities from a git repository or the GitHub API
func collectDevelopers(ctx context.Context, repo, gh string) ([]models.Developer, error) {
	if gh != "" {
		owner, name, err := services.ParseRepositorySlug(gh)
		if err != nil {
			return nil, err
		}
		return services.NewGitHubHistoryService(cfg.GitHub.Token, cfg.GitHub.RateLimit).CollectDevelopers(ctx, owner, name)
	}

	path, err := services.NewCloneService(cfg.Clone.BasePath, cfg.GitHub.Token).Prepare(ctx, repo)
	if err != nil {
		return nil, err
	}
	return services.NewHistoryService().CollectDevelopers(ctx, path)
}
