package main

import (
	"github.com/spf13/cobra"
)

var (
	runRepo   string
	runGitHub string
	runFlags  reportFlags
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect identities from a repository and report likely duplicates",
	Long: `Collect developer identities from a repository history and match them in
one step, writing devs_similarity_t=<threshold>.csv by default.

Examples:
  devmatch run --repo .
  devmatch run --repo https://github.com/owner/name --threshold 0.85
  devmatch run --github owner/name --format xlsx --save`,
	RunE: runRun,
}

func init() {
	addSourceFlags(runCmd, &runRepo, &runGitHub)
	runFlags.register(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	devs, err := collectDevelopers(cmd.Context(), runRepo, runGitHub)
	if err != nil {
		return err
	}

	source := runRepo
	if runGitHub != "" {
		source = "github:" + runGitHub
	}
	return matchAndReport(cmd, source, devs, &runFlags)
}
