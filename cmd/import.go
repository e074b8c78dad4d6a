package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-workflow-importer/internal/config"
	"github.com/deploymenttheory/go-workflow-importer/internal/importer"
	"github.com/spf13/cobra"
)

var importFlags struct {
	url        string
	apiKey     string
	report     string
	localRoots []string
	localZips  []string
	repos      []string
	skipOnline bool
	dryRun     bool
}

// importCmd runs a full import
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Collect workflows from all sources and import them into n8n",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Instance
		applyImportFlags(cmd, &cfg)

		opts := importer.OptionsFromConfig(&cfg)
		opts.DryRun = importFlags.dryRun

		report, err := importer.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if report == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "no workflow candidates found")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported=%d skipped=%d failed=%d report=%s\n",
			report.Imported, report.SkippedDuplicates, report.Failed, cfg.Report)
		return nil
	},
}

// applyImportFlags layers explicitly set flags over the loaded configuration.
// Repeatable source flags extend the configured lists.
func applyImportFlags(cmd *cobra.Command, cfg *config.AppConfig) {
	flags := cmd.Flags()
	if flags.Changed("n8n-url") {
		cfg.N8N.URL = importFlags.url
	}
	if flags.Changed("n8n-api-key") {
		cfg.N8N.APIKey = importFlags.apiKey
	}
	if flags.Changed("report") {
		cfg.Report = importFlags.report
	}
	if flags.Changed("skip-online") {
		cfg.Sources.SkipOnline = importFlags.skipOnline
	}

	cfg.Sources.LocalRoots = config.MergeUnique(cfg.Sources.LocalRoots, importFlags.localRoots)
	cfg.Sources.LocalArchives = config.MergeUnique(cfg.Sources.LocalArchives, importFlags.localZips)
	cfg.Sources.Repositories = config.MergeUnique(cfg.Sources.Repositories, importFlags.repos)
}

func init() {
	flags := importCmd.Flags()
	flags.StringVar(&importFlags.url, "n8n-url", "http://localhost:5678", "n8n base URL")
	flags.StringVar(&importFlags.apiKey, "n8n-api-key", "", "n8n API key")
	flags.StringVar(&importFlags.report, "report", "n8n_import_report.json", "path of the JSON run report")
	flags.StringArrayVar(&importFlags.localRoots, "local-root", nil, "additional local folder to scan for JSON workflows (repeatable)")
	flags.StringArrayVar(&importFlags.localZips, "local-zip", nil, "additional archive to extract or stream for workflows (repeatable)")
	flags.StringArrayVar(&importFlags.repos, "repo", nil, "additional GitHub repository owner/name to pull templates from (repeatable)")
	flags.BoolVar(&importFlags.skipOnline, "skip-online", false, "do not download online repositories")
	flags.BoolVar(&importFlags.dryRun, "dry-run", false, "collect and deduplicate without contacting n8n")
}
