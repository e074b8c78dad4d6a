package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/jsonutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/workflow"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// normalizeCmd prints the normalized workflows found in one JSON file
var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Print the normalized workflows contained in a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workflows, err := loadWorkflows(afero.NewOsFs(), args[0])
		if err != nil {
			return err
		}

		out, err := jsonutil.PrettyPrint(workflows)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func loadWorkflows(fs afero.Fs, path string) ([]workflow.Workflow, error) {
	payload, err := jsonutil.LoadFile(fs, path)
	if err != nil {
		return nil, err
	}

	workflows := workflow.Extract(payload, path)
	if len(workflows) == 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrNotWorkflow, path)
	}
	return workflows, nil
}
