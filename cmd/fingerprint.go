package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-workflow-importer/internal/config"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/cryptoutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/workflow"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var fingerprintAlgorithm string

// fingerprintCmd prints the content fingerprint of every workflow in a file
var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint <file>",
	Short: "Print the duplicate-detection fingerprint of each workflow in a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algorithm := config.Instance.Fingerprint.Algorithm
		if cmd.Flags().Changed("algorithm") {
			algorithm = fingerprintAlgorithm
		}

		fp, err := workflow.NewFingerprinter(cryptoutil.HashAlgorithm(algorithm))
		if err != nil {
			return err
		}

		workflows, err := loadWorkflows(afero.NewOsFs(), args[0])
		if err != nil {
			return err
		}

		for _, wf := range workflows {
			sum, err := fp.Fingerprint(wf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", sum, wf.Name())
		}
		return nil
	},
}

func init() {
	fingerprintCmd.Flags().StringVar(&fingerprintAlgorithm, "algorithm", "sha1", "digest algorithm: sha1, sha256 or blake2b")
}
