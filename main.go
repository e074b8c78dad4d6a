package main

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-workflow-importer/cmd"
	"github.com/deploymenttheory/go-workflow-importer/internal/logger"
)

func main() {
	err := cmd.Execute()

	// Ensure logs are flushed before exit
	_ = logger.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}
