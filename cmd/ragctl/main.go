// Command ragctl is operator tooling for HybridRAG deployments: endpoint
// resolution and live probing, encrypted credential storage, application
// config editing, and small maintenance chores.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A .env in the working directory is a convenience for local setups;
	// absence is not an error.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ragctl: %v\n", err)
		os.Exit(1)
	}
}
