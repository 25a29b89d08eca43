package main

import (
	"fmt"
	"os"

	"photovault/internal/platform"
)

func main() {
	// Before any key material exists in this process.
	if err := platform.DisableCoreDumps(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not disable core dumps:", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
