package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pinpoint/internal/scancache"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the scan cache",
	Long:  "Remove the persisted line-index cache directory.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(_ *cobra.Command, _ []string) error {
	cache, err := scancache.Open(cacheAppName)
	if err != nil {
		return fmt.Errorf("failed to open scan cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to drop scan cache: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "removed %s\n", cache.Dir())
	return nil
}
