package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vlansync/vlansync/pkg/cli"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the API response cache",
	Long: `The cache holds the raw API payloads from the last run, keyed per
FortiGate and per NetBox device. With runtime.use_cached_data enabled,
the next run reads these instead of calling the APIs.

Examples:
  vlansync cache list
  vlansync cache clear`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached API payloads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := newCache().Entries(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing cache: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("Cache is empty")
			return nil
		}

		t := cli.NewTable(os.Stdout, "KEY", "SIZE", "MODIFIED")
		for _, e := range entries {
			modified := cli.Dim("-")
			if !e.Modified.IsZero() {
				modified = e.Modified.Format("2006-01-02 15:04:05")
			}
			t.Row(e.Key, fmt.Sprintf("%.1f KB", float64(e.Size)/1024), modified)
		}
		t.Flush()
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached API payloads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newCache().Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Println("Cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
