package main

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <switch>",
	Short: "Validate a single switch without touching the snapshot store",
	Long: `Check one switch by name against NetBox. The switch is fetched live
from the configured FortiGates; the snapshot store is neither cleared
nor written, so an ad-hoc check never disturbs the cached full-sync
state.

Examples:
  vlansync check access-sw-01
  vlansync check access-sw-01 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newRunner().CheckSwitch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return reportResult(result)
	},
}
