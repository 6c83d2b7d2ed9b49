package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vlansync/vlansync/pkg/diff"
	"github.com/vlansync/vlansync/pkg/util"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Validate every configured switch against NetBox",
	Long: `Run a full validation pass: clear the snapshot store, fetch managed
switches from every configured FortiGate, persist and reload the
normalized data, then diff each switch against its NetBox device.

The run stops at the first FortiGate fetch failure (nothing is
persisted) and at the first switch missing from NetBox. When
runtime.test_switch is set in the config, sync degrades to a
single-switch check of that switch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r := newRunner()

		// Config-driven single-switch override, kept for cron setups
		// that flip one knob rather than changing the invocation.
		if cfg.Runtime.TestSwitch != "" {
			util.Infof("test_switch set, checking only %s", cfg.Runtime.TestSwitch)
			result, err := r.CheckSwitch(ctx, cfg.Runtime.TestSwitch)
			if err != nil {
				return err
			}
			return reportResult(result)
		}

		result, err := r.Sync(ctx)
		if err != nil {
			return err
		}
		return reportResult(result)
	},
}

// reportResult prints the report and maps a failed validation onto a
// non-zero exit.
func reportResult(result *diff.RunResult) error {
	if err := printReport(result); err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("%w: VLAN configuration does not match NetBox", util.ErrValidationFailed)
	}
	return nil
}
