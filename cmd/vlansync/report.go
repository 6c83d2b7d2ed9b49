package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vlansync/vlansync/pkg/cli"
	"github.com/vlansync/vlansync/pkg/diff"
)

// printReport renders a run result as a table (or JSON with --json).
func printReport(result *diff.RunResult) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	t := cli.NewTable(os.Stdout, "SWITCH", "PORT", "STATUS", "FORTIGATE", "NETBOX")
	for _, outcome := range result.Outcomes {
		if outcome.MissingOnNetbox {
			t.Row(outcome.Switch, "-", cli.Red("missing in NetBox"), "-", "-")
			continue
		}
		for _, f := range outcome.Findings {
			if f.Kind == diff.KindMatch && !verbose {
				continue
			}
			t.Row(outcome.Switch, f.Port, statusLabel(f.Kind), orDash(f.Fortigate), orDash(f.Netbox))
		}
	}
	t.Flush()

	printSummary(result)
	return nil
}

func statusLabel(k diff.Kind) string {
	switch k {
	case diff.KindMatch:
		return cli.Green("match")
	case diff.KindNativeMismatch:
		return cli.Red("native mismatch")
	case diff.KindAllowedMismatch:
		return cli.Red("allowed mismatch")
	case diff.KindPortMissingOnNetbox:
		return cli.Yellow("missing in NetBox")
	case diff.KindPortMissingOnFortigate:
		return cli.Yellow("missing on FortiGate")
	case diff.KindAmbiguousAllowAll:
		return cli.Yellow("allow-all (ambiguous)")
	}
	return string(k)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printSummary(result *diff.RunResult) {
	counts := result.Counts()
	mismatches := counts[diff.KindNativeMismatch] + counts[diff.KindAllowedMismatch]
	missing := counts[diff.KindPortMissingOnNetbox] + counts[diff.KindPortMissingOnFortigate]

	fmt.Printf("\n%d switch(es) checked: %d match, %d mismatch, %d missing port(s), %d ambiguous\n",
		len(result.Outcomes), counts[diff.KindMatch], mismatches, missing,
		counts[diff.KindAmbiguousAllowAll])

	if result.OK() {
		fmt.Println(cli.Green("OK: FortiGate and NetBox agree"))
	} else {
		fmt.Println(cli.Red("FAILED: differences found"))
	}
}
