// Package diff compares a switch's normalized FortiGate ports against
// the normalized NetBox interfaces for the same device.
package diff

import (
	"sort"
	"strings"

	"github.com/vlansync/vlansync/pkg/model"
)

// Kind classifies the outcome of comparing one port.
type Kind string

const (
	KindMatch                  Kind = "match"
	KindNativeMismatch         Kind = "native-mismatch"
	KindAllowedMismatch        Kind = "allowed-mismatch"
	KindPortMissingOnNetbox    Kind = "port-missing-on-netbox"
	KindPortMissingOnFortigate Kind = "port-missing-on-fortigate"
	KindAmbiguousAllowAll      Kind = "ambiguous-allow-all"
)

// Finding is the result of one comparison check on one port.
// Fortigate and Netbox carry the two values that disagreed, formatted
// for diagnostics; mismatching allowed sets additionally carry the
// symmetric difference split by side.
type Finding struct {
	Port          string   `json:"port"`
	Kind          Kind     `json:"kind"`
	Fortigate     string   `json:"fortigate,omitempty"`
	Netbox        string   `json:"netbox,omitempty"`
	OnlyFortigate []string `json:"only_fortigate,omitempty"`
	OnlyNetbox    []string `json:"only_netbox,omitempty"`
}

// Options controls comparison policy.
type Options struct {
	// FlagNetboxOnlyPorts also reports NetBox interfaces that have no
	// FortiGate port. Off by default: FortiGate is authoritative for
	// port existence, so the completeness check is one-directional.
	FlagNetboxOnlyPorts bool
}

// Compare diffs one FortiGate switch against the NetBox interfaces of
// the same device. The FortiGate port list drives iteration, so findings
// come out in controller port order. A port with allow-all set yields a
// single ambiguous finding: an enumerated NetBox list cannot be checked
// against "all VLANs permitted".
func Compare(sw *model.Switch, netboxPorts []model.Port, opts Options) []Finding {
	byName := make(map[string]*model.Port, len(netboxPorts))
	for i := range netboxPorts {
		byName[netboxPorts[i].Name] = &netboxPorts[i]
	}

	var findings []Finding
	for i := range sw.Ports {
		fg := &sw.Ports[i]
		nb, ok := byName[fg.Name]
		if !ok {
			findings = append(findings, Finding{Port: fg.Name, Kind: KindPortMissingOnNetbox})
			continue
		}

		if fg.AllowAll {
			findings = append(findings, Finding{
				Port:      fg.Name,
				Kind:      KindAmbiguousAllowAll,
				Fortigate: "all VLANs permitted",
				Netbox:    joinOrNone(nb.Allowed.Names()),
			})
			continue
		}

		matched := true
		if fg.NativeName() != nb.NativeName() {
			matched = false
			findings = append(findings, Finding{
				Port:      fg.Name,
				Kind:      KindNativeMismatch,
				Fortigate: orNone(fg.NativeName()),
				Netbox:    orNone(nb.NativeName()),
			})
		}
		if !fg.Allowed.Equal(nb.Allowed) {
			matched = false
			onlyFG, onlyNB := fg.Allowed.Diff(nb.Allowed)
			findings = append(findings, Finding{
				Port:          fg.Name,
				Kind:          KindAllowedMismatch,
				Fortigate:     joinOrNone(fg.Allowed.Names()),
				Netbox:        joinOrNone(nb.Allowed.Names()),
				OnlyFortigate: onlyFG,
				OnlyNetbox:    onlyNB,
			})
		}
		if matched {
			findings = append(findings, Finding{Port: fg.Name, Kind: KindMatch})
		}
	}

	if opts.FlagNetboxOnlyPorts {
		var extra []string
		for i := range netboxPorts {
			if sw.Port(netboxPorts[i].Name) == nil {
				extra = append(extra, netboxPorts[i].Name)
			}
		}
		sort.Strings(extra)
		for _, name := range extra {
			findings = append(findings, Finding{Port: name, Kind: KindPortMissingOnFortigate})
		}
	}

	return findings
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ",")
}
