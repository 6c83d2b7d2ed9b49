package fortigate

import (
	"context"

	"github.com/vlansync/vlansync/pkg/model"
)

// managedSwitchResponse is the monitor API envelope.
type managedSwitchResponse struct {
	Results []rawSwitch `json:"results"`
}

// rawSwitch is one managed FortiSwitch as reported by the controller.
type rawSwitch struct {
	SwitchID string    `json:"switch-id"`
	Ports    []rawPort `json:"ports"`
}

type rawPort struct {
	PortName string       `json:"port-name"`
	Vlan     string       `json:"vlan"` // native VLAN object name
	Allowed  []rawVlanRef `json:"allowed-vlans"`
	// AllowedAll is "enable" when the port carries all VLANs; some
	// firmware instead reports a "*" entry in allowed-vlans.
	AllowedAll string `json:"allowed-vlans-all"`
}

type rawVlanRef struct {
	VlanName string `json:"vlan-name"`
}

// Switches fetches the managed switches and normalizes them into the
// canonical model, applying the VLAN name translations.
func (c *Client) Switches(ctx context.Context) ([]*model.Switch, error) {
	raw, err := c.rawSwitches(ctx)
	if err != nil {
		return nil, err
	}

	switches := make([]*model.Switch, 0, len(raw))
	for _, rs := range raw {
		if rs.SwitchID == "" {
			c.log.Warnf("skipping switch with no switch-id")
			continue
		}
		sw := &model.Switch{Name: rs.SwitchID}
		for _, rp := range rs.Ports {
			if rp.PortName == "" {
				continue
			}
			sw.Ports = append(sw.Ports, c.convertPort(rp))
		}
		switches = append(switches, sw)
	}
	return switches, nil
}

// convertPort maps one raw port record onto the canonical Port. The
// vendor's allow-all sentinel (flag or "*" list entry) becomes the
// explicit AllowAll tri-state and never lands in the allowed set.
func (c *Client) convertPort(rp rawPort) model.Port {
	port := model.Port{
		Name:     rp.PortName,
		Allowed:  model.NewVlanSet(),
		AllowAll: rp.AllowedAll == "enable",
	}

	if rp.Vlan != "" {
		native := model.Normalize(rp.Vlan, c.translations)
		port.NativeVlan = &native
	}

	for _, ref := range rp.Allowed {
		switch ref.VlanName {
		case "":
			continue
		case "*":
			port.AllowAll = true
		default:
			port.Allowed.Add(model.Normalize(ref.VlanName, c.translations))
		}
	}
	return port
}
