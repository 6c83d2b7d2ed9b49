package netbox

import (
	"context"
	"errors"

	"github.com/vlansync/vlansync/pkg/model"
	"github.com/vlansync/vlansync/pkg/util"
)

// rawInterface is the subset of a NetBox interface record the
// comparison needs. VLANs come back as nested objects whose name (or
// display, on older versions) carries the identity.
type rawInterface struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	UntaggedVlan *nbVlan  `json:"untagged_vlan"`
	TaggedVlans  []nbVlan `json:"tagged_vlans"`
}

type nbVlan struct {
	ID      int    `json:"id"`
	VID     int    `json:"vid"`
	Name    string `json:"name"`
	Display string `json:"display"`
}

// label returns the usable VLAN name, falling back to display.
func (v *nbVlan) label() string {
	if v.Name != "" {
		return v.Name
	}
	return v.Display
}

// DevicePorts looks up a device by name and returns its interfaces as
// normalized ports. A device absent from NetBox comes back as an error
// matching util.ErrNotFound.
func (c *Client) DevicePorts(ctx context.Context, deviceName string) ([]model.Port, error) {
	dev, err := c.deviceByName(ctx, deviceName)
	if err != nil {
		return nil, err
	}

	interfaces, err := c.deviceInterfaces(ctx, dev.ID)
	if err != nil {
		if errors.Is(err, util.ErrFetchFailed) {
			return nil, err
		}
		return nil, util.NewFetchError("netbox", deviceName, "", err)
	}

	ports := make([]model.Port, 0, len(interfaces))
	for _, iface := range interfaces {
		if iface.Name == "" {
			continue
		}
		ports = append(ports, c.convertInterface(iface))
	}
	return ports, nil
}

// convertInterface maps a NetBox interface onto the canonical Port.
// An interface with an untagged VLAN and no tagged VLANs is an access
// port: it carries exactly its native VLAN.
func (c *Client) convertInterface(iface rawInterface) model.Port {
	port := model.Port{
		Name:    iface.Name,
		Allowed: model.NewVlanSet(),
	}

	if iface.UntaggedVlan != nil && iface.UntaggedVlan.label() != "" {
		native := model.Normalize(iface.UntaggedVlan.label(), c.translations)
		port.NativeVlan = &native
	}

	for _, v := range iface.TaggedVlans {
		if v.label() == "" {
			continue
		}
		port.Allowed.Add(model.Normalize(v.label(), c.translations))
	}

	if len(port.Allowed) == 0 && port.NativeVlan != nil {
		port.Allowed.Add(*port.NativeVlan)
	}
	return port
}
