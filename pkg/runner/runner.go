// Package runner sequences fetch, normalize, store, reload and diff
// across the configured switches and decides the run's outcome.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/vlansync/vlansync/pkg/diff"
	"github.com/vlansync/vlansync/pkg/model"
	"github.com/vlansync/vlansync/pkg/util"
)

// FortiGate is one controller the runner fetches switches from.
type FortiGate interface {
	Name() string
	Switches(ctx context.Context) ([]*model.Switch, error)
}

// NetBox resolves a device name to its normalized ports. A device
// absent from NetBox is reported as an error matching util.ErrNotFound.
type NetBox interface {
	DevicePorts(ctx context.Context, deviceName string) ([]model.Port, error)
}

// Store is the snapshot store used by full-sync mode.
type Store interface {
	Clear() error
	Save(sw *model.Switch) error
	LoadAll() ([]*model.Switch, error)
}

// Runner orchestrates one validation run.
type Runner struct {
	Fortigates []FortiGate
	Netbox     NetBox
	Store      Store
	Options    diff.Options
}

// Sync runs full-sync mode: clear the snapshot store, fetch every
// controller, persist and reload the normalized switches, then validate
// each against NetBox in device-name order.
//
// A fetch failure on any controller aborts before anything is
// persisted, so the store never holds a partial run. A switch missing
// from NetBox stops validation at that switch; its outcome is recorded
// and later switches are not checked.
func (r *Runner) Sync(ctx context.Context) (*diff.RunResult, error) {
	if err := r.Store.Clear(); err != nil {
		return nil, fmt.Errorf("clearing snapshot store: %w", err)
	}

	var fetched []*model.Switch
	for _, fg := range r.Fortigates {
		util.WithDevice(fg.Name()).Info("fetching managed switches")
		switches, err := fg.Switches(ctx)
		if err != nil {
			return nil, err
		}
		fetched = append(fetched, switches...)
	}

	for _, sw := range fetched {
		if err := r.Store.Save(sw); err != nil {
			return nil, err
		}
	}

	// Reload from disk rather than validating the in-memory set; this
	// exercises the snapshot round-trip every run and yields the sorted
	// device-name order.
	switches, err := r.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	result := &diff.RunResult{}
	for _, sw := range switches {
		done, err := r.validate(ctx, sw, result)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return result, nil
}

// CheckSwitch runs single-switch test mode: fetch from each controller
// until the named switch turns up, validate just that switch, and leave
// the snapshot store untouched.
func (r *Runner) CheckSwitch(ctx context.Context, name string) (*diff.RunResult, error) {
	for _, fg := range r.Fortigates {
		util.WithDevice(fg.Name()).Info("fetching managed switches")
		switches, err := fg.Switches(ctx)
		if err != nil {
			return nil, err
		}
		for _, sw := range switches {
			if sw.Name != name {
				continue
			}
			result := &diff.RunResult{}
			if _, err := r.validate(ctx, sw, result); err != nil {
				return nil, err
			}
			return result, nil
		}
	}
	return nil, fmt.Errorf("switch %q not found on any configured FortiGate: %w", name, util.ErrNotFound)
}

// validate diffs one switch against NetBox and appends its outcome.
// It returns done=true when the run must halt (device missing from
// NetBox, the fail-fast policy for operator attention).
func (r *Runner) validate(ctx context.Context, sw *model.Switch, result *diff.RunResult) (done bool, err error) {
	log := util.WithSwitch(sw.Name)

	ports, err := r.Netbox.DevicePorts(ctx, sw.Name)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			log.Error("switch not found in NetBox, stopping run")
			result.AddMissing(sw.Name)
			return true, nil
		}
		return false, err
	}

	findings := diff.Compare(sw, ports, r.Options)
	for _, f := range findings {
		entry := log.WithField("port", f.Port)
		switch f.Kind {
		case diff.KindMatch:
			entry.Debug("VLANs match")
		case diff.KindPortMissingOnNetbox:
			entry.Warn("port not found in NetBox")
		case diff.KindPortMissingOnFortigate:
			entry.Warn("NetBox interface has no FortiGate port")
		case diff.KindAmbiguousAllowAll:
			entry.Warn("allowed-vlans-all enabled on FortiGate, skipping precise comparison")
		default:
			entry.WithField("fortigate", f.Fortigate).
				WithField("netbox", f.Netbox).
				Error("VLAN mismatch")
		}
	}

	result.Add(sw.Name, findings)
	return false, nil
}
