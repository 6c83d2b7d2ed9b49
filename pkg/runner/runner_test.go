package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vlansync/vlansync/pkg/diff"
	"github.com/vlansync/vlansync/pkg/model"
	"github.com/vlansync/vlansync/pkg/util"
)

type fakeFortiGate struct {
	name     string
	switches []*model.Switch
	err      error
	calls    int
}

func (f *fakeFortiGate) Name() string { return f.name }

func (f *fakeFortiGate) Switches(ctx context.Context) ([]*model.Switch, error) {
	f.calls++
	return f.switches, f.err
}

type fakeNetBox struct {
	ports   map[string][]model.Port
	lookups []string
}

func (f *fakeNetBox) DevicePorts(ctx context.Context, name string) ([]model.Port, error) {
	f.lookups = append(f.lookups, name)
	ports, ok := f.ports[name]
	if !ok {
		return nil, fmt.Errorf("device %q: %w", name, util.ErrNotFound)
	}
	return ports, nil
}

type fakeStore struct {
	cleared int
	saved   map[string]*model.Switch
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]*model.Switch)}
}

func (f *fakeStore) Clear() error {
	f.cleared++
	f.saved = make(map[string]*model.Switch)
	return nil
}

func (f *fakeStore) Save(sw *model.Switch) error {
	f.saved[sw.Name] = sw
	return nil
}

func (f *fakeStore) LoadAll() ([]*model.Switch, error) {
	var names []string
	for name := range f.saved {
		names = append(names, name)
	}
	// Mirror the real store's device-name ordering.
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			if names[j] < names[i] {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	switches := make([]*model.Switch, 0, len(names))
	for _, name := range names {
		switches = append(switches, f.saved[name])
	}
	return switches, nil
}

func matchingSwitch(name string) (*model.Switch, []model.Port) {
	sw := &model.Switch{Name: name, Ports: []model.Port{
		{Name: "port1", Allowed: model.NewVlanSet("VLAN-10")},
	}}
	nb := []model.Port{{Name: "port1", Allowed: model.NewVlanSet("VLAN-10")}}
	return sw, nb
}

func TestSyncHappyPath(t *testing.T) {
	swB, nbB := matchingSwitch("sw-b")
	swA, nbA := matchingSwitch("sw-a")
	store := newFakeStore()

	r := &Runner{
		Fortigates: []FortiGate{
			&fakeFortiGate{name: "fg-1", switches: []*model.Switch{swB}},
			&fakeFortiGate{name: "fg-2", switches: []*model.Switch{swA}},
		},
		Netbox: &fakeNetBox{ports: map[string][]model.Port{"sw-a": nbA, "sw-b": nbB}},
		Store:  store,
	}

	result, err := r.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !result.OK() {
		t.Errorf("result not OK: %+v", result)
	}

	if store.cleared != 1 {
		t.Errorf("store cleared %d times, want 1", store.cleared)
	}
	if len(store.saved) != 2 {
		t.Errorf("saved = %v, want both switches persisted", store.saved)
	}

	// Outcomes follow snapshot (device-name) order regardless of which
	// controller reported the switch first.
	if len(result.Outcomes) != 2 {
		t.Fatalf("outcomes = %+v", result.Outcomes)
	}
	if result.Outcomes[0].Switch != "sw-a" || result.Outcomes[1].Switch != "sw-b" {
		t.Errorf("outcome order = %s, %s; want sw-a, sw-b",
			result.Outcomes[0].Switch, result.Outcomes[1].Switch)
	}
}

func TestSyncFetchFailureIsFatal(t *testing.T) {
	swA, nbA := matchingSwitch("sw-a")
	store := newFakeStore()

	r := &Runner{
		Fortigates: []FortiGate{
			&fakeFortiGate{name: "fg-1", switches: []*model.Switch{swA}},
			&fakeFortiGate{name: "fg-2", err: util.NewFetchError("fortigate", "fg-2", "fg2.example.com", errors.New("timeout"))},
		},
		Netbox: &fakeNetBox{ports: map[string][]model.Port{"sw-a": nbA}},
		Store:  store,
	}

	_, err := r.Sync(context.Background())
	if !errors.Is(err, util.ErrFetchFailed) {
		t.Fatalf("error = %v, want fetch error", err)
	}
	// Nothing may be persisted from a partial run.
	if len(store.saved) != 0 {
		t.Errorf("saved = %v, want nothing persisted after fetch failure", store.saved)
	}
}

func TestSyncMissingSwitchHaltsRun(t *testing.T) {
	swA, nbA := matchingSwitch("sw-a")
	swB, _ := matchingSwitch("sw-b")
	swC, nbC := matchingSwitch("sw-c")
	nb := &fakeNetBox{ports: map[string][]model.Port{"sw-a": nbA, "sw-c": nbC}}

	r := &Runner{
		Fortigates: []FortiGate{
			&fakeFortiGate{name: "fg-1", switches: []*model.Switch{swA, swB, swC}},
		},
		Netbox: nb,
		Store:  newFakeStore(),
	}

	result, err := r.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.OK() {
		t.Error("result should not be OK with a missing switch")
	}

	// sw-b is missing: sw-a was compared, sw-c never looked up.
	if len(result.Outcomes) != 2 {
		t.Fatalf("outcomes = %+v, want sw-a compared then sw-b missing", result.Outcomes)
	}
	if result.Outcomes[1].Switch != "sw-b" || !result.Outcomes[1].MissingOnNetbox {
		t.Errorf("outcome[1] = %+v, want sw-b missing", result.Outcomes[1])
	}
	for _, name := range nb.lookups {
		if name == "sw-c" {
			t.Error("sw-c was looked up after the halt")
		}
	}
}

func TestCheckSwitch(t *testing.T) {
	swA, nbA := matchingSwitch("sw-a")
	store := newFakeStore()

	fg1 := &fakeFortiGate{name: "fg-1"}
	fg2 := &fakeFortiGate{name: "fg-2", switches: []*model.Switch{swA}}

	r := &Runner{
		Fortigates: []FortiGate{fg1, fg2},
		Netbox:     &fakeNetBox{ports: map[string][]model.Port{"sw-a": nbA}},
		Store:      store,
	}

	result, err := r.CheckSwitch(context.Background(), "sw-a")
	if err != nil {
		t.Fatalf("CheckSwitch: %v", err)
	}
	if !result.OK() || len(result.Outcomes) != 1 {
		t.Errorf("result = %+v", result)
	}

	// Single-switch mode bypasses the store entirely.
	if store.cleared != 0 || len(store.saved) != 0 {
		t.Errorf("store touched: cleared=%d saved=%v", store.cleared, store.saved)
	}
}

func TestCheckSwitchNotFound(t *testing.T) {
	r := &Runner{
		Fortigates: []FortiGate{&fakeFortiGate{name: "fg-1"}},
		Netbox:     &fakeNetBox{},
		Store:      newFakeStore(),
	}

	_, err := r.CheckSwitch(context.Background(), "ghost-sw")
	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestSyncRecordsFindings(t *testing.T) {
	sw := &model.Switch{Name: "sw-a", Ports: []model.Port{
		{Name: "port1", Allowed: model.NewVlanSet("VLAN-10")},
	}}
	nb := []model.Port{{Name: "port1", Allowed: model.NewVlanSet("VLAN-20")}}

	r := &Runner{
		Fortigates: []FortiGate{&fakeFortiGate{name: "fg-1", switches: []*model.Switch{sw}}},
		Netbox:     &fakeNetBox{ports: map[string][]model.Port{"sw-a": nb}},
		Store:      newFakeStore(),
	}

	result, err := r.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.OK() {
		t.Error("mismatch must fail the run")
	}
	findings := result.Outcomes[0].Findings
	if len(findings) != 1 || findings[0].Kind != diff.KindAllowedMismatch {
		t.Errorf("findings = %+v, want allowed mismatch", findings)
	}
}
