// Package model defines the canonical switch/port/VLAN representation
// shared by the FortiGate and NetBox data sources after normalization.
package model

import (
	"encoding/json"
	"sort"
)

// Vlan is a VLAN identified by its canonical name. Two VLANs are equal
// iff their canonical names match; no numeric VLAN ID is required.
type Vlan struct {
	Name string `json:"name"`
}

func (v Vlan) String() string {
	return v.Name
}

// VlanSet is an unordered set of VLANs keyed by canonical name.
type VlanSet map[string]struct{}

// NewVlanSet creates a set from canonical names, collapsing duplicates.
func NewVlanSet(names ...string) VlanSet {
	s := make(VlanSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts a VLAN into the set.
func (s VlanSet) Add(v Vlan) {
	s[v.Name] = struct{}{}
}

// Has returns true if the set contains the canonical name.
func (s VlanSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the canonical names in sorted order.
func (s VlanSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Equal reports set equality, ignoring order and duplicates.
func (s VlanSet) Equal(other VlanSet) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

// Diff returns the names present only in s and only in other, each sorted.
func (s VlanSet) Diff(other VlanSet) (onlyS, onlyOther []string) {
	for n := range s {
		if !other.Has(n) {
			onlyS = append(onlyS, n)
		}
	}
	for n := range other {
		if !s.Has(n) {
			onlyOther = append(onlyOther, n)
		}
	}
	sort.Strings(onlyS)
	sort.Strings(onlyOther)
	return onlyS, onlyOther
}

// MarshalJSON encodes the set as a sorted array of names.
func (s VlanSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON decodes an array of names into the set.
func (s *VlanSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewVlanSet(names...)
	return nil
}

// Port is the normalized representation of one switch port.
//
// AllowAll set means the source reported "all VLANs permitted" rather
// than an enumerated list; Allowed must then be treated as unknown, never
// as an explicit empty or full set.
type Port struct {
	Name       string  `json:"name"`
	NativeVlan *Vlan   `json:"native_vlan,omitempty"` // nil = no native VLAN configured
	Allowed    VlanSet `json:"allowed_vlans"`
	AllowAll   bool    `json:"allow_all,omitempty"`
}

// NativeName returns the canonical native VLAN name, or "" when unset.
func (p *Port) NativeName() string {
	if p.NativeVlan == nil {
		return ""
	}
	return p.NativeVlan.Name
}

// Switch is the normalized representation of a managed switch.
// The port order is the order reported by the controller and drives
// the ordering of diff findings.
type Switch struct {
	Name  string `json:"name"` // must match the NetBox device name exactly
	Ports []Port `json:"ports"`
}

// Port returns the named port, or nil if the switch has no such port.
func (s *Switch) Port(name string) *Port {
	for i := range s.Ports {
		if s.Ports[i].Name == name {
			return &s.Ports[i]
		}
	}
	return nil
}
