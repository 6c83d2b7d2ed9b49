package model

import "testing"

func TestNormalize(t *testing.T) {
	translations := map[string]string{
		"_default": "VLAN-1",
		"VLAN-90":  "Quarantine",
	}

	tests := []struct {
		name         string
		raw          string
		translations map[string]string
		want         string
	}{
		{"structural rule", "vlan42", nil, "VLAN-42"},
		{"structural rule uppercase", "VLAN7", nil, "VLAN-7"},
		{"passthrough", "uplink", nil, "uplink"},
		{"passthrough with digits elsewhere", "vlan42-mgmt", nil, "vlan42-mgmt"},
		{"empty name", "", nil, ""},
		{"raw-name override", "_default", translations, "VLAN-1"},
		{"post-normalization override", "vlan90", translations, "Quarantine"},
		{"normalized-name override direct", "VLAN-90", translations, "Quarantine"},
		{"override misses, rule applies", "vlan10", translations, "VLAN-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, tt.translations)
			if got.Name != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got.Name, tt.want)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	translations := map[string]string{"vlan3": "three"}
	for _, raw := range []string{"vlan3", "vlan50", "uplink", ""} {
		a := Normalize(raw, translations)
		b := Normalize(raw, translations)
		if a != b {
			t.Errorf("Normalize(%q) not deterministic: %q vs %q", raw, a.Name, b.Name)
		}
	}
}

func TestNormalizeSet(t *testing.T) {
	// vlan90 and VLAN-90 normalize to the same canonical name and must
	// collapse to one set member.
	got := NormalizeSet([]string{"vlan90", "VLAN-90", "uplink"}, nil)
	if len(got) != 2 {
		t.Fatalf("NormalizeSet collapsed to %d members, want 2: %v", len(got), got.Names())
	}
	if !got.Has("VLAN-90") || !got.Has("uplink") {
		t.Errorf("NormalizeSet = %v, want [VLAN-90 uplink]", got.Names())
	}
}
