package model

import "regexp"

// vlanNumberPattern matches controller-style numeric VLAN names like
// "vlan90" or "VLAN7".
var vlanNumberPattern = regexp.MustCompile(`(?i)^vlan(\d+)$`)

// Normalize converts a raw source VLAN name into its canonical form.
//
// Lookup order:
//  1. The raw name verbatim in the translation table (exact-match
//     overrides for names like a literal "_default").
//  2. The structural default: "vlan<digits>" becomes "VLAN-<digits>",
//     anything else passes through unchanged.
//  3. The result of step 2 against the same translation table again, so
//     overrides work whether the operator keyed them by the vendor
//     token or the normalized form.
//
// Normalize is pure and total: unrecognized formats pass through.
func Normalize(raw string, translations map[string]string) Vlan {
	if translated, ok := translations[raw]; ok {
		return Vlan{Name: translated}
	}

	name := raw
	if m := vlanNumberPattern.FindStringSubmatch(raw); m != nil {
		name = "VLAN-" + m[1]
	}

	if translated, ok := translations[name]; ok {
		return Vlan{Name: translated}
	}
	return Vlan{Name: name}
}

// NormalizeSet normalizes a list of raw names into a VlanSet,
// collapsing duplicates that normalize to the same canonical name.
func NormalizeSet(raw []string, translations map[string]string) VlanSet {
	s := make(VlanSet, len(raw))
	for _, r := range raw {
		s.Add(Normalize(r, translations))
	}
	return s
}
