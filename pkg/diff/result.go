package diff

// SwitchOutcome is the per-switch result of a run: either a comparison
// (Findings populated) or a device missing from NetBox entirely.
type SwitchOutcome struct {
	Switch          string    `json:"switch"`
	MissingOnNetbox bool      `json:"missing_on_netbox,omitempty"`
	Findings        []Finding `json:"findings,omitempty"`
}

// RunResult collects per-switch outcomes in validation order.
type RunResult struct {
	Outcomes []SwitchOutcome `json:"outcomes"`
}

// Add appends a compared-switch outcome.
func (r *RunResult) Add(switchName string, findings []Finding) {
	r.Outcomes = append(r.Outcomes, SwitchOutcome{Switch: switchName, Findings: findings})
}

// AddMissing appends a missing-switch outcome.
func (r *RunResult) AddMissing(switchName string) {
	r.Outcomes = append(r.Outcomes, SwitchOutcome{Switch: switchName, MissingOnNetbox: true})
}

// failing reports whether a finding kind makes the run fail. Ambiguous
// allow-all ports are surfaced but do not fail the run on their own.
func failing(k Kind) bool {
	switch k {
	case KindNativeMismatch, KindAllowedMismatch, KindPortMissingOnNetbox, KindPortMissingOnFortigate:
		return true
	}
	return false
}

// OK returns true only if every switch was compared and no failing
// finding was produced. This drives the process exit code.
func (r *RunResult) OK() bool {
	for _, o := range r.Outcomes {
		if o.MissingOnNetbox {
			return false
		}
		for _, f := range o.Findings {
			if failing(f.Kind) {
				return false
			}
		}
	}
	return true
}

// Counts tallies findings by kind across all outcomes.
func (r *RunResult) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, o := range r.Outcomes {
		for _, f := range o.Findings {
			counts[f.Kind]++
		}
	}
	return counts
}
