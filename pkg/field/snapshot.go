package field

import "strings"

// Snapshot is the baseline state of one input. Snapshots are never mutated;
// a new set replaces the old one after a successful save or refresh.
type Snapshot struct {
	Name     string
	ID       string
	Kind     Kind
	Disabled bool
	// Checked is nil for kinds without a checked state.
	Checked *bool
	// Value is nil for multi-selects, which use Values instead.
	Value       *string
	Values      []string
	Label       string
	Editability Editability
}

// Capture records the current state of in.
func Capture(in Input) Snapshot {
	attrs := in.Attrs()
	snap := Snapshot{
		Name:        NameOf(in),
		ID:          strings.TrimSpace(in.ID()),
		Kind:        in.Kind(),
		Disabled:    in.Disabled(),
		Label:       labelOf(attrs),
		Editability: attrs.Editability(),
	}
	if checked, ok := CheckedOf(in); ok {
		snap.Checked = &checked
	}
	if snap.Kind == KindMultiSelect {
		snap.Values = SelectedOf(in)
	} else {
		value := in.Value()
		snap.Value = &value
	}
	return snap
}

// CaptureAll snapshots every input in order.
func CaptureAll(inputs []Input) []Snapshot {
	out := make([]Snapshot, 0, len(inputs))
	for _, in := range inputs {
		if in == nil {
			continue
		}
		out = append(out, Capture(in))
	}
	return out
}

// Matches reports whether the snapshot belongs to the (name, id) pair.
func (s Snapshot) Matches(name, id string) bool {
	return s.Name == name && s.ID == id
}

// DisplayLabel is the label used when addressing the user about the input.
func (s Snapshot) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

// BaseValue returns the captured value, or "" when none was recorded.
func (s Snapshot) BaseValue() string {
	if s.Value == nil {
		return ""
	}
	return *s.Value
}

// BaseChecked returns the captured checked state.
func (s Snapshot) BaseChecked() bool {
	return s.Checked != nil && *s.Checked
}

func labelOf(attrs Attrs) string {
	if label := strings.TrimSpace(attrs.Label); label != "" {
		return label
	}
	return strings.TrimSpace(attrs.Placeholder)
}
