// Package changes detects inputs whose live value drifted from their baseline
// snapshot and keeps the visual "changed" marker in sync.
package changes

import (
	"slices"

	"github.com/goliatone/go-formsync/pkg/field"
)

// DefaultClass is the marker class applied to changed inputs.
const DefaultClass = "ruga__changed"

// SnapshotSource resolves the baseline of a live input.
type SnapshotSource interface {
	SnapshotOf(in field.Input) (field.Snapshot, bool)
}

// Tracker compares inputs against their baselines.
type Tracker struct {
	snaps   SnapshotSource
	class   string
	enabled bool
}

// NewTracker builds a tracker. When enabled is false Check always reports
// false and never touches markers.
func NewTracker(snaps SnapshotSource, class string, enabled bool) *Tracker {
	if class == "" {
		class = DefaultClass
	}
	return &Tracker{snaps: snaps, class: class, enabled: enabled}
}

// Enabled reports whether tracking is on.
func (t *Tracker) Enabled() bool {
	return t != nil && t.enabled
}

// Check reports whether in changed and updates the marker on its display
// element.
func (t *Tracker) Check(in field.Input) bool {
	if !t.Enabled() || in == nil {
		return false
	}
	snap, ok := t.snaps.SnapshotOf(in)
	if !ok {
		return false
	}
	changed := Differs(in, snap)
	field.DisplayOf(in).SetClass(t.class, changed)
	return changed
}

// CheckAll runs Check over inputs and reports whether any changed.
func (t *Tracker) CheckAll(inputs []field.Input) bool {
	changed := false
	for _, in := range inputs {
		if t.Check(in) {
			changed = true
		}
	}
	return changed
}

// Clear removes the marker from every input.
func (t *Tracker) Clear(inputs []field.Input) {
	if t == nil {
		return
	}
	for _, in := range inputs {
		if in == nil {
			continue
		}
		field.DisplayOf(in).SetClass(t.class, false)
	}
}

// Dirty reports whether any input differs from its baseline. Markers are
// left alone.
func (t *Tracker) Dirty(inputs []field.Input) bool {
	if !t.Enabled() {
		return false
	}
	for _, in := range inputs {
		if in == nil {
			continue
		}
		snap, ok := t.snaps.SnapshotOf(in)
		if !ok {
			continue
		}
		if Differs(in, snap) {
			return true
		}
	}
	return false
}

// Differs compares the live state of in with snap according to the input
// kind recorded in the snapshot.
func Differs(in field.Input, snap field.Snapshot) bool {
	switch {
	case snap.Kind.Checkable():
		checked, _ := field.CheckedOf(in)
		return checked != snap.BaseChecked()
	case snap.Kind == field.KindMultiSelect:
		return !slices.Equal(field.SelectedOf(in), snap.Values)
	default:
		return in.Value() != snap.BaseValue()
	}
}
