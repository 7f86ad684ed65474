// Package editmode decides which inputs of a form may currently be edited and
// applies that decision to the live inputs.
package editmode

import (
	"unicode/utf8"

	"github.com/goliatone/go-formsync/pkg/field"
	"github.com/goliatone/go-formsync/pkg/formstate"
)

// SnapshotSource resolves the baseline of a live input.
type SnapshotSource interface {
	SnapshotOf(in field.Input) (field.Snapshot, bool)
}

// ComputeDisabled returns the effective disabled flag for an input. apply is
// false when the input must be left untouched: in edit mode an input without
// a baseline (added after initialisation) keeps whatever state it has.
//
// In edit mode the rules are evaluated in order, last applicable rule wins:
// baseline disabled attribute, row disabled, row not changeable by the user,
// editability always, editability never, row deleted. In read-only mode only
// always-editable inputs stay enabled.
func ComputeDisabled(snap *field.Snapshot, row formstate.View, editMode bool) (disabled bool, apply bool) {
	if !editMode {
		if snap != nil && snap.Editability == field.EditAlways {
			return false, true
		}
		return true, true
	}
	if snap == nil {
		return false, false
	}

	disabled = snap.Disabled
	if row.Disabled() {
		disabled = true
	}
	if row.Unchangeable() {
		disabled = true
	}
	switch snap.Editability {
	case field.EditAlways:
		disabled = false
	case field.EditNever:
		disabled = true
	}
	if row.Deleted() {
		disabled = true
	}
	return disabled, true
}

// Apply computes and writes the disabled flag of every input. It returns the
// number of inputs whose state was written.
func Apply(inputs []field.Input, snaps SnapshotSource, row formstate.View, editMode bool) int {
	written := 0
	for _, in := range inputs {
		if in == nil {
			continue
		}
		var snap *field.Snapshot
		if snaps != nil {
			if s, ok := snaps.SnapshotOf(in); ok {
				snap = &s
			}
		}
		disabled, apply := ComputeDisabled(snap, row, editMode)
		if !apply {
			continue
		}
		SetDisabled(in, disabled)
		written++
	}
	return written
}

// SetDisabled toggles an input. Inputs backed by a widget are toggled through
// the widget so its cached state stays in sync.
func SetDisabled(in field.Input, disabled bool) {
	if wb, ok := in.(field.WidgetBound); ok {
		if w := wb.Widget(); w != nil {
			if disabled {
				w.Disable()
			} else {
				w.Enable()
			}
			return
		}
	}
	in.SetDisabled(disabled)
}

// RestoreFocus focuses the last focused input when it is still visible, else
// fallback. The caret is placed at the end of the value. It returns the
// focused input, or nil when neither candidate can take focus.
func RestoreFocus(last, fallback field.Input) field.Input {
	target := focusable(last, true)
	if target == nil {
		target = focusable(fallback, false)
	}
	if target == nil {
		return nil
	}
	target.Focus()
	end := utf8.RuneCountInString(target.Value())
	target.SetSelectionRange(end, end)
	return target
}

func focusable(in field.Input, requireVisible bool) field.Focusable {
	if in == nil {
		return nil
	}
	f, ok := in.(field.Focusable)
	if !ok {
		return nil
	}
	if requireVisible && !f.Visible() {
		return nil
	}
	return f
}
