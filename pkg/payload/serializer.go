// Package payload builds the ordered name/value payload a form sends on submit
// and delete.
package payload

import (
	"strings"

	"github.com/goliatone/go-formsync/pkg/field"
)

// Wire keys shared with the backend.
const (
	KeyUniqueID     = "rugaform_uniqueid"
	KeySubmitReason = "rugaform_submit_reason"
	KeyFavourite    = "setfavourite"

	// ReasonUnknown is sent when no triggering event is known.
	ReasonUnknown = "unknown"
	// ReasonChange marks submissions started by an instant save.
	ReasonChange = "change"
)

// Trigger describes the control and event that started a submission.
type Trigger struct {
	// Name and Value of the triggering control, e.g. the pressed submit
	// button. Both must be set for the control to be sent.
	Name  string
	Value string
	// Type is the event type, sent as the submit reason.
	Type string
}

// Options tunes payload construction.
type Options struct {
	// SubmitDisabled also sends disabled inputs.
	SubmitDisabled bool
}

// Build assembles the payload:
//
//  1. the native serialization of enabled, named inputs;
//  2. the row's unique id;
//  3. the off value of every unchecked checkbox that has one;
//  4. the value of every input flagged to always send its value;
//  5. with SubmitDisabled, the value(s) of every disabled input: one entry
//     per selected option of a multi-select, the value of every radio, and
//     the value of a checked checkbox;
//  6. the triggering control and the submit reason.
//
// Entries are never deduplicated.
func Build(inputs []field.Input, uniqueID string, opts Options, trigger *Trigger) Pairs {
	var out Pairs

	for _, in := range inputs {
		if in == nil || in.Disabled() {
			continue
		}
		name := field.NameOf(in)
		if name == "" {
			continue
		}
		appendValue(&out, name, in)
	}

	out.Add(KeyUniqueID, uniqueID)

	for _, in := range inputs {
		if in == nil || in.Kind() != field.KindCheckbox {
			continue
		}
		if in.Disabled() && !opts.SubmitDisabled {
			continue
		}
		name := field.NameOf(in)
		if name == "" {
			continue
		}
		if checked, _ := field.CheckedOf(in); checked {
			continue
		}
		if off, ok := in.Attrs().Off(); ok {
			out.Add(name, off)
		}
	}

	for _, in := range inputs {
		if in == nil || !in.Attrs().SendValue {
			continue
		}
		if name := field.NameOf(in); name != "" {
			out.Add(name, in.Value())
		}
	}

	if opts.SubmitDisabled {
		for _, in := range inputs {
			if in == nil || !in.Disabled() {
				continue
			}
			name := field.NameOf(in)
			if name == "" {
				continue
			}
			// Disabled radios send their value whether checked or not.
			if in.Kind() == field.KindRadio {
				out.Add(name, in.Value())
				continue
			}
			appendValue(&out, name, in)
		}
	}

	if trigger == nil {
		out.Add(KeySubmitReason, ReasonUnknown)
		return out
	}
	if strings.TrimSpace(trigger.Name) != "" && trigger.Value != "" {
		out.Add(trigger.Name, trigger.Value)
	}
	if reason := strings.TrimSpace(trigger.Type); reason != "" {
		out.Add(KeySubmitReason, reason)
	}
	return out
}

// appendValue adds the entries a browser would submit for in. Checkable
// inputs only contribute when checked; unchecked checkboxes are covered by
// their off value.
func appendValue(out *Pairs, name string, in field.Input) {
	switch in.Kind() {
	case field.KindCheckbox, field.KindRadio:
		if checked, _ := field.CheckedOf(in); checked {
			out.Add(name, checkedValue(in))
		}
	case field.KindSelect, field.KindMultiSelect:
		for _, value := range field.SelectedOf(in) {
			out.Add(name, value)
		}
	default:
		out.Add(name, in.Value())
	}
}

func checkedValue(in field.Input) string {
	if value := in.Value(); value != "" {
		return value
	}
	return "on"
}
