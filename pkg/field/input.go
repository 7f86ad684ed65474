package field

import "strings"

// Attrs are the static data attributes of an input.
type Attrs struct {
	Label       string
	Placeholder string
	// Editable holds the raw data-rugaform-editable value.
	Editable string
	// OffValue is sent for an unchecked checkbox (data-rugaform-off-value).
	// Nil means no off value is configured.
	OffValue *string
	// SendValue forces the current value into every payload
	// (data-rugaform-sendvalue).
	SendValue bool
}

// Editability parses the Editable attribute.
func (a Attrs) Editability() Editability {
	return ParseEditability(a.Editable)
}

// Off returns the configured off value.
func (a Attrs) Off() (string, bool) {
	if a.OffValue == nil {
		return "", false
	}
	return *a.OffValue, true
}

// Element is anything that can carry state classes (changed, active, ...).
type Element interface {
	SetClass(name string, on bool)
	HasClass(name string) bool
}

// Input is the minimal contract every form control satisfies. Snapshots are
// keyed by (name, id), so ID must be unique within a document; inputs
// sharing a name rely on it.
type Input interface {
	Element
	Name() string
	ID() string
	Kind() Kind
	Value() string
	SetValue(value string)
	Disabled() bool
	SetDisabled(disabled bool)
	Attrs() Attrs
}

// Checkable is implemented by checkbox and radio inputs.
type Checkable interface {
	Input
	Checked() bool
	SetChecked(checked bool)
}

// MultiValued is implemented by multi-select inputs.
type MultiValued interface {
	Input
	SelectedValues() []string
	SetSelectedValues(values []string)
}

// Widget is a specialised editor (rich text, searchable multi-select) that
// caches its enabled state and must be toggled through its own contract.
type Widget interface {
	Enable()
	Disable()
}

// WidgetBound is implemented by inputs backed by a Widget.
type WidgetBound interface {
	Input
	Widget() Widget
}

// Decorated is implemented by inputs whose visible part is a different
// element than the input itself (toggle switches, select2 style widgets).
type Decorated interface {
	Input
	DisplayElement() Element
}

// Focusable is implemented by inputs that can receive focus.
type Focusable interface {
	Input
	Visible() bool
	Focus()
	SetSelectionRange(start, end int)
}

// NameOf returns the input name, falling back to its id.
func NameOf(in Input) string {
	if in == nil {
		return ""
	}
	if name := strings.TrimSpace(in.Name()); name != "" {
		return name
	}
	return strings.TrimSpace(in.ID())
}

// CheckedOf returns the checked state of a checkable input.
func CheckedOf(in Input) (bool, bool) {
	c, ok := in.(Checkable)
	if !ok || !in.Kind().Checkable() {
		return false, false
	}
	return c.Checked(), true
}

// SelectedOf returns the selected values of a multi-select input. Other
// inputs report their single value, or nothing when it is empty.
func SelectedOf(in Input) []string {
	if mv, ok := in.(MultiValued); ok && in.Kind() == KindMultiSelect {
		return append([]string(nil), mv.SelectedValues()...)
	}
	if value := in.Value(); value != "" {
		return []string{value}
	}
	return nil
}

// DisplayOf resolves the element that shows the input's state to the user.
func DisplayOf(in Input) Element {
	if d, ok := in.(Decorated); ok {
		if el := d.DisplayElement(); el != nil {
			return el
		}
	}
	return in
}

// Button is a control affordance (save, reset, edit, delete, favourite).
type Button interface {
	Element
	Name() string
	Value() string
	Disabled() bool
	SetDisabled(disabled bool)
	// SetContent replaces the button's inner markup.
	SetContent(markup string)
}
