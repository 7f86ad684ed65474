package memform

import (
	"slices"

	"github.com/goliatone/go-formsync/pkg/field"
)

// Input is an in-memory form control. It implements every capability
// interface of package field; Kind decides which ones apply.
type Input struct {
	Element

	name     string
	id       string
	kind     field.Kind
	value    string
	options  []string
	selected []string
	checked  bool
	disabled bool
	hidden   bool
	attrs    field.Attrs

	widget  *Widget
	display *Element

	focused  bool
	selStart int
	selEnd   int
	doc      *Document
}

var (
	_ field.Checkable   = (*Input)(nil)
	_ field.MultiValued = (*Input)(nil)
	_ field.WidgetBound = (*Input)(nil)
	_ field.Decorated   = (*Input)(nil)
	_ field.Focusable   = (*Input)(nil)
)

func (i *Input) Name() string { return i.name }
func (i *Input) ID() string { return i.id }
func (i *Input) Kind() field.Kind { return i.kind }
func (i *Input) Attrs() field.Attrs { return i.attrs }
func (i *Input) Disabled() bool { return i.disabled }

// Value returns the input value. Multi-selects report their first selected
// option.
func (i *Input) Value() string {
	if i.kind == field.KindMultiSelect {
		if len(i.selected) == 0 {
			return ""
		}
		return i.selected[0]
	}
	return i.value
}

// SetValue replaces the value. For multi-selects it selects the single
// option value.
func (i *Input) SetValue(value string) {
	if i.kind == field.KindMultiSelect {
		if value == "" {
			i.selected = nil
		} else {
			i.selected = []string{value}
		}
		return
	}
	i.value = value
}

// SetDisabled writes the raw disabled attribute.
func (i *Input) SetDisabled(disabled bool) { i.disabled = disabled }

func (i *Input) Checked() bool { return i.checked }

// SetChecked checks or unchecks the input. Checking a radio unchecks the
// other radios sharing its name.
func (i *Input) SetChecked(checked bool) {
	i.checked = checked
	if checked && i.kind == field.KindRadio && i.doc != nil {
		for _, other := range i.doc.inputs {
			if other != i && other.kind == field.KindRadio && other.name == i.name {
				other.checked = false
			}
		}
	}
}

// SelectedValues returns the selected options of a multi-select.
func (i *Input) SelectedValues() []string { return slices.Clone(i.selected) }

// SetSelectedValues replaces the selection.
func (i *Input) SetSelectedValues(values []string) { i.selected = slices.Clone(values) }

// Options lists the selectable options.
func (i *Input) Options() []string { return slices.Clone(i.options) }

// Widget returns the bound widget, or nil.
func (i *Input) Widget() field.Widget {
	if i.widget == nil {
		return nil
	}
	return i.widget
}

// BoundWidget returns the concrete widget for inspection.
func (i *Input) BoundWidget() *Widget { return i.widget }

// DisplayElement returns the decorating element, or nil.
func (i *Input) DisplayElement() field.Element {
	if i.display == nil {
		return nil
	}
	return i.display
}

// Display returns the concrete decorating element for inspection.
func (i *Input) Display() *Element { return i.display }

func (i *Input) Visible() bool { return !i.hidden }

// SetVisible shows or hides the input.
func (i *Input) SetVisible(visible bool) { i.hidden = !visible }

// Focus moves document focus to the input.
func (i *Input) Focus() {
	if i.doc != nil {
		for _, other := range i.doc.inputs {
			other.focused = false
		}
	}
	i.focused = true
}

func (i *Input) Focused() bool { return i.focused }

func (i *Input) SetSelectionRange(start, end int) {
	i.selStart, i.selEnd = start, end
}

// SelectionRange returns the caret range.
func (i *Input) SelectionRange() (int, int) { return i.selStart, i.selEnd }

// Widget is a specialised editor bound to an input. It owns the input's
// enabled state while bound.
type Widget struct {
	input   *Input
	enabled bool
	// Toggles counts Enable and Disable calls.
	Toggles int
}

var _ field.Widget = (*Widget)(nil)

func (w *Widget) Enable() {
	w.enabled = true
	w.Toggles++
	w.input.disabled = false
}

func (w *Widget) Disable() {
	w.enabled = false
	w.Toggles++
	w.input.disabled = true
}

// Enabled reports the widget's cached state.
func (w *Widget) Enabled() bool { return w.enabled }

// Button is an in-memory control button.
type Button struct {
	Element

	name     string
	id       string
	value    string
	typ      string
	disabled bool
	content  string
}

var _ field.Button = (*Button)(nil)

func (b *Button) Name() string { return b.name }
func (b *Button) ID() string { return b.id }
func (b *Button) Value() string { return b.value }
func (b *Button) Type() string { return b.typ }
func (b *Button) Disabled() bool { return b.disabled }
func (b *Button) SetDisabled(disabled bool) { b.disabled = disabled }
func (b *Button) SetContent(markup string) { b.content = markup }
func (b *Button) Content() string { return b.content }
