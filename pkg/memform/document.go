package memform

import (
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-formsync/pkg/field"
)

// Document is an in-memory form. It is not safe for concurrent use; the
// controller serialises access.
type Document struct {
	Element

	method string
	action string

	inputs  []*Input
	buttons []*Button

	reloads     int
	navigations []string
}

// New returns an empty document.
func New(method, action string) *Document {
	return &Document{method: method, action: action}
}

// Method returns the declared form method.
func (d *Document) Method() string { return d.method }

// Action returns the declared form action.
func (d *Document) Action() string { return d.action }

// SetAction replaces the form action.
func (d *Document) SetAction(action string) { d.action = action }

// Reload records a full reload request.
func (d *Document) Reload() { d.reloads++ }

// Reloads counts Reload calls.
func (d *Document) Reloads() int { return d.reloads }

// Navigate records a navigation to url.
func (d *Document) Navigate(url string) { d.navigations = append(d.navigations, url) }

// Navigations lists every navigation target in order.
func (d *Document) Navigations() []string {
	return append([]string(nil), d.navigations...)
}

// Inputs lists the form inputs in document order.
func (d *Document) Inputs() []field.Input {
	out := make([]field.Input, 0, len(d.inputs))
	for _, in := range d.inputs {
		out = append(out, in)
	}
	return out
}

// Input returns the first input matching selector, or nil.
func (d *Document) Input(selector string) *Input {
	for _, in := range d.inputs {
		if matchInput(in, selector) {
			return in
		}
	}
	return nil
}

// InputsNamed lists every input carrying name.
func (d *Document) InputsNamed(name string) []*Input {
	var out []*Input
	for _, in := range d.inputs {
		if in.name == name {
			out = append(out, in)
		}
	}
	return out
}

// Find resolves a selector to an input. Besides the forms accepted by
// Input it understands ":input:visible:first".
func (d *Document) Find(selector string) field.Input {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil
	}
	if strings.Contains(selector, ":visible") {
		base := strings.TrimSpace(strings.NewReplacer(":input", "", ":visible", "", ":first", "").Replace(selector))
		for _, in := range d.inputs {
			if in.Visible() && (base == "" || matchInput(in, base)) {
				return in
			}
		}
		return nil
	}
	if in := d.Input(selector); in != nil {
		return in
	}
	return nil
}

// Button returns the first button inside root matching selector. The
// document has a single root, so root only filters on the document's own
// id or classes.
func (d *Document) Button(root, selector string) field.Button {
	if b := d.ButtonFor(root, selector); b != nil {
		return b
	}
	return nil
}

// ButtonFor is Button returning the concrete type.
func (d *Document) ButtonFor(root, selector string) *Button {
	if root = strings.TrimSpace(root); root != "" && !d.matchesRoot(root) {
		return nil
	}
	for _, b := range d.buttons {
		if matchButton(b, selector) {
			return b
		}
	}
	return nil
}

// Buttons lists the buttons in document order.
func (d *Document) Buttons() []*Button {
	return append([]*Button(nil), d.buttons...)
}

// Focused returns the focused input, or nil.
func (d *Document) Focused() *Input {
	for _, in := range d.inputs {
		if in.focused {
			return in
		}
	}
	return nil
}

// AddInput appends an input built from spec. Inputs without an id get a
// generated one so that inputs sharing a name stay distinguishable; an input
// without a name takes that id as its name.
func (d *Document) AddInput(spec InputSpec) (*Input, error) {
	kind, err := field.ParseKind(spec.Type)
	if err != nil {
		return nil, err
	}
	if kind == field.KindSelect && spec.Multiple {
		kind = field.KindMultiSelect
	}
	in := &Input{
		name:     strings.TrimSpace(spec.Name),
		id:       strings.TrimSpace(spec.ID),
		kind:     kind,
		value:    spec.Value,
		options:  append([]string(nil), spec.Options...),
		selected: append([]string(nil), spec.Selected...),
		checked:  spec.Checked,
		disabled: spec.Disabled,
		hidden:   spec.Hidden,
		attrs: field.Attrs{
			Label:       spec.Label,
			Placeholder: spec.Placeholder,
			Editable:    spec.Editable,
			OffValue:    spec.OffValue,
			SendValue:   spec.SendValue,
		},
		doc: d,
	}
	if in.id == "" {
		in.id = "input-" + uuid.NewString()
	}
	if in.name == "" {
		in.name = in.id
	}
	if kind == field.KindSelect && in.value == "" && len(in.selected) > 0 {
		in.value = in.selected[0]
	}
	for _, c := range spec.Classes {
		in.SetClass(c, true)
	}
	if spec.Widget || kind == field.KindRichText {
		in.widget = &Widget{input: in, enabled: !in.disabled}
	}
	if spec.Decorated {
		in.display = NewElement()
	}
	d.inputs = append(d.inputs, in)
	return in, nil
}

// AddButton appends a button built from spec. Buttons without an id get a
// generated one.
func (d *Document) AddButton(spec ButtonSpec) *Button {
	b := &Button{
		name:     strings.TrimSpace(spec.Name),
		id:       strings.TrimSpace(spec.ID),
		value:    spec.Value,
		typ:      strings.ToLower(strings.TrimSpace(spec.Type)),
		disabled: spec.Disabled,
		content:  spec.Content,
	}
	if b.id == "" {
		b.id = "button-" + uuid.NewString()
	}
	if b.typ == "" {
		b.typ = "button"
	}
	for _, c := range spec.Classes {
		b.SetClass(c, true)
	}
	d.buttons = append(d.buttons, b)
	return b
}

func (d *Document) matchesRoot(root string) bool {
	switch {
	case root == "form" || root == "*":
		return true
	case strings.HasPrefix(root, "."):
		return d.HasClass(root[1:])
	default:
		return true
	}
}

// matchInput supports "#id", ".class", "[name=x]", "[type=x]" and bare
// names.
func matchInput(in *Input, selector string) bool {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return false
	}
	switch {
	case strings.HasPrefix(selector, "#"):
		return in.id == selector[1:]
	case strings.HasPrefix(selector, "."):
		return in.HasClass(selector[1:])
	}
	if attr, value, ok := parseAttrSelector(selector); ok {
		switch attr {
		case "name":
			return in.name == value
		case "id":
			return in.id == value
		case "type":
			return in.kind.String() == value
		}
		return false
	}
	return in.name == selector
}

func matchButton(b *Button, selector string) bool {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return false
	}
	for _, part := range strings.Split(selector, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
			continue
		case strings.HasPrefix(part, "#"):
			if b.id == part[1:] {
				return true
			}
		case strings.HasPrefix(part, "."):
			if b.HasClass(part[1:]) {
				return true
			}
		default:
			if attr, value, ok := parseAttrSelector(part); ok {
				if (attr == "type" && b.typ == value) || (attr == "name" && b.name == value) || (attr == "id" && b.id == value) {
					return true
				}
				continue
			}
			if b.name == part {
				return true
			}
		}
	}
	return false
}

// parseAttrSelector reads "[attr=value]" with an optional "*" or tag prefix
// and optional quotes.
func parseAttrSelector(selector string) (attr, value string, ok bool) {
	open := strings.Index(selector, "[")
	if open < 0 || !strings.HasSuffix(selector, "]") {
		return "", "", false
	}
	body := selector[open+1 : len(selector)-1]
	attr, value, ok = strings.Cut(body, "=")
	if !ok {
		return "", "", false
	}
	value = strings.Trim(strings.TrimSpace(value), `"'`)
	return strings.TrimSpace(attr), value, true
}
