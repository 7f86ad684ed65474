package field

import (
	"fmt"
	"strings"
)

// Kind classifies an input. It is fixed for the lifetime of the input.
type Kind uint8

const (
	KindText Kind = iota
	KindCheckbox
	KindRadio
	KindSelect
	KindMultiSelect
	KindRichText
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCheckbox:
		return "checkbox"
	case KindRadio:
		return "radio"
	case KindSelect:
		return "select"
	case KindMultiSelect:
		return "multiselect"
	case KindRichText:
		return "richtext"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Checkable reports whether the kind carries a checked state instead of a
// free value.
func (k Kind) Checkable() bool {
	return k == KindCheckbox || k == KindRadio
}

// ParseKind maps an input type name onto a Kind. HTML text-like types
// (email, number, hidden, password, textarea, ...) collapse to KindText.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "text", "textarea", "email", "number", "hidden", "password",
		"date", "datetime-local", "time", "tel", "url", "search", "color":
		return KindText, nil
	case "checkbox", "toggle":
		return KindCheckbox, nil
	case "radio":
		return KindRadio, nil
	case "select":
		return KindSelect, nil
	case "multiselect", "select-multiple":
		return KindMultiSelect, nil
	case "richtext", "wysiwyg":
		return KindRichText, nil
	default:
		return KindText, fmt.Errorf("field: unknown input kind %q", raw)
	}
}

// Editability is the per-input override of edit-mode gating
// (data-rugaform-editable).
type Editability uint8

const (
	EditDefault Editability = iota
	EditAlways
	EditNever
)

func (e Editability) String() string {
	switch e {
	case EditAlways:
		return "always"
	case EditNever:
		return "never"
	default:
		return "default"
	}
}

// ParseEditability reads the raw attribute value. Anything other than
// "always" or "never" is EditDefault.
func ParseEditability(raw string) Editability {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "always":
		return EditAlways
	case "never":
		return EditNever
	default:
		return EditDefault
	}
}
