// Package memform is an in-memory form document. It gives the controller a
// DOM-like surface (inputs, buttons, classes, focus, navigation) without a
// browser, for tests and for the terminal client.
package memform

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formsync/pkg/field"
)

// Element is a node carrying state classes.
type Element struct {
	classes map[string]struct{}
}

var _ field.Element = (*Element)(nil)

// NewElement returns an element with the given classes.
func NewElement(classes ...string) *Element {
	el := &Element{}
	for _, c := range classes {
		el.SetClass(c, true)
	}
	return el
}

// SetClass adds or removes a class.
func (e *Element) SetClass(name string, on bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if on {
		if e.classes == nil {
			e.classes = make(map[string]struct{})
		}
		e.classes[name] = struct{}{}
		return
	}
	delete(e.classes, name)
}

// HasClass reports whether the class is set.
func (e *Element) HasClass(name string) bool {
	_, ok := e.classes[strings.TrimSpace(name)]
	return ok
}

// Classes lists the classes, sorted.
func (e *Element) Classes() []string {
	out := make([]string, 0, len(e.classes))
	for c := range e.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
