package payload

import (
	"net/url"
	"strings"
)

// Pair is one name/value entry of a submission. Names may repeat.
type Pair struct {
	Name  string
	Value string
}

// Pairs is an ordered submission payload.
type Pairs []Pair

// Add appends an entry.
func (p *Pairs) Add(name, value string) {
	*p = append(*p, Pair{Name: name, Value: value})
}

// Get returns the first value for name.
func (p Pairs) Get(name string) (string, bool) {
	for _, pair := range p {
		if pair.Name == name {
			return pair.Value, true
		}
	}
	return "", false
}

// Values returns every value for name in insertion order.
func (p Pairs) Values(name string) []string {
	var out []string
	for _, pair := range p {
		if pair.Name == name {
			out = append(out, pair.Value)
		}
	}
	return out
}

// Count returns how many entries carry name.
func (p Pairs) Count(name string) int {
	n := 0
	for _, pair := range p {
		if pair.Name == name {
			n++
		}
	}
	return n
}

// Encode renders the payload as application/x-www-form-urlencoded, keeping
// the insertion order (url.Values would sort by key).
func (p Pairs) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, pair := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair.Value))
	}
	return b.String()
}

// URLValues converts the payload for callers that need url.Values.
func (p Pairs) URLValues() url.Values {
	out := make(url.Values, len(p))
	for _, pair := range p {
		out.Add(pair.Name, pair.Value)
	}
	return out
}
