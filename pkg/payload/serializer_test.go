package payload_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsync/pkg/field"
	"github.com/goliatone/go-formsync/pkg/payload"
	"github.com/goliatone/go-formsync/pkg/testsupport"
)

const formYAML = `
method: post
action: /rows/42
inputs:
  - name: title
    value: Hello World
  - name: active
    type: checkbox
    value: "1"
    offvalue: "0"
  - name: notify
    type: checkbox
    checked: true
  - name: color
    type: radio
    value: red
  - name: color
    type: radio
    value: blue
    checked: true
  - name: tags
    type: select
    multiple: true
    options: [a, b, c]
    selected: [a, c]
  - name: locked
    value: L
    disabled: true
  - name: stamp
    type: hidden
    value: s1
    sendvalue: true
  - name: flag
    type: checkbox
    value: "y"
    offvalue: "n"
    checked: true
    disabled: true
`

func inputs(t *testing.T) []field.Input {
	t.Helper()
	return testsupport.MustDocument(t, formYAML).Inputs()
}

func TestBuildMatchesGolden(t *testing.T) {
	pairs := payload.Build(inputs(t), "42", payload.Options{}, &payload.Trigger{Name: "save", Value: "1", Type: "click"})
	got := pairs.Encode()

	path := filepath.Join("testdata", "submit.golden")
	if testsupport.WriteMaybeGolden(t, path, []byte(got+"\n")) {
		return
	}
	want := strings.TrimSpace(string(testsupport.MustReadGolden(t, path)))
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWithSubmitDisabled(t *testing.T) {
	got := payload.Build(inputs(t), "42", payload.Options{SubmitDisabled: true}, nil)

	want := payload.Pairs{
		{Name: "title", Value: "Hello World"},
		{Name: "notify", Value: "on"},
		{Name: "color", Value: "blue"},
		{Name: "tags", Value: "a"},
		{Name: "tags", Value: "c"},
		{Name: "stamp", Value: "s1"},
		{Name: payload.KeyUniqueID, Value: "42"},
		{Name: "active", Value: "0"},
		{Name: "stamp", Value: "s1"},
		{Name: "locked", Value: "L"},
		{Name: "flag", Value: "y"},
		{Name: payload.KeySubmitReason, Value: payload.ReasonUnknown},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestDisabledRadiosSendEveryValue(t *testing.T) {
	doc := testsupport.MustDocument(t, `
inputs:
  - name: size
    type: radio
    value: s
    disabled: true
  - name: size
    type: radio
    value: m
    checked: true
    disabled: true
`)

	got := payload.Build(doc.Inputs(), "1", payload.Options{SubmitDisabled: true}, nil)
	want := payload.Pairs{
		{Name: payload.KeyUniqueID, Value: "1"},
		{Name: "size", Value: "s"},
		{Name: "size", Value: "m"},
		{Name: payload.KeySubmitReason, Value: payload.ReasonUnknown},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	got = payload.Build(doc.Inputs(), "1", payload.Options{}, nil)
	if n := got.Count("size"); n != 0 {
		t.Fatalf("disabled radios sent %d times without SubmitDisabled", n)
	}
}

func TestTriggerWithoutValueIsNotSent(t *testing.T) {
	got := payload.Build(nil, "", payload.Options{}, &payload.Trigger{Name: "save", Type: payload.ReasonChange})

	want := payload.Pairs{
		{Name: payload.KeyUniqueID, Value: ""},
		{Name: payload.KeySubmitReason, Value: payload.ReasonChange},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPairsAccessors(t *testing.T) {
	var pairs payload.Pairs
	pairs.Add("b", "2")
	pairs.Add("a", "1 & 2")
	pairs.Add("b", "3")

	if v, ok := pairs.Get("b"); !ok || v != "2" {
		t.Fatalf("Get returned %q %v", v, ok)
	}
	if diff := cmp.Diff([]string{"2", "3"}, pairs.Values("b")); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if pairs.Count("b") != 2 || pairs.Count("c") != 0 {
		t.Fatalf("unexpected counts")
	}
	if got := pairs.Encode(); got != "b=2&a=1+%26+2&b=3" {
		t.Fatalf("Encode = %q", got)
	}
	if got := pairs.URLValues()["b"]; len(got) != 2 {
		t.Fatalf("URLValues lost duplicates: %v", got)
	}
}
