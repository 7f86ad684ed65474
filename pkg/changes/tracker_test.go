package changes_test

import (
	"testing"

	"github.com/goliatone/go-formsync/pkg/changes"
	"github.com/goliatone/go-formsync/pkg/field"
	"github.com/goliatone/go-formsync/pkg/formstate"
	"github.com/goliatone/go-formsync/pkg/memform"
)

type fixture struct {
	doc    *memform.Document
	store  *formstate.Store
	title  *memform.Input
	active *memform.Input
	tags   *memform.Input
	color  *memform.Input
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	doc := memform.New("post", "")
	add := func(spec memform.InputSpec) *memform.Input {
		in, err := doc.AddInput(spec)
		if err != nil {
			t.Fatalf("add input: %v", err)
		}
		return in
	}
	f := fixture{doc: doc}
	f.title = add(memform.InputSpec{Name: "title", Value: "a"})
	f.active = add(memform.InputSpec{Name: "active", Type: "checkbox", Value: "1", Decorated: true})
	f.tags = add(memform.InputSpec{Name: "tags", Type: "select", Multiple: true, Selected: []string{"x"}})
	f.color = add(memform.InputSpec{Name: "color", Type: "radio", Value: "red", Checked: true})
	add(memform.InputSpec{Name: "color", Type: "radio", Value: "blue"})

	f.store = formstate.NewStore(formstate.Keys{}, formstate.Row{})
	f.store.ReplaceSnapshots(field.CaptureAll(doc.Inputs()))
	return f
}

func TestCheckMarksChangedInputs(t *testing.T) {
	f := newFixture(t)
	tracker := changes.NewTracker(f.store, "", true)

	if tracker.CheckAll(f.doc.Inputs()) {
		t.Fatalf("fresh form should not report changes")
	}

	f.title.SetValue("b")
	if !tracker.Check(f.title) || !f.title.HasClass(changes.DefaultClass) {
		t.Fatalf("changed text input should be marked")
	}

	f.title.SetValue("a")
	if tracker.Check(f.title) || f.title.HasClass(changes.DefaultClass) {
		t.Fatalf("marker should clear once the value matches again")
	}

	f.active.SetChecked(true)
	if !tracker.Check(f.active) {
		t.Fatalf("checkbox change not detected")
	}
	if f.active.HasClass(changes.DefaultClass) || !f.active.Display().HasClass(changes.DefaultClass) {
		t.Fatalf("decorated input should be marked on its display element")
	}

	f.tags.SetSelectedValues([]string{"x", "y"})
	if !tracker.Check(f.tags) {
		t.Fatalf("multi-select change not detected")
	}

	// Checking the other radio unchecks red.
	f.doc.InputsNamed("color")[1].SetChecked(true)
	if !tracker.Check(f.color) {
		t.Fatalf("radio change not detected")
	}

	if !tracker.Dirty(f.doc.Inputs()) {
		t.Fatalf("expected Dirty to report changes")
	}

	tracker.Clear(f.doc.Inputs())
	if f.title.HasClass(changes.DefaultClass) || f.active.Display().HasClass(changes.DefaultClass) {
		t.Fatalf("Clear should remove every marker")
	}
}

func TestDisabledTrackerNeverMarks(t *testing.T) {
	f := newFixture(t)
	tracker := changes.NewTracker(f.store, "custom", false)

	f.title.SetValue("b")
	if tracker.Check(f.title) || f.title.HasClass("custom") {
		t.Fatalf("disabled tracker must not report or mark")
	}
	if tracker.Dirty(f.doc.Inputs()) {
		t.Fatalf("disabled tracker must not report dirty")
	}
}

func TestInputsWithoutBaselineAreIgnored(t *testing.T) {
	f := newFixture(t)
	tracker := changes.NewTracker(f.store, "", true)

	late, _ := f.doc.AddInput(memform.InputSpec{Name: "late", Value: "v"})
	late.SetValue("w")
	if tracker.Check(late) {
		t.Fatalf("input without baseline should not be reported")
	}
}

func TestCheckboxToggledBackIsUnchanged(t *testing.T) {
	f := newFixture(t)
	tracker := changes.NewTracker(f.store, "", true)
	display := f.active.Display()

	f.active.SetChecked(true)
	if !tracker.Check(f.active) || !display.HasClass(changes.DefaultClass) {
		t.Fatalf("checked box should be marked on its display element")
	}

	f.active.SetChecked(false)
	if tracker.Check(f.active) {
		t.Fatalf("checkbox back at its baseline reported as changed")
	}
	if display.HasClass(changes.DefaultClass) || f.active.HasClass(changes.DefaultClass) {
		t.Fatalf("marker should be removed once the checkbox is back at its baseline")
	}
	if tracker.Dirty(f.doc.Inputs()) {
		t.Fatalf("form should not be dirty")
	}
}

func TestSameNameInputsWithoutIDsKeepOwnBaseline(t *testing.T) {
	doc := memform.New("post", "")
	small, _ := doc.AddInput(memform.InputSpec{Name: "size", Type: "radio", Value: "s", Disabled: true})
	medium, _ := doc.AddInput(memform.InputSpec{Name: "size", Type: "radio", Value: "m", Checked: true})

	store := formstate.NewStore(formstate.Keys{}, formstate.Row{})
	store.ReplaceSnapshots(field.CaptureAll(doc.Inputs()))
	tracker := changes.NewTracker(store, "", true)

	if tracker.CheckAll(doc.Inputs()) {
		t.Fatalf("fresh radio group should not report changes")
	}
	for _, in := range []*memform.Input{small, medium} {
		snap, ok := store.SnapshotOf(in)
		if !ok {
			t.Fatalf("no baseline for radio %s", in.Value())
		}
		if snap.BaseValue() != in.Value() || snap.Disabled != in.Disabled() {
			t.Fatalf("radio %s resolved to baseline of %s", in.Value(), snap.BaseValue())
		}
	}

	small.SetDisabled(false)
	small.SetChecked(true)
	if !tracker.Check(small) || !tracker.Check(medium) {
		t.Fatalf("both radios changed state")
	}
}
