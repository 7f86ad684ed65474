package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/goliatone/go-formsync/pkg/changes"
	"github.com/goliatone/go-formsync/pkg/editmode"
	"github.com/goliatone/go-formsync/pkg/field"
	"github.com/goliatone/go-formsync/pkg/formstate"
	"github.com/goliatone/go-formsync/pkg/messages"
	"github.com/goliatone/go-formsync/pkg/notify"
	"github.com/goliatone/go-formsync/pkg/payload"
	"github.com/goliatone/go-formsync/pkg/transport"
	"github.com/goliatone/go-formsync/pkg/validation"
)

// OpStartEdit names the synchronous start-edit action in task handles.
const OpStartEdit transport.Operation = "startedit"

// Notification durations.
const (
	successDuration    = 6 * time.Second
	validationDuration = 10 * time.Second
	infoDuration       = 5 * time.Second
)

// Document is the form the controller drives.
type Document interface {
	// Inputs lists the form inputs in document order.
	Inputs() []field.Input
	// Button resolves a control button inside the event root, or nil.
	Button(root, selector string) field.Button
	// Find resolves a selector to an input, or nil.
	Find(selector string) field.Input
	Method() string
	Action() string
	SetAction(action string)
	// Reload re-renders the whole form from the backend.
	Reload()
	// Navigate leaves the form for url.
	Navigate(url string)
}

// Mode is the edit state of a form.
type Mode int

const (
	ReadOnly Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "readonly"
}

// Control is a user affordance.
type Control int

const (
	ControlSave Control = iota
	ControlReset
	ControlStartEdit
	ControlDelete
	ControlFavourite

	noGate Control = -1
)

var allControls = []Control{ControlSave, ControlReset, ControlStartEdit, ControlDelete, ControlFavourite}

func (c Control) String() string {
	switch c {
	case ControlSave:
		return "save"
	case ControlReset:
		return "reset"
	case ControlStartEdit:
		return "startedit"
	case ControlDelete:
		return "delete"
	case ControlFavourite:
		return "favourite"
	default:
		return fmt.Sprintf("control(%d)", int(c))
	}
}

// Controller drives one form. It is safe for concurrent use.
type Controller struct {
	id         string
	cfg        Config
	doc        Document
	transport  Transport
	httpClient *http.Client
	notifier   notify.Notifier
	validator  validation.Validator
	catalog    *messages.Catalog
	callbacks  Callbacks
	log        logr.Logger

	mu         sync.Mutex
	store      *formstate.Store
	tracker    *changes.Tracker
	editMode   bool
	focused    field.Input
	pending    int
	generation uint64
	closed     bool
	buttons    map[Control]field.Button
	enabled    map[Control]bool
	hotkeys    map[string]Control
	tasks      map[*Task]struct{}
	wg         sync.WaitGroup
}

// New binds a controller to doc. The baseline of every input is captured
// here, so doc must hold its initial values.
func New(doc Document, cfg Config, opts ...Option) (*Controller, error) {
	if doc == nil {
		return nil, errors.New("controller: document is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalized()

	c := &Controller{
		id:       uuid.NewString(),
		cfg:      cfg,
		doc:      doc,
		notifier: notify.Discard,
		log:      logr.Discard(),
		buttons:  make(map[Control]field.Button),
		enabled:  make(map[Control]bool),
		tasks:    make(map[*Task]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.log = c.log.WithValues("form", c.id)

	if c.catalog == nil {
		cat, err := messages.NewCatalog(cfg.Locale)
		if err != nil {
			return nil, fmt.Errorf("controller: %w", err)
		}
		c.catalog = cat
	}
	if c.transport == nil {
		client, err := c.defaultTransport()
		if err != nil {
			return nil, err
		}
		c.transport = client
	}
	if c.validator == nil {
		v, err := c.defaultValidator()
		if err != nil {
			return nil, err
		}
		c.validator = v
	}

	c.store = formstate.NewStore(cfg.Data, cfg.Row)
	c.store.ReplaceSnapshots(field.CaptureAll(doc.Inputs()))
	c.tracker = changes.NewTracker(c.store, cfg.Selector.Changed, cfg.TrackChanges)
	c.hotkeys = c.bindHotkeys()

	if el, ok := doc.(field.Element); ok {
		el.SetClass(cfg.Selector.Container, true)
	}
	if strings.TrimSpace(doc.Action()) == "" {
		if href := c.store.View().Href(); href != "" {
			doc.SetAction(href)
		}
	}
	c.bindButtons()

	c.mu.Lock()
	c.applyModeLocked(!cfg.RequestEdit, true)
	c.updateFavouriteButtonLocked()
	c.mu.Unlock()

	c.debug("controller ready", "mode", c.Mode().String(), "inputs", len(c.store.Snapshots()))
	return c, nil
}

func (c *Controller) defaultTransport() (*transport.Client, error) {
	opts := []transport.Option{transport.WithLogger(c.log)}
	if c.httpClient != nil {
		opts = append(opts, transport.WithHTTPClient(c.httpClient))
	}
	if strings.TrimSpace(c.cfg.URL) != "" {
		base, err := transport.ParseBaseURL(c.cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("controller: %w", err)
		}
		opts = append(opts, transport.WithBaseURL(base))
	}
	return transport.NewClient(opts...), nil
}

func (c *Controller) defaultValidator() (validation.Validator, error) {
	vo := c.cfg.ValidationOptions
	if strings.TrimSpace(vo.Schema) == "" {
		return validation.Valid, nil
	}
	data, err := os.ReadFile(vo.Schema)
	if err != nil {
		return nil, fmt.Errorf("controller: read schema: %w", err)
	}
	var schemaOpts []validation.SchemaOption
	if vo.IncludeDisabled {
		schemaOpts = append(schemaOpts, validation.IncludeDisabled())
	}
	if vo.Debug || c.cfg.Debug {
		schemaOpts = append(schemaOpts, validation.WithDebug(c.log.WithName("validation")))
	}
	if vo.Component != "" {
		schema, err := validation.SchemaFromDocument(context.Background(), data, vo.Component)
		if err != nil {
			return nil, fmt.Errorf("controller: %w", err)
		}
		return validation.NewSchemaValidator(schema, schemaOpts...)
	}
	schema, err := validation.SchemaFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	return validation.NewSchemaValidator(schema, schemaOpts...)
}

func (c *Controller) bindButtons() {
	selectors := map[Control]string{
		ControlSave:      c.cfg.BtnSave,
		ControlReset:     c.cfg.BtnReset,
		ControlStartEdit: c.cfg.BtnStartEdit,
		ControlDelete:    c.cfg.BtnDelete,
		ControlFavourite: c.cfg.BtnFavourite,
	}
	for _, ctl := range allControls {
		selector := strings.TrimSpace(selectors[ctl])
		if selector == "" {
			continue
		}
		btn := c.doc.Button(c.cfg.EventRoot, selector)
		if btn == nil {
			continue
		}
		btn.SetClass(c.cfg.Selector.ControlButton, true)
		c.buttons[ctl] = btn
	}
}

func (c *Controller) bindHotkeys() map[string]Control {
	keys := map[Control]string{
		ControlSave:      c.cfg.KeySave,
		ControlReset:     c.cfg.KeyReset,
		ControlStartEdit: c.cfg.KeyStartEdit,
		ControlDelete:    c.cfg.KeyDelete,
		ControlFavourite: c.cfg.KeyFavourite,
	}
	out := make(map[string]Control)
	for _, ctl := range allControls {
		if combo := NormalizeKey(keys[ctl]); combo != "" {
			out[combo] = ctl
		}
	}
	return out
}

// Close cancels running tasks and waits for them. Responses that arrive
// afterwards are discarded. Close must not be called from a callback.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.generation++
	running := make([]*Task, 0, len(c.tasks))
	for t := range c.tasks {
		running = append(running, t)
	}
	c.mu.Unlock()

	for _, t := range running {
		t.Cancel()
	}
	c.wg.Wait()
	c.debug("controller closed")
	return nil
}

// ID identifies the controller instance in logs.
func (c *Controller) ID() string { return c.id }

// Config returns the effective configuration.
func (c *Controller) Config() Config { return c.cfg }

// Mode reports the current edit mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editMode {
		return Editing
	}
	return ReadOnly
}

// Row returns a copy of the current row.
func (c *Controller) Row() formstate.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Row()
}

// Snapshots returns the current baselines.
func (c *Controller) Snapshots() []field.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Snapshots()
}

// Dirty reports whether any input differs from its baseline.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Dirty(c.doc.Inputs())
}

// Enabled reports whether a control affordance is currently enabled.
func (c *Controller) Enabled(ctl Control) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled[ctl]
}

// Busy reports whether an operation is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// Generation is bumped by every Reset and by Close.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Focused returns the input that last received focus, or nil.
func (c *Controller) Focused() field.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}

// StartEdit enters edit mode. It is a no-op when the form is already
// editable.
func (c *Controller) StartEdit() error {
	return c.startEdit(noGate)
}

func (c *Controller) startEdit(gate Control) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if gate != noGate && !c.enabled[gate] {
		return ErrUnavailable
	}
	if c.editMode {
		return nil
	}
	c.applyModeLocked(true, true)
	c.debug("edit mode started")
	return nil
}

// Press activates a control the way a click on its button would. Presses on
// a disabled affordance return a finished task failing with ErrUnavailable.
// A nil trigger is derived from the control's bound button.
func (c *Controller) Press(ctx context.Context, ctl Control, trigger *payload.Trigger) *Task {
	if trigger == nil {
		trigger = c.buttonTrigger(ctl)
	}
	switch ctl {
	case ControlSave:
		return c.submit(ctx, trigger, ControlSave, true)
	case ControlReset:
		return c.reset(ctx, ControlReset)
	case ControlStartEdit:
		return completedTask(OpStartEdit, nil, c.startEdit(ControlStartEdit))
	case ControlDelete:
		return c.delete(ctx, trigger, ControlDelete)
	case ControlFavourite:
		return c.toggleFavourite(ctx, ControlFavourite)
	default:
		return completedTask("", nil, fmt.Errorf("%w: %s", ErrUnavailable, ctl))
	}
}

// Payload returns the entries a submission started by trigger would send
// right now.
func (c *Controller) Payload(trigger *payload.Trigger) payload.Pairs {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payloadLocked(trigger)
}

func (c *Controller) payloadLocked(trigger *payload.Trigger) payload.Pairs {
	opts := payload.Options{SubmitDisabled: c.cfg.SubmitDisabled}
	return payload.Build(c.doc.Inputs(), c.store.View().UniqueID(), opts, trigger)
}

func (c *Controller) buttonTrigger(ctl Control) *payload.Trigger {
	c.mu.Lock()
	defer c.mu.Unlock()
	trigger := &payload.Trigger{Type: "click"}
	if btn, ok := c.buttons[ctl]; ok {
		trigger.Name = btn.Name()
		trigger.Value = btn.Value()
	}
	return trigger
}

// HandleKey routes a hotkey such as "ctrl+s". It reports false when no
// control is bound to combo.
func (c *Controller) HandleKey(ctx context.Context, combo string) (*Task, bool) {
	ctl, ok := c.hotkeys[NormalizeKey(combo)]
	if !ok {
		return nil, false
	}
	return c.Press(ctx, ctl, &payload.Trigger{Type: "keydown"}), true
}

// NormalizeKey canonicalises a key combination: lower case, modifiers first
// in a fixed order, common aliases folded.
func NormalizeKey(combo string) string {
	combo = strings.ToLower(strings.TrimSpace(combo))
	if combo == "" {
		return ""
	}
	aliases := map[string]string{
		"control": "ctrl",
		"escape":  "esc",
		"delete":  "del",
		"cmd":     "meta",
		"command": "meta",
		"option":  "alt",
	}
	order := map[string]int{"ctrl": 0, "alt": 1, "shift": 2, "meta": 3}
	var mods []string
	var keys []string
	for _, part := range strings.Split(combo, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if alias, ok := aliases[part]; ok {
			part = alias
		}
		if _, ok := order[part]; ok {
			mods = append(mods, part)
			continue
		}
		keys = append(keys, part)
	}
	sort.Slice(mods, func(i, j int) bool { return order[mods[i]] < order[mods[j]] })
	return strings.Join(append(mods, keys...), "+")
}

// Focus records in as the focused input and marks it active.
func (c *Controller) Focus(in field.Input) {
	if in == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focusLocked(in)
}

// Blur removes the active marker from in. The input stays the focus target
// for the next edit mode entry.
func (c *Controller) Blur(in field.Input) {
	if in == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	in.SetClass(c.cfg.Selector.Active, false)
}

// Change handles change, click and keyup events of an input. It updates the
// changed marker and, with instasave in edit mode, submits the form. task is
// nil when no save was attempted. Instant saves respect the save affordance:
// while another operation is in flight only the marker is updated and task
// fails with ErrUnavailable.
func (c *Controller) Change(ctx context.Context, in field.Input) (changed bool, task *Task) {
	if in == nil {
		return false, nil
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, nil
	}
	changed = c.tracker.Check(in)
	instasave := changed && c.cfg.InstaSave && c.editMode
	c.mu.Unlock()

	if !instasave {
		return changed, nil
	}
	c.debug("instasave", "input", field.NameOf(in))
	return changed, c.submit(ctx, &payload.Trigger{Type: payload.ReasonChange}, ControlSave, false)
}

func (c *Controller) focusLocked(in field.Input) {
	active := c.cfg.Selector.Active
	if c.focused != nil && c.focused != in {
		c.focused.SetClass(active, false)
	}
	c.focused = in
	in.SetClass(active, true)
}

// applyModeLocked stores the edit mode and writes the disabled state of
// every input. Without requestedit the form is always editable.
func (c *Controller) applyModeLocked(mode, focus bool) {
	if !c.cfg.RequestEdit {
		mode = true
	}
	c.editMode = mode
	editmode.Apply(c.doc.Inputs(), c.store, c.store.View(), mode)
	if mode && focus {
		if in := editmode.RestoreFocus(c.focused, c.doc.Find(c.cfg.SetFocusTo)); in != nil {
			c.focusLocked(in)
		}
	}
	c.updateAffordancesLocked()
}

func (c *Controller) initialMode() bool {
	return !c.cfg.RequestEdit
}

func (c *Controller) canStartEditLocked(view formstate.View) bool {
	if c.editMode || view.Deleted() {
		return false
	}
	if c.cfg.AlwaysEditable || c.store.AlwaysEditable() {
		return true
	}
	return !view.Disabled() && view.Changeable()
}

// updateAffordancesLocked recomputes every affordance and mirrors it on the
// bound buttons. Everything is disabled while an operation is in flight.
func (c *Controller) updateAffordancesLocked() {
	busy := c.pending > 0
	view := c.store.View()
	c.enabled[ControlStartEdit] = !busy && c.canStartEditLocked(view)
	c.enabled[ControlDelete] = !busy && view.Deletable()
	c.enabled[ControlSave] = !busy && c.editMode
	c.enabled[ControlReset] = !busy && c.editMode
	c.enabled[ControlFavourite] = !busy
	for ctl, btn := range c.buttons {
		btn.SetDisabled(!c.enabled[ctl])
	}
}

func (c *Controller) updateFavouriteButtonLocked() {
	btn, ok := c.buttons[ControlFavourite]
	if !ok {
		return
	}
	content := c.cfg.Content.FavouriteOff
	if c.store.View().Favourite() {
		content = c.cfg.Content.FavouriteOn
	}
	btn.SetContent(messages.Markup(content))
}

func (c *Controller) actionLocked() string {
	if action := strings.TrimSpace(c.doc.Action()); action != "" {
		return action
	}
	return c.store.View().Href()
}

// rebaseLocked makes the live input state the new baseline. The original
// disabled attribute survives; the live flag reflects the edit mode.
func (c *Controller) rebaseLocked() {
	inputs := c.doc.Inputs()
	snaps := field.CaptureAll(inputs)
	for i := range snaps {
		if old, ok := c.store.Snapshot(snaps[i].Name, snaps[i].ID); ok {
			snaps[i].Disabled = old.Disabled
		}
	}
	c.store.ReplaceSnapshots(snaps)
	c.tracker.Clear(inputs)
}

// restoreLocked writes the baseline values back into the inputs.
func (c *Controller) restoreLocked(inputs []field.Input) {
	for _, in := range inputs {
		snap, ok := c.store.SnapshotOf(in)
		if !ok {
			continue
		}
		switch {
		case snap.Kind.Checkable():
			if ch, ok := in.(field.Checkable); ok {
				ch.SetChecked(snap.BaseChecked())
			}
		case snap.Kind == field.KindMultiSelect:
			if mv, ok := in.(field.MultiValued); ok {
				mv.SetSelectedValues(snap.Values)
			}
		default:
			in.SetValue(snap.BaseValue())
		}
	}
}

// writeRowLocked copies row values into the inputs of the same name.
func (c *Controller) writeRowLocked() {
	row := c.store.Row()
	for _, in := range c.doc.Inputs() {
		name := field.NameOf(in)
		v, ok := row[name]
		if !ok {
			continue
		}
		switch in.Kind() {
		case field.KindCheckbox:
			if ch, ok := in.(field.Checkable); ok {
				ch.SetChecked(checkedFor(in, v))
			}
		case field.KindRadio:
			if ch, ok := in.(field.Checkable); ok {
				ch.SetChecked(formstate.Stringify(v) == in.Value())
			}
		case field.KindMultiSelect:
			if mv, ok := in.(field.MultiValued); ok {
				mv.SetSelectedValues(listOf(v))
			}
		default:
			in.SetValue(formstate.Stringify(v))
		}
	}
}

func checkedFor(in field.Input, v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	s := formstate.Stringify(v)
	if value := in.Value(); value != "" && value != "on" {
		return s == value
	}
	if off, ok := in.Attrs().Off(); ok && s == off {
		return false
	}
	return s == "1" || s == "true" || s == "on"
}

func listOf(v any) []string {
	switch typed := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, formstate.Stringify(item))
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		if s := formstate.Stringify(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

func (c *Controller) text(key string, data map[string]any) string {
	return c.catalog.Text(key, data)
}

func (c *Controller) debug(msg string, kv ...any) {
	if c.cfg.Debug {
		c.log.V(1).Info(msg, kv...)
	}
}

func run(fx []func()) {
	for _, f := range fx {
		f()
	}
}
