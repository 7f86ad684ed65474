package controller_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formsync/pkg/controller"
	"github.com/goliatone/go-formsync/pkg/formstate"
	"github.com/goliatone/go-formsync/pkg/memform"
	"github.com/goliatone/go-formsync/pkg/payload"
	"github.com/goliatone/go-formsync/pkg/testsupport"
	"github.com/goliatone/go-formsync/pkg/transport"
)

const formYAML = `
method: post
action: /rows/7
inputs:
  - name: title
    id: title
    label: Title
    value: Hello
  - name: active
    type: checkbox
    value: "1"
    offvalue: "0"
  - name: code
    value: C-7
    editable: never
buttons:
  - type: submit
    name: save
    value: "1"
  - type: reset
  - id: btn-edit
  - id: btn-delete
  - id: btn-fav
`

func baseRow() formstate.Row {
	return formstate.Row{
		"uniqueid":       "7",
		"idname":         "Customer 7",
		"canBeChangedBy": true,
		"isDeletable":    true,
		"isFavourite":    false,
	}
}

type setup struct {
	config  func(*controller.Config)
	answers []bool
	replies []testsupport.Reply
	options []controller.Option
}

type harness struct {
	ctl   *controller.Controller
	doc   *memform.Document
	srv   *testsupport.EnvelopeServer
	rec   *testsupport.Recorder
	hooks *hookLog
}

type hookLog struct {
	mu    sync.Mutex
	calls []string
}

func (h *hookLog) hook(name string) controller.Hook {
	return func(*transport.Envelope, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.calls = append(h.calls, name)
	}
}

func (h *hookLog) list() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func newHarness(t *testing.T, s setup) *harness {
	t.Helper()

	srv := testsupport.NewEnvelopeServer(t, s.replies...)
	doc := testsupport.MustDocument(t, formYAML)
	rec := testsupport.NewRecorder(s.answers...)
	hooks := &hookLog{}

	cfg := controller.DefaultConfig()
	cfg.URL = srv.URL
	cfg.Row = baseRow()
	cfg.BtnStartEdit = "#btn-edit"
	cfg.BtnDelete = "#btn-delete"
	cfg.BtnFavourite = "#btn-fav"
	if s.config != nil {
		s.config(&cfg)
	}

	opts := []controller.Option{
		controller.WithNotifier(rec),
		controller.WithCallbacks(controller.Callbacks{
			OnSubmitSuccess:    hooks.hook("submit:success"),
			OnSubmitFailure:    hooks.hook("submit:failure"),
			OnSubmit:           hooks.hook("submit"),
			OnDeleteSuccess:    hooks.hook("delete:success"),
			OnDeleteFailure:    hooks.hook("delete:failure"),
			OnDelete:           hooks.hook("delete"),
			OnRefreshSuccess:   hooks.hook("refresh:success"),
			OnRefreshFailure:   hooks.hook("refresh:failure"),
			OnRefresh:          hooks.hook("refresh"),
			OnFavouriteSuccess: hooks.hook("favourite:success"),
			OnFavouriteFailure: hooks.hook("favourite:failure"),
			OnFavourite:        hooks.hook("favourite"),
		}),
	}
	opts = append(opts, s.options...)

	ctl, err := controller.New(doc, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctl.Close() })

	return &harness{ctl: ctl, doc: doc, srv: srv, rec: rec, hooks: hooks}
}

func wait(t *testing.T, task *controller.Task) (*transport.Envelope, error) {
	t.Helper()
	select {
	case <-task.Done():
		return task.Wait()
	case <-time.After(5 * time.Second):
		t.Fatalf("task %s did not finish", task.Op())
		return nil, nil
	}
}

func arrival(t *testing.T, srv *testsupport.EnvelopeServer) testsupport.Request {
	t.Helper()
	select {
	case req := <-srv.Arrivals():
		return req
	case <-time.After(5 * time.Second):
		t.Fatalf("no request arrived")
		return testsupport.Request{}
	}
}

func methods(reqs []testsupport.Request) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func TestNewStartsReadOnlyWithRequestEdit(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) { c.RequestEdit = true }})

	require.Equal(t, controller.ReadOnly, h.ctl.Mode())
	for _, in := range h.doc.Inputs() {
		require.True(t, in.Disabled(), "input %s should be disabled", in.Name())
	}
	require.True(t, h.ctl.Enabled(controller.ControlStartEdit))
	require.False(t, h.ctl.Enabled(controller.ControlSave))
	require.False(t, h.ctl.Enabled(controller.ControlReset))
	require.True(t, h.ctl.Enabled(controller.ControlDelete))
	require.True(t, h.doc.ButtonFor("", "*[type=submit]").Disabled())
	require.True(t, h.doc.HasClass("rugaform__container"))
	require.True(t, h.doc.ButtonFor("", "#btn-edit").HasClass("ruga__controlbutton"))
	require.Contains(t, h.doc.ButtonFor("", "#btn-fav").Content(), "fa-star-o")

	// The baseline keeps the attribute the input had before the mode was
	// applied.
	for _, snap := range h.ctl.Snapshots() {
		require.False(t, snap.Disabled, "snapshot %s", snap.Name)
	}
}

func TestStartEditEnablesInputsAndFocuses(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) { c.RequestEdit = true }})

	_, err := wait(t, h.ctl.Press(context.Background(), controller.ControlStartEdit, nil))
	require.NoError(t, err)

	require.Equal(t, controller.Editing, h.ctl.Mode())
	title := h.doc.Input("title")
	require.False(t, title.Disabled())
	require.False(t, h.doc.Input("active").Disabled())
	require.True(t, h.doc.Input("code").Disabled(), "never-editable input stays disabled")
	require.True(t, title.Focused())
	require.True(t, title.HasClass("ruga__active"))
	start, end := title.SelectionRange()
	require.Equal(t, 5, start)
	require.Equal(t, 5, end)

	require.True(t, h.ctl.Enabled(controller.ControlSave))
	require.False(t, h.ctl.Enabled(controller.ControlStartEdit))

	_, err = wait(t, h.ctl.Press(context.Background(), controller.ControlStartEdit, nil))
	require.ErrorIs(t, err, controller.ErrUnavailable)
}

func TestStartEditRestoresLastFocus(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) { c.RequestEdit = true }})
	active := h.doc.Input("active")
	h.ctl.Focus(active)
	h.ctl.Blur(active)
	require.False(t, active.HasClass("ruga__active"))

	require.NoError(t, h.ctl.StartEdit())
	require.True(t, active.Focused())
	require.Equal(t, active, h.ctl.Focused())
}

func TestLockedRowCannotBeEdited(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) {
		c.RequestEdit = true
		c.Row["canBeChangedBy"] = false
	}})

	require.False(t, h.ctl.Enabled(controller.ControlStartEdit))
	require.False(t, h.ctl.Enabled(controller.ControlDelete))
	_, err := wait(t, h.ctl.Press(context.Background(), controller.ControlStartEdit, nil))
	require.ErrorIs(t, err, controller.ErrUnavailable)

	// Programmatic entry is not gated; the row flags still lock the inputs.
	require.NoError(t, h.ctl.StartEdit())
	require.True(t, h.doc.Input("title").Disabled())
}

func TestAlwaysEditableUnlocksStartEdit(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) {
		c.RequestEdit = true
		c.AlwaysEditable = true
		c.Row["isDisabled"] = true
	}})
	require.True(t, h.ctl.Enabled(controller.ControlStartEdit))
}

func TestSubmitSuccessRebasesAndRefreshes(t *testing.T) {
	saved := baseRow()
	saved["title"] = "World"
	fresh := baseRow()
	fresh["title"] = "Fresh"
	fresh["active"] = "1"

	h := newHarness(t, setup{replies: []testsupport.Reply{
		{Envelope: testsupport.Success("Saved", saved)},
		{Envelope: testsupport.Success("", fresh)},
	}})
	ctx := context.Background()

	title := h.doc.Input("title")
	title.SetValue("World")
	changed, task := h.ctl.Change(ctx, title)
	require.True(t, changed)
	require.Nil(t, task)
	require.True(t, title.HasClass("ruga__changed"))
	require.True(t, h.ctl.Dirty())

	submit := h.ctl.Press(ctx, controller.ControlSave, nil)
	env, err := wait(t, submit)
	require.NoError(t, err)
	require.Equal(t, "Saved", env.Message())

	follow := submit.FollowUp()
	require.NotNil(t, follow)
	_, err = follow.Wait()
	require.NoError(t, err)

	reqs := h.srv.Requests()
	require.Equal(t, []string{"POST /rows/7", "GET /rows/7"}, methods(reqs))
	require.Equal(t, payload.Pairs{
		{Name: "title", Value: "World"},
		{Name: payload.KeyUniqueID, Value: "7"},
		{Name: "active", Value: "0"},
		{Name: "save", Value: "1"},
		{Name: payload.KeySubmitReason, Value: "click"},
	}, reqs[0].Pairs)

	require.Equal(t, "Fresh", title.Value())
	require.True(t, h.doc.Input("active").Checked())
	require.False(t, title.HasClass("ruga__changed"))
	require.False(t, h.ctl.Dirty())
	require.Equal(t, "Fresh", h.ctl.Row()["title"])
	require.Equal(t, []string{"Saved"}, h.rec.Messages("notify"))
	hooks := h.hooks.list()
	require.ElementsMatch(t, []string{"submit:success", "submit", "refresh:success", "refresh"}, hooks)
	require.Less(t, slices.Index(hooks, "submit:success"), slices.Index(hooks, "submit"))
	require.False(t, h.ctl.Busy())
	require.True(t, h.ctl.Enabled(controller.ControlSave))
}

func TestSubmitNavigatesToSuccessURI(t *testing.T) {
	env := testsupport.Success("", nil)
	env.SuccessURI = "/rows"
	h := newHarness(t, setup{replies: []testsupport.Reply{{Envelope: env}}})

	task := h.ctl.Submit(context.Background(), nil)
	_, err := wait(t, task)
	require.NoError(t, err)

	require.Nil(t, task.FollowUp())
	require.Equal(t, []string{"/rows"}, h.doc.Navigations())
	require.Len(t, h.srv.Requests(), 1)
	require.Empty(t, h.rec.Messages("notify"), "empty message shows no notification")
}

func TestSubmitSuppressReload(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) { c.SuppressReload = true }})

	task := h.ctl.Submit(context.Background(), &payload.Trigger{Type: "click"})
	_, err := wait(t, task)
	require.NoError(t, err)
	require.Nil(t, task.FollowUp())
	require.Len(t, h.srv.Requests(), 1)
}

func TestSubmitBusinessFailureKeepsChanges(t *testing.T) {
	h := newHarness(t, setup{replies: []testsupport.Reply{{Envelope: testsupport.Failure("Title <b>taken</b>")}}})
	title := h.doc.Input("title")
	title.SetValue("Taken")
	h.ctl.Change(context.Background(), title)

	_, err := wait(t, h.ctl.Submit(context.Background(), nil))
	require.Error(t, err)
	require.True(t, transport.IsBusiness(err))

	notices := h.rec.Notices()
	require.Len(t, notices, 1)
	require.Equal(t, "alert", notices[0].Kind)
	require.Equal(t, "Form", notices[0].Title)
	require.Equal(t, "Title <b>taken</b>", notices[0].Message)

	require.Equal(t, []string{"submit:failure", "submit"}, h.hooks.list())
	require.True(t, h.ctl.Dirty())
	require.Equal(t, "Hello", h.ctl.Snapshots()[0].BaseValue())
	require.Len(t, h.srv.Requests(), 1, "a failed submit does not refresh")
}

func TestSubmitTransportFailureShowsGenericText(t *testing.T) {
	h := newHarness(t, setup{replies: []testsupport.Reply{{Status: 500, Raw: "boom"}}})

	_, err := wait(t, h.ctl.Submit(context.Background(), nil))
	require.True(t, transport.IsTransport(err))
	require.Equal(t, []string{"The form data could not be sent to the server."}, h.rec.Messages("alert"))
	require.Equal(t, []string{"submit:failure", "submit"}, h.hooks.list())
}

func TestValidationBlocksSubmit(t *testing.T) {
	schema := writeFile(t, "schema.yaml", `
type: object
required: [title]
properties:
  title:
    type: string
`)
	h := newHarness(t, setup{config: func(c *controller.Config) {
		c.ValidationOptions.Schema = schema
	}})
	h.doc.Input("title").SetValue("")

	_, err := wait(t, h.ctl.Submit(context.Background(), nil))
	require.True(t, controller.IsValidation(err))
	require.Empty(t, h.srv.Requests())
	require.Equal(t, []string{"Title: is required"}, h.rec.Messages("notify"))
	require.Empty(t, h.hooks.list())
}

func TestValidationCanBeSwitchedOff(t *testing.T) {
	h := newHarness(t, setup{
		config: func(c *controller.Config) {
			c.Validation = false
			c.SuppressReload = true
		},
		options: []controller.Option{controller.WithValidator(rejectAll{})},
	})

	_, err := wait(t, h.ctl.Submit(context.Background(), nil))
	require.NoError(t, err)
	require.Len(t, h.srv.Requests(), 1)
}

func TestPressWhileBusyIsRejected(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) { c.SuppressReload = true }})
	h.srv.Block()
	ctx := context.Background()

	first := h.ctl.Press(ctx, controller.ControlSave, nil)
	arrival(t, h.srv)

	require.True(t, h.ctl.Busy())
	for _, ctl := range []controller.Control{controller.ControlSave, controller.ControlReset, controller.ControlDelete, controller.ControlFavourite} {
		require.False(t, h.ctl.Enabled(ctl), "%s should be disabled while busy", ctl)
	}
	require.True(t, h.doc.ButtonFor("", "*[type=submit]").Disabled())

	_, err := wait(t, h.ctl.Press(ctx, controller.ControlSave, nil))
	require.ErrorIs(t, err, controller.ErrUnavailable)
	task, ok := h.ctl.HandleKey(ctx, "Control+S")
	require.True(t, ok)
	_, err = wait(t, task)
	require.ErrorIs(t, err, controller.ErrUnavailable)

	h.srv.Release()
	_, err = wait(t, first)
	require.NoError(t, err)
	require.Len(t, h.srv.Requests(), 1)
	require.True(t, h.ctl.Enabled(controller.ControlSave))
}

func TestInstaSaveWhileBusyIsRejected(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) { c.InstaSave = true }})
	h.srv.Block()
	ctx := context.Background()
	title := h.doc.Input("title")

	title.SetValue("One")
	changed, first := h.ctl.Change(ctx, title)
	require.True(t, changed)
	require.NotNil(t, first)
	arrival(t, h.srv)
	require.True(t, h.ctl.Busy())

	title.SetValue("Two")
	changed, second := h.ctl.Change(ctx, title)
	require.True(t, changed)
	require.True(t, title.HasClass("ruga__changed"))
	require.NotNil(t, second)
	_, err := wait(t, second)
	require.ErrorIs(t, err, controller.ErrUnavailable)

	h.srv.Release()
	_, err = wait(t, first)
	require.NoError(t, err)
	reqs := h.srv.Requests()
	require.Len(t, reqs, 1)
	sent, _ := reqs[0].Pairs.Get("title")
	require.Equal(t, "One", sent)
}

func TestStaleResponses(t *testing.T) {
	for _, policy := range []string{controller.StaleApply, controller.StaleDrop} {
		t.Run(policy, func(t *testing.T) {
			saved := baseRow()
			saved["title"] = "From submit"
			h := newHarness(t, setup{
				config: func(c *controller.Config) {
					c.SuppressReload = true
					c.StaleResponses = policy
				},
				replies: []testsupport.Reply{
					{Envelope: testsupport.Success("", saved)},
					{Envelope: testsupport.Success("", baseRow())},
				},
			})
			h.srv.Block()
			ctx := context.Background()

			submit := h.ctl.Submit(ctx, nil)
			arrival(t, h.srv)
			gen := h.ctl.Generation()

			reset := h.ctl.Reset(ctx)
			arrival(t, h.srv)
			require.Equal(t, gen+1, h.ctl.Generation())

			h.srv.Release()
			_, submitErr := wait(t, submit)
			_, resetErr := wait(t, reset)
			require.NoError(t, resetErr)

			if policy == controller.StaleDrop {
				require.ErrorIs(t, submitErr, controller.ErrStale)
				require.NotContains(t, h.hooks.list(), "submit")
				return
			}
			require.NoError(t, submitErr)
			require.Contains(t, h.hooks.list(), "submit:success")
		})
	}
}

func TestResetRestoresBaseline(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) { c.RequestEdit = true }})
	require.NoError(t, h.ctl.StartEdit())

	title := h.doc.Input("title")
	active := h.doc.Input("active")
	title.SetValue("Changed")
	active.SetChecked(true)
	h.ctl.Change(context.Background(), title)
	h.ctl.Change(context.Background(), active)

	_, err := wait(t, h.ctl.Press(context.Background(), controller.ControlReset, nil))
	require.NoError(t, err)

	require.Equal(t, "Hello", title.Value())
	require.False(t, active.Checked())
	require.False(t, title.HasClass("ruga__changed"))
	require.Equal(t, controller.ReadOnly, h.ctl.Mode())
	require.True(t, title.Disabled())
	require.Equal(t, []string{"Editing cancelled"}, h.rec.Messages("notify"))
	require.Equal(t, []string{"GET /rows/7"}, methods(h.srv.Requests()))
}

func TestRefreshReloadStrategy(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) { c.Refresh = controller.RefreshReload }})

	_, err := wait(t, h.ctl.Refresh(context.Background()))
	require.NoError(t, err)
	require.Equal(t, 1, h.doc.Reloads())
	require.Empty(t, h.srv.Requests())
}

func TestRefreshWithEmptyDataKeepsRow(t *testing.T) {
	h := newHarness(t, setup{replies: []testsupport.Reply{{Raw: `{"rugaform_data": []}`}}})

	_, err := wait(t, h.ctl.Refresh(context.Background()))
	require.NoError(t, err)
	require.Equal(t, "Customer 7", h.ctl.Row()["idname"])
	require.Equal(t, "Hello", h.doc.Input("title").Value())
}

func TestDeleteAccepted(t *testing.T) {
	env := testsupport.Success("Deleted", formstate.Row{"uniqueid": "7", "isDeleted": true})
	env.SuccessURI = "/rows"
	h := newHarness(t, setup{answers: []bool{true}, replies: []testsupport.Reply{{Envelope: env}}})

	_, err := wait(t, h.ctl.Press(context.Background(), controller.ControlDelete, nil))
	require.NoError(t, err)

	reqs := h.srv.Requests()
	require.Equal(t, []string{"DELETE /rows/7"}, methods(reqs))
	uid, ok := reqs[0].Pairs.Get(payload.KeyUniqueID)
	require.True(t, ok)
	require.Equal(t, "7", uid)

	notices := h.rec.Notices()
	require.Equal(t, "confirm", notices[0].Kind)
	require.Equal(t, "Confirmation", notices[0].Title)
	require.Equal(t, "Do you really want to delete the record Customer 7?", notices[0].Message)
	require.Equal(t, []string{"Ok", "Deleted"}, h.rec.Messages("notify"))
	require.Equal(t, []string{"/rows"}, h.doc.Navigations())
	require.False(t, h.ctl.Enabled(controller.ControlDelete), "deleted rows cannot be deleted again")
	require.Equal(t, []string{"delete:success", "delete"}, h.hooks.list())
}

func TestDeleteDeclined(t *testing.T) {
	h := newHarness(t, setup{answers: []bool{false}})

	_, err := wait(t, h.ctl.Delete(context.Background(), nil))
	require.ErrorIs(t, err, controller.ErrDeclined)
	require.Empty(t, h.srv.Requests())
	require.Equal(t, []string{"Delete cancelled"}, h.rec.Messages("notify"))
	require.False(t, h.ctl.Busy())
	require.Empty(t, h.hooks.list())
}

func TestDeleteCountsAsBusyWhileConfirming(t *testing.T) {
	h := newHarness(t, setup{
		answers: []bool{true},
		config:  func(c *controller.Config) { c.SuppressReload = true },
	})
	h.rec.Hold = make(chan struct{})
	ctx := context.Background()

	task := h.ctl.Press(ctx, controller.ControlDelete, nil)
	select {
	case <-h.rec.Confirms():
	case <-time.After(5 * time.Second):
		t.Fatalf("confirmation not requested")
	}

	require.True(t, h.ctl.Busy())
	_, err := wait(t, h.ctl.Press(ctx, controller.ControlSave, nil))
	require.ErrorIs(t, err, controller.ErrUnavailable)

	close(h.rec.Hold)
	_, err = wait(t, task)
	require.NoError(t, err)
	require.Len(t, h.srv.Requests(), 1)
}

func TestDeleteRequiresDeletableRow(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) { c.Row["isNew"] = true }})

	_, err := wait(t, h.ctl.Delete(context.Background(), nil))
	require.ErrorIs(t, err, controller.ErrUnavailable)
	require.Empty(t, h.rec.Notices())
}

func TestToggleFavourite(t *testing.T) {
	h := newHarness(t, setup{replies: []testsupport.Reply{
		{Envelope: testsupport.Success("", formstate.Row{"isFavourite": true, "title": "ignored"})},
		{Envelope: testsupport.Success("", nil)},
	}})
	ctx := context.Background()

	_, err := wait(t, h.ctl.Press(ctx, controller.ControlFavourite, nil))
	require.NoError(t, err)
	row := h.ctl.Row()
	require.Equal(t, true, row["isFavourite"])
	require.NotContains(t, row, "title", "only the favourite flag is taken from the response")
	require.Contains(t, h.doc.ButtonFor("", "#btn-fav").Content(), "text-yellow")

	_, err = wait(t, h.ctl.ToggleFavourite(ctx))
	require.NoError(t, err)
	require.Equal(t, false, h.ctl.Row()["isFavourite"])

	reqs := h.srv.Requests()
	require.Equal(t, payload.Pairs{{Name: payload.KeyFavourite, Value: "true"}}, reqs[0].Pairs)
	require.Equal(t, payload.Pairs{{Name: payload.KeyFavourite, Value: "false"}}, reqs[1].Pairs)
	require.Equal(t, []string{"favourite:success", "favourite", "favourite:success", "favourite"}, h.hooks.list())
}

func TestInstaSave(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) { c.InstaSave = true }})
	title := h.doc.Input("title")
	title.SetValue("Quick")

	changed, task := h.ctl.Change(context.Background(), title)
	require.True(t, changed)
	require.NotNil(t, task)
	_, err := wait(t, task)
	require.NoError(t, err)
	require.Nil(t, task.FollowUp(), "instant saves never reload")

	reqs := h.srv.Requests()
	require.Len(t, reqs, 1)
	reason, _ := reqs[0].Pairs.Get(payload.KeySubmitReason)
	require.Equal(t, payload.ReasonChange, reason)
	require.False(t, h.ctl.Dirty())

	// Unchanged input sends nothing.
	changed, task = h.ctl.Change(context.Background(), title)
	require.False(t, changed)
	require.Nil(t, task)
}

func TestInstaSaveOnlyInEditMode(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) {
		c.InstaSave = true
		c.RequestEdit = true
	}})
	title := h.doc.Input("title")
	title.SetValue("Quick")

	changed, task := h.ctl.Change(context.Background(), title)
	require.True(t, changed)
	require.Nil(t, task)
}

func TestHotkeys(t *testing.T) {
	h := newHarness(t, setup{config: func(c *controller.Config) {
		c.RequestEdit = true
		c.SuppressReload = true
	}})
	ctx := context.Background()

	_, ok := h.ctl.HandleKey(ctx, "ctrl+q")
	require.False(t, ok)

	task, ok := h.ctl.HandleKey(ctx, "B+Ctrl")
	require.True(t, ok)
	_, err := wait(t, task)
	require.NoError(t, err)
	require.Equal(t, controller.Editing, h.ctl.Mode())

	task, ok = h.ctl.HandleKey(ctx, "ctrl+s")
	require.True(t, ok)
	_, err = wait(t, task)
	require.NoError(t, err)

	reqs := h.srv.Requests()
	require.Len(t, reqs, 1)
	reason, _ := reqs[0].Pairs.Get(payload.KeySubmitReason)
	require.Equal(t, "keydown", reason)
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"Ctrl+S":            "ctrl+s",
		"shift + control+x": "ctrl+shift+x",
		"Escape":            "esc",
		"cmd+alt+Delete":    "alt+meta+del",
		"":                  "",
	}
	for in, want := range cases {
		require.Equal(t, want, controller.NormalizeKey(in), "NormalizeKey(%q)", in)
	}
}

func TestCancelAppliesNothing(t *testing.T) {
	h := newHarness(t, setup{})
	h.srv.Block()
	defer h.srv.Release()

	task := h.ctl.Submit(context.Background(), nil)
	arrival(t, h.srv)
	task.Cancel()

	_, err := wait(t, task)
	require.ErrorIs(t, err, controller.ErrCancelled)
	require.Empty(t, h.hooks.list())
	require.Empty(t, h.rec.Notices())
	require.False(t, h.ctl.Busy())
}

func TestCloseCancelsRunningTasks(t *testing.T) {
	h := newHarness(t, setup{})
	h.srv.Block()
	defer h.srv.Release()

	task := h.ctl.Refresh(context.Background())
	arrival(t, h.srv)

	require.NoError(t, h.ctl.Close())
	_, err := wait(t, task)
	require.ErrorIs(t, err, controller.ErrCancelled)

	_, err = wait(t, h.ctl.Submit(context.Background(), nil))
	require.ErrorIs(t, err, controller.ErrClosed)
	require.ErrorIs(t, h.ctl.StartEdit(), controller.ErrClosed)
	require.NoError(t, h.ctl.Close())
}

func TestActionFallsBackToRowHref(t *testing.T) {
	srv := testsupport.NewEnvelopeServer(t)
	doc := memform.New("post", "")
	_, err := doc.AddInput(memform.InputSpec{Name: "title", Value: "x"})
	require.NoError(t, err)

	cfg := controller.DefaultConfig()
	cfg.URL = srv.URL
	cfg.Row = formstate.Row{"html_href": "/rows/9"}
	cfg.SuppressReload = true
	ctl, err := controller.New(doc, cfg)
	require.NoError(t, err)
	defer ctl.Close()

	require.Equal(t, "/rows/9", doc.Action())
	_, err = wait(t, ctl.Submit(context.Background(), nil))
	require.NoError(t, err)
	require.Equal(t, []string{"POST /rows/9"}, methods(srv.Requests()))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	doc := memform.New("post", "/rows/1")
	cfg := controller.DefaultConfig()
	cfg.StaleResponses = "sometimes"

	_, err := controller.New(doc, cfg)
	require.ErrorIs(t, err, controller.ErrInvalidConfig)

	_, err = controller.New(nil, controller.DefaultConfig())
	require.Error(t, err)
}

func TestSameNameRadiosWithoutIDsStartClean(t *testing.T) {
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
`)
	ctl, err := controller.New(doc, controller.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctl.Close() })

	require.Equal(t, controller.Editing, ctl.Mode())
	radios := doc.InputsNamed("size")
	require.True(t, radios[0].Disabled(), "baseline disabled radio stays disabled")
	require.False(t, radios[1].Disabled(), "enabled radio must not take its sibling's baseline")
	require.False(t, ctl.Dirty())
	for _, in := range radios {
		changed, task := ctl.Change(context.Background(), in)
		require.False(t, changed)
		require.Nil(t, task)
	}
}

func TestResetWithoutActionReportsFailure(t *testing.T) {
	doc := testsupport.MustDocument(t, `
inputs:
  - name: title
    value: Hello
`)
	rec := testsupport.NewRecorder()
	hooks := &hookLog{}
	ctl, err := controller.New(doc, controller.DefaultConfig(),
		controller.WithNotifier(rec),
		controller.WithCallbacks(controller.Callbacks{
			OnRefreshSuccess: hooks.hook("refresh:success"),
			OnRefreshFailure: hooks.hook("refresh:failure"),
			OnRefresh:        hooks.hook("refresh"),
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctl.Close() })

	doc.Input("title").SetValue("Changed")
	_, err = wait(t, ctl.Reset(context.Background()))
	require.ErrorIs(t, err, transport.ErrNoAction)
	require.True(t, transport.IsTransport(err))

	require.Equal(t, "Hello", doc.Input("title").Value(), "changes are discarded before the refresh")
	require.Equal(t, []string{"Editing cancelled"}, rec.Messages("notify"))
	require.Equal(t, []string{"The command could not be sent to the server."}, rec.Messages("alert"))
	require.Equal(t, []string{"refresh:failure", "refresh"}, hooks.list())
	require.False(t, ctl.Busy())
}
