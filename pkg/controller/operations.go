package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-formsync/pkg/field"
	"github.com/goliatone/go-formsync/pkg/messages"
	"github.com/goliatone/go-formsync/pkg/notify"
	"github.com/goliatone/go-formsync/pkg/payload"
	"github.com/goliatone/go-formsync/pkg/transport"
	"github.com/goliatone/go-formsync/pkg/validation"
)

var errEmptyResponse = errors.New("empty response")

type call func(ctx context.Context) (*transport.Envelope, error)

// outcome is what applying a response left to do once the lock is released.
type outcome struct {
	effects  []func()
	followUp *Task
}

// Submit validates the form and sends it. On success the inputs become the
// new baseline and, unless reloads are suppressed, the form navigates to the
// success URI or refreshes.
func (c *Controller) Submit(ctx context.Context, trigger *payload.Trigger) *Task {
	return c.submit(ctx, trigger, noGate, true)
}

func (c *Controller) submit(ctx context.Context, trigger *payload.Trigger, gate Control, reload bool) *Task {
	c.mu.Lock()
	if err := c.gateLocked(gate); err != nil {
		c.mu.Unlock()
		return completedTask(transport.OpSubmit, nil, err)
	}
	inputs := c.doc.Inputs()
	if c.cfg.Validation {
		if res := c.validator.Validate(ctx, inputs); !res.Valid {
			fx := c.validationNoticesLocked(res.Errors)
			c.mu.Unlock()
			c.debug("submit blocked by validation", "issues", len(res.Errors))
			run(fx)
			return completedTask(transport.OpSubmit, nil, &ValidationError{Issues: res.Errors})
		}
	}

	pairs := c.payloadLocked(trigger)
	method, action := c.doc.Method(), c.actionLocked()
	task := newTask(ctx, transport.OpSubmit)
	gen := c.beginLocked(task)
	c.mu.Unlock()

	c.debug("submit", "method", method, "action", action, "payload", pairs.Encode())
	go c.execute(task, gen,
		func(ctx context.Context) (*transport.Envelope, error) {
			return c.transport.Submit(ctx, method, action, pairs)
		},
		func(env *transport.Envelope, err error) outcome {
			return c.applySubmitLocked(task.parent, env, err, reload)
		})
	return task
}

func (c *Controller) applySubmitLocked(ctx context.Context, env *transport.Envelope, err error, reload bool) outcome {
	if err != nil {
		return outcome{effects: c.failureEffectsLocked(transport.OpSubmit, env, err)}
	}
	var out outcome
	out.effects = append(out.effects, c.successNotice(env)...)
	if env.HasData() {
		c.store.ReplaceRow(env.Data)
	}
	c.rebaseLocked()
	c.applyModeLocked(c.editMode, false)
	c.updateFavouriteButtonLocked()
	out.effects = append(out.effects, c.callbacks.effects(transport.OpSubmit, env, nil)...)
	if reload && !c.cfg.SuppressReload {
		out.followUp = c.navigateOrRefreshLocked(ctx, env)
	}
	return out
}

// Reset discards unsaved changes, returns to the initial edit mode and
// refreshes the form. It is always allowed, also while another operation
// is in flight; responses of operations started before the reset are then
// handled according to the stale response policy.
func (c *Controller) Reset(ctx context.Context) *Task {
	return c.reset(ctx, noGate)
}

func (c *Controller) reset(ctx context.Context, gate Control) *Task {
	c.mu.Lock()
	if err := c.gateLocked(gate); err != nil {
		c.mu.Unlock()
		return completedTask(transport.OpRefresh, nil, err)
	}
	c.generation++
	inputs := c.doc.Inputs()
	c.restoreLocked(inputs)
	c.tracker.Clear(inputs)
	c.applyModeLocked(c.initialMode(), false)

	task := c.refreshLocked(ctx)
	gen := c.generation
	c.mu.Unlock()

	c.debug("reset", "generation", gen)
	c.notifier.Notify(c.text(messages.EditCancelled, nil), notify.LevelError, infoDuration)
	if task == nil {
		return completedTask(transport.OpRefresh, nil, nil)
	}
	return task
}

// Refresh re-reads the row. With the reload strategy the document reloads
// itself and the returned task is already finished.
func (c *Controller) Refresh(ctx context.Context) *Task {
	c.mu.Lock()
	if err := c.gateLocked(noGate); err != nil {
		c.mu.Unlock()
		return completedTask(transport.OpRefresh, nil, err)
	}
	task := c.refreshLocked(ctx)
	c.mu.Unlock()
	if task == nil {
		return completedTask(transport.OpRefresh, nil, nil)
	}
	return task
}

func (c *Controller) refreshLocked(ctx context.Context) *Task {
	if c.cfg.Refresh == RefreshReload {
		c.doc.Reload()
		c.debug("reload requested")
		return nil
	}
	action := c.actionLocked()
	task := newTask(ctx, transport.OpRefresh)
	gen := c.beginLocked(task)
	c.debug("refresh", "action", action)
	go c.execute(task, gen,
		func(ctx context.Context) (*transport.Envelope, error) {
			return c.transport.Refresh(ctx, action)
		},
		c.applyRefreshLocked)
	return task
}

func (c *Controller) applyRefreshLocked(env *transport.Envelope, err error) outcome {
	if err != nil {
		return outcome{effects: c.failureEffectsLocked(transport.OpRefresh, env, err)}
	}
	var out outcome
	out.effects = append(out.effects, c.successNotice(env)...)
	if env.HasData() {
		c.store.ReplaceRow(env.Data)
		c.writeRowLocked()
	}
	c.rebaseLocked()
	c.applyModeLocked(c.initialMode(), true)
	c.updateFavouriteButtonLocked()
	out.effects = append(out.effects, c.callbacks.effects(transport.OpRefresh, env, nil)...)
	return out
}

// Delete asks for confirmation and deletes the row. The row must be
// deletable.
func (c *Controller) Delete(ctx context.Context, trigger *payload.Trigger) *Task {
	return c.delete(ctx, trigger, noGate)
}

func (c *Controller) delete(ctx context.Context, trigger *payload.Trigger, gate Control) *Task {
	c.mu.Lock()
	if err := c.gateLocked(gate); err != nil {
		c.mu.Unlock()
		return completedTask(transport.OpDelete, nil, err)
	}
	view := c.store.View()
	if !view.Deletable() {
		c.mu.Unlock()
		return completedTask(transport.OpDelete, nil, ErrUnavailable)
	}
	task := newTask(ctx, transport.OpDelete)
	// The operation counts as in flight while the confirmation is open.
	gen := c.beginLocked(task)
	title := c.text(messages.ConfirmTitle, nil)
	question := c.text(messages.DeleteConfirm, map[string]any{"idname": view.IDName()})
	c.mu.Unlock()

	go c.confirmDelete(task, gen, trigger, title, question)
	return task
}

func (c *Controller) confirmDelete(task *Task, gen uint64, trigger *payload.Trigger, title, question string) {
	answer := make(chan bool, 1)
	reply := func(ok bool) func() {
		return func() {
			select {
			case answer <- ok:
			default:
			}
		}
	}
	c.notifier.Confirm(task.ctx, title, question, reply(true), reply(false))

	var accepted bool
	select {
	case accepted = <-answer:
	case <-task.ctx.Done():
		c.abort(task, ErrCancelled)
		return
	}
	if !accepted {
		c.notifier.Notify(c.text(messages.DeleteCancelled, nil), notify.LevelError, infoDuration)
		c.abort(task, ErrDeclined)
		return
	}
	c.notifier.Notify(c.text(messages.DeleteAccepted, nil), notify.LevelSuccess, infoDuration)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.abort(task, ErrClosed)
		return
	}
	pairs := c.payloadLocked(trigger)
	action := c.actionLocked()
	c.mu.Unlock()

	c.debug("delete", "action", action, "payload", pairs.Encode())
	c.execute(task, gen,
		func(ctx context.Context) (*transport.Envelope, error) {
			return c.transport.Delete(ctx, action, pairs)
		},
		func(env *transport.Envelope, err error) outcome {
			return c.applyDeleteLocked(task.parent, env, err)
		})
}

func (c *Controller) applyDeleteLocked(ctx context.Context, env *transport.Envelope, err error) outcome {
	if err != nil {
		return outcome{effects: c.failureEffectsLocked(transport.OpDelete, env, err)}
	}
	var out outcome
	out.effects = append(out.effects, c.successNotice(env)...)
	if env.HasData() {
		c.store.ReplaceRow(env.Data)
	}
	c.applyModeLocked(c.editMode, false)
	c.updateFavouriteButtonLocked()
	out.effects = append(out.effects, c.callbacks.effects(transport.OpDelete, env, nil)...)
	if !c.cfg.SuppressReload {
		out.followUp = c.navigateOrRefreshLocked(ctx, env)
	}
	return out
}

// ToggleFavourite flips the favourite flag of the row. Only that flag of the
// row is updated from the response.
func (c *Controller) ToggleFavourite(ctx context.Context) *Task {
	return c.toggleFavourite(ctx, noGate)
}

func (c *Controller) toggleFavourite(ctx context.Context, gate Control) *Task {
	c.mu.Lock()
	if err := c.gateLocked(gate); err != nil {
		c.mu.Unlock()
		return completedTask(transport.OpFavourite, nil, err)
	}
	want := !c.store.View().Favourite()
	action := c.actionLocked()
	task := newTask(ctx, transport.OpFavourite)
	gen := c.beginLocked(task)
	c.mu.Unlock()

	c.debug("toggle favourite", "action", action, "favourite", want)
	go c.execute(task, gen,
		func(ctx context.Context) (*transport.Envelope, error) {
			return c.transport.ToggleFavourite(ctx, action, want)
		},
		func(env *transport.Envelope, err error) outcome {
			return c.applyFavouriteLocked(env, err, want)
		})
	return task
}

func (c *Controller) applyFavouriteLocked(env *transport.Envelope, err error, want bool) outcome {
	if err != nil {
		return outcome{effects: c.failureEffectsLocked(transport.OpFavourite, env, err)}
	}
	key := c.store.Keys().IsFavourite
	var value any = want
	if env.HasData() {
		if v, ok := env.Data[key]; ok {
			value = v
		}
	}
	c.store.SetRowValue(key, value)
	c.updateFavouriteButtonLocked()
	return outcome{effects: c.callbacks.effects(transport.OpFavourite, env, nil)}
}

func (c *Controller) navigateOrRefreshLocked(ctx context.Context, env *transport.Envelope) *Task {
	if uri := strings.TrimSpace(string(env.SuccessURI)); uri != "" {
		c.debug("navigate", "url", uri)
		c.doc.Navigate(uri)
		return nil
	}
	return c.refreshLocked(ctx)
}

func (c *Controller) gateLocked(gate Control) error {
	if c.closed {
		return ErrClosed
	}
	if gate != noGate && !c.enabled[gate] {
		return ErrUnavailable
	}
	return nil
}

// beginLocked registers task as in flight and disables every affordance.
func (c *Controller) beginLocked(task *Task) uint64 {
	c.pending++
	c.tasks[task] = struct{}{}
	c.wg.Add(1)
	c.updateAffordancesLocked()
	return c.generation
}

func (c *Controller) endLocked(task *Task) {
	c.pending--
	delete(c.tasks, task)
	c.updateAffordancesLocked()
}

// abort ends a task that never reached the network.
func (c *Controller) abort(task *Task, err error) {
	c.mu.Lock()
	c.endLocked(task)
	c.mu.Unlock()
	c.wg.Done()
	task.finish(nil, err)
}

// execute performs the request and applies its outcome. The task finishes
// after its effects ran and its follow-up refresh, if any, completed.
func (c *Controller) execute(task *Task, gen uint64, do call, apply func(*transport.Envelope, error) outcome) {
	defer c.wg.Done()

	env, err := do(task.ctx)
	switch {
	case err != nil:
	case env == nil:
		err = &transport.Error{Op: task.op, Err: errEmptyResponse}
	default:
		err = env.Err(task.op)
	}
	if err != nil && transport.IsTransport(err) {
		c.log.Error(err, "request failed", "op", string(task.op))
	}

	c.mu.Lock()
	var out outcome
	switch {
	case task.ctx.Err() != nil:
		env, err = nil, ErrCancelled
	case c.closed:
		env, err = nil, ErrClosed
	case gen != c.generation && c.cfg.StaleResponses == StaleDrop:
		c.debug("stale response dropped", "op", string(task.op), "generation", gen)
		err = ErrStale
	default:
		if gen != c.generation {
			c.debug("stale response applied", "op", string(task.op), "generation", gen)
		}
		out = apply(env, err)
	}
	c.endLocked(task)
	c.mu.Unlock()

	c.debug("response", "op", string(task.op), "severity", env.Severity(), "error", errString(err))
	run(out.effects)
	if out.followUp != nil {
		task.followUp = out.followUp
		<-out.followUp.Done()
	}
	task.finish(env, err)
}

func (c *Controller) successNotice(env *transport.Envelope) []func() {
	msg := messages.Message(env.Message())
	if msg == "" {
		return nil
	}
	return []func(){func() { c.notifier.Notify(msg, notify.LevelSuccess, successDuration) }}
}

// failureEffectsLocked alerts the user and schedules the failure hooks.
// Business failures show the server message; anything else a generic text.
func (c *Controller) failureEffectsLocked(op transport.Operation, env *transport.Envelope, err error) []func() {
	title := c.text(messages.AlertTitle, nil)
	var msg string
	if transport.IsBusiness(err) {
		msg = messages.Message(env.Message())
	}
	if msg == "" {
		msg = c.text(failureKey(op), nil)
	}
	fx := []func(){func() { c.notifier.Alert(title, msg) }}
	return append(fx, c.callbacks.effects(op, env, err)...)
}

func failureKey(op transport.Operation) string {
	switch op {
	case transport.OpDelete:
		return messages.DeleteFailed
	case transport.OpFavourite, transport.OpRefresh:
		return messages.RequestFailed
	default:
		return messages.SubmitFailed
	}
}

// validationNoticesLocked formats one notification per issue, prefixed with
// the input's label when known.
func (c *Controller) validationNoticesLocked(issues []validation.Issue) []func() {
	fx := make([]func(), 0, len(issues))
	for _, issue := range issues {
		msg := issue.Message
		if issue.Field != "" {
			label := issue.Field
			if snap, ok := c.lookupSnapshotLocked(issue.Field, issue.ID); ok {
				label = snap.DisplayLabel()
			}
			msg = c.text(messages.ValidationIssue, map[string]any{"label": label, "message": issue.Message})
		}
		fx = append(fx, func() { c.notifier.Notify(msg, notify.LevelError, validationDuration) })
	}
	return fx
}

func (c *Controller) lookupSnapshotLocked(name, id string) (field.Snapshot, bool) {
	if snap, ok := c.store.Snapshot(name, id); ok {
		return snap, true
	}
	for _, snap := range c.store.Snapshots() {
		if snap.Name == name {
			return snap, true
		}
	}
	return field.Snapshot{}, false
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
