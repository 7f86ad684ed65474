package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-formsync/pkg/controller"
	"github.com/goliatone/go-formsync/pkg/field"
	"github.com/goliatone/go-formsync/pkg/memform"
	"github.com/goliatone/go-formsync/pkg/prompt"
	"github.com/goliatone/go-formsync/pkg/transport"
)

// session is the interactive edit loop.
type session struct {
	ctl    *controller.Controller
	doc    *memform.Document
	driver prompt.Driver
	out    io.Writer
}

type action struct {
	label string
	run   func(ctx context.Context) error
}

var errQuit = errors.New("quit")

func (s *session) run(ctx context.Context, refresh bool) error {
	if refresh {
		if _, err := s.ctl.Refresh(ctx).Wait(); err != nil {
			return err
		}
	}
	for {
		actions := s.actions()
		labels := make([]string, len(actions))
		for i, a := range actions {
			labels[i] = a.label
		}
		idx, err := s.driver.Select(ctx, prompt.SelectConfig{
			Message: fmt.Sprintf("Record %s (%s)", s.recordName(), s.ctl.Mode()),
			Options: labels,
		})
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				return nil
			}
			return err
		}
		if idx < 0 || idx >= len(actions) {
			return fmt.Errorf("formsync: invalid choice %d", idx)
		}
		err = actions[idx].run(ctx)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, prompt.ErrAborted):
		case err != nil && !reported(err):
			return err
		}
	}
}

// actions lists what can be done in the current state.
func (s *session) actions() []action {
	var out []action
	if s.ctl.Enabled(controller.ControlStartEdit) {
		out = append(out, action{"Start editing", s.press(controller.ControlStartEdit)})
	}
	if s.ctl.Mode() == controller.Editing {
		out = append(out, action{"Edit field", s.editField})
	}
	if s.ctl.Enabled(controller.ControlSave) {
		out = append(out, action{"Save", s.press(controller.ControlSave)})
	}
	if s.ctl.Enabled(controller.ControlReset) {
		out = append(out, action{"Reset", s.press(controller.ControlReset)})
	}
	if s.ctl.Enabled(controller.ControlDelete) {
		out = append(out, action{"Delete", s.press(controller.ControlDelete)})
	}
	if s.ctl.Enabled(controller.ControlFavourite) {
		out = append(out, action{"Toggle favourite", s.press(controller.ControlFavourite)})
	}
	out = append(out,
		action{"Show row", func(context.Context) error { return printRow(s.out, s.ctl.Row()) }},
		action{"Quit", func(context.Context) error { return errQuit }},
	)
	return out
}

func (s *session) press(ctl controller.Control) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.ctl.Press(ctx, ctl, nil).Wait()
		return err
	}
}

func (s *session) recordName() string {
	row := s.ctl.Row()
	if name, ok := row["idname"]; ok && name != nil {
		return fmt.Sprint(name)
	}
	if id, ok := row["uniqueid"]; ok && id != nil {
		return fmt.Sprint(id)
	}
	return "(new)"
}

func (s *session) editField(ctx context.Context) error {
	var editable []*memform.Input
	var labels []string
	for _, in := range s.doc.Inputs() {
		if in.Disabled() {
			continue
		}
		concrete, ok := in.(*memform.Input)
		if !ok {
			continue
		}
		editable = append(editable, concrete)
		label := in.Attrs().Label
		if label == "" {
			label = field.NameOf(in)
		}
		labels = append(labels, label)
	}
	if len(editable) == 0 {
		return s.driver.Info(ctx, "No editable fields.")
	}
	idx, err := s.driver.Select(ctx, prompt.SelectConfig{Message: "Field", Options: labels})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(editable) {
		return fmt.Errorf("formsync: invalid field %d", idx)
	}
	in := editable[idx]
	if err := s.prompt(ctx, in, labels[idx]); err != nil {
		return err
	}

	changed, task := s.ctl.Change(ctx, in)
	if task != nil {
		_, err := task.Wait()
		return err
	}
	if !changed {
		return s.driver.Info(ctx, "Unchanged.")
	}
	return nil
}

// prompt asks for a new value with the prompt matching the input kind.
func (s *session) prompt(ctx context.Context, in *memform.Input, label string) error {
	switch in.Kind() {
	case field.KindCheckbox:
		ok, err := s.driver.Confirm(ctx, prompt.ConfirmConfig{Message: label, Default: in.Checked()})
		if err != nil {
			return err
		}
		in.SetChecked(ok)
	case field.KindRadio:
		group := s.doc.InputsNamed(in.Name())
		options := make([]string, len(group))
		current := 0
		for i, r := range group {
			options[i] = r.Value()
			if r.Checked() {
				current = i
			}
		}
		idx, err := s.driver.Select(ctx, prompt.SelectConfig{Message: label, Options: options, DefaultIndex: current})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(group) {
			group[idx].SetChecked(true)
		}
	case field.KindSelect:
		options := in.Options()
		idx, err := s.driver.Select(ctx, prompt.SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: max(prompt.IndexOf(options, in.Value()), 0),
		})
		if err != nil {
			return err
		}
		if values := prompt.ValuesAt(options, []int{idx}); len(values) == 1 {
			in.SetValue(values[0])
		}
	case field.KindMultiSelect:
		options := in.Options()
		indices, err := s.driver.MultiSelect(ctx, prompt.SelectConfig{
			Message:  label,
			Options:  options,
			Defaults: prompt.IndicesOf(options, in.SelectedValues()),
		})
		if err != nil {
			return err
		}
		in.SetSelectedValues(prompt.ValuesAt(options, indices))
	case field.KindRichText:
		value, err := s.driver.TextArea(ctx, prompt.TextAreaConfig{Message: label, Default: in.Value()})
		if err != nil {
			return err
		}
		in.SetValue(value)
	default:
		value, err := s.driver.Input(ctx, prompt.InputConfig{Message: label, Default: in.Value()})
		if err != nil {
			return err
		}
		in.SetValue(value)
	}
	return nil
}

// reported reports whether the controller already told the user about err.
func reported(err error) bool {
	var target *controller.ValidationError
	switch {
	case errors.As(err, &target),
		errors.Is(err, controller.ErrDeclined),
		errors.Is(err, controller.ErrUnavailable),
		errors.Is(err, controller.ErrStale):
		return true
	}
	return transport.IsBusiness(err) || transport.IsTransport(err)
}
