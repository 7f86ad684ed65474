package prompt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsync/pkg/prompt"
)

func TestScriptReplaysAnswersInOrder(t *testing.T) {
	s := &prompt.Script{
		Inputs:   []string{"first", "second"},
		Confirms: []bool{true},
		Selects:  []int{2},
	}
	ctx := context.Background()

	if got, _ := s.Input(ctx, prompt.InputConfig{Message: "a"}); got != "first" {
		t.Fatalf("expected first, got %q", got)
	}
	if got, _ := s.Input(ctx, prompt.InputConfig{Message: "b"}); got != "second" {
		t.Fatalf("expected second, got %q", got)
	}
	if _, err := s.Input(ctx, prompt.InputConfig{Message: "c"}); !errors.Is(err, prompt.ErrNoAnswer) {
		t.Fatalf("expected ErrNoAnswer, got %v", err)
	}
	if ok, _ := s.Confirm(ctx, prompt.ConfirmConfig{Message: "sure?"}); !ok {
		t.Fatalf("expected confirm true")
	}
	if idx, _ := s.Select(ctx, prompt.SelectConfig{Message: "pick"}); idx != 2 {
		t.Fatalf("expected index 2, got %d", idx)
	}

	if diff := cmp.Diff([]string{"a", "b", "c", "sure?", "pick"}, s.Asked); diff != "" {
		t.Fatalf("asked mismatch (-want +got):\n%s", diff)
	}
}

func TestScriptRunsInputValidator(t *testing.T) {
	s := &prompt.Script{Inputs: []string{""}}
	want := errors.New("required")
	_, err := s.Input(context.Background(), prompt.InputConfig{
		Message:   "name",
		Validator: func(v string) error { return want },
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected validator error, got %v", err)
	}
}

func TestIndexHelpers(t *testing.T) {
	options := []string{"red", "green", "blue"}
	if got := prompt.IndexOf(options, "blue"); got != 2 {
		t.Fatalf("IndexOf: expected 2, got %d", got)
	}
	if got := prompt.IndexOf(options, "pink"); got != -1 {
		t.Fatalf("IndexOf: expected -1, got %d", got)
	}
	if diff := cmp.Diff([]int{0, 2}, prompt.IndicesOf(options, []string{"blue", "red"})); diff != "" {
		t.Fatalf("IndicesOf mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"green"}, prompt.ValuesAt(options, []int{1, 9, -1})); diff != "" {
		t.Fatalf("ValuesAt mismatch (-want +got):\n%s", diff)
	}
}
