package prompt

import (
	"context"
	"errors"
	"sync"
)

// ErrNoAnswer is returned by Script when it runs out of scripted answers.
var ErrNoAnswer = errors.New("prompt: no answer scripted")

// Script is a Driver that replays canned answers. It is used by tests and by
// non-interactive runs of the CLI.
type Script struct {
	mu sync.Mutex

	Inputs    []string
	Confirms  []bool
	Selects   []int
	Multi     [][]int
	TextAreas []string

	// Asked records every prompt message in order.
	Asked []string
	// Infos records every Info message.
	Infos []string
}

func (s *Script) Input(ctx context.Context, cfg InputConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, cfg.Message)
	if len(s.Inputs) == 0 {
		return "", ErrNoAnswer
	}
	val := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *Script) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, cfg.Message)
	if len(s.Confirms) == 0 {
		return false, ErrNoAnswer
	}
	val := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return val, nil
}

func (s *Script) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, cfg.Message)
	if len(s.Selects) == 0 {
		return -1, ErrNoAnswer
	}
	val := s.Selects[0]
	s.Selects = s.Selects[1:]
	return val, nil
}

func (s *Script) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, cfg.Message)
	if len(s.Multi) == 0 {
		return nil, ErrNoAnswer
	}
	val := s.Multi[0]
	s.Multi = s.Multi[1:]
	return val, nil
}

func (s *Script) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, cfg.Message)
	if len(s.TextAreas) == 0 {
		return "", ErrNoAnswer
	}
	val := s.TextAreas[0]
	s.TextAreas = s.TextAreas[1:]
	return val, nil
}

func (s *Script) Info(ctx context.Context, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Infos = append(s.Infos, msg)
	return nil
}
