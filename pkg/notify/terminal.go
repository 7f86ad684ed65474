package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formsync/pkg/messages"
	"github.com/goliatone/go-formsync/pkg/prompt"
)

// Terminal writes notifications to a terminal and asks confirmations through
// a prompt driver.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	driver prompt.Driver
	styles map[Level]lipgloss.Style
	title  lipgloss.Style
	// OnPromptError receives prompt failures; the confirmation then counts
	// as rejected.
	OnPromptError func(error)
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithWriter sets the notification output.
func WithWriter(w io.Writer) TerminalOption {
	return func(t *Terminal) {
		if w != nil {
			t.out = w
		}
	}
}

// WithDriver sets the prompt driver used for confirmations.
func WithDriver(d prompt.Driver) TerminalOption {
	return func(t *Terminal) {
		if d != nil {
			t.driver = d
		}
	}
}

// WithPlainStyles disables colours, for logs and tests.
func WithPlainStyles() TerminalOption {
	return func(t *Terminal) {
		plain := lipgloss.NewStyle()
		for level := range t.styles {
			t.styles[level] = plain
		}
		t.title = plain
	}
}

// NewTerminal builds a terminal notifier writing to stderr.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{
		out: os.Stderr,
		styles: map[Level]lipgloss.Style{
			LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		},
		title: lipgloss.NewStyle().Bold(true).Underline(true),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.driver == nil {
		t.driver = prompt.NewSurveyDriver(t.out)
	}
	return t
}

// Notify prints msg tagged with its level. The duration only matters to
// surfaces that dismiss messages on their own.
func (t *Terminal) Notify(msg string, level Level, _ time.Duration) {
	text := messages.PlainText(msg)
	if text == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	tag := t.styles[level].Render(fmt.Sprintf("[%s]", level))
	fmt.Fprintf(t.out, "%s %s\n", tag, text)
}

// Alert prints a titled message.
func (t *Terminal) Alert(title, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s\n%s\n", t.title.Render(messages.PlainText(title)), messages.PlainText(msg))
}

// Confirm asks a yes/no question.
func (t *Terminal) Confirm(ctx context.Context, title, msg string, onAccept, onReject func()) {
	question := messages.PlainText(msg)
	if title = messages.PlainText(title); title != "" {
		question = title + ": " + question
	}
	ok, err := t.driver.Confirm(ctx, prompt.ConfirmConfig{Message: question})
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		if t.OnPromptError != nil && !errors.Is(err, prompt.ErrAborted) {
			t.OnPromptError(err)
		}
		ok = false
	}
	switch {
	case ok && onAccept != nil:
		onAccept()
	case !ok && onReject != nil:
		onReject()
	}
}
