package controller

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/goliatone/go-formsync/pkg/messages"
	"github.com/goliatone/go-formsync/pkg/notify"
	"github.com/goliatone/go-formsync/pkg/payload"
	"github.com/goliatone/go-formsync/pkg/transport"
	"github.com/goliatone/go-formsync/pkg/validation"
)

// Transport performs the row operations. *transport.Client satisfies it.
type Transport interface {
	Submit(ctx context.Context, method, action string, pairs payload.Pairs) (*transport.Envelope, error)
	Delete(ctx context.Context, action string, pairs payload.Pairs) (*transport.Envelope, error)
	Refresh(ctx context.Context, action string) (*transport.Envelope, error)
	ToggleFavourite(ctx context.Context, action string, favourite bool) (*transport.Envelope, error)
}

var _ Transport = (*transport.Client)(nil)

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the user notification surface.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithValidator replaces the default validator.
func WithValidator(v validation.Validator) Option {
	return func(c *Controller) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Controller) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithHTTPClient sets the client of the default transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		c.httpClient = client
	}
}

// WithLogger sets the logger. Debug tracing is written at V(1).
func WithLogger(log logr.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithCatalog sets the message catalog.
func WithCatalog(cat *messages.Catalog) Option {
	return func(c *Controller) {
		if cat != nil {
			c.catalog = cat
		}
	}
}

// WithCallbacks installs the operation hooks.
func WithCallbacks(cb Callbacks) Option {
	return func(c *Controller) {
		c.callbacks = cb
	}
}
