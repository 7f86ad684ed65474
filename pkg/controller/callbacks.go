package controller

import "github.com/goliatone/go-formsync/pkg/transport"

// Hook receives the outcome of an operation. env is nil for transport
// failures; err is nil on success.
type Hook func(env *transport.Envelope, err error)

// Callbacks are the per-operation hooks. For every completed operation the
// matching Success or Failure hook runs first, then the unconditional one.
type Callbacks struct {
	OnSubmitSuccess Hook
	OnSubmitFailure Hook
	OnSubmit        Hook

	OnDeleteSuccess Hook
	OnDeleteFailure Hook
	OnDelete        Hook

	OnRefreshSuccess Hook
	OnRefreshFailure Hook
	OnRefresh        Hook

	OnFavouriteSuccess Hook
	OnFavouriteFailure Hook
	OnFavourite        Hook
}

func (c Callbacks) hooks(op transport.Operation) (success, failure, always Hook) {
	switch op {
	case transport.OpSubmit:
		return c.OnSubmitSuccess, c.OnSubmitFailure, c.OnSubmit
	case transport.OpDelete:
		return c.OnDeleteSuccess, c.OnDeleteFailure, c.OnDelete
	case transport.OpRefresh:
		return c.OnRefreshSuccess, c.OnRefreshFailure, c.OnRefresh
	case transport.OpFavourite:
		return c.OnFavouriteSuccess, c.OnFavouriteFailure, c.OnFavourite
	}
	return nil, nil, nil
}

// effects returns the hook invocations for an outcome, in call order.
func (c Callbacks) effects(op transport.Operation, env *transport.Envelope, err error) []func() {
	success, failure, always := c.hooks(op)
	var out []func()
	if err == nil && success != nil {
		out = append(out, func() { success(env, nil) })
	}
	if err != nil && failure != nil {
		out = append(out, func() { failure(env, err) })
	}
	if always != nil {
		out = append(out, func() { always(env, err) })
	}
	return out
}
