// Package controller binds a form document to a remote data row.
//
// A Controller owns the edit mode of one form, the baseline snapshots of its
// inputs and the row the form represents. User actions (buttons, hotkeys,
// input events) arrive through Press, HandleKey, Focus, Blur and Change;
// programmatic callers use StartEdit, Submit, Reset, Delete,
// ToggleFavourite and Refresh directly.
//
// Network operations run asynchronously and are returned as *Task handles.
// While any operation is in flight every control affordance is disabled, so
// a second press of the same button is ignored instead of issuing a duplicate
// request. Notifications and callbacks run after the controller has released
// its internal lock; callbacks may call back into the controller.
package controller
