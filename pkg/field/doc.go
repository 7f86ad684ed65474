// Package field describes the inputs a form controller manages. Each input is
// classified once into a Kind when its Snapshot is captured; behaviour that
// differs per kind (checked state, multi-value selection, widget toggling,
// composite display elements, focus) is reached through small capability
// interfaces rather than probing the concrete input type repeatedly.
package field
