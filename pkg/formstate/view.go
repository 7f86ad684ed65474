package formstate

// View answers row-level questions. A View over a missing row answers every
// predicate with its safe default.
type View struct {
	row  Row
	keys Keys
}

// NewView builds a View over row using keys.
func NewView(row Row, keys Keys) View {
	return View{row: row, keys: keys.withDefaults()}
}

// Loaded reports whether a row is present.
func (v View) Loaded() bool { return v.row != nil }

// Disabled reports isDisabled === true.
func (v View) Disabled() bool { return v.row.IsTrue(v.keys.IsDisabled) }

// Deleted reports isDeleted === true.
func (v View) Deleted() bool { return v.row.IsTrue(v.keys.IsDeleted) }

// Changeable reports canBeChangedBy === true.
func (v View) Changeable() bool { return v.row.IsTrue(v.keys.CanBeChangedBy) }

// Unchangeable reports canBeChangedBy === false. A missing flag is neither
// changeable nor unchangeable.
func (v View) Unchangeable() bool { return v.row.IsFalse(v.keys.CanBeChangedBy) }

// Favourite reports the favourite flag.
func (v View) Favourite() bool { return v.row.Truthy(v.keys.IsFavourite) }

// New reports whether the row has not been saved yet.
func (v View) New() bool { return v.row.Truthy(v.keys.IsNew) }

// Deletable reports whether the row may be deleted by the current user.
func (v View) Deletable() bool {
	return v.row.Truthy(v.keys.IsDeletable) &&
		!v.row.Truthy(v.keys.IsDisabled) &&
		!v.row.Truthy(v.keys.IsDeleted) &&
		v.row.Truthy(v.keys.CanBeChangedBy) &&
		!v.row.Truthy(v.keys.IsNew)
}

// UniqueID returns the row's unique id, "" when unknown.
func (v View) UniqueID() string { return v.row.String(v.keys.UniqueID) }

// IDName returns the human readable row identifier.
func (v View) IDName() string { return v.row.String(v.keys.IDName) }

// Href returns the row's form URL.
func (v View) Href() string { return v.row.String(v.keys.HTMLHref) }
