package formstate

// Keys maps the logical row flags onto the keys used by the backend.
type Keys struct {
	IsFavourite    string `yaml:"isFavourite" json:"isFavourite" toml:"isFavourite"`
	IsDisabled     string `yaml:"isDisabled" json:"isDisabled" toml:"isDisabled"`
	CanBeChangedBy string `yaml:"canBeChangedBy" json:"canBeChangedBy" toml:"canBeChangedBy"`
	IsDeleted      string `yaml:"isDeleted" json:"isDeleted" toml:"isDeleted"`
	IsDeletable    string `yaml:"isDeletable" json:"isDeletable" toml:"isDeletable"`
	IsNew          string `yaml:"isNew" json:"isNew" toml:"isNew"`
	IDName         string `yaml:"idname" json:"idname" toml:"idname"`
	UniqueID       string `yaml:"uniqueid" json:"uniqueid" toml:"uniqueid"`
	HTMLHref       string `yaml:"html_href" json:"html_href" toml:"html_href"`
}

// DefaultKeys returns the identity mapping.
func DefaultKeys() Keys {
	return Keys{
		IsFavourite:    "isFavourite",
		IsDisabled:     "isDisabled",
		CanBeChangedBy: "canBeChangedBy",
		IsDeleted:      "isDeleted",
		IsDeletable:    "isDeletable",
		IsNew:          "isNew",
		IDName:         "idname",
		UniqueID:       "uniqueid",
		HTMLHref:       "html_href",
	}
}

// withDefaults fills empty entries from DefaultKeys.
func (k Keys) withDefaults() Keys {
	def := DefaultKeys()
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&k.IsFavourite, def.IsFavourite)
	fill(&k.IsDisabled, def.IsDisabled)
	fill(&k.CanBeChangedBy, def.CanBeChangedBy)
	fill(&k.IsDeleted, def.IsDeleted)
	fill(&k.IsDeletable, def.IsDeletable)
	fill(&k.IsNew, def.IsNew)
	fill(&k.IDName, def.IDName)
	fill(&k.UniqueID, def.UniqueID)
	fill(&k.HTMLHref, def.HTMLHref)
	return k
}
