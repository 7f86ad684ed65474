package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsync/pkg/formstate"
)

// Refresh strategies.
const (
	// RefreshFetch re-reads the row and writes it into the inputs.
	RefreshFetch = "fetch"
	// RefreshReload asks the document to reload itself.
	RefreshReload = "reload"
)

// Stale response policies.
const (
	// StaleApply applies responses that complete after a Reset.
	StaleApply = "apply"
	// StaleDrop discards them.
	StaleDrop = "drop"
)

// Selectors holds the state classes the controller writes.
type Selectors struct {
	Container     string `yaml:"container" json:"container" toml:"container"`
	Changed       string `yaml:"changed" json:"changed" toml:"changed"`
	ControlButton string `yaml:"controlbutton" json:"controlbutton" toml:"controlbutton"`
	Active        string `yaml:"active" json:"active" toml:"active"`
}

// Content holds the markup variants of the favourite button.
type Content struct {
	FavouriteOn  string `yaml:"favourite_on" json:"favourite_on" toml:"favourite_on"`
	FavouriteOff string `yaml:"favourite_off" json:"favourite_off" toml:"favourite_off"`
}

// ValidationOptions tunes the default validator.
type ValidationOptions struct {
	Debug bool `yaml:"debug" json:"debug" toml:"debug"`
	// IncludeDisabled validates disabled inputs too.
	IncludeDisabled bool `yaml:"include_disabled" json:"include_disabled" toml:"include_disabled"`
	// Schema is a JSON/YAML schema file or an OpenAPI document.
	Schema string `yaml:"schema" json:"schema" toml:"schema"`
	// Component selects a schema from components.schemas when Schema is
	// an OpenAPI document.
	Component string `yaml:"component" json:"component" toml:"component"`
}

// Config holds every option of a form controller.
type Config struct {
	// URL is the base URL relative actions resolve against.
	URL string `yaml:"url" json:"url" toml:"url"`

	SubmitDisabled bool `yaml:"submitdisabled" json:"submitdisabled" toml:"submitdisabled"`
	TrackChanges   bool `yaml:"trackchanges" json:"trackchanges" toml:"trackchanges"`
	InstaSave      bool `yaml:"instasave" json:"instasave" toml:"instasave"`
	// RequestEdit starts the form read-only; the user has to enter edit
	// mode explicitly.
	RequestEdit bool `yaml:"requestedit" json:"requestedit" toml:"requestedit"`
	// AlwaysEditable allows edit mode on rows that are otherwise locked.
	// It is switched on implicitly by any input marked always editable.
	AlwaysEditable bool   `yaml:"alwayseditable" json:"alwayseditable" toml:"alwayseditable"`
	SuppressReload bool   `yaml:"suppressreload" json:"suppressreload" toml:"suppressreload"`
	SetFocusTo     string `yaml:"setfocusto" json:"setfocusto" toml:"setfocusto"`
	Debug          bool   `yaml:"debug" json:"debug" toml:"debug"`
	EventRoot      string `yaml:"event_root" json:"event_root" toml:"event_root"`

	BtnSave      string `yaml:"btn_save" json:"btn_save" toml:"btn_save"`
	KeySave      string `yaml:"key_save" json:"key_save" toml:"key_save"`
	BtnReset     string `yaml:"btn_reset" json:"btn_reset" toml:"btn_reset"`
	KeyReset     string `yaml:"key_reset" json:"key_reset" toml:"key_reset"`
	BtnStartEdit string `yaml:"btn_startedit" json:"btn_startedit" toml:"btn_startedit"`
	KeyStartEdit string `yaml:"key_startedit" json:"key_startedit" toml:"key_startedit"`
	BtnDelete    string `yaml:"btn_delete" json:"btn_delete" toml:"btn_delete"`
	KeyDelete    string `yaml:"key_delete" json:"key_delete" toml:"key_delete"`
	BtnFavourite string `yaml:"btn_favourite" json:"btn_favourite" toml:"btn_favourite"`
	KeyFavourite string `yaml:"key_favourite" json:"key_favourite" toml:"key_favourite"`

	Row formstate.Row `yaml:"row" json:"row" toml:"row"`

	Selector Selectors      `yaml:"selector" json:"selector" toml:"selector"`
	Content  Content        `yaml:"content" json:"content" toml:"content"`
	Data     formstate.Keys `yaml:"data" json:"data" toml:"data"`

	Validation        bool              `yaml:"validation" json:"validation" toml:"validation"`
	ValidationOptions ValidationOptions `yaml:"validation_options" json:"validation_options" toml:"validation_options"`

	// Refresh is RefreshFetch or RefreshReload.
	Refresh string `yaml:"refresh" json:"refresh" toml:"refresh"`
	// StaleResponses is StaleApply or StaleDrop.
	StaleResponses string `yaml:"stale_responses" json:"stale_responses" toml:"stale_responses"`
	// Locale selects the message catalog.
	Locale string `yaml:"locale" json:"locale" toml:"locale"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		TrackChanges: true,
		SetFocusTo:   ":input:visible:first",

		BtnSave:      "*[type=submit]",
		KeySave:      "ctrl+s",
		BtnReset:     "*[type=reset]",
		KeyReset:     "esc",
		KeyStartEdit: "ctrl+b",
		KeyDelete:    "del",

		Selector: Selectors{
			Container:     "rugaform__container",
			Changed:       "ruga__changed",
			ControlButton: "ruga__controlbutton",
			Active:        "ruga__active",
		},
		Content: Content{
			FavouriteOn:  `<i class="fa fa-star text-yellow"></i>`,
			FavouriteOff: `<i class="fa fa-star-o text-gray"></i>`,
		},
		Data: formstate.DefaultKeys(),

		Validation:     true,
		Refresh:        RefreshFetch,
		StaleResponses: StaleApply,
	}
}

// Validate checks the enumerated options.
func (c Config) Validate() error {
	switch c.Refresh {
	case "", RefreshFetch, RefreshReload:
	default:
		return fmt.Errorf("%w: refresh %q", ErrInvalidConfig, c.Refresh)
	}
	switch c.StaleResponses {
	case "", StaleApply, StaleDrop:
	default:
		return fmt.Errorf("%w: stale_responses %q", ErrInvalidConfig, c.StaleResponses)
	}
	return nil
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Refresh == "" {
		c.Refresh = def.Refresh
	}
	if c.StaleResponses == "" {
		c.StaleResponses = def.StaleResponses
	}
	if c.Selector.Changed == "" {
		c.Selector.Changed = def.Selector.Changed
	}
	if c.Selector.ControlButton == "" {
		c.Selector.ControlButton = def.Selector.ControlButton
	}
	if c.Selector.Active == "" {
		c.Selector.Active = def.Selector.Active
	}
	if c.Selector.Container == "" {
		c.Selector.Container = def.Selector.Container
	}
	return c
}

// LoadConfig reads a YAML, JSON or TOML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("controller: read config: %w", err)
	}
	if err := DecodeConfig(data, filepath.Ext(path), &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// DecodeConfig decodes data over cfg. ext selects the format: ".toml" for
// TOML, anything else is read as YAML, which also covers JSON.
func DecodeConfig(data []byte, ext string, cfg *Config) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("controller: decode toml config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("controller: decode config: %w", err)
		}
	}
	return nil
}
