package memform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Definition describes a form document in YAML or JSON.
type Definition struct {
	Method  string       `yaml:"method" json:"method"`
	Action  string       `yaml:"action" json:"action"`
	Classes []string     `yaml:"classes" json:"classes"`
	Inputs  []InputSpec  `yaml:"inputs" json:"inputs"`
	Buttons []ButtonSpec `yaml:"buttons" json:"buttons"`
}

// InputSpec describes one input.
type InputSpec struct {
	Name        string   `yaml:"name" json:"name"`
	ID          string   `yaml:"id" json:"id"`
	Type        string   `yaml:"type" json:"type"`
	Value       string   `yaml:"value" json:"value"`
	Label       string   `yaml:"label" json:"label"`
	Placeholder string   `yaml:"placeholder" json:"placeholder"`
	Checked     bool     `yaml:"checked" json:"checked"`
	Disabled    bool     `yaml:"disabled" json:"disabled"`
	Hidden      bool     `yaml:"hidden" json:"hidden"`
	Multiple    bool     `yaml:"multiple" json:"multiple"`
	Options     []string `yaml:"options" json:"options"`
	Selected    []string `yaml:"selected" json:"selected"`
	Classes     []string `yaml:"classes" json:"classes"`
	// Editable is "always", "never" or empty.
	Editable  string  `yaml:"editable" json:"editable"`
	OffValue  *string `yaml:"offvalue" json:"offvalue"`
	SendValue bool    `yaml:"sendvalue" json:"sendvalue"`
	// Widget binds a specialised editor to the input.
	Widget bool `yaml:"widget" json:"widget"`
	// Decorated gives the input a separate display element.
	Decorated bool `yaml:"decorated" json:"decorated"`
}

// ButtonSpec describes one control button.
type ButtonSpec struct {
	Name     string   `yaml:"name" json:"name"`
	ID       string   `yaml:"id" json:"id"`
	Type     string   `yaml:"type" json:"type"`
	Value    string   `yaml:"value" json:"value"`
	Content  string   `yaml:"content" json:"content"`
	Disabled bool     `yaml:"disabled" json:"disabled"`
	Classes  []string `yaml:"classes" json:"classes"`
}

// Build turns the definition into a document.
func (def Definition) Build() (*Document, error) {
	doc := New(def.Method, def.Action)
	for _, c := range def.Classes {
		doc.SetClass(c, true)
	}
	for i, spec := range def.Inputs {
		if _, err := doc.AddInput(spec); err != nil {
			return nil, fmt.Errorf("memform: input %d: %w", i, err)
		}
	}
	for _, spec := range def.Buttons {
		doc.AddButton(spec)
	}
	return doc, nil
}

// Parse decodes a definition. JSON is detected by a leading brace; anything
// else is read as YAML.
func Parse(data []byte) (Definition, error) {
	var def Definition
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return def, errors.New("memform: empty definition")
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &def); err != nil {
			return def, fmt.Errorf("memform: decode json: %w", err)
		}
		return def, nil
	}
	if err := yaml.Unmarshal(trimmed, &def); err != nil {
		return def, fmt.Errorf("memform: decode yaml: %w", err)
	}
	return def, nil
}

// Load reads a definition file and builds the document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memform: read %s: %w", filepath.Base(path), err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return def.Build()
}
