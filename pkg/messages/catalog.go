// Package messages holds the user-facing texts of the form controller:
// localized message templates and sanitising of markup that reaches the UI.
package messages

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"gopkg.in/yaml.v3"
)

// Message keys.
const (
	AlertTitle      = "alert.title"
	ConfirmTitle    = "confirm.title"
	DeleteConfirm   = "delete.confirm"
	DeleteAccepted  = "delete.accepted"
	DeleteCancelled = "delete.cancelled"
	EditCancelled   = "edit.cancelled"
	SubmitFailed    = "submit.failed"
	DeleteFailed    = "delete.failed"
	RequestFailed   = "request.failed"
	ValidationIssue = "validation.issue"
)

// DefaultLocale is used when no locale is requested or a locale is unknown.
const DefaultLocale = "en"

var (
	// ErrMissingTranslation is reported when no locale defines a key.
	ErrMissingTranslation = errors.New("messages: missing translation")
	// ErrUnknownLocale is returned by NewCatalog for locales without texts.
	ErrUnknownLocale = errors.New("messages: unknown locale")
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Translator resolves a key for a locale. args may hold a single
// map[string]any used as template context.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what is shown for a missing key.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Catalog is a Translator over embedded locale files. Message texts are
// pongo2 templates rendered with the supplied context.
type Catalog struct {
	locale    string
	onMissing MissingTranslationHandler

	mu        sync.RWMutex
	texts     map[string]map[string]string
	templates map[string]*pongo2.Template
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithMessages overrides or adds texts for a locale.
func WithMessages(locale string, texts map[string]string) Option {
	return func(c *Catalog) {
		locale = normalizeLocale(locale)
		if c.texts[locale] == nil {
			c.texts[locale] = make(map[string]string, len(texts))
		}
		for key, text := range texts {
			c.texts[locale][key] = text
		}
	}
}

// WithOnMissing installs the handler used for missing keys.
func WithOnMissing(handler MissingTranslationHandler) Option {
	return func(c *Catalog) {
		if handler != nil {
			c.onMissing = handler
		}
	}
}

// NewCatalog loads the embedded locales and selects locale as default.
func NewCatalog(locale string, opts ...Option) (*Catalog, error) {
	texts, err := loadEmbedded()
	if err != nil {
		return nil, err
	}
	c := &Catalog{
		locale:    normalizeLocale(locale),
		onMissing: missingTranslationDefault,
		texts:     texts,
		templates: make(map[string]*pongo2.Template),
	}
	if c.locale == "" {
		c.locale = DefaultLocale
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if _, ok := c.texts[c.locale]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
	}
	return c, nil
}

// MustCatalog is NewCatalog for locales known to exist.
func MustCatalog(locale string, opts ...Option) *Catalog {
	c, err := NewCatalog(locale, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Locale reports the default locale.
func (c *Catalog) Locale() string {
	return c.locale
}

// Locales lists the locales with texts, sorted.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.texts))
	for locale := range c.texts {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Translate implements Translator. Unknown locales fall back to the base
// language and then to DefaultLocale.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrMissingTranslation
	}
	src, ok := c.lookup(locale, key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingTranslation, key)
	}
	if !strings.Contains(src, "{{") && !strings.Contains(src, "{%") {
		return src, nil
	}
	tpl, err := c.template(src)
	if err != nil {
		return "", fmt.Errorf("messages: compile %q: %w", key, err)
	}
	out, err := tpl.Execute(contextOf(args))
	if err != nil {
		return "", fmt.Errorf("messages: render %q: %w", key, err)
	}
	return out, nil
}

// Text translates key in the catalog locale and routes failures through the
// missing handler.
func (c *Catalog) Text(key string, data map[string]any) string {
	out, err := c.Translate(c.locale, key, data)
	if err != nil || strings.TrimSpace(out) == "" {
		return c.onMissing(c.locale, key, []any{data}, err)
	}
	return out
}

func (c *Catalog) lookup(locale, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, candidate := range fallbackChain(locale, c.locale) {
		if text, ok := c.texts[candidate][key]; ok {
			return text, true
		}
	}
	return "", false
}

func (c *Catalog) template(src string) (*pongo2.Template, error) {
	c.mu.RLock()
	tpl, ok := c.templates[src]
	c.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tpl, ok := c.templates[src]; ok {
		return tpl, nil
	}
	tpl, err := pongo2.FromString(src)
	if err != nil {
		return nil, err
	}
	c.templates[src] = tpl
	return tpl, nil
}

func fallbackChain(locale, def string) []string {
	var out []string
	add := func(l string) {
		if l == "" {
			return
		}
		for _, existing := range out {
			if existing == l {
				return
			}
		}
		out = append(out, l)
	}
	locale = normalizeLocale(locale)
	add(locale)
	if base, _, ok := strings.Cut(locale, "-"); ok {
		add(base)
	}
	add(def)
	add(DefaultLocale)
	return out
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "_", "-")
}

func contextOf(args []any) pongo2.Context {
	ctx := pongo2.Context{}
	for _, arg := range args {
		switch v := arg.(type) {
		case pongo2.Context:
			for key, value := range v {
				ctx[key] = value
			}
		case map[string]any:
			for key, value := range v {
				ctx[key] = value
			}
		}
	}
	return ctx
}

func loadEmbedded() (map[string]map[string]string, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("messages: read locales: %w", err)
	}
	out := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("messages: read %s: %w", name, err)
		}
		var texts map[string]string
		if err := yaml.Unmarshal(data, &texts); err != nil {
			return nil, fmt.Errorf("messages: parse %s: %w", name, err)
		}
		out[normalizeLocale(strings.TrimSuffix(name, ".yaml"))] = texts
	}
	return out, nil
}

func missingTranslationDefault(_ string, key string, _ []any, _ error) string {
	return key
}
