package messages

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy

	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy

	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// Markup cleans button content such as the favourite icons. Icon elements
// keep their classes; scripts, handlers and styles are removed.
func Markup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(markupSanitizer().Sanitize(trimmed))
}

// Message cleans a server message that may carry simple formatting.
func Message(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(messageSanitizer().Sanitize(trimmed))
}

// PlainText strips every tag and decodes entities, for surfaces that cannot
// show markup.
func PlainText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictSanitizer().Sanitize(trimmed)))
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("i", "span", "b", "strong", "em")
		policy.AllowAttrs("class", "title", "aria-hidden").OnElements("i", "span")

		policy.AllowElements("svg", "path", "use", "title")
		policy.AllowAttrs("xmlns", "viewBox", "width", "height", "fill", "stroke", "class", "aria-hidden").OnElements("svg")
		policy.AllowAttrs("d", "fill", "stroke", "class").OnElements("path")
		policy.AllowAttrs("href", "xlink:href").OnElements("use")

		markupPolicy = policy
	})
	return markupPolicy
}

func messageSanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "br", "p", "ul", "ol", "li", "code")
		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		messagePolicy = policy
	})
	return messagePolicy
}

func strictSanitizer() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}
