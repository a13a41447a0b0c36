// Package knowledge holds the static support policy document and the
// keyword routing that resolves a free-text topic to one of its sections.
package knowledge

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/D-Harshith/ResolveAI/agent/contract"
)

//go:embed kb/policies.md
var policiesRaw string

const orderNumberAnswer = "If you've forgotten your order number, please provide the email address " +
	"associated with your purchase and the approximate date of the order. Our team can locate your " +
	"order details using this information. Note that for guest checkouts, the order number is sent " +
	"in the confirmation email."

// Route maps a keyword set to either a document section or a canned answer.
// Exactly one of Section or Answer is set. Fallback, when non-empty, is
// returned if the section body cannot be extracted; when empty the route
// falls through to the next one.
type Route struct {
	Keywords []string
	Section  string
	Answer   string
	Fallback string
}

// Document is a markdown policy text partitioned by top-level "###" headings.
type Document struct {
	raw      string
	sections map[string]*regexp.Regexp
}

// Base routes topics over a Document. Routes are evaluated in order; the
// first route whose keyword set matches wins.
type Base struct {
	doc    *Document
	routes []Route
}

// NewDocument compiles one extraction pattern per named section. Bodies span
// newlines up to the next top-level heading or end of document.
func NewDocument(raw string, sections ...string) *Document {
	compiled := make(map[string]*regexp.Regexp, len(sections))
	for _, name := range sections {
		pattern := `(?is)` + regexp.QuoteMeta("### "+name) + `\n(.*?)(?:\n###|\z)`
		compiled[name] = regexp.MustCompile(pattern)
	}
	return &Document{raw: raw, sections: compiled}
}

// Section returns the trimmed body of a named section, or "" when the
// heading is absent from the document.
func (d *Document) Section(name string) string {
	re, ok := d.sections[name]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(d.raw)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// NewBase builds the default policy base: the embedded document plus the
// routing table for returns, shipping, and order-number topics.
func NewBase() *Base {
	return &Base{
		doc: NewDocument(policiesRaw, "Return Policies", "Shipping Policies"),
		routes: []Route{
			{
				Keywords: []string{"return", "damaged", "defective", "refund"},
				Section:  "Return Policies",
				Fallback: "Error: Could not find return policies.",
			},
			{
				// No fallback: a failed extraction falls through to not-found.
				Keywords: []string{"shipping", "lost", "missing"},
				Section:  "Shipping Policies",
			},
			{
				Keywords: []string{"order", "forgot"},
				Answer:   orderNumberAnswer,
			},
		},
	}
}

var _ contractx.PolicySource = (*Base)(nil)

// Lookup resolves a topic phrase to policy text. Matching is case-insensitive
// substring containment over the route keyword sets, in route order.
func (b *Base) Lookup(topic string) (string, error) {
	lowered := strings.ToLower(topic)

	for _, route := range b.routes {
		if !matchesAny(lowered, route.Keywords) {
			continue
		}
		if route.Answer != "" {
			return route.Answer, nil
		}
		if body := b.doc.Section(route.Section); body != "" {
			return body, nil
		}
		if route.Fallback != "" {
			return route.Fallback, nil
		}
	}

	return "", fmt.Errorf("%w: topic=%s", contractx.ErrTopicNotFound, topic)
}

func matchesAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
