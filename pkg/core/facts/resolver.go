package facts

import "strings"

// fallbackPrefixes match the statement-like top-level sections consulted when
// no priority section yields a value.
var fallbackPrefixes = []string{"Statements", "Revenue", "EarningsPerShare", "CashFlow"}

// Resolver locates canonical financial metrics inside one fact document.
// Absence is a normal outcome: every lookup returns nil rather than an error
// when nothing usable is found.
type Resolver struct {
	doc *Node
}

// NewResolver wraps a fact document for concept lookups.
func NewResolver(doc *Node) *Resolver {
	return &Resolver{doc: doc}
}

// Resolve returns the best value for an ordered alias list in the target
// fiscal year. Priority sections present at the document's top level are
// searched first; if none yields a value, every top-level section with a
// statement-like name is scanned. Within a section, aliases are tried in the
// caller's priority order and the first alias that produces a value wins.
func (r *Resolver) Resolve(aliases []string, targetYear int, prioritySections []string) *float64 {
	if r == nil || r.doc.Kind() != KindMapping {
		return nil
	}

	for _, name := range prioritySections {
		section, ok := r.doc.Field(name)
		if !ok {
			continue
		}
		if v := searchSection(section, aliases, targetYear); v != nil {
			return v
		}
	}

	for _, name := range r.doc.FieldKeys() {
		if !hasStatementPrefix(name) {
			continue
		}
		section, _ := r.doc.Field(name)
		if v := searchSection(section, aliases, targetYear); v != nil {
			return v
		}
	}

	return nil
}

func hasStatementPrefix(name string) bool {
	for _, prefix := range fallbackPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// searchSection tries each alias in priority order against one section.
func searchSection(section *Node, aliases []string, targetYear int) *float64 {
	for _, alias := range aliases {
		if v := findAlias(section, alias, targetYear); v != nil {
			return v
		}
	}
	return nil
}

// findAlias searches depth-first for a mapping entry named alias and extracts
// its value: candidate lists go through the period selector, anything else
// through the value normalizer. A matched entry that yields nothing does not
// stop the search; deeper occurrences may still carry a usable value.
func findAlias(node *Node, alias string, targetYear int) *float64 {
	switch node.Kind() {
	case KindMapping:
		if child, ok := node.Field(alias); ok {
			if v := extractValue(child, targetYear); v != nil {
				return v
			}
		}
		for _, key := range node.FieldKeys() {
			child, _ := node.Field(key)
			if child.Kind() == KindScalar {
				continue
			}
			if v := findAlias(child, alias, targetYear); v != nil {
				return v
			}
		}
	case KindList:
		for _, item := range node.Items() {
			if v := findAlias(item, alias, targetYear); v != nil {
				return v
			}
		}
	}
	return nil
}

func extractValue(node *Node, targetYear int) *float64 {
	if node.Kind() == KindList {
		return SelectAnnual(node, targetYear)
	}
	return NormalizeValue(node)
}
