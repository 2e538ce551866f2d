package xml

import (
	"strings"

	"github.com/beevik/etree"
)

// variants lists the spellings tried for a tag, in order: as declared,
// lowercase, uppercase, capitalized.
func variants(name string) []string {
	candidates := []string{
		name,
		strings.ToLower(name),
		strings.ToUpper(name),
		capitalize(name),
	}

	out := candidates[:0]
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func capitalize(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}

// section returns the first element named by any of names: direct children
// are tried before deeper descendants. Returns nil when none exists.
func section(parent *etree.Element, names ...string) *etree.Element {
	if parent == nil {
		return nil
	}
	return lookup(parent, names, func(*etree.Element) bool { return true })
}

// text returns the trimmed text of the first element named by any of names
// that has non-empty content.
func text(parent *etree.Element, names ...string) string {
	if parent == nil {
		return ""
	}
	el := lookup(parent, names, func(e *etree.Element) bool {
		return strings.TrimSpace(e.Text()) != ""
	})
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func lookup(parent *etree.Element, names []string, accept func(*etree.Element) bool) *etree.Element {
	for _, name := range names {
		for _, tag := range variants(name) {
			for _, child := range parent.ChildElements() {
				if child.Tag == tag && accept(child) {
					return child
				}
			}
		}
	}

	for _, name := range names {
		for _, tag := range variants(name) {
			for _, child := range parent.ChildElements() {
				if found := descendant(child, tag, accept); found != nil {
					return found
				}
			}
		}
	}
	return nil
}

// descendant does a depth first search below el, in document order
func descendant(el *etree.Element, tag string, accept func(*etree.Element) bool) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag && accept(child) {
			return child
		}
		if found := descendant(child, tag, accept); found != nil {
			return found
		}
	}
	return nil
}

// outermost collects the elements whose tag matches one of tags ignoring
// case, without descending into a match.
func outermost(el *etree.Element, tags []string) []*etree.Element {
	for _, t := range tags {
		if strings.EqualFold(el.Tag, t) {
			return []*etree.Element{el}
		}
	}

	var out []*etree.Element
	for _, child := range el.ChildElements() {
		out = append(out, outermost(child, tags)...)
	}
	return out
}
