package subunit

import (
	"sort"
	"strings"
)

// TagSet is a set of tag names.
type TagSet map[string]struct{}

// NewTagSet returns a set holding tags.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Add inserts every tag of other.
func (s TagSet) Add(other TagSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

// Remove deletes every tag of other.
func (s TagSet) Remove(other TagSet) {
	for t := range other {
		delete(s, t)
	}
}

// Minus returns the tags of s not in any of others.
func (s TagSet) Minus(others ...TagSet) TagSet {
	out := make(TagSet, len(s))
outer:
	for t := range s {
		for _, o := range others {
			if o.Has(t) {
				continue outer
			}
		}
		out[t] = struct{}{}
	}
	return out
}

// Sorted returns the tags in lexical order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TagDelta is a change to the active tag set.
// A tag is never in both Added and Removed.
type TagDelta struct {
	Added   TagSet
	Removed TagSet
}

// Empty reports whether the delta changes nothing.
func (d TagDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// ParseTags builds a delta from tokens; a leading "-" marks a removal.
// When a tag appears in both forms the later token wins.
func ParseTags(tokens []string) TagDelta {
	d := TagDelta{Added: TagSet{}, Removed: TagSet{}}
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if tok[0] == '-' {
			name := tok[1:]
			if name == "" {
				continue
			}
			delete(d.Added, name)
			d.Removed[name] = struct{}{}
			continue
		}
		delete(d.Removed, tok)
		d.Added[tok] = struct{}{}
	}
	return d
}

// Tokens renders the delta as tokens: additions first, then "-"-prefixed
// removals, each group sorted.
func (d TagDelta) Tokens() []string {
	out := d.Added.Sorted()
	for _, t := range d.Removed.Sorted() {
		out = append(out, "-"+t)
	}
	return out
}

// String renders the delta as it appears after "tags: ".
func (d TagDelta) String() string {
	return strings.Join(d.Tokens(), " ")
}
