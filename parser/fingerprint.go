package parser

import (
	"strings"

	"golang.org/x/net/html"
)

// field names the record field the next text event is written to.
type field int

const (
	fieldNone field = iota
	fieldName
	fieldDesc
	fieldSize
	fieldSeeds
	fieldLeech
)

func (f field) String() string {
	switch f {
	case fieldName:
		return "name"
	case fieldDesc:
		return "desc"
	case fieldSize:
		return "size"
	case fieldSeeds:
		return "seeds"
	case fieldLeech:
		return "leech"
	}
	return "none"
}

// fingerprint recognises one structural cue. A match either arms the field
// cursor or, when apply is set, changes the draft right away.
type fingerprint struct {
	tag    string
	match  func(attrs []html.Attribute) bool
	cursor field
	apply  func(b *recordBuilder, attrs []html.Attribute)
}

func attrEquals(key, want string) func([]html.Attribute) bool {
	return func(attrs []html.Attribute) bool {
		v, ok := attr(attrs, key)
		return ok && v == want
	}
}

func attrHasPrefix(key, prefix string) func([]html.Attribute) bool {
	return func(attrs []html.Attribute) bool {
		v, _ := attr(attrs, key)
		return strings.HasPrefix(v, prefix)
	}
}

func attrNotEmpty(key string) func([]html.Attribute) bool {
	return func(attrs []html.Attribute) bool {
		v, _ := attr(attrs, key)
		return v != ""
	}
}

// newFingerprints builds the dispatch table for cfg. Entries are checked in
// order and the first match wins.
func newFingerprints(cfg Config) []fingerprint {
	return []fingerprint{
		{tag: "div", match: attrEquals("style", "float:left;"), cursor: fieldName},
		{tag: "div", match: attrEquals("style", "clear:both;"), cursor: fieldDesc},
		{tag: "td", match: attrNotEmpty("data-sort-value"), cursor: fieldSize},
		{tag: "span", match: attrHasPrefix("id", "seeders_"), cursor: fieldSeeds},
		{tag: "span", match: attrHasPrefix("id", "leechers_"), cursor: fieldLeech},
		{
			tag:   "a",
			match: attrEquals("class", cfg.DownloadClass),
			apply: func(b *recordBuilder, attrs []html.Attribute) {
				if href, ok := attr(attrs, "href"); ok {
					b.setLink(cfg.BaseURL + href)
				}
			},
		},
		{
			tag:   "img",
			match: attrEquals("src", cfg.AdsIcon),
			apply: func(b *recordBuilder, _ []html.Attribute) {
				b.annotate(cfg.AdsLabel)
			},
		},
	}
}

func lookupFingerprint(table []fingerprint, tag string, attrs []html.Attribute) (fingerprint, bool) {
	for _, fp := range table {
		if fp.tag == tag && fp.match(attrs) {
			return fp, true
		}
	}
	return fingerprint{}, false
}
