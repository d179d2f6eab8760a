package parser

import (
	"regexp"
	"slices"
	"strings"

	"github.com/felipemarinho97/lafa-indexer/schema"
	"golang.org/x/net/html"
)

var resolutionPattern = regexp.MustCompile(`\d+x\d+`)

// rowState tracks where the extractor is inside a two-row listing.
type rowState int

const (
	rowNone rowState = iota
	rowPrimary
	rowExpandChild
	rowContinuation
)

// recordBuilder owns the draft record. build hands out a copy, so the draft
// never aliases an emitted record.
type recordBuilder struct {
	engineURL string
	rec       schema.Record
}

func newRecordBuilder(engineURL string) recordBuilder {
	return recordBuilder{engineURL: engineURL, rec: schema.NewRecord(engineURL)}
}

func (b *recordBuilder) setLink(link string) { b.rec.Link = link }

func (b *recordBuilder) annotate(tag string) { b.rec.Extra = append(b.rec.Extra, tag) }

func (b *recordBuilder) complete() bool { return b.rec.Name != "" }

func (b *recordBuilder) build() schema.Record {
	r := b.rec
	r.Extra = slices.Clone(b.rec.Extra)
	return r
}

func (b *recordBuilder) reset() { b.rec = schema.NewRecord(b.engineURL) }

var _ Source[schema.Record] = (*RecordTableExtractor)(nil)

// RecordTableExtractor rebuilds listing records from the results table.
//
// The site renders every listing as a primary row (name, size, counts,
// download link) optionally followed by an expand-child row (description).
// Listing boundaries are found from the row sequence alone: a record is
// emitted when an expand-child row closes, or when a primary row that follows
// another primary row closes. Listings that close without a name are dropped.
//
// Only events inside the container tbody are considered. An extractor is
// single use; create a new one for every document.
type RecordTableExtractor struct {
	cfg          Config
	fingerprints []fingerprint
	results      []schema.Record
	draft        recordBuilder

	active bool
	depth  int // open tbody elements while active
	row    rowState
	cursor field
}

// NewRecordTableExtractor returns an extractor configured with cfg.
func NewRecordTableExtractor(cfg Config) *RecordTableExtractor {
	return &RecordTableExtractor{
		cfg:          cfg,
		fingerprints: newFingerprints(cfg),
		results:      []schema.Record{},
		draft:        newRecordBuilder(cfg.BaseURL),
	}
}

// GetResults feeds document through the extractor and returns the records.
func (x *RecordTableExtractor) GetResults(document string) []schema.Record {
	return GetResults[schema.Record](document, x)
}

func (x *RecordTableExtractor) StartTag(tag string, attrs []html.Attribute) {
	if tag == "tbody" {
		if x.active {
			x.depth++
			return
		}
		if class, ok := attr(attrs, "class"); ok && class == x.cfg.ContainerClass {
			x.active = true
			x.depth = 1
		}
		return
	}

	if !x.active {
		return
	}

	if tag == "tr" {
		x.row = x.nextRowState(attrs)
	}

	fp, ok := lookupFingerprint(x.fingerprints, tag, attrs)
	if !ok {
		return
	}
	if fp.apply != nil {
		fp.apply(&x.draft, attrs)
		return
	}
	x.cursor = fp.cursor
}

func (x *RecordTableExtractor) nextRowState(attrs []html.Attribute) rowState {
	if class, ok := attr(attrs, "class"); ok && class == x.cfg.ExpandChildClass {
		return rowExpandChild
	}
	if x.row == rowNone || x.row == rowContinuation {
		return rowPrimary
	}
	return rowContinuation
}

func (x *RecordTableExtractor) EndTag(tag string) {
	if !x.active {
		return
	}

	switch tag {
	case "tbody":
		x.depth--
		if x.depth == 0 {
			x.closeContainer()
		}
	case "tr":
		if x.row != rowExpandChild && x.row != rowContinuation {
			return
		}
		// nameless listings are filler rows, drop them with whatever
		// annotations they carried
		if x.draft.complete() {
			x.results = append(x.results, x.draft.build())
		}
		x.draft.reset()
	}
}

// closeContainer leaves the table. Whatever was not emitted on a row boundary
// is thrown away.
func (x *RecordTableExtractor) closeContainer() {
	x.active = false
	x.row = rowNone
	x.cursor = fieldNone
	x.draft.reset()
}

func (x *RecordTableExtractor) Text(text string) {
	if !x.active || x.cursor == fieldNone {
		return
	}

	value := strings.TrimSpace(text)
	switch x.cursor {
	case fieldName:
		x.draft.rec.Name = value
	case fieldSize:
		x.draft.rec.Size = strings.ReplaceAll(value, " ", "")
	case fieldSeeds:
		x.draft.rec.Seeds = value
	case fieldLeech:
		x.draft.rec.Leech = value
	case fieldDesc:
		if res := resolutionPattern.FindString(text); res != "" {
			x.draft.annotate("(" + res + ")")
		}
	}
	x.cursor = fieldNone
}

// Results returns the records emitted so far.
func (x *RecordTableExtractor) Results() []schema.Record {
	return x.results
}
