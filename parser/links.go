package parser

import "golang.org/x/net/html"

var _ Source[string] = (*LinkExtractor)(nil)

// LinkExtractor collects anchor targets in document order, duplicates
// included. Only anchors whose first declared attribute is href are taken;
// <a class="x" href="/y"> is skipped. The quicksearch markup always puts href
// first.
type LinkExtractor struct {
	links []string
}

// NewLinkExtractor returns an extractor for a single document.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{links: []string{}}
}

// GetResults feeds document through the extractor and returns the links.
func (l *LinkExtractor) GetResults(document string) []string {
	return GetResults[string](document, l)
}

func (l *LinkExtractor) StartTag(tag string, attrs []html.Attribute) {
	if tag == "a" && len(attrs) > 0 && attrs[0].Key == "href" {
		l.links = append(l.links, attrs[0].Val)
	}
}

func (l *LinkExtractor) EndTag(string) {}

func (l *LinkExtractor) Text(string) {}

// Results returns the links collected so far.
func (l *LinkExtractor) Results() []string {
	return l.links
}
