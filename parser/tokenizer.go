// Package parser turns listing pages into records without building a DOM.
//
// Documents are fed through the tolerant golang.org/x/net/html tokenizer and
// the resulting start tag, end tag and text events are handed to an EventSink.
// LinkExtractor and RecordTableExtractor are the two sinks used by the indexer.
package parser

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// EventSink receives the structural events of a document in order.
// Tag names and attribute keys are lower case, attribute values and text are
// unescaped and attributes keep their source order.
type EventSink interface {
	StartTag(tag string, attrs []html.Attribute)
	EndTag(tag string)
	Text(text string)
}

// Source is an EventSink that accumulates results of type T.
type Source[T any] interface {
	EventSink
	Results() []T
}

// Feed tokenizes r and forwards every event to sink. Invalid markup is skipped
// by the tokenizer rather than reported; the only errors returned come from r.
// Self-closing tags produce a start event immediately followed by an end event.
func Feed(r io.Reader, sink EventSink) error {
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return err
			}
			return nil
		case html.StartTagToken:
			t := z.Token()
			sink.StartTag(t.Data, t.Attr)
		case html.SelfClosingTagToken:
			t := z.Token()
			sink.StartTag(t.Data, t.Attr)
			sink.EndTag(t.Data)
		case html.EndTagToken:
			t := z.Token()
			sink.EndTag(t.Data)
		case html.TextToken:
			sink.Text(string(z.Text()))
		}
	}
}

// GetResults feeds the whole document to src and returns what it collected.
// Sources hold cursor state, so each document needs a fresh src.
func GetResults[T any](document string, src Source[T]) []T {
	// a strings.Reader never fails, so Feed cannot return an error here
	_ = Feed(strings.NewReader(document), src)
	return src.Results()
}

// attr returns the value of key. Duplicate keys resolve to the last occurrence.
func attr(attrs []html.Attribute, key string) (string, bool) {
	val, found := "", false
	for _, a := range attrs {
		if a.Key == key {
			val, found = a.Val, true
		}
	}
	return val, found
}
