package main

import (
	"fmt"
	"os"

	"github.com/felipemarinho97/lafa-indexer/lafa"
	"github.com/felipemarinho97/lafa-indexer/parser"
)

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	b, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}
	document := string(b)

	if c.Links {
		for _, link := range parser.NewLinkExtractor().GetResults(document) {
			fmt.Fprintln(deps.Stdout, link)
		}
		return nil
	}

	for _, r := range lafa.ParsePage(deps.Config, c.PageURL, document) {
		printRecord(deps.Stdout, r)
	}
	return nil
}
