package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/felipemarinho97/lafa-indexer/schema"
	"github.com/felipemarinho97/lafa-indexer/utils"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	records, err := deps.Engine.Search(deps.Ctx, c.What, c.Category)
	if err != nil {
		return err
	}

	for _, r := range records {
		printRecord(deps.Stdout, r)
	}
	return nil
}

// printRecord writes r as link|name|size|seeds|leech|engine_url|desc_link.
// Size is converted to bytes, -1 when it cannot be read.
func printRecord(w io.Writer, r schema.Record) {
	size, ok := utils.SizeInBytes(r.Size)
	if !ok {
		size = -1
	}

	fields := []string{
		r.Link,
		r.Name,
		strconv.FormatInt(size, 10),
		orMinusOne(r.Seeds),
		orMinusOne(r.Leech),
		r.EngineURL,
	}
	if r.DescLink != "" {
		fields = append(fields, r.DescLink)
	}
	for i := range fields {
		fields[i] = strings.ReplaceAll(fields[i], "|", " ")
	}
	fmt.Fprintln(w, strings.Join(fields, "|"))
}

func orMinusOne(count string) string {
	if _, err := strconv.Atoi(count); err != nil {
		return "-1"
	}
	return count
}
