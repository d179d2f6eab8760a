package main

import (
	"context"
	"io"
	"time"

	"github.com/alecthomas/kong"
	"github.com/felipemarinho97/lafa-indexer/lafa"
	"github.com/felipemarinho97/lafa-indexer/parser"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config parser.Config
	Engine *lafa.Engine
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	BaseURL string           `name:"base-url" default:"https://top.lafa.site" env:"LAFA_BASE_URL" help:"Site root"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Search SearchCmd `cmd:"" help:"Search the site and print one line per record"`
	Parse  ParseCmd  `cmd:"" help:"Run an extractor over a saved page"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	What              string        `arg:"" help:"Search terms"`
	Category          string        `short:"c" default:"all" enum:"all,anime,games,movies,music,software,tv" help:"Category (accepted, not used for filtering)"`
	Concurrency       int           `default:"4" help:"Title pages fetched at once"`
	RequestsPerSecond float64       `name:"rps" default:"5" help:"Request rate limit, 0 disables it"`
	Timeout           time.Duration `short:"t" default:"30s" help:"Timeout per request"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	File    string `arg:"" type:"existingfile" help:"Saved HTML page"`
	Links   bool   `short:"l" help:"Print anchor targets instead of records"`
	PageURL string `name:"page-url" help:"URL the page was saved from, printed as desc_link"`
}
