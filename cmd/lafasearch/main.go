package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/felipemarinho97/lafa-indexer/consts"
	"github.com/felipemarinho97/lafa-indexer/lafa"
	"github.com/felipemarinho97/lafa-indexer/logging"
	"github.com/felipemarinho97/lafa-indexer/monitoring"
	"github.com/felipemarinho97/lafa-indexer/parser"
	"github.com/felipemarinho97/lafa-indexer/requester"
)

func main() {
	ctx := context.Background()
	logging.InitLogger(os.Stderr)

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getter fetches pages for the search command. A plain requester is
	// used when nil.
	Getter lafa.DocumentGetter
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// help and version hooks call Exit, which must end the run
	exited := false
	cli := &CLI{}
	p, err := kong.New(cli,
		kong.Name("lafasearch"),
		kong.Description("Search "+lafa.Meta.Name+" and print results in the nova2 format"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
		kong.Vars{"version": consts.Version()},
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = p.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'lafasearch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = p.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := p.Parse(args)
	if exited {
		return nil
	}
	if err != nil {
		return err
	}

	deps.Config = parser.DefaultConfig().WithBaseURL(cli.BaseURL)
	if strings.HasPrefix(kongCtx.Command(), "search") {
		getter := m.Getter
		if getter == nil {
			getter = requester.NewRequester(nil, nil,
				requester.WithRequestsPerSecond(cli.Search.RequestsPerSecond),
				requester.WithHTTPClient(&http.Client{Timeout: cli.Search.Timeout}),
			)
		}
		deps.Engine = lafa.NewEngine(getter, monitoring.NewMetrics(),
			lafa.WithConfig(deps.Config),
			lafa.WithConcurrency(cli.Search.Concurrency),
		)
	}

	return kongCtx.Run(deps)
}
