package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/skywatchd/skywatch/config"
	"github.com/skywatchd/skywatch/di"
)

var checkCmd = &cli.Command{
	Name:  "check",
	Usage: "Validate the config file and print the configured filters",
	Action: func(ctx context.Context, c *cli.Command) error {
		cfg, err := do.Invoke[*config.Config](di.SetupContainer(c.String("config")))
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Filter", "DIDs", "Handles", "Includes", "Excludes"})

		for _, f := range cfg.Filters {
			var dids, handles, includes, excludes []string
			if f.Subscribes != nil {
				dids = f.Subscribes.Dids
				handles = f.Subscribes.Handles
			}
			if f.Keywords != nil {
				includes = f.Keywords.Includes
				excludes = f.Keywords.Excludes
			}
			t.AppendRow(table.Row{
				f.Name,
				strings.Join(dids, "\n"),
				strings.Join(handles, "\n"),
				strings.Join(includes, "\n"),
				strings.Join(excludes, "\n"),
			})
		}
		t.Render()

		fmt.Printf("config OK: %d filters, sink=%s\n", len(cfg.Filters), cfg.Sink.Type)
		return nil
	},
}
