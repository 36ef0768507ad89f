package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kbukum/fileproxy/api"
	"github.com/kbukum/fileproxy/client"
	"github.com/kbukum/fileproxy/cmd/fileproxy/flags"
)

type ListCmd struct {
	Prefix string `help:"Only keys starting with this prefix"`
	Limit  int    `help:"Page size (server caps at 1000)"`
	Cursor string `help:"Resume from a previous page"`
	All    bool   `help:"Follow cursors until the listing is complete"`
	Output string `help:"Output format" enum:"table,json,yaml" default:"table" short:"o"`
}

func (cmd *ListCmd) Run(g *flags.GlobalFlags) error {
	ctx := context.Background()

	c, err := g.Client()
	if err != nil {
		return err
	}

	opts := client.ListOptions{Prefix: cmd.Prefix, Limit: cmd.Limit, Cursor: cmd.Cursor}
	var (
		objects []api.ObjectEntry
		next    *string
	)
	if cmd.All {
		objects, err = c.ListAll(ctx, opts)
	} else {
		var page *api.ListResponse
		page, err = c.List(ctx, opts)
		if page != nil {
			objects, next = page.Objects, page.Cursor
		}
	}
	if err != nil {
		return err
	}

	if cmd.Output != "table" {
		return printStructured(cmd.Output, objects)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSIZE\tUPLOADED\tETAG")
	for _, o := range objects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Key, humanize.Bytes(uint64(o.Size)), uploadedAgo(o.Uploaded), o.ETag)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if next != nil {
		fmt.Fprintf(os.Stderr, "more results: --cursor %s\n", *next)
	}
	return nil
}

func uploadedAgo(s string) string {
	t, err := time.Parse(api.TimeLayout, s)
	if err != nil {
		return s
	}
	return humanize.Time(t)
}
