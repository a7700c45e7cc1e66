package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/wolfeidau/tutorcontrol/internal/routes"
)

type RoutesCmd struct {
	Resolve string `arg:"" optional:"" help:"URL path to resolve to its view, params and props"`
	JSON    bool   `help:"print JSON instead of a table" default:"false"`
}

func (c *RoutesCmd) Run(globals *Globals) error {
	out := globals.Out
	if out == nil {
		out = os.Stdout
	}
	table := routes.Default()

	if c.Resolve == "" {
		return c.printTable(out, table)
	}
	return c.printMatch(out, table)
}

func (c *RoutesCmd) printTable(out io.Writer, table routes.Table) error {
	manifest := table.Manifest()
	if c.JSON {
		return writeJSON(out, manifest)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tCOMPONENT\tPROPS")
	for _, entry := range manifest {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", entry.Path, entry.Component, entry.HasProps)
	}
	return tw.Flush()
}

func (c *RoutesCmd) printMatch(out io.Writer, table routes.Table) error {
	resolved := struct {
		Path      string        `json:"path"`
		Component string        `json:"component"`
		Params    routes.Params `json:"params"`
		Props     routes.Props  `json:"props"`
	}{Path: c.Resolve, Component: routes.NotFound, Params: routes.Params{}}

	if m, ok := table.Match(c.Resolve); ok {
		resolved.Component = m.Component()
		resolved.Params = m.Params
		resolved.Props = m.Props
	}

	if c.JSON {
		return writeJSON(out, resolved)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "path\t%s\n", resolved.Path)
	fmt.Fprintf(tw, "component\t%s\n", resolved.Component)
	params, err := json.Marshal(resolved.Params)
	if err != nil {
		return err
	}
	props, err := json.Marshal(resolved.Props)
	if err != nil {
		return err
	}
	fmt.Fprintf(tw, "params\t%s\n", params)
	fmt.Fprintf(tw, "props\t%s\n", props)
	return tw.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
