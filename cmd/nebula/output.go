package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"nebula-hq/nebula/pkg/catalog"
	"nebula-hq/nebula/pkg/chat"
	"nebula-hq/nebula/pkg/cli"
	"nebula-hq/nebula/pkg/nodes"
)

// latencyLabel renders a node's probe state.
func latencyLabel(n nodes.Node) string {
	if !n.Probed() {
		return "unprobed"
	}
	if d, ok := n.Latency(); ok {
		return d.String()
	}
	return "unreachable"
}

func printNodes(w io.Writer, format cli.OutputFormat, pool []nodes.Node, activeID string) error {
	type nodeView struct {
		nodes.Node
		Active bool `json:"active"`
	}

	table := &cli.Table{Headers: []string{"", "ID", "NAME", "URL", "LATENCY"}}
	views := make([]nodeView, 0, len(pool))
	for _, n := range pool {
		marker := ""
		if n.ID == activeID {
			marker = "*"
		}
		table.Rows = append(table.Rows, []string{marker, n.ID, n.Name, n.URL, latencyLabel(n)})
		views = append(views, nodeView{Node: n, Active: n.ID == activeID})
	}
	table.Data = views
	return cli.NewFormatter(format).FormatTo(w, table)
}

func printModels(w io.Writer, format cli.OutputFormat, models []catalog.Model, currentID string) error {
	table := &cli.Table{
		Headers: []string{"", "ID", "PROVIDER", "VENDOR MODEL", "NAME"},
		Data:    models,
	}
	for _, m := range models {
		marker := ""
		if m.ID == currentID {
			marker = "*"
		}
		table.Rows = append(table.Rows, []string{marker, m.ID, m.Provider.String(), m.VendorModel, m.Name})
	}
	return cli.NewFormatter(format).FormatTo(w, table)
}

func printHistory(w io.Writer, format cli.OutputFormat, msgs []chat.Message) error {
	if format == cli.FormatJSON {
		if msgs == nil {
			msgs = []chat.Message{}
		}
		return cli.NewFormatter(format).FormatTo(w, msgs)
	}
	for _, m := range msgs {
		fmt.Fprintf(w, "[%s] %s", m.Timestamp.Local().Format(time.DateTime), m.Role)
		if len(m.Attachments) > 0 {
			names := make([]string, 0, len(m.Attachments))
			for _, att := range m.Attachments {
				names = append(names, att.Name)
			}
			fmt.Fprintf(w, " (attached: %s)", strings.Join(names, ", "))
		}
		fmt.Fprintf(w, "\n%s\n\n", m.Text)
	}
	return nil
}
