package common

import (
	"strings"

	"github.com/olekukonko/tablewriter"
)

// RenderTable renders rows as a monospace table inside a Discord code block
func RenderTable(headers []string, rows [][]string) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetHeaderLine(true)
	table.SetColumnSeparator(" ")
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(rows)
	table.Render()

	return "```\n" + buf.String() + "```"
}
