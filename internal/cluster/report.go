package cluster

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
)

// TopClusters is how many clusters RenderTop prints by default.
const TopClusters = 5

const previewWidth = 100

// RenderTop writes the n largest clusters as a table. Representative text
// is cut to a fixed display width so wide scripts and emoji line up.
func RenderTop(w io.Writer, summaries []Summary, n int) {
	if n <= 0 {
		n = TopClusters
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Cluster", "Size", "Top likes", "Representative"})

	for i, s := range summaries {
		if i == n {
			break
		}
		t.AppendRow(table.Row{s.ClusterID, s.Size, s.TopLikes, Preview(s.Representative, previewWidth)})
	}
	t.Render()
}

// Preview cuts s to at most width terminal cells, ending in "…" when cut.
func Preview(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
