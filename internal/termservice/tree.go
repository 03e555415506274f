package termservice

import (
	"bufio"
	"io"
	"strings"

	"github.com/starford/lexicon/internal/models"
)

// WriteTree renders nodes as an indented outline, two spaces per level.
// Parent terms carry a trailing "/".
func WriteTree(w io.Writer, nodes []*models.TermNode) error {
	bw := bufio.NewWriter(w)
	writeLevel(bw, nodes, 0)
	return bw.Flush()
}

func writeLevel(w *bufio.Writer, nodes []*models.TermNode, depth int) {
	for _, n := range nodes {
		w.WriteString(strings.Repeat("  ", depth))
		w.WriteString(n.Name)
		if n.Parent {
			w.WriteByte('/')
		}
		w.WriteByte('\n')
		writeLevel(w, n.Children, depth+1)
	}
}
