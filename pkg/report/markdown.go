package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/llm-log-parser/pkg/flatten"
)

// WriteLeaves renders leaf pairs as bold key / italic value blocks.
func WriteLeaves(w io.Writer, pairs []flatten.Pair) error {
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "**%s**\n*%s*\n\n\n", p.Key, p.Value)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
