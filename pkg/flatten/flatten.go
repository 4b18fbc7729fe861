// Package flatten walks a parsed payload and yields its map-held scalar leaves.
package flatten

import "github.com/dtnitsch/llm-log-parser/pkg/parser"

// Pair is one scalar leaf and the map key that held it. Keys repeat freely;
// discovery order is the only identity.
type Pair struct {
	Key   string
	Value string
	Raw   any
}

// Flatten returns leaves in depth-first pre-order. Scalars sitting directly
// in a sequence are not emitted.
func Flatten(root *parser.Node) []Pair {
	var pairs []Pair
	walk(root, &pairs)
	return pairs
}

func walk(n *parser.Node, pairs *[]Pair) {
	if n == nil {
		return
	}
	switch n.Kind {
	case parser.KindMap:
		for _, e := range n.Entries {
			if e.Value == nil {
				continue
			}
			if e.Value.Kind == parser.KindScalar {
				*pairs = append(*pairs, Pair{Key: e.Key, Value: e.Value.String(), Raw: e.Value.Value})
				continue
			}
			walk(e.Value, pairs)
		}
	case parser.KindSeq:
		for _, item := range n.Items {
			if item != nil && item.Kind != parser.KindScalar {
				walk(item, pairs)
			}
		}
	}
}
