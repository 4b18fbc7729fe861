// Package parser turns repaired payload text into an order-preserving tree
// of maps, sequences and scalar leaves.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Kind tags the variant held by a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindMap
	KindSeq
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindSeq:
		return "seq"
	default:
		return "scalar"
	}
}

// Entry is one key/value pair of a map node, kept in source order.
type Entry struct {
	Key   string
	Value *Node
}

// Node is a tagged union: exactly one of Entries, Items or Value is meaningful,
// selected by Kind. Scalar values are string, json.Number, bool or nil.
type Node struct {
	Kind    Kind
	Entries []Entry
	Items   []*Node
	Value   any
}

// Get returns the value for key in a map node. With duplicate keys the last
// one wins, matching encoding/json.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMap {
		return nil, false
	}
	for i := len(n.Entries) - 1; i >= 0; i-- {
		if n.Entries[i].Key == key {
			return n.Entries[i].Value, true
		}
	}
	return nil, false
}

// GetString returns the scalar text of key, or "" when absent or not a scalar.
func (n *Node) GetString(key string) string {
	v, ok := n.Get(key)
	if !ok || v.Kind != KindScalar {
		return ""
	}
	return v.String()
}

// String renders a scalar as text. Containers render as "".
func (n *Node) String() string {
	if n == nil || n.Kind != KindScalar {
		return ""
	}
	switch v := n.Value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// ParseError reports where strict parsing stopped.
type ParseError struct {
	Offset  int64
	Context string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %v (near %q)", e.Offset, e.Err, e.Context)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const contextRadius = 50

// Parse strictly parses text as a single JSON value. Trailing data is an error.
func Parse(text string) (*Node, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	root, err := parseValue(dec)
	if err != nil {
		return nil, newParseError(text, dec.InputOffset(), err)
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, newParseError(text, dec.InputOffset(), err)
	}
	return root, nil
}

func parseValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseMap(dec)
		case '[':
			return parseSeq(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return &Node{Kind: KindScalar, Value: t}, nil
	}
}

func parseMap(dec *json.Decoder) (*Node, error) {
	n := &Node{Kind: KindMap}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		n.Entries = append(n.Entries, Entry{Key: key, Value: val})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return n, nil
}

func parseSeq(dec *json.Decoder) (*Node, error) {
	n := &Node{Kind: KindSeq}
	for dec.More() {
		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		n.Items = append(n.Items, val)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return n, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func newParseError(text string, offset int64, err error) *ParseError {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		offset = syn.Offset
	}
	return &ParseError{
		Offset:  offset,
		Context: contextWindow(text, int(offset)),
		Err:     err,
	}
}

// contextWindow returns up to contextRadius bytes either side of offset,
// widened to rune boundaries.
func contextWindow(text string, offset int) string {
	if offset > len(text) {
		offset = len(text)
	}
	start := offset - contextRadius
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	end := offset + contextRadius
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return text[start:end]
}
