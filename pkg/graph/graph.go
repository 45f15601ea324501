package graph

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/orgtower/pkg/dag"
)

// utf8BOM is skipped at the start of graph files saved by spreadsheet and
// Windows editors.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// MarshalGraph returns the indented node-link JSON of g.
func MarshalGraph(g *dag.DAG) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes the node-link JSON of g to w.
func WriteGraph(g *dag.DAG, w io.Writer) error {
	return encode(w, FromDAG(g))
}

// WriteTree writes a reduced tree as nested JSON.
func WriteTree(t *dag.Tree, w io.Writer) error {
	return encode(w, FromTree(t))
}

// ReadGraph decodes node-link JSON from r and rebuilds the DAG, validating
// every node and edge.
func ReadGraph(r io.Reader) (*dag.DAG, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	var data Graph
	if err := json.NewDecoder(br).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return ToDAG(data)
}

// ReadGraphFile reads a graph written by 'orgtower parse'.
func ReadGraphFile(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := ReadGraph(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
