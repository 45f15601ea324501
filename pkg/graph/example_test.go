package graph_test

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/graph"
)

func ExampleWriteGraph() {
	g := dag.New(dag.Metadata{"root": "TSC"})
	_ = g.AddNode(dag.Node{ID: "TSC", Name: "Technical Steering Committee (TSC)", Kind: dag.KindCouncil})
	_ = g.AddNode(dag.Node{ID: "G1:Example WG", Name: "Example WG", Kind: dag.KindWorkingGroup, Status: "Active"})
	_, _ = g.AddEdge(dag.Edge{From: "TSC", To: "G1:Example WG"})

	var buf bytes.Buffer
	if err := graph.WriteGraph(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "root": "TSC",
	//   "nodes": [
	//     {
	//       "id": "TSC",
	//       "label": "Technical Steering Committee (TSC)",
	//       "kind": "council"
	//     },
	//     {
	//       "id": "G1:Example WG",
	//       "label": "Example WG",
	//       "kind": "working-group",
	//       "status": "Active"
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "from": "TSC",
	//       "to": "G1:Example WG"
	//     }
	//   ]
	// }
}

func ExampleReadGraph() {
	data := `{
		"nodes": [
			{"id": "TSC", "kind": "council"},
			{"id": "hc", "label": "Software HC", "kind": "committee", "chair": {"name": "Grace"}}
		],
		"edges": [{"from": "TSC", "to": "hc"}]
	}`

	g, err := graph.ReadGraph(bytes.NewReader([]byte(data)))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	hc, _ := g.Node("hc")
	fmt.Println(g.NodeCount(), g.EdgeCount())
	fmt.Println(hc.Label(), hc.Kind, hc.Chair.Name)
	// Output:
	// 2 1
	// Software HC committee Grace
}
