package mermaid_test

import (
	"fmt"

	"github.com/riskmap/riskmap/pkg/graph"
	"github.com/riskmap/riskmap/pkg/render/mermaid"
	"github.com/riskmap/riskmap/pkg/render/styles"
)

func ExampleRender() {
	g := graph.New()
	g.AddNode(graph.Node{ID: "cat_data", Label: "Data", Kind: graph.KindCategory})
	g.AddNode(graph.Node{ID: "corpus", Label: "Training Corpus", Kind: graph.KindComponent, Parent: "cat_data"})
	g.AddNode(graph.Node{ID: "pipeline", Label: "Data Pipeline", Kind: graph.KindComponent, Parent: "cat_data"})
	g.AddEdge(graph.Edge{From: "corpus", To: "pipeline", Style: graph.StyleDefault})

	fmt.Print(mermaid.Render(g, styles.Default(), mermaid.Options{View: "components"}))
	// Output:
	// %%{init: {"flowchart": {"nodeSpacing": 40, "rankSpacing": 40}}}%%
	// flowchart TB
	//   subgraph cat_data["Data"]
	//     corpus["Training Corpus"]
	//     pipeline["Data Pipeline"]
	//   end
	//   corpus --> pipeline
	//   classDef component fill:#e8f0fe,stroke:#5f6368
	//   class corpus,pipeline component
	//   classDef category fill:#f8f9fa,stroke:#5f6368
	//   class cat_data category
}
