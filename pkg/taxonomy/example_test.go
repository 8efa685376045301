package taxonomy_test

import (
	"fmt"

	"github.com/riskmap/riskmap/pkg/taxonomy"
)

// ExampleSentinel_Resolve shows how sentinel fields expand against the
// universe of declared ids.
func ExampleSentinel_Resolve() {
	universe := []string{"data-sources", "training-data", "the-model"}

	fmt.Println(taxonomy.All().Resolve(universe))
	fmt.Println(taxonomy.None().Resolve(universe))
	fmt.Println(taxonomy.Explicit("the-model").Resolve(universe))
	// Output:
	// [data-sources training-data the-model]
	// []
	// [the-model]
}

// ExampleNewSnapshot builds a snapshot in memory and reads back a
// control's resolved component set.
func ExampleNewSnapshot() {
	components := []*taxonomy.Component{
		{ID: "input-handling", Title: "Input Handling", Category: taxonomy.CategoryModel},
		{ID: "output-handling", Title: "Output Handling", Category: taxonomy.CategoryModel},
	}
	controls := []*taxonomy.Control{
		{ID: "adversarial-testing", Title: "Adversarial Testing", Components: taxonomy.All()},
	}

	snap, err := taxonomy.NewSnapshot(components, controls, nil, nil, nil)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(snap.ResolvedComponents("adversarial-testing"))
	// Output:
	// [input-handling output-handling]
}
