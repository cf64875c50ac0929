package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/riskgraph/pkg/deps"
	"github.com/matzehuels/riskgraph/pkg/render/nodelink"
)

func ExampleToDOT() {
	files := map[string][]deps.Dependency{
		"package.json": {{
			Name:            "express",
			Version:         "4.18.2",
			Ecosystem:       deps.NPM,
			Vulnerabilities: []deps.Vulnerability{{ID: "OSV-EXP-001"}},
		}},
	}

	dot := nodelink.ToDOT(files, nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "file:package.json" -> "express@4.18.2@npm";
}
