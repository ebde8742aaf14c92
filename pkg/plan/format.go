package plan

import (
	"strings"
)

// FormatPlan draws the plan rooted at n as an indented tree, one node per
// line, root first. It is what `invscan --explain` and the REPL `explain`
// command print:
//
//	└─ Limit(count: 30)
//	   └─ Filter(predicate: hdisk="SSD")
//	      └─ WindowScan(table: servers, start: 2, chunk: 200)
func FormatPlan(n Explainer) string {
	var sb strings.Builder
	writeNode(&sb, n, "", true)
	return sb.String()
}

func writeNode(sb *strings.Builder, n Explainer, indent string, last bool) {
	branch, pad := "├─ ", "│  "
	if last {
		branch, pad = "└─ ", "   "
	}
	sb.WriteString(indent + branch + n.Explain() + "\n")

	inputs := n.Children()
	for i, in := range inputs {
		writeNode(sb, in, indent+pad, i == len(inputs)-1)
	}
}
