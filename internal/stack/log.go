package stack

import (
	"fmt"
	"io"
	"strings"
)

// treeNode is one line of the hierarchy log.
type treeNode struct {
	Label    string
	Children []*treeNode
}

// renderLog writes the concat log: header, a tree of stacks and their
// reports, and totals.
func renderLog(res *Result) string {
	var b strings.Builder
	b.WriteString("Report Stack Generation Log\n")
	b.WriteString("===========================\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", res.Generated.Format("2006-01-02 15:04:05"))

	root := &treeNode{Label: fmt.Sprintf("%d stacks", len(res.Stacks))}
	for _, st := range res.Stacks {
		n := &treeNode{Label: fmt.Sprintf("%s -> %s", st.Name, st.File)}
		for _, r := range st.Reports {
			n.Children = append(n.Children, &treeNode{Label: r})
		}
		for _, m := range st.Missing {
			n.Children = append(n.Children, &treeNode{Label: m + " (missing)"})
		}
		for _, f := range st.Failed {
			n.Children = append(n.Children, &treeNode{Label: f + " (unreadable)"})
		}
		root.Children = append(root.Children, n)
	}
	b.WriteString(root.Label + "\n")
	renderChildren(&b, root.Children, "")

	b.WriteString("\nSummary\n")
	b.WriteString("=======\n")
	fmt.Fprintf(&b, "Total stacks created: %d\n", len(res.Stacks))
	fmt.Fprintf(&b, "Total files processed: %d\n", res.Files)
	for _, name := range res.Empty {
		fmt.Fprintf(&b, "Skipped empty stack: %s\n", name)
	}
	for _, st := range res.Stacks {
		b.WriteString(st.Summary + "\n")
	}
	return b.String()
}

// renderChildren draws children with box-drawing prefixes.
func renderChildren(w io.Writer, children []*treeNode, prefix string) {
	for i, child := range children {
		last := i == len(children)-1
		connector := "├── "
		if last {
			connector = "└── "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, child.Label)

		childPrefix := prefix + "│   "
		if last {
			childPrefix = prefix + "    "
		}
		renderChildren(w, child.Children, childPrefix)
	}
}
