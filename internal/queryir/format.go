package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/relc/internal/ir"
)

// Format renders a plan as an indented tree for the explain command and for
// diagnostics. One node per line, children indented below their parent.
//
//	Project [name, amount]
//	  Filter amount > ?
//	    Scan sales
func Format(plan *Project) string {
	var sb strings.Builder
	formatNode(&sb, plan, 0)
	return sb.String()
}

func formatNode(sb *strings.Builder, p Plan, depth int) {
	indent := strings.Repeat("  ", depth)

	switch node := p.(type) {
	case *Project:
		names := make([]string, len(node.Columns))
		for i, col := range node.Columns {
			names[i] = describeColumn(col)
		}
		fmt.Fprintf(sb, "%sProject [%s]\n", indent, strings.Join(names, ", "))
		formatNode(sb, node.Input, depth+1)
	case Project:
		formatNode(sb, &node, depth)
	case Group:
		keys := make([]string, len(node.Keys))
		for i, k := range node.Keys {
			keys[i] = k.String()
		}
		fmt.Fprintf(sb, "%sGroup by [%s]\n", indent, strings.Join(keys, ", "))
		formatNode(sb, node.Input, depth+1)
	case Filter:
		fmt.Fprintf(sb, "%sFilter %s\n", indent, ir.FormatPredicate(node.Pred))
		formatNode(sb, node.Input, depth+1)
	case Join:
		fmt.Fprintf(sb, "%sNatural join\n", indent)
		formatNode(sb, node.Left, depth+1)
		formatNode(sb, node.Right, depth+1)
	case Scan:
		if node.Alias != "" && node.Alias != node.Relation {
			fmt.Fprintf(sb, "%sScan %s AS %s\n", indent, node.Relation, node.Alias)
		} else {
			fmt.Fprintf(sb, "%sScan %s\n", indent, node.Relation)
		}
	default:
		fmt.Fprintf(sb, "%s<unknown node %T>\n", indent, p)
	}
}

func describeColumn(col ProjectedColumn) string {
	if col.Kind == OutputAggregate {
		target := col.Agg.Col.String()
		return fmt.Sprintf("%s(%s) AS %s", col.Agg.Func, target, col.Agg.Alias)
	}
	return col.Col.String()
}
