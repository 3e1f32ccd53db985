package treesitter

import (
	"fmt"
	"strings"
)

// FormatOutline lists every declaration of the given units, documented or
// not, grouped by file and nested by containment. Documented declarations
// are marked with "*".
//
// Example output:
//
//	test.cpp:
//	  namespace sp *
//	    function foo *
//	    enum test *
//	      enum constant OK
func FormatOutline(units []*Unit) string {
	var b strings.Builder
	for _, u := range units {
		if u == nil || len(u.Decls) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", u.Path)
		depth := make([]int, len(u.Decls))
		for i, d := range u.Decls {
			if d.Parent >= 0 {
				depth[i] = depth[d.Parent] + 1
			}
			b.WriteString(strings.Repeat("  ", depth[i]+1))
			fmt.Fprintf(&b, "%s %s", d.Kind, d.Name)
			if d.Comment != "" {
				b.WriteString(" *")
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
