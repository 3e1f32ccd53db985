package highlight

import (
	"path/filepath"
	"strings"
)

// DetectLanguage returns the Chroma lexer for a C-family source path. Plain C
// sources get the C lexer; headers and everything else are treated as C++.
func DetectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c":
		return "c"
	default:
		return "cpp"
	}
}
