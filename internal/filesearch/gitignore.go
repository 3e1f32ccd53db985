package filesearch

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Matcher matches slash-separated relative paths against gitignore patterns.
// Later patterns win, so a negation can re-include an earlier match.
type Matcher struct {
	patterns []*pattern
}

type pattern struct {
	source   string
	regex    *regexp.Regexp
	negation bool
	dirOnly  bool
	anchored bool
}

// NewMatcher builds a matcher from pattern lines. Blank lines and comments are
// ignored, as are patterns that fail to compile.
func NewMatcher(lines ...string) *Matcher {
	m := &Matcher{}
	m.Add(lines...)
	return m
}

// Add appends pattern lines to m.
func (m *Matcher) Add(lines ...string) {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if p := parsePattern(line); p != nil {
			m.patterns = append(m.patterns, p)
		}
	}
}

// LoadGitignore appends the patterns of a .gitignore file to m. A missing file
// is not an error.
func (m *Matcher) LoadGitignore(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	m.Add(lines...)
	return nil
}

// Len returns the number of active patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// Matches checks if a path should be ignored.
func (m *Matcher) Matches(path string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	path = filepath.ToSlash(path)

	var lastMatch bool
	for _, p := range m.patterns {
		// Directory patterns also cover the files inside the directory.
		if p.dirOnly {
			if isDir && p.regex.MatchString(path) {
				lastMatch = !p.negation
			} else if !isDir && p.regex.MatchString(filepath.ToSlash(filepath.Dir(path))) {
				lastMatch = !p.negation
			}
			continue
		}

		if p.anchored {
			if p.regex.MatchString(path) {
				lastMatch = !p.negation
			}
		} else if p.regex.MatchString(path) || p.regex.MatchString(filepath.Base(path)) {
			lastMatch = !p.negation
		}
	}

	return lastMatch
}

// parsePattern converts a gitignore pattern to a regex.
func parsePattern(line string) *pattern {
	source := line
	pat := line
	negation := false
	dirOnly := false
	anchored := false

	if strings.HasPrefix(pat, "!") {
		negation = true
		pat = pat[1:]
	}
	// A slash anywhere but the end anchors the pattern to the root.
	trimmed := strings.TrimSuffix(pat, "/")
	if strings.Contains(trimmed, "/") && !strings.HasPrefix(trimmed, "**/") {
		anchored = true
		if !strings.HasPrefix(trimmed, "/") {
			trimmed = "/" + trimmed
		}
	}
	if strings.HasSuffix(pat, "/") {
		dirOnly = true
	}

	regex, err := regexp.Compile(globToRegex(trimmed))
	if err != nil {
		return nil
	}

	return &pattern{
		source:   source,
		regex:    regex,
		negation: negation,
		dirOnly:  dirOnly,
		anchored: anchored,
	}
}

// globToRegex converts a gitignore glob pattern to a regex.
func globToRegex(pattern string) string {
	var result strings.Builder

	if strings.HasPrefix(pattern, "/") {
		result.WriteString("^")
		pattern = pattern[1:]
	} else {
		result.WriteString("(^|/)")
	}

	for i := 0; i < len(pattern); {
		i += convertGlobChar(&result, pattern, i)
	}

	result.WriteString("(/.*)?$")
	return result.String()
}

// convertGlobChar writes the regex equivalent of pattern[i] into b and returns
// the number of characters consumed.
func convertGlobChar(b *strings.Builder, pattern string, i int) int {
	ch := pattern[i]
	switch ch {
	case '*':
		return convertGlobStar(b, pattern, i)
	case '?':
		b.WriteString("[^/]")
		return 1
	case '.', '+', '(', ')', '|', '^', '$', '@', '%':
		b.WriteByte('\\')
		b.WriteByte(ch)
		return 1
	case '[':
		return convertGlobCharClass(b, pattern, i)
	case '\\':
		if i+1 < len(pattern) {
			b.WriteByte('\\')
			b.WriteByte(pattern[i+1])
			return 2
		}
		b.WriteString("\\\\")
		return 1
	default:
		b.WriteByte(ch)
		return 1
	}
}

func convertGlobStar(b *strings.Builder, pattern string, i int) int {
	if i+1 < len(pattern) && pattern[i+1] == '*' {
		if i+2 < len(pattern) && pattern[i+2] == '/' {
			b.WriteString("(.*/)?")
			return 3
		}
		b.WriteString(".*")
		return 2
	}
	b.WriteString("[^/]*")
	return 1
}

func convertGlobCharClass(b *strings.Builder, pattern string, i int) int {
	j := i + 1
	for j < len(pattern) && pattern[j] != ']' {
		j++
	}
	if j < len(pattern) {
		b.WriteString(pattern[i : j+1])
		return j + 1 - i
	}
	b.WriteString("\\[")
	return 1
}
