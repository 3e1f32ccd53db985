package filesearch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

var cppExts = []string{".h", ".hpp", ".c", ".cpp"}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func checkPaths(t *testing.T, root string, got, want []string) {
	t.Helper()
	if rels := rel(t, root, got); !slices.Equal(rels, want) {
		t.Errorf("Discover = %q, want %q", rels, want)
	}
}

func TestDiscoverDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.cpp":           "int a;",
		"include/a.hpp":   "int a();",
		"include/b.h":     "int b();",
		"README.md":       "# readme",
		"src/main.c":      "int main() {}",
		"src/notes.txt":   "notes",
		".git/HEAD.cpp":   "nope",
		"Upper/SHOUT.CPP": "int x;",
	})

	got, err := Discover(context.Background(), []string{root}, Options{Extensions: cppExts})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Upper/SHOUT.CPP", "a.cpp", "include/a.hpp", "include/b.h", "src/main.c"}
	checkPaths(t, root, got, want)
}

func TestDiscoverGitignoreAndExclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":           "build/\n*.gen.hpp\n",
		"build/out.cpp":        "x",
		"src/a.cpp":            "x",
		"src/a.gen.hpp":        "x",
		"third_party/zlib.h":   "x",
		"third_party/keep/k.h": "x",
	})

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "gitignore",
			opts: Options{Extensions: cppExts, RespectGitignore: true},
			want: []string{"src/a.cpp", "third_party/keep/k.h", "third_party/zlib.h"},
		},
		{
			name: "gitignore off",
			opts: Options{Extensions: cppExts},
			want: []string{"build/out.cpp", "src/a.cpp", "src/a.gen.hpp", "third_party/keep/k.h", "third_party/zlib.h"},
		},
		{
			name: "exclude",
			opts: Options{Extensions: cppExts, RespectGitignore: true, Exclude: []string{"third_party/"}},
			want: []string{"src/a.cpp"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Discover(context.Background(), []string{root}, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			checkPaths(t, root, got, tt.want)
		})
	}
}

func TestDiscoverMaxFileBytes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"small.cpp": "int x;",
		"big.cpp":   "int a_much_longer_declaration_than_allowed;",
	})

	got, err := Discover(context.Background(), []string{root}, Options{Extensions: cppExts, MaxFileBytes: 10})
	if err != nil {
		t.Fatal(err)
	}
	checkPaths(t, root, got, []string{"small.cpp"})
}

func TestDiscoverExplicitFilesAlwaysIncluded(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "*.inc\n",
		"a.inc":      "int a;",
		"b.cpp":      "int b;",
	})
	inc := filepath.Join(root, "a.inc")

	got, err := Discover(context.Background(), []string{inc, root, inc}, Options{
		Extensions:       cppExts,
		RespectGitignore: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	checkPaths(t, root, got, []string{"a.inc", "b.cpp"})
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestDiscoverCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.cpp": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Discover(ctx, []string{root}, Options{Extensions: cppExts}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
