// Package site emits a Jekyll site using the just-the-docs theme: one
// reference page per documented function.
package site

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/xonecas/clong/internal/doctree"
)

//go:embed assets/Gemfile
var gemfile string

//go:embed assets/index.md
var indexBody string

// Marker is the file that identifies a directory previously written by Write.
const Marker = ".clong"

// ErrNotOwned is returned when the output directory holds files that were not
// produced by a previous run.
var ErrNotOwned = errors.New("output directory is not empty and was not created by clong")

// Options configures the generated site.
type Options struct {
	Title       string
	Description string
}

type siteConfig struct {
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description,omitempty"`
	Theme         string   `yaml:"theme"`
	SearchEnabled bool     `yaml:"search_enabled"`
	Exclude       []string `yaml:"exclude"`
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Parent      string `yaml:"parent,omitempty"`
	NavOrder    int    `yaml:"nav_order,omitempty"`
	HasChildren bool   `yaml:"has_children,omitempty"`
	Permalink   string `yaml:"permalink,omitempty"`
}

// Page is one generated function page.
type Page struct {
	Path string // relative to the site root, slash separated
	Name string
	Node *doctree.Node
}

// Pages assigns a file to every function in fns. Pages are named after the
// function; when several functions share a name each gets a short hash of its
// signature appended.
func Pages(fns []*doctree.Node, d doctree.Describer) []Page {
	count := make(map[string]int, len(fns))
	for _, n := range fns {
		count[fileName(d.Name(n.Decl))]++
	}

	pages := make([]Page, 0, len(fns))
	used := make(map[string]bool, len(fns))
	for _, n := range fns {
		name := d.Name(n.Decl)
		base := fileName(name)
		if count[base] > 1 {
			base += "-" + shortHash(d.Signature(n.Decl))
		}
		file := base
		for i := 2; used[file]; i++ {
			file = fmt.Sprintf("%s-%d", base, i)
		}
		used[file] = true
		pages = append(pages, Page{Path: "refs/function/" + file + ".md", Name: name, Node: n})
	}
	return pages
}

// Write replaces dir with a freshly generated site for the functions in fns.
// A non-empty dir is only cleared when it carries the Marker file.
func Write(dir string, fns []*doctree.Node, d doctree.Describer, opts Options) error {
	if opts.Title == "" {
		opts.Title = "API reference"
	}
	if err := prepare(dir); err != nil {
		return err
	}

	cfg, err := yaml.Marshal(siteConfig{
		Title:         opts.Title,
		Description:   opts.Description,
		Theme:         "just-the-docs",
		SearchEnabled: true,
		Exclude:       []string{"Gemfile", "Gemfile.lock", Marker},
	})
	if err != nil {
		return fmt.Errorf("encoding _config.yml: %w", err)
	}

	files := map[string][]byte{
		Marker:        nil,
		"Gemfile":     []byte(gemfile),
		"_config.yml": cfg,
	}
	if files["index.md"], err = page(frontMatter{Title: "Home", NavOrder: 1, Permalink: "/"}, indexBody); err != nil {
		return err
	}
	if files["refs/function.md"], err = page(frontMatter{Title: "Functions", NavOrder: 2, HasChildren: true}, ""); err != nil {
		return err
	}

	for i, p := range Pages(fns, d) {
		body := "```cpp\n" + d.Signature(p.Node.Decl) + "\n```\n\n" + Markdown(p.Node.Comment)
		if files[p.Path], err = page(frontMatter{Title: p.Name, Parent: "Functions", NavOrder: i + 1}, body); err != nil {
			return err
		}
	}

	for rel, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	log.Debug().Str("dir", dir).Int("functions", len(fns)).Msg("site written")
	return nil
}

// Markdown turns a documentation comment into page text by dropping the
// single space each comment line keeps after its marker.
func Markdown(comment string) string {
	lines := strings.SplitAfter(comment, "\n")
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.TrimPrefix(l, " "))
	}
	return b.String()
}

func prepare(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return os.MkdirAll(dir, 0o755)
	case err != nil:
		return fmt.Errorf("reading output directory: %w", err)
	case len(entries) == 0:
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, Marker)); err != nil {
		return fmt.Errorf("%s: %w", dir, ErrNotOwned)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing output directory: %w", err)
	}
	return os.MkdirAll(dir, 0o755)
}

func page(fm frontMatter, body string) ([]byte, error) {
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("encoding front matter for %q: %w", fm.Title, err)
	}
	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n")
	if body != "" {
		b.WriteByte('\n')
		b.WriteString(body)
	}
	return b.Bytes(), nil
}

// fileName maps a declaration name onto a portable file name; operators and
// other punctuation become underscores.
func fileName(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func shortHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:3])
}
