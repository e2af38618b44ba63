// Package starters bundles the pre-built contract templates tenants can
// install as a starting point.
package starters

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var embeddedCatalog embed.FS

// Starter is one bundled template.
type Starter struct {
	Slug        string `yaml:"slug" json:"slug"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`
	Order       int    `yaml:"order" json:"-"`
	Content     string `yaml:"content" json:"content"`
}

// Catalog is an immutable, ordered set of starters.
type Catalog struct {
	list   []Starter
	bySlug map[string]Starter
}

// LoadFS reads every *.yaml file at the root of fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("starters: read catalog: %w", err)
	}

	c := &Catalog{bySlug: make(map[string]Starter)}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("starters: read %s: %w", entry.Name(), err)
		}

		var s Starter
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("starters: parse %s: %w", entry.Name(), err)
		}
		s.Slug = strings.TrimSpace(s.Slug)
		if s.Slug == "" || strings.TrimSpace(s.Content) == "" {
			return nil, fmt.Errorf("starters: %s needs a slug and content", entry.Name())
		}
		if _, exists := c.bySlug[s.Slug]; exists {
			return nil, fmt.Errorf("starters: duplicate slug %q (file %s)", s.Slug, entry.Name())
		}
		c.bySlug[s.Slug] = s
		c.list = append(c.list, s)
	}

	sort.SliceStable(c.list, func(i, j int) bool { return c.list[i].Order < c.list[j].Order })
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Load returns the embedded catalogue.
func Load() (*Catalog, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embeddedCatalog, "catalog")
		if err != nil {
			defaultErr = err
			return
		}
		defaultCatalog, defaultErr = LoadFS(sub)
	})
	return defaultCatalog, defaultErr
}

// All returns the starters in display order.
func (c *Catalog) All() []Starter {
	out := make([]Starter, len(c.list))
	copy(out, c.list)
	return out
}

func (c *Catalog) Get(slug string) (Starter, bool) {
	s, ok := c.bySlug[slug]
	return s, ok
}

func (c *Catalog) Len() int {
	return len(c.list)
}
