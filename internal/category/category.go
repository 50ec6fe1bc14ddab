// Package category maps file extensions onto named categories.
package category

import (
	"fmt"
	"strings"

	"declutter/internal/normalize"
)

// Other is the implicit catch-all for files no category claims, including
// files without an extension. It never appears in a table.
const Other = "Other"

// Category pairs a name with the extensions it claims. Extensions carry
// the leading dot and are matched case-insensitively.
type Category struct {
	Name       string
	Extensions []string
}

// Table is an immutable extension-to-category mapping built once at
// startup. Declaration order is preserved for display purposes; lookup
// itself is unambiguous because construction rejects extensions claimed
// by more than one category.
type Table struct {
	categories []Category
	byExt      map[string]string
}

// NewTable validates the category list and builds the lookup table.
// Extensions are normalized to lowercase with a leading dot. An extension
// appearing under two categories is a configuration error.
func NewTable(categories []Category) (*Table, error) {
	t := &Table{
		categories: make([]Category, 0, len(categories)),
		byExt:      make(map[string]string),
	}
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category with empty name")
		}
		if strings.EqualFold(name, Other) {
			return nil, fmt.Errorf("category name %q is reserved", Other)
		}
		if len(c.Extensions) == 0 {
			return nil, fmt.Errorf("category %q lists no extensions", name)
		}
		kept := Category{Name: name, Extensions: make([]string, 0, len(c.Extensions))}
		for _, ext := range c.Extensions {
			cleaned := strings.ToLower(strings.TrimSpace(ext))
			if cleaned == "" || cleaned == "." {
				return nil, fmt.Errorf("category %q lists an empty extension", name)
			}
			if !strings.HasPrefix(cleaned, ".") {
				cleaned = "." + cleaned
			}
			if owner, ok := t.byExt[cleaned]; ok {
				return nil, fmt.Errorf("extension %s claimed by both %q and %q", cleaned, owner, name)
			}
			t.byExt[cleaned] = name
			kept.Extensions = append(kept.Extensions, cleaned)
		}
		t.categories = append(t.categories, kept)
	}
	return t, nil
}

// Classify returns the category name for a file name. The extension is
// matched case-insensitively; names without an extension (dotfiles
// included) fall through to Other.
func (t *Table) Classify(filename string) string {
	_, ext := normalize.SplitStem(filename)
	if ext == "" {
		return Other
	}
	if name, ok := t.byExt[strings.ToLower(ext)]; ok {
		return name
	}
	return Other
}

// Contains reports whether name is one of the declared categories or Other.
func (t *Table) Contains(name string) bool {
	if name == Other {
		return true
	}
	for _, c := range t.categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Categories returns the declared categories in declaration order.
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Names returns the declared category names in declaration order.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.categories))
	for _, c := range t.categories {
		out = append(out, c.Name)
	}
	return out
}
