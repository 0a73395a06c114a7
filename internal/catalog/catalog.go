// Package catalog loads and appends the pattern catalogs that drive the
// dynamic shape of a sample record. A catalog is a configparser-style INI
// file: one section per detector, each with a mandatory `pattern` key
// holding a `|`-delimited list of path fragments.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"
)

// Category names one of the four dynamic record categories.
type Category string

const (
	CategorySmali Category = "smali"
	CategoryWide  Category = "wide"
	CategoryArm   Category = "arm"
	CategoryKit   Category = "kit"
)

// Categories lists all catalog-backed categories.
var Categories = []Category{CategorySmali, CategoryWide, CategoryArm, CategoryKit}

// SectionID is a validated detector identifier. IDs are restricted to
// [a-zA-Z0-9_] so a catalog section can never smuggle whitespace or
// markup into record keys.
type SectionID string

var sectionIDRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidSectionID reports whether name is usable as a detector identifier.
func ValidSectionID(name string) bool {
	return sectionIDRe.MatchString(name)
}

// ErrSectionNotFound is returned by PatternOf for an unknown section.
var ErrSectionNotFound = errors.New("catalog section not found")

// ConfigError describes a malformed catalog source. It is fatal to the
// operation that needed the catalog, not to the process.
type ConfigError struct {
	File    string
	Section string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("catalog %s: section [%s]: %s", e.File, e.Section, e.Reason)
	}
	return fmt.Sprintf("catalog %s: %s", e.File, e.Reason)
}

// Section is one detector definition.
type Section struct {
	ID          SectionID
	Pattern     string
	Description string
}

// Catalog is a read-only snapshot of one category's detector definitions.
type Catalog struct {
	category  Category
	path      string
	sections  []Section
	index     map[SectionID]int
	fragments map[string]struct{}
}

// Load parses the catalog file for category at path. It fails with a
// *ConfigError on a missing pattern key, an empty pattern, a duplicate
// section name, or an invalid section name.
func Load(category Category, path string) (*Catalog, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowNonUniqueSections: true}, path)
	if err != nil {
		return nil, &ConfigError{File: path, Reason: err.Error()}
	}

	c := &Catalog{
		category:  category,
		path:      path,
		index:     make(map[SectionID]int),
		fragments: make(map[string]struct{}),
	}

	for _, sec := range f.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection {
			continue
		}
		if !ValidSectionID(name) {
			return nil, &ConfigError{File: path, Section: name, Reason: "invalid section name"}
		}
		id := SectionID(name)
		if _, dup := c.index[id]; dup {
			return nil, &ConfigError{File: path, Section: name, Reason: "duplicate section"}
		}
		if !sec.HasKey("pattern") {
			return nil, &ConfigError{File: path, Section: name, Reason: "missing pattern key"}
		}

		pattern := sec.Key("pattern").String()
		frags := splitPattern(pattern)
		if len(frags) == 0 {
			return nil, &ConfigError{File: path, Section: name, Reason: "pattern has no usable fragments"}
		}
		for _, frag := range frags {
			c.fragments[frag] = struct{}{}
		}

		c.index[id] = len(c.sections)
		c.sections = append(c.sections, Section{
			ID:          id,
			Pattern:     pattern,
			Description: sec.Key("description").String(),
		})
	}

	return c, nil
}

// splitPattern breaks a `|`-delimited pattern into sanitized fragments,
// dropping anything empty after trimming.
func splitPattern(pattern string) []string {
	var frags []string
	for _, frag := range strings.Split(pattern, "|") {
		frag = strings.TrimSpace(frag)
		if frag != "" {
			frags = append(frags, frag)
		}
	}
	return frags
}

// Category returns the category this catalog was loaded for.
func (c *Catalog) Category() Category {
	return c.category
}

// Path returns the backing file path.
func (c *Catalog) Path() string {
	return c.path
}

// Sections returns all detector identifiers in source order.
func (c *Catalog) Sections() []SectionID {
	ids := make([]SectionID, len(c.sections))
	for i, sec := range c.sections {
		ids[i] = sec.ID
	}
	return ids
}

// HasSection reports whether a detector with this identifier exists.
func (c *Catalog) HasSection(id SectionID) bool {
	_, ok := c.index[id]
	return ok
}

// ContainsPattern reports whether fragment is registered, exactly, under
// any section of this catalog. Matching is exact per fragment, not
// substring: `a/b` must not suppress a genuinely new `a/bc` detector.
func (c *Catalog) ContainsPattern(fragment string) bool {
	_, ok := c.fragments[fragment]
	return ok
}

// PatternOf returns the raw pattern string registered under id.
func (c *Catalog) PatternOf(id SectionID) (string, error) {
	i, ok := c.index[id]
	if !ok {
		return "", fmt.Errorf("%w: [%s] in %s", ErrSectionNotFound, id, c.path)
	}
	return c.sections[i].Pattern, nil
}
