package catalog

import "fmt"

// Loader maps categories to their backing files and loads them fresh on
// demand. Records reload all four catalogs on every reset, so detector
// sections appended between samples take effect without a restart.
type Loader struct {
	paths map[Category]string
}

// NewLoader builds a loader over the four catalog file paths.
func NewLoader(smali, wide, arm, kit string) *Loader {
	return &Loader{
		paths: map[Category]string{
			CategorySmali: smali,
			CategoryWide:  wide,
			CategoryArm:   arm,
			CategoryKit:   kit,
		},
	}
}

// Load reads the current catalog for category from disk.
func (l *Loader) Load(category Category) (*Catalog, error) {
	path, ok := l.paths[category]
	if !ok || path == "" {
		return nil, &ConfigError{File: string(category), Reason: "no catalog path configured"}
	}
	return Load(category, path)
}

// Path returns the configured backing file for category.
func (l *Loader) Path(category Category) (string, error) {
	path, ok := l.paths[category]
	if !ok || path == "" {
		return "", fmt.Errorf("no catalog path configured for category %q", category)
	}
	return path, nil
}
