package catalog

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// NewSection is a detector definition pending append.
type NewSection struct {
	ID          SectionID
	Pattern     string
	Description string
}

// AppendSections writes new detector sections to the end of the backing
// catalog file. Existing sections are never rewritten, so detector
// identifiers stay stable across runs. The caller is responsible for
// making sure the IDs are not already present.
func AppendSections(path string, sections []NewSection) error {
	if len(sections) == 0 {
		return nil
	}

	out := ini.Empty()
	for _, sec := range sections {
		if !ValidSectionID(string(sec.ID)) {
			return &ConfigError{File: path, Section: string(sec.ID), Reason: "invalid section name"}
		}
		s, err := out.NewSection(string(sec.ID))
		if err != nil {
			return fmt.Errorf("build section [%s]: %w", sec.ID, err)
		}
		if sec.Description != "" {
			s.NewKey("description", sec.Description)
		}
		s.NewKey("pattern", sec.Pattern)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open catalog for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("append to catalog: %w", err)
	}
	if _, err := out.WriteTo(f); err != nil {
		return fmt.Errorf("append to catalog: %w", err)
	}

	return nil
}
