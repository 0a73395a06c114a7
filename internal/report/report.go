// Package report writes and reads the flat JSON report document for one
// sample. The document mirrors the in-memory record shape exactly and
// round-trips; the file naming convention is <sha256>.json, the document
// itself carries no hash.
package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/apk-metadata/apk-metadata-go/internal/filetype"
	"github.com/apk-metadata/apk-metadata-go/internal/sample"
)

// Document is the self-describing report for one sample.
type Document struct {
	SanitizedBasename  string            `json:"sanitized_basename"`
	FileNbClasses      int               `json:"file_nb_classes"`
	FileNbDir          int               `json:"file_nb_dir"`
	FileSize           int64             `json:"file_size"`
	FileSmall          bool              `json:"file_small"`
	Filetype           filetype.FileType `json:"filetype"`
	FileInnerzips      bool              `json:"file_innerzips"`
	ManifestProperties sample.Manifest   `json:"manifest_properties"`
	SmaliProperties    sample.Smali      `json:"smali_properties"`
	WideProperties     sample.Wide       `json:"wide_properties"`
	ArmProperties      sample.Flags      `json:"arm_properties"`
	DexProperties      sample.Dex        `json:"dex_properties"`
	Kits               sample.Flags      `json:"kits"`
}

// FromRecord projects a record into its report shape.
func FromRecord(r *sample.Record) *Document {
	return &Document{
		SanitizedBasename:  r.SanitizedBasename,
		FileNbClasses:      r.FileNbClasses,
		FileNbDir:          r.FileNbDir,
		FileSize:           r.FileSize,
		FileSmall:          r.FileSmall,
		Filetype:           r.Filetype,
		FileInnerzips:      r.FileInnerzips,
		ManifestProperties: r.Manifest,
		SmaliProperties:    r.Smali,
		WideProperties:     r.Wide,
		ArmProperties:      r.Arm,
		DexProperties:      r.Dex,
		Kits:               r.Kits,
	}
}

// ToRecord rebuilds an equivalent record. sha256 comes from the caller
// (usually the report filename) since the document does not carry it.
func (d *Document) ToRecord(sha256 string) *sample.Record {
	r := sample.New(sha256, d.SanitizedBasename)
	r.FileNbClasses = d.FileNbClasses
	r.FileNbDir = d.FileNbDir
	r.FileSize = d.FileSize
	r.FileSmall = d.FileSmall
	r.Filetype = d.Filetype
	r.FileInnerzips = d.FileInnerzips
	r.Manifest = d.ManifestProperties
	r.Smali = d.SmaliProperties
	r.Wide = d.WideProperties
	r.Arm = d.ArmProperties
	r.Dex = d.DexProperties
	r.Kits = d.Kits
	return r
}

// Marshal serializes the document. Map keys sort, so the same record
// always serializes to the same bytes.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Write dumps the record's report document to path.
func Write(path string, r *sample.Record) error {
	data, err := FromRecord(r).Marshal()
	if err != nil {
		return fmt.Errorf("serialize report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Read parses the report document at path.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &d, nil
}
