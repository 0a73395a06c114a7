package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/apk-metadata/apk-metadata-go/internal/sample"
)

// Sample is the relational row for one analyzed sample. sha256 is the
// durable identity; the basename is a display aid with no uniqueness.
// The category sub-records are stored as serialized JSON text columns,
// since their key sets follow the pattern catalogs rather than a fixed
// schema.
type Sample struct {
	ID                uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SHA256            string `gorm:"column:sha256;type:varchar(64);uniqueIndex:uk_sha256;not null" json:"sha256"`
	SanitizedBasename string `gorm:"type:varchar(255)" json:"sanitized_basename"`

	FileNbClasses int    `gorm:"default:0" json:"file_nb_classes"`
	FileNbDir     int    `gorm:"default:0" json:"file_nb_dir"`
	FileSize      int64  `gorm:"default:0" json:"file_size"`
	FileSmall     bool   `gorm:"default:false" json:"file_small"`
	Filetype      string `gorm:"type:varchar(10)" json:"filetype"`
	FileInnerzips bool   `gorm:"default:false" json:"file_innerzips"`

	ManifestProperties string `gorm:"type:text" json:"manifest_properties,omitempty"`
	SmaliProperties    string `gorm:"type:text" json:"smali_properties,omitempty"`
	WideProperties     string `gorm:"type:text" json:"wide_properties,omitempty"`
	ArmProperties      string `gorm:"type:text" json:"arm_properties,omitempty"`
	DexProperties      string `gorm:"type:text" json:"dex_properties,omitempty"`
	Kits               string `gorm:"type:text" json:"kits,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Sample) TableName() string {
	return "samples"
}

// NewSampleRow serializes a fully populated record into its row shape.
func NewSampleRow(r *sample.Record) (*Sample, error) {
	row := &Sample{
		SHA256:            r.SHA256,
		SanitizedBasename: r.SanitizedBasename,
		FileNbClasses:     r.FileNbClasses,
		FileNbDir:         r.FileNbDir,
		FileSize:          r.FileSize,
		FileSmall:         r.FileSmall,
		Filetype:          r.Filetype.String(),
		FileInnerzips:     r.FileInnerzips,
	}

	for _, col := range []struct {
		name string
		src  interface{}
		dst  *string
	}{
		{"manifest", r.Manifest, &row.ManifestProperties},
		{"smali", r.Smali, &row.SmaliProperties},
		{"wide", r.Wide, &row.WideProperties},
		{"arm", r.Arm, &row.ArmProperties},
		{"dex", r.Dex, &row.DexProperties},
		{"kits", r.Kits, &row.Kits},
	} {
		data, err := json.Marshal(col.src)
		if err != nil {
			return nil, fmt.Errorf("serialize %s properties: %w", col.name, err)
		}
		*col.dst = string(data)
	}

	return row, nil
}
