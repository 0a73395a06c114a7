// Package sample holds the metadata record produced for one analyzed
// Android binary. The fixed sub-records mirror what the external
// analyzers extract; the smali/wide/arm/kit sub-records take their shape
// from the pattern catalogs at reset time.
package sample

import (
	"fmt"

	"github.com/apk-metadata/apk-metadata-go/internal/catalog"
	"github.com/apk-metadata/apk-metadata-go/internal/filetype"
)

// Flags maps a detector identifier to its detected state. The key set is
// a snapshot of the matching catalog's sections, taken at reset.
type Flags map[catalog.SectionID]bool

// Certificate describes the sample's signing certificate.
type Certificate struct {
	AV             bool    `json:"av"`
	Algo           *string `json:"algo"`
	Debug          bool    `json:"debug"`
	Dev            bool    `json:"dev"`
	Famous         bool    `json:"famous"`
	SerialNo       *string `json:"serialno"`
	Country        string  `json:"country"`
	Owner          *string `json:"owner"`
	Timestamp      *string `json:"timestamp"`
	Year           int     `json:"year"`
	UnknownCountry bool    `json:"unknown_country"`
}

// Manifest holds what the manifest parser extracted.
type Manifest struct {
	Activities          []string `json:"activities"`
	Libraries           []string `json:"libraries"`
	ListensIncomingSMS  bool     `json:"listens_incoming_sms"`
	ListensOutgoingCall bool     `json:"listens_outgoing_call"`
	MaxSDK              int      `json:"maxSDK"`
	MainActivity        *string  `json:"main_activity"`
	MinSDK              int      `json:"minSDK"`
	PackageName         *string  `json:"package_name"`
	Permissions         []string `json:"permissions"`
	Providers           []string `json:"providers"`
	Receivers           []string `json:"receivers"`
	Services            []string `json:"services"`
	SWF                 bool     `json:"swf"`
	TargetSDK           int      `json:"targetSDK"`
}

// Dex holds dex header anomaly flags.
type Dex struct {
	Magic        int  `json:"magic"`
	Odex         bool `json:"odex"`
	MagicUnknown bool `json:"magic_unknown"`
	BadSHA1      bool `json:"bad_sha1"`
	BadAdler32   bool `json:"bad_adler32"`
	BigHeader    bool `json:"big_header"`
	Thuxnder     bool `json:"thuxnder"`
}

// Smali carries catalog-driven detector flags plus two fields the
// downstream analyzer sets directly: packed is inferred (no main activity
// + dynamic DEX loading), multidex lists the extra classes*.dex names.
type Smali struct {
	Flags    Flags
	Packed   bool
	Multidex []string
}

// Wide carries catalog-driven flags plus the string material extracted
// from the whole sample.
type Wide struct {
	Flags         Flags
	AppName       *string
	PhoneNumbers  []string
	URLs          []string
	Base64Strings []string
	APKZipURL     bool
}

// Record is the aggregate metadata for one sample. sha256 is the durable
// identity; the sanitized basename is a display aid only. A Record is
// reset and reused across samples, never shared between in-flight
// analyses.
type Record struct {
	SHA256            string
	SanitizedBasename string

	FileSize      int64
	FileSmall     bool
	Filetype      filetype.FileType
	FileNbClasses int
	FileNbDir     int
	FileInnerzips bool

	Certificate Certificate
	Manifest    Manifest
	Smali       Smali
	Wide        Wide
	Arm         Flags
	Dex         Dex
	Kits        Flags
}

// New builds a record with every fixed field at its default. The dynamic
// sub-records stay empty until Reset loads the catalogs.
func New(sha256, sanitizedBasename string) *Record {
	r := &Record{
		SHA256:            sha256,
		SanitizedBasename: sanitizedBasename,
	}
	r.clearFixed()
	return r
}

// Reset restores the record to a clean slate for a new sample. All four
// catalogs are loaded fresh from disk, so detector sections appended
// between samples take effect without a restart. The reset is complete:
// no field survives from the previous sample, and two consecutive resets
// yield identical observable state.
func (r *Record) Reset(loader *catalog.Loader) error {
	r.clearFixed()
	r.Smali.Flags = nil
	r.Wide.Flags = nil
	r.Arm = nil
	r.Kits = nil

	smali, err := loader.Load(catalog.CategorySmali)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	wide, err := loader.Load(catalog.CategoryWide)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	arm, err := loader.Load(catalog.CategoryArm)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	kit, err := loader.Load(catalog.CategoryKit)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	r.Smali.Flags = newFlags(smali)
	r.Wide.Flags = newFlags(wide)
	r.Arm = newFlags(arm)
	r.Kits = newFlags(kit)

	return nil
}

// clearFixed zeroes everything that does not depend on a catalog.
func (r *Record) clearFixed() {
	r.FileSize = 0
	r.FileSmall = false
	r.Filetype = filetype.Unknown
	r.FileNbClasses = 0
	r.FileNbDir = 0
	r.FileInnerzips = false

	r.Certificate = Certificate{
		Country: "unknown",
	}

	r.Manifest = Manifest{
		Activities:  []string{},
		Libraries:   []string{},
		Permissions: []string{},
		Providers:   []string{},
		Receivers:   []string{},
		Services:    []string{},
	}

	r.Smali = Smali{
		Multidex: []string{},
	}

	r.Wide = Wide{
		PhoneNumbers:  []string{},
		URLs:          []string{},
		Base64Strings: []string{},
	}

	r.Dex = Dex{}
}

func newFlags(c *catalog.Catalog) Flags {
	flags := make(Flags)
	for _, id := range c.Sections() {
		flags[id] = false
	}
	return flags
}
