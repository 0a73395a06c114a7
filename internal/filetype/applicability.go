package filetype

// Field tags a SampleRecord field group in the applicability matrix.
// Using an enum instead of field-name strings keeps lookups statically
// checkable; a typo is a compile error, not a phantom entry.
type Field int

const (
	FieldFileSize Field = iota
	FieldFileSmall
	FieldFileNbClasses
	FieldFileNbDir
	FieldFileInnerzips
	FieldCert
	FieldManifest
	FieldSmali
	FieldWide
	FieldArm
	FieldDex
	FieldKit
)

// Fields lists every declared field tag.
var Fields = []Field{
	FieldFileSize, FieldFileSmall, FieldFileNbClasses, FieldFileNbDir,
	FieldFileInnerzips, FieldCert, FieldManifest, FieldSmali, FieldWide,
	FieldArm, FieldDex, FieldKit,
}

var fieldNames = map[Field]string{
	FieldFileSize:      "file_size",
	FieldFileSmall:     "file_small",
	FieldFileNbClasses: "file_nb_classes",
	FieldFileNbDir:     "file_nb_dir",
	FieldFileInnerzips: "file_innerzips",
	FieldCert:          "cert",
	FieldManifest:      "manifest",
	FieldSmali:         "smali",
	FieldWide:          "wide",
	FieldArm:           "arm",
	FieldDex:           "dex",
	FieldKit:           "kit",
}

func (f Field) String() string {
	return fieldNames[f]
}

// applicability declares, per field, the file types the field is
// meaningful for. Every Field has an entry.
var applicability = map[Field][]FileType{
	FieldFileSize:      {APK, DEX, ARM, Class, Zip, Rar},
	FieldFileSmall:     {APK, DEX, ARM, Class, Zip, Rar},
	FieldFileNbClasses: {APK, DEX},
	FieldFileNbDir:     {APK, DEX},
	FieldFileInnerzips: {APK, Zip, Rar},
	FieldCert:          {APK},
	FieldManifest:      {APK},
	FieldSmali:         {APK, DEX},
	FieldWide:          {APK, DEX},
	FieldArm:           {APK, ARM},
	FieldDex:           {APK, DEX},
	FieldKit:           {APK, DEX},
}

// Applies reports whether field carries meaning for samples of type t.
func Applies(field Field, t FileType) bool {
	for _, ft := range applicability[field] {
		if ft == t {
			return true
		}
	}
	return false
}
