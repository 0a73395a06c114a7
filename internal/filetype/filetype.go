// Package filetype defines the closed set of sample file types and the
// applicability matrix that says which record fields carry meaning for
// which file type.
package filetype

import (
	"encoding/json"
	"fmt"
)

// FileType classifies an analyzed binary sample.
type FileType int

const (
	Unknown FileType = iota
	APK
	DEX
	ARM
	Class
	Zip
	Rar
)

var fileTypeNames = map[FileType]string{
	Unknown: "unknown",
	APK:     "apk",
	DEX:     "dex",
	ARM:     "arm",
	Class:   "class",
	Zip:     "zip",
	Rar:     "rar",
}

// All lists every FileType, Unknown included.
var All = []FileType{Unknown, APK, DEX, ARM, Class, Zip, Rar}

func (t FileType) String() string {
	if name, ok := fileTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Parse maps a lowercase type name back to its FileType.
func Parse(name string) (FileType, error) {
	for t, n := range fileTypeNames {
		if n == name {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown file type %q", name)
}

func (t FileType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *FileType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := Parse(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
