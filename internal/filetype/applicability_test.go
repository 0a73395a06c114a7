package filetype

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApplicability_Complete verifies every declared field has an entry
// for every file type: Applies must answer, never panic or miss.
func TestApplicability_Complete(t *testing.T) {
	for _, field := range Fields {
		entries, ok := applicability[field]
		require.True(t, ok, "field %s has no applicability entry", field)
		require.NotEmpty(t, entries, "field %s applies to nothing", field)

		for _, ft := range All {
			// Must be answerable for every combination.
			_ = Applies(field, ft)
		}
	}
}

func TestApplies(t *testing.T) {
	tests := []struct {
		field    Field
		filetype FileType
		want     bool
	}{
		{FieldFileSize, APK, true},
		{FieldFileSize, Rar, true},
		{FieldFileSize, Unknown, false},
		{FieldCert, APK, true},
		{FieldCert, DEX, false},
		{FieldManifest, APK, true},
		{FieldManifest, Zip, false},
		{FieldArm, ARM, true},
		{FieldArm, DEX, false},
		{FieldKit, DEX, true},
		{FieldKit, ARM, false},
		{FieldFileInnerzips, Zip, true},
		{FieldFileInnerzips, DEX, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Applies(tt.field, tt.filetype),
			"Applies(%s, %s)", tt.field, tt.filetype)
	}
}

func TestFileType_JSONRoundTrip(t *testing.T) {
	for _, ft := range All {
		data, err := json.Marshal(ft)
		require.NoError(t, err)

		var back FileType
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, ft, back)
	}
}

func TestFileType_UnmarshalUnknownName(t *testing.T) {
	var ft FileType
	err := json.Unmarshal([]byte(`"elf"`), &ft)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	ft, err := Parse("apk")
	require.NoError(t, err)
	assert.Equal(t, APK, ft)

	_, err = Parse("tarball")
	assert.Error(t, err)
}
