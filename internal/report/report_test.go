package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/apk-metadata/apk-metadata-go/internal/filetype"
	"github.com/apk-metadata/apk-metadata-go/internal/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedRecord() *sample.Record {
	appName := "My App"
	mainActivity := "com.example.Main"

	r := sample.New("aa11223344556677889900aabbccddeeff00112233445566778899aabbccddee", "sample.apk")
	r.FileSize = 4096
	r.FileSmall = true
	r.Filetype = filetype.APK
	r.FileNbClasses = 12
	r.FileNbDir = 3
	r.FileInnerzips = true

	r.Manifest.PackageName = &mainActivity
	r.Manifest.MainActivity = &mainActivity
	r.Manifest.Activities = []string{"com.example.Main"}
	r.Manifest.MinSDK = 21
	r.Manifest.TargetSDK = 33

	r.Smali.Flags = sample.Flags{"send_sms": true, "dynamic_load": false}
	r.Smali.Packed = true
	r.Smali.Multidex = []string{"classes2.dex"}

	r.Wide.Flags = sample.Flags{"uses_http": true}
	r.Wide.AppName = &appName
	r.Wide.URLs = []string{"http://example.com"}

	r.Arm = sample.Flags{"su": true}
	r.Dex.Odex = true
	r.Dex.Magic = 35
	r.Kits = sample.Flags{"admob": false, "flurry": true}

	return r
}

// TestDocument_ExactKeys pins the top-level document shape: nothing
// extra, nothing missing, and no sha256 (identity lives in the
// filename).
func TestDocument_ExactKeys(t *testing.T) {
	data, err := FromRecord(populatedRecord()).Marshal()
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))

	want := []string{
		"sanitized_basename",
		"file_nb_classes",
		"file_nb_dir",
		"file_size",
		"file_small",
		"filetype",
		"file_innerzips",
		"manifest_properties",
		"smali_properties",
		"wide_properties",
		"arm_properties",
		"dex_properties",
		"kits",
	}
	assert.Len(t, doc, len(want))
	for _, key := range want {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, "sha256")
}

func TestWriteRead_RoundTrip(t *testing.T) {
	r := populatedRecord()
	path := filepath.Join(t.TempDir(), r.SHA256+".json")

	require.NoError(t, Write(path, r))

	doc, err := Read(path)
	require.NoError(t, err)

	back := doc.ToRecord(r.SHA256)
	assert.Equal(t, r, back, "record must survive the report round-trip")
}

// TestMarshal_Deterministic serializes the same record twice and
// expects identical bytes; map keys sort in the encoder.
func TestMarshal_Deterministic(t *testing.T) {
	r := populatedRecord()

	first, err := FromRecord(r).Marshal()
	require.NoError(t, err)
	second, err := FromRecord(r).Marshal()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestRead_MalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Read(path)
	assert.Error(t, err)
}
