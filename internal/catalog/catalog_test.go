package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kit.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_SectionsInSourceOrder(t *testing.T) {
	path := writeCatalog(t, `
[zebra]
pattern = com/zebra

[admob]
description = Google AdMob
pattern = com/google/ads|com/google/android/gms/ads

[flurry]
pattern = com/flurry
`)

	c, err := Load(CategoryKit, path)
	require.NoError(t, err)

	assert.Equal(t, []SectionID{"zebra", "admob", "flurry"}, c.Sections())
	assert.Equal(t, CategoryKit, c.Category())
}

func TestLoad_MissingPatternKey(t *testing.T) {
	path := writeCatalog(t, `
[admob]
description = no pattern here
`)

	_, err := Load(CategoryKit, path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "admob", cfgErr.Section)
}

func TestLoad_DuplicateSection(t *testing.T) {
	path := writeCatalog(t, `
[admob]
pattern = com/google/ads

[admob]
pattern = com/google/android/gms/ads
`)

	_, err := Load(CategoryKit, path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Reason, "duplicate")
}

func TestLoad_InvalidSectionName(t *testing.T) {
	path := writeCatalog(t, `
[bad name]
pattern = com/bad
`)

	_, err := Load(CategoryKit, path)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func TestLoad_EmptyPattern(t *testing.T) {
	path := writeCatalog(t, `
[admob]
pattern = |
`)

	_, err := Load(CategoryKit, path)
	require.Error(t, err)
}

func TestContainsPattern_ExactFragmentMatch(t *testing.T) {
	path := writeCatalog(t, `
[admob]
pattern = com/google/ads|com/google/android/gms/ads
`)

	c, err := Load(CategoryKit, path)
	require.NoError(t, err)

	assert.True(t, c.ContainsPattern("com/google/ads"))
	assert.True(t, c.ContainsPattern("com/google/android/gms/ads"))

	// Exact match only: neither prefixes nor extensions count.
	assert.False(t, c.ContainsPattern("com/google"))
	assert.False(t, c.ContainsPattern("com/google/adsx"))
}

func TestPatternOf(t *testing.T) {
	path := writeCatalog(t, `
[flurry]
pattern = com/flurry
`)

	c, err := Load(CategoryKit, path)
	require.NoError(t, err)

	pattern, err := c.PatternOf("flurry")
	require.NoError(t, err)
	assert.Equal(t, "com/flurry", pattern)

	_, err = c.PatternOf("missing")
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestAppendSections_ReloadSeesNewDetectors(t *testing.T) {
	path := writeCatalog(t, `
[admob]
pattern = com/google/ads
`)

	err := AppendSections(path, []NewSection{
		{ID: "newkit", Pattern: "com/new/kit", Description: "NewKit (from ETIP Exodus Privacy list)"},
	})
	require.NoError(t, err)

	c, err := Load(CategoryKit, path)
	require.NoError(t, err)

	// Existing section untouched, new one appended after it.
	assert.Equal(t, []SectionID{"admob", "newkit"}, c.Sections())

	pattern, err := c.PatternOf("newkit")
	require.NoError(t, err)
	assert.Equal(t, "com/new/kit", pattern)
	assert.True(t, c.ContainsPattern("com/new/kit"))
}

func TestAppendSections_Empty(t *testing.T) {
	path := writeCatalog(t, `
[admob]
pattern = com/google/ads
`)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, AppendSections(path, nil))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "no-op append must not touch the file")
}

func TestLoader(t *testing.T) {
	kitPath := writeCatalog(t, `
[admob]
pattern = com/google/ads
`)

	loader := NewLoader("", "", "", kitPath)

	c, err := loader.Load(CategoryKit)
	require.NoError(t, err)
	assert.Equal(t, []SectionID{"admob"}, c.Sections())

	_, err = loader.Load(CategorySmali)
	assert.Error(t, err, "unconfigured category must fail")

	path, err := loader.Path(CategoryKit)
	require.NoError(t, err)
	assert.Equal(t, kitPath, path)
}

func TestValidSectionID(t *testing.T) {
	assert.True(t, ValidSectionID("send_sms"))
	assert.True(t, ValidSectionID("admob2"))
	assert.False(t, ValidSectionID(""))
	assert.False(t, ValidSectionID("bad name"))
	assert.False(t, ValidSectionID("bad-name"))
}
