package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apk-metadata/apk-metadata-go/internal/config"
	"github.com/apk-metadata/apk-metadata-go/internal/filetype"
	"github.com/apk-metadata/apk-metadata-go/internal/report"
	"github.com/apk-metadata/apk-metadata-go/internal/repository"
	"github.com/apk-metadata/apk-metadata-go/internal/sample"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSHA = "aa11223344556677889900aabbccddeeff00112233445566778899aabbccddee"

func testService(t *testing.T, archiveDir string) (*Service, repository.SampleRepository) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	db, err := repository.InitDB(&config.DatabaseConfig{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "samples.db"),
	}, logger)
	require.NoError(t, err)

	repo := repository.NewSampleRepository(db, logger)
	return NewService(repo, logger, nil, archiveDir), repo
}

func writeReport(t *testing.T, dir, sha string) string {
	t.Helper()
	r := sample.New(sha, "sample.apk")
	r.FileSize = 2048
	r.Filetype = filetype.APK
	r.Kits = sample.Flags{"admob": true}

	path := filepath.Join(dir, sha+".json")
	require.NoError(t, report.Write(path, r))
	return path
}

func TestIngestFile_StoresRow(t *testing.T) {
	svc, repo := testService(t, "")
	path := writeReport(t, t.TempDir(), testSHA)

	require.NoError(t, svc.IngestFile(context.Background(), path))

	row, err := repo.FindBySHA256(context.Background(), testSHA)
	require.NoError(t, err)
	assert.Equal(t, "sample.apk", row.SanitizedBasename)
	assert.Equal(t, int64(2048), row.FileSize)
	assert.Equal(t, "apk", row.Filetype)
	assert.JSONEq(t, `{"admob": true}`, row.Kits)
}

// TestIngestFile_DuplicateIsNoop re-ingests the same report; the second
// run succeeds without touching the stored row.
func TestIngestFile_DuplicateIsNoop(t *testing.T) {
	svc, repo := testService(t, "")
	dir := t.TempDir()

	require.NoError(t, svc.IngestFile(context.Background(), writeReport(t, dir, testSHA)))
	require.NoError(t, svc.IngestFile(context.Background(), writeReport(t, dir, testSHA)))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestIngestFile_BadFilename(t *testing.T) {
	svc, repo := testService(t, "")

	path := filepath.Join(t.TempDir(), "not-a-hash.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	assert.Error(t, svc.IngestFile(context.Background(), path))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestIngestFile_MalformedReport(t *testing.T) {
	svc, _ := testService(t, "")

	path := filepath.Join(t.TempDir(), testSHA+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	assert.Error(t, svc.IngestFile(context.Background(), path))
}

// TestIngestFile_Archives moves a processed report out of the drop dir.
func TestIngestFile_Archives(t *testing.T) {
	archiveDir := filepath.Join(t.TempDir(), "archive")
	svc, _ := testService(t, archiveDir)
	path := writeReport(t, t.TempDir(), testSHA)

	require.NoError(t, svc.IngestFile(context.Background(), path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "report must leave the drop dir")
	_, err = os.Stat(filepath.Join(archiveDir, testSHA+".json"))
	assert.NoError(t, err)
}

func TestSHAFromReportPath(t *testing.T) {
	sha, err := SHAFromReportPath("/drop/" + testSHA + ".json")
	require.NoError(t, err)
	assert.Equal(t, testSHA, sha)

	// Uppercase hex is accepted and normalized.
	sha, err = SHAFromReportPath("/drop/AA11223344556677889900AABBCCDDEEFF00112233445566778899AABBCCDDEE.json")
	require.NoError(t, err)
	assert.Equal(t, testSHA, sha)

	_, err = SHAFromReportPath("/drop/report.json")
	assert.Error(t, err)

	_, err = SHAFromReportPath("/drop/" + testSHA[:63] + ".json")
	assert.Error(t, err)
}
