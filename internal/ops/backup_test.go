package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBackupRestore_RoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "tasks.json"), `{"tasks":{}}`)
	writeFile(t, filepath.Join(src, "projects.json"), `{"projects":{}}`)
	writeFile(t, filepath.Join(src, "contexts.json"), `["@garage"]`)
	writeFile(t, filepath.Join(src, "tasks.json.tmp"), `half-written`)

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	require.NoError(t, BackupDataDir(src, archive))

	target := filepath.Join(t.TempDir(), "restored")
	require.NoError(t, RestoreDataDir(archive, target))

	b, err := os.ReadFile(filepath.Join(target, "tasks.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"tasks":{}}`, string(b))

	b, err = os.ReadFile(filepath.Join(target, "contexts.json"))
	require.NoError(t, err)
	assert.Equal(t, `["@garage"]`, string(b))

	// temp files are not carried over
	_, err = os.Stat(filepath.Join(target, "tasks.json.tmp"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, VerifyDataDir(target))
}

func TestBackupDataDir_MissingSource(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	assert.Error(t, BackupDataDir(filepath.Join(t.TempDir(), "nope"), archive))
}

func TestVerifyDataDir_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tasks.json"), `{broken`)
	assert.Error(t, VerifyDataDir(dir))
}

func TestVerifyDataDir_MissingFilesAreFine(t *testing.T) {
	assert.NoError(t, VerifyDataDir(t.TempDir()))
}

func TestSanitizeArchiveRelPath(t *testing.T) {
	_, err := sanitizeArchiveRelPath("../escape")
	assert.Error(t, err)

	_, err = sanitizeArchiveRelPath("/etc/passwd")
	assert.Error(t, err)

	got, err := sanitizeArchiveRelPath("sub/tasks.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("sub", "tasks.json"), got)
}
