package contexts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRepo_AddAndPersist(t *testing.T) {
	dir := t.TempDir()

	repo, err := NewFileRepo(dir)
	require.NoError(t, err)

	require.NoError(t, repo.Add("@garage"))
	require.NoError(t, repo.Add("@garage")) // idempotent
	assert.Equal(t, []string{"@garage"}, repo.Custom())
	assert.Contains(t, repo.All(), "@home")
	assert.Contains(t, repo.All(), "@garage")

	reopened, err := NewFileRepo(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"@garage"}, reopened.Custom())
}

func TestFileRepo_AddRejectsMalformed(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Add("garage"), ErrInvalidContext)
	assert.ErrorIs(t, repo.Add("@"), ErrInvalidContext)
	assert.ErrorIs(t, repo.Add("  "), ErrInvalidContext)
}

func TestFileRepo_AddBuiltInIsNoop(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.Add("@home"))
	assert.Empty(t, repo.Custom())
}

func TestFileRepo_RemoveBuiltInFails(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Remove("@home"), ErrBuiltIn)

	require.NoError(t, repo.Add("@garage"))
	require.NoError(t, repo.Remove("@garage"))
	assert.Empty(t, repo.Custom())
}

func TestFileRepo_ReplaceCustomFiltersJunk(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.ReplaceCustom([]string{"@garage", "garage", "@", " @attic "}))
	assert.Equal(t, []string{"@garage", "@attic"}, repo.Custom())
}
