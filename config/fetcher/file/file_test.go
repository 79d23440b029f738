package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-dconfig/dconfig/config/fetcher/file"
)

func TestLoad_ReadsExistingFilesInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")

	require.NoError(t, os.WriteFile(a, []byte("name: a"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("name: b"), 0o600))

	documents := file.Load([]string{a, b})

	require.Len(t, documents, 2)
	assert.Equal(t, "name: a", documents[0])
	assert.Equal(t, "name: b", documents[1])
}

func TestLoad_SkipsMissingFileSilently(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "present.yaml")
	require.NoError(t, os.WriteFile(present, []byte("name: present"), 0o600))

	missing := filepath.Join(dir, "missing.yaml")

	documents := file.Load([]string{missing, present})

	require.Len(t, documents, 1)
	assert.Equal(t, "name: present", documents[0])
}

func TestLoad_SkipsDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	documents := file.Load([]string{dir})

	assert.Empty(t, documents)
}

func TestLoad_EmptyInputYieldsEmptySlice(t *testing.T) {
	t.Parallel()

	documents := file.Load(nil)

	assert.Empty(t, documents)
}
