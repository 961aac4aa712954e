package storage

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileStoreSaveAndOpen(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	data := []byte("fake png bytes")
	name, err := store.SaveImage(data)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	f, err := store.Open(name)
	assert.NoError(t, err)
	defer f.Close()

	read, err := io.ReadAll(f)
	assert.NoError(t, err)
	assert.Equal(t, data, read)
}

func TestFileStoreUniqueNames(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	a, err := store.SaveImage([]byte("one"))
	assert.NoError(t, err)
	b, err := store.SaveImage([]byte("two"))
	assert.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestFileStoreMissingFile(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	_, err = store.Open("no-such-file.png")
	assert.True(t, errors.Is(err, ErrFileMissing))
}

func TestFileStoreExternallyDeleted(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	name, err := store.SaveImage([]byte("bytes"))
	assert.NoError(t, err)
	assert.NoError(t, os.Remove(store.Path(name)))

	_, err = store.Open(name)
	assert.True(t, errors.Is(err, ErrFileMissing))
}

func TestFileStoreIgnoresPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	assert.NoError(t, err)

	// Names are flattened to their base, so a traversal attempt resolves
	// inside the uploads dir and simply does not exist.
	_, err = store.Open("../../etc/passwd")
	assert.True(t, errors.Is(err, ErrFileMissing))
}
