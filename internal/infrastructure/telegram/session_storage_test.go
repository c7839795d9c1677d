package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSessionStorageHidesPhoneNumber(t *testing.T) {
	dir := t.TempDir()

	storage, err := NewFileSessionStorage(dir, "+15550001111")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(storage.Path, dir))
	assert.NotContains(t, storage.Path, "15550001111")
	assert.True(t, strings.HasSuffix(storage.Path, ".json"))
}

func TestFileSessionStoragePathIsStable(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileSessionStorage(dir, "+15550001111")
	require.NoError(t, err)
	second, err := NewFileSessionStorage(dir, "+15550001111")
	require.NoError(t, err)
	other, err := NewFileSessionStorage(dir, "+15550002222")
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)
	assert.NotEqual(t, first.Path, other.Path)
}
