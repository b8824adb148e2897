package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, uint64(0x100000), opts.Base)
	assert.True(t, opts.PageSeparate)
	assert.Equal(t, "_start", opts.Entry)
}

func TestLoadConfigWithNoPathReturnsDefaults(t *testing.T) {
	opts, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().Entry, opts.Entry)
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := t.TempDir() + "/rvasm.toml"
	writeFile(t, path, "base = 4096\nentry = \"main\"\npage_separate = false\n")

	opts, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), opts.Base)
	assert.Equal(t, "main", opts.Entry)
	assert.False(t, opts.PageSeparate)
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
