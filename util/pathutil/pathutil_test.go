package pathutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanBasename(t *testing.T) {
	assert.Equal(t, "a：b？c", CleanBasename("a:b?c"))
	assert.Equal(t, "foo", CleanBasename(" foo.. "))
	assert.Equal(t, "a b", CleanBasename("a\nb"))
}

func TestSuffixedFilename(t *testing.T) {
	assert.Equal(t, filepath.Join("dir", "cat_stripped.png"), SuffixedFilename(filepath.Join("dir", "cat.png"), "_stripped", ""))
	assert.Equal(t, "cat_stripped.png", SuffixedFilename("cat.webp", "_stripped", ".png"))
	assert.Equal(t, "noext_x", SuffixedFilename("noext", "_x", ""))
}
