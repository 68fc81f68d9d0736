package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeSplitsOnSeparator(t *testing.T) {
	assert.Equal(t, Keys("a", "b"), Tokenize("a/b"))
	assert.Equal(t, Keys("a", "b", "c"), Tokenize("a/b/c"))
}

func TestTokenizeEmptyInput(t *testing.T) {
	assert.Empty(t, Tokenize(""))
}

func TestTokenizeEscapedSeparator(t *testing.T) {
	assert.Equal(t, Keys("a/b"), Tokenize(`a\/b`))
	assert.Equal(t, Keys("a/b", "c"), Tokenize(`a\/b/c`))
}

func TestTokenizeEscapePairs(t *testing.T) {
	// A doubled escape yields a literal escape character.
	assert.Equal(t, Keys(`a\b`), Tokenize(`a\\b`))
	// An escape makes any following character literal.
	assert.Equal(t, Keys("ab"), Tokenize(`a\b`))
}

func TestTokenizeEmptySegments(t *testing.T) {
	assert.Equal(t, Keys("a", "", "b"), Tokenize("a//b"))
	assert.Equal(t, Keys("a", ""), Tokenize("a/"))
}

func TestTokenizeSingleKey(t *testing.T) {
	assert.Equal(t, Keys("readme"), Tokenize("readme"))
}

func TestPathFromURL(t *testing.T) {
	assert.Equal(t, "a/b", PathFromURL("/a/b"))
	assert.Equal(t, "a b", PathFromURL("/a%20b"))
	assert.Equal(t, "a/b", PathFromURL("/a/b?x=1#frag"))
	assert.Equal(t, "", PathFromURL("/"))
	assert.Equal(t, "", PathFromURL(""))
}

func TestSentinelKeysDistinctFromOrdinary(t *testing.T) {
	assert.NotEqual(t, K("<index>"), Index)
	assert.NotEqual(t, K(""), Index)
	assert.NotEqual(t, Index, Global)
	assert.NotEqual(t, Global, Parent)
}

func TestPathString(t *testing.T) {
	assert.Equal(t, "a/b", Keys("a", "b").String())
	assert.Equal(t, "<global>", Path{Global}.String())
}
