package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/go-linker/internal/textutil"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"john", "doe"}, textutil.Tokenize("John  Doe"))
	assert.Equal(t, []string{"jean", "luc", "picard"}, textutil.Tokenize("Jean-Luc Picard"))
	assert.Nil(t, textutil.Tokenize("  ...  "))
}

func TestTokenizeURL(t *testing.T) {
	t.Parallel()

	tokens := textutil.TokenizeURL("https://www.discogs.com/artist/1000")
	assert.Equal(t, []string{"discogs", "artist", "1000"}, tokens)
}

func TestJoinTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "john doe", textutil.JoinTokens([]string{"john", "doe"}))
	assert.Equal(t, "", textutil.JoinTokens(nil))
}
