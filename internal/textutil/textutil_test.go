package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "zezima", CanonicalName("  Zezima "))
	assert.Equal(t, "big bob", CanonicalName("Big_Bob"))
	assert.Equal(t, "jose", CanonicalName("José"))
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("bob 99"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("thirteenchars"))
	assert.False(t, ValidName("bob!"))
	assert.False(t, ValidName("Bob"))
}

func TestBase37RoundTrip(t *testing.T) {
	for _, name := range []string{"a", "bob", "big bob", "player 123", "zzzzzzzzzzzz"} {
		assert.Equal(t, name, FromBase37(ToBase37(name)), name)
	}
	assert.Equal(t, ToBase37("bob"), ToBase37("BOB"))
	assert.Equal(t, ToBase37("bob"), ToBase37("bob  "))
	assert.Zero(t, ToBase37(""))
}

func TestSanitizeChat(t *testing.T) {
	assert.Equal(t, "hello", SanitizeChat(" hel\x00lo\n", 80))
	assert.Equal(t, "abc", SanitizeChat("abcdef", 3))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Big Bob", DisplayName("big bob"))
}
