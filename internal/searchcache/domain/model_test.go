package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyCaseInsensitive(t *testing.T) {
	a := Key("Bakery", "USA", "CA", "San Francisco", 10)
	b := Key("bakery", "usa", "ca", "san francisco", 10)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestKeyDistinguishesTuples(t *testing.T) {
	base := Key("Bakery", "USA", "CA", "San Francisco", 10)

	assert.NotEqual(t, base, Key("Cafe", "USA", "CA", "San Francisco", 10))
	assert.NotEqual(t, base, Key("Bakery", "USA", "CA", "San Francisco", 25), "volume is part of the tuple")
	assert.NotEqual(t, base, Key("Bakery", "USA", "CA", "Oakland", 10))
}
