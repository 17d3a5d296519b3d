package stem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

func TestPorterGroupsInflections(t *testing.T) {
	p := Porter{}
	assert.Equal(t, p.Stem("run"), p.Stem("running"))
	assert.Equal(t, p.Stem("run"), p.Stem("runs"))
	assert.Equal(t, p.Stem("connect"), p.Stem("connection"))
	assert.NotEqual(t, p.Stem("cat"), p.Stem("cot"))
}

func TestSuffixStem(t *testing.T) {
	s := NewSuffix(nil, 0)

	tests := []struct {
		word, want string
	}{
		{"running", "runn"},
		{"cats", "cat"},
		{"boxes", "box"},    // "es" and "s" both match; longest wins
		{"sing", "sing"},    // stem would be too short
		{"movement", "move"},
		{"kindness", "kind"},
		{"Quickly", "quick"},
		{"cat", "cat"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Stem(tt.word), tt.word)
	}
}

func TestSuffixCustomList(t *testing.T) {
	s := NewSuffix([]string{"x"}, 1)
	assert.Equal(t, "bo", s.Stem("box"))
	assert.Equal(t, "x", s.Stem("x"))
}

func TestFunc(t *testing.T) {
	var s Stemmer = Func(func(w string) string { return w[:1] })
	assert.Equal(t, "a", s.Stem("apple"))
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "porter", "Snowball"} {
		s, err := ByName(name)
		require.NoError(t, err)
		assert.IsType(t, Porter{}, s)
	}
	s, err := ByName("suffix")
	require.NoError(t, err)
	assert.IsType(t, &Suffix{}, s)

	_, err = ByName("lancaster")
	assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig))
}
