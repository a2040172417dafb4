package service

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Cookie Sampler", "cookie-sampler"},
		{"  Crème Brûlée!! ", "creme-brulee"},
		{"Mom's #1 Gift-Box", "mom-s-1-gift-box"},
		{"---", "fallback"},
		{"", "fallback"},
		{"Ümlaut & Çedilla", "umlaut-cedilla"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in, "fallback"), tt.in)
	}
}

func TestSlugify_Truncates(t *testing.T) {
	s := Slugify(strings.Repeat("ab ", 100), "x")
	assert.LessOrEqual(t, utf8.RuneCountInString(s), slugBaseMax)
	assert.False(t, strings.HasSuffix(s, "-"))
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"tin": true, "tin-2": true}
	got, err := uniqueSlug("Tin", "x", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "tin-3", got)

	long := strings.Repeat("a", slugBaseMax)
	taken = map[string]bool{long: true}
	got, err = uniqueSlug(long, "x", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), slugMax)
	assert.True(t, strings.HasSuffix(got, "-2"))

	boom := errors.New("boom")
	_, err = uniqueSlug("Tin", "x", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
