package service

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	slugBaseMax = 90
	slugMax     = 100
)

// Slugify lower-cases name, strips diacritics (NFKD then drop combining
// marks) and collapses every run of non-alphanumerics into one hyphen.
// The result is at most 90 runes; fallback is used when nothing survives.
func Slugify(name, fallback string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingHyphen := false
	n := 0
	for _, r := range strings.ToLower(folded) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingHyphen = n > 0
			continue
		}
		if pendingHyphen {
			if n+1 >= slugBaseMax {
				break
			}
			b.WriteByte('-')
			n++
			pendingHyphen = false
		}
		b.WriteRune(r)
		n++
		if n >= slugBaseMax {
			break
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// uniqueSlug returns Slugify(name) or the first of base-2, base-3, ... that
// exists reports as free.
func uniqueSlug(name, fallback string, exists func(string) (bool, error)) (string, error) {
	base := Slugify(name, fallback)
	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		trimmed := []rune(base)
		if len(trimmed)+len(suffix) > slugMax {
			trimmed = trimmed[:slugMax-len(suffix)]
		}
		candidate = string(trimmed) + suffix
	}
}
