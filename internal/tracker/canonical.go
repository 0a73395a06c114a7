package tracker

import (
	"regexp"
	"strings"
)

var (
	noiseRe = regexp.MustCompile(`[^a-zA-Z0-9/_]`)
	nameRe  = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// CanonicalFragments normalizes a remote code_signature into the path
// fragment convention the analyzer matches with:
//
//	a.b.|c.d.  ->  [a/b, c/d]
//
// Dots directly before a `|` are collapsed, leading/trailing dots are
// stripped, remaining dots become slashes, and fragments that are pure
// noise (empty once everything outside [a-zA-Z0-9/_] is removed) are
// discarded.
func CanonicalFragments(codeSignature string) []string {
	s := codeSignature
	for strings.Contains(s, ".|") {
		s = strings.ReplaceAll(s, ".|", "|")
	}
	s = strings.Trim(s, ".")
	s = strings.ReplaceAll(s, ".", "/")
	s = strings.ReplaceAll(s, `\/`, "/")

	var frags []string
	for _, frag := range strings.Split(s, "|") {
		stripped := noiseRe.ReplaceAllString(frag, "")
		// Leftover separators alone (e.g. from ".-.-.") are still noise.
		if strings.Trim(stripped, "/") == "" {
			continue
		}
		frags = append(frags, frag)
	}
	return frags
}

// CanonicalName derives the catalog section identifier for a remote
// tracker: display name lower-cased with everything non-alphanumeric
// stripped. May be empty for a name with no usable characters.
func CanonicalName(name string) string {
	return strings.ToLower(nameRe.ReplaceAllString(name, ""))
}
