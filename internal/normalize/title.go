package normalize

import (
	"regexp"
	"strings"
)

// Title canonicalization shared by identity generation and slug construction.
// Both must go through the same function or identity stability breaks.

var (
	// Technical tokens stripped from release names. Fixed list; matching is
	// whole-token so ordinary words are untouched.
	technicalTokens = regexp.MustCompile(`(?i)(^|[\s-])(720p|1080p|2160p|480p|4k|uhd|hdr|bluray|blu-ray|bdrip|brrip|webrip|web-dl|webdl|hdtv|dvdrip|hdcam|cam|x264|x265|h264|h265|h\.264|h\.265|hevc|avc|aac|dts|ac3|eac3|atmos|remux|proper|repack)(?:[\s-]|$)`)

	bracketedGroup = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)

	releaseGroupSuffix = regexp.MustCompile(`-\s*[a-z0-9]+$`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// NormalizeTitle lowercases a free-text title, folds separators, strips known
// technical tokens and bracketed groups, and collapses whitespace. Pure
// function: no I/O, no locale-dependent casing.
func NormalizeTitle(title string) string {
	hadTechnicalTokens := technicalTokens.MatchString(title) || bracketedGroup.MatchString(title)

	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = bracketedGroup.ReplaceAllString(s, " ")

	// Token matches can be adjacent, so a single pass leaves every other
	// token behind. Run until fixpoint; the list is fixed so this terminates.
	for {
		next := technicalTokens.ReplaceAllString(s, " ")
		if next == s {
			break
		}
		s = next
	}

	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	// A trailing "-GRP" is a release-group signature, but only in strings
	// that looked like release names to begin with. Plain titles keep their
	// dashes ("Spider-Man").
	if hadTechnicalTokens {
		s = strings.TrimSpace(releaseGroupSuffix.ReplaceAllString(s, ""))
	}

	return s
}

// Slug converts a title to its identity-key form: normalized, with spaces
// replaced by dashes.
func Slug(title string) string {
	return strings.ReplaceAll(NormalizeTitle(title), " ", "-")
}
