package discovery

import (
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortNatural orders paths segment by segment so embedded numbers compare by
// value: clip2.mp4 sorts before clip10.mp4. Paths the collator treats as equal
// (clip01 and clip1) fall back to byte order, keeping the result total.
func SortNatural(paths []string) {
	// Collators are not safe for concurrent use, so each sort gets its own.
	col := collate.New(language.Und, collate.Numeric)
	slices.SortStableFunc(paths, func(a, b string) int {
		return compareNatural(col, a, b)
	})
}

func compareNatural(col *collate.Collator, a, b string) int {
	as := splitSegments(a)
	bs := splitSegments(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := col.CompareString(as[i], bs[i]); c != 0 {
			return c
		}
	}
	if len(as) != len(bs) {
		if len(as) < len(bs) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func splitSegments(path string) []string {
	return strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' })
}
