package util

import (
	"sort"
	"strings"
)

// MakeTextList joins items into an oxford-comma separated English list,
// e.g. ["a","b","c"] -> "a, b, and c".
func MakeTextList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		var sb strings.Builder
		for i, it := range items {
			if i == len(items)-1 {
				sb.WriteString("and ")
				sb.WriteString(it)
				continue
			}
			sb.WriteString(it)
			sb.WriteString(", ")
		}
		return sb.String()
	}
}

// ArticleFor returns "a" or "an" depending on whether noun starts with a
// vowel sound, for use in generated error messages like "expected an
// IDENTIFIER".
func ArticleFor(noun string, capitalize bool) string {
	article := "a"
	if len(noun) > 0 {
		switch noun[0] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			article = "an"
		}
	}
	if capitalize {
		return strings.ToUpper(article[:1]) + article[1:]
	}
	return article
}

// OrderedKeys returns the keys of m sorted ascending.
func OrderedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Alphabetized returns a sorted copy of items.
func Alphabetized(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	sort.Strings(out)
	return out
}
