package accounts

import (
	"cmp"
	"strings"
)

// Segments splits an account code on dots, dropping empty segments.
func Segments(code string) []string {
	parts := strings.Split(code, ".")
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Level returns the depth of the code in the chart, i.e. its segment count.
func Level(code string) int {
	return len(Segments(code))
}

// IsHeader reports whether the code may own children (trailing dot).
func IsHeader(code string) bool {
	return strings.HasSuffix(code, ".")
}

// Root returns the first segment of the code, or "" for an empty code.
func Root(code string) string {
	segs := Segments(code)
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}

// ParentCode derives the code a parent header account would have. ok is false
// for first-level codes.
func ParentCode(code string) (string, bool) {
	segs := Segments(code)
	if len(segs) <= 1 {
		return "", false
	}
	return strings.Join(segs[:len(segs)-1], ".") + ".", true
}

// ParentOf resolves the parent of code within known. A code whose derived
// parent is absent from known is a root.
func ParentOf(code string, known map[string]struct{}) (string, bool) {
	parent, ok := ParentCode(code)
	if !ok {
		return "", false
	}
	if _, exists := known[parent]; !exists {
		return "", false
	}
	return parent, true
}

// CompareHierarchical orders codes segment by segment. Segments that both
// parse as integers compare numerically, anything else lexicographically. A
// code that is a strict prefix of another sorts first.
func CompareHierarchical(a, b string) int {
	sa, sb := Segments(a), Segments(b)
	for i := 0; i < len(sa) && i < len(sb); i++ {
		if c := compareSegment(sa[i], sb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(sa) < len(sb):
		return -1
	case len(sa) > len(sb):
		return 1
	}
	// "4." and "4" share segments; keep the order total.
	return strings.Compare(a, b)
}

// compareSegment orders all-digit segments by numeric value at any length,
// anything else lexicographically.
func compareSegment(a, b string) int {
	if isDigits(a) && isDigits(b) {
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if c := cmp.Compare(len(ta), len(tb)); c != 0 {
			return c
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
