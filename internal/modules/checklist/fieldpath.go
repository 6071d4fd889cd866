package checklist

import "strings"

// FieldPath addresses one checklist leaf as "<section>.<leaf>". The same key is
// used for the verdict, the comment editor and the strike-out words of a leaf.
type FieldPath string

// HistorySection is the freeform product-history section present in every
// template. It has no verdict.
const HistorySection = "antecedentProduit"

// HistoryCommentPath addresses the comment of the history section. It parses
// like any other path but does not resolve to a verdict-bearing leaf.
const HistoryCommentPath FieldPath = HistorySection + ".comment"

func Build(section, leaf string) FieldPath {
	return FieldPath(section + "." + leaf)
}

// Parse splits key on its single dot. ok is false for keys with zero or more
// than one dot, or with an empty half; callers treat those as opaque keys.
func Parse(key string) (section, leaf string, ok bool) {
	i := strings.IndexByte(key, '.')
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	if strings.IndexByte(key[i+1:], '.') >= 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

func (p FieldPath) Split() (section, leaf string, ok bool) {
	return Parse(string(p))
}

func (p FieldPath) IsHistory() bool {
	return p == HistoryCommentPath
}

func (p FieldPath) String() string { return string(p) }
