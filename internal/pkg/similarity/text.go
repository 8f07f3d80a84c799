package similarity

import (
	"strings"
)

// Tokens 小写后按空白切分的词集合
func Tokens(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Text 词集合的 Jaccard 相似度 |A∩B| / |A∪B|，任一方为空时为 0
func Text(a, b string) float64 {
	return Jaccard(Tokens(a), Tokens(b))
}

// Jaccard 两个词集合的 Jaccard 相似度
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
