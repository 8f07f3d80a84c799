package similarity

import (
	"sort"
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "app": {}, "are": {}, "for": {}, "from": {}, "how": {}, "into": {}, "that": {},
	"the": {}, "their": {}, "this": {}, "tool": {}, "with": {}, "your": {}, "platform": {}, "solution": {},
	"based": {}, "powered": {}, "using": {}, "small": {}, "more": {},
}

// WordCount 关键词及其出现的标题数
type WordCount struct {
	Word  string
	Count int
}

// RecurringWords 统计在至少 minCount 个标题中出现的词，按出现次数降序（同频按字母序），取前 top 个。
// 每个标题内同一个词只计一次，长度不超过 3 的词和停用词忽略。
func RecurringWords(titles []string, minCount, top int) []WordCount {
	counts := make(map[string]int)
	for _, title := range titles {
		seen := make(map[string]struct{})
		for _, w := range strings.FieldsFunc(strings.ToLower(title), splitWord) {
			if len([]rune(w)) <= 3 {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			counts[w]++
		}
	}

	words := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		if c >= minCount {
			words = append(words, WordCount{Word: w, Count: c})
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	if top > 0 && len(words) > top {
		words = words[:top]
	}
	return words
}

func splitWord(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-'
}

// NormalizePhrase 小写并压缩空白，作为 DemandCluster 的 signal_key
func NormalizePhrase(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
