package search

import (
	"strings"
	"unicode"
)

// DefaultThreshold 默认相似度阈值，与 pg_trgm.similarity_threshold 默认值一致
const DefaultThreshold = 0.3

// Trigrams 提取文本的三元组集合
// 规则与 pg_trgm 一致：转小写，按字母数字切词，每个词前补两个空格、后补一个空格。
func Trigrams(text string) map[string]struct{} {
	result := make(map[string]struct{})
	for _, word := range splitWords(text) {
		padded := []rune("  " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			result[string(padded[i:i+3])] = struct{}{}
		}
	}
	return result
}

// Similarity 计算两段文本的三元组相似度，取值范围 [0, 1]
func Similarity(a, b string) float64 {
	left := Trigrams(a)
	right := Trigrams(b)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	common := 0
	for gram := range left {
		if _, ok := right[gram]; ok {
			common++
		}
	}
	union := len(left) + len(right) - common
	if union <= 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// Score 计算相似度并判断是否达到阈值，threshold <= 0 时使用默认阈值
func Score(query, document string, threshold float64) (float64, bool) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	score := Similarity(query, document)
	return score, score >= threshold
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
