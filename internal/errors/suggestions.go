package errors

import (
	"strings"
)

// ============================================================================
// 相似名称查找
// ============================================================================

// MaxSuggestDistance 给出 "did you mean" 建议的最大编辑距离
const MaxSuggestDistance = 2

// FindSimilar 在候选名称中查找与 name 编辑距离最小的一个
//
// 距离超过 maxDistance 或没有候选时返回空字符串；与 name 完全相同的
// 候选不算建议。距离相同时取先出现的候选，结果是确定的。
func FindSimilar(name string, candidates []string, maxDistance int) string {
	best := ""
	bestDistance := maxDistance + 1
	for _, c := range candidates {
		if c == name {
			continue
		}
		if d := editDistance(name, c); d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}

// editDistance 计算忽略大小写的 Levenshtein 距离（两行滚动数组）
func editDistance(s1, s2 string) int {
	s1, s2 = strings.ToLower(s1), strings.ToLower(s2)
	prev := make([]int, len(s2)+1)
	cur := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		cur[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(s2)]
}
