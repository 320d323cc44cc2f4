package dedup

import "net/url"

// multisetSimilarity measures how many characters two strings share,
// regardless of position, as a fraction of the longer string. Position-blind
// on purpose: CDN variants shuffle the same token material around.
func multisetSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	counts := make(map[rune]int, len(a))
	for _, r := range a {
		counts[r]++
	}
	shared := 0
	for _, r := range b {
		if counts[r] > 0 {
			counts[r]--
			shared++
		}
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longer := la
	if lb > longer {
		longer = lb
	}
	return float64(shared) / float64(longer)
}

// levenshteinDistance is the classic edit distance over runes, two-row form.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// levenshteinSimilarity maps edit distance onto [0,1], 1 meaning identical.
func levenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longer := la
	if lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 1
	}
	return float64(longer-levenshteinDistance(a, b)) / float64(longer)
}

// urlSimilarity is a weighted blend of per-component edit similarities:
// 0.3 host, 0.5 path, 0.2 raw query. The path carries the most identity,
// hosts rotate across CDN edges, and queries are mostly tracking noise.
// Unparseable input falls back to whole-string similarity.
func urlSimilarity(a, b string) float64 {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return levenshteinSimilarity(a, b)
	}
	return 0.3*levenshteinSimilarity(ua.Host, ub.Host) +
		0.5*levenshteinSimilarity(ua.Path, ub.Path) +
		0.2*levenshteinSimilarity(ua.RawQuery, ub.RawQuery)
}
