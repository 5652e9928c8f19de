package archive

// Ratio is the Ratcliff/Obershelp similarity of a and b: twice the number of
// matching characters divided by the total length. Matching characters are
// found by taking the longest common block and recursing on both sides of it.
func Ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingChars(a, b)) / float64(total)
}

func matchingChars(a, b string) int {
	i, j, size := longestBlock(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingChars(a[:i], b[:j]) + matchingChars(a[i+size:], b[j+size:])
}

// longestBlock returns the earliest longest common substring of a and b.
func longestBlock(a, b string) (int, int, int) {
	bestI, bestJ, bestSize := 0, 0, 0
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > bestSize {
					bestI, bestJ, bestSize = i-cur[j], j-cur[j], cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return bestI, bestJ, bestSize
}

// closestMatch returns the candidate with the highest ratio to word, provided it
// reaches cutoff. Equal scores go to the lexicographically larger candidate.
func closestMatch(word string, candidates []string, cutoff float64) (string, bool) {
	best, bestScore := "", -1.0
	for _, c := range candidates {
		score := Ratio(c, word)
		if score < cutoff {
			continue
		}
		if score > bestScore || (score == bestScore && c > best) {
			best, bestScore = c, score
		}
	}
	return best, bestScore >= cutoff
}
