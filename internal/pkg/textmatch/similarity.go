// internal/pkg/textmatch/similarity.go
package textmatch

// Ratio returns a similarity score in [0,1] for two strings using the
// Ratcliff/Obershelp algorithm: twice the number of matching characters
// divided by the total number of characters in both strings. Matching
// characters are counted from the longest common substring plus, recursively,
// the pieces to its left and right. Matches anchor on the leftmost run of the
// first argument, so the score depends on argument order.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	m := matchingChars(ra, rb)
	return 2.0 * float64(m) / float64(len(ra)+len(rb))
}

func matchingChars(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingChars(a[:ai], b[:bi])
	total += matchingChars(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch finds the leftmost longest common substring of a and b and
// returns its start offsets and length.
func longestMatch(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	// j2len maps end position in b to the length of the common run ending
	// there for the previous position in a.
	j2len := make(map[int]int)
	for i := range a {
		next := make(map[int]int)
		for j := range b {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestA, bestB, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return bestA, bestB, bestSize
}
