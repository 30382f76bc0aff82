package services

import "iter"

// Pairs yields every unordered pair of distinct indexes i < j below n exactly
// once, in lexicographic order. The sequence depends only on n, so it can be
// ranged over any number of times.
func Pairs(n int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if !yield(i, j) {
					return
				}
			}
		}
	}
}

// PairsFrom yields the pairs whose first index is i
func PairsFrom(i, n int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for j := i + 1; j < n; j++ {
			if !yield(i, j) {
				return
			}
		}
	}
}

// PairCount returns the number of unordered pairs among n items
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
