package services

type TextSimilarityService struct{}

func NewTextSimilarityService() *TextSimilarityService {
	return &TextSimilarityService{}
}

// CalculateSimilarity calculates the normalized indel similarity of two strings.
// Returns a value between 0 (no shared characters) and 1 (identical); two empty
// strings are identical.
func (s *TextSimilarityService) CalculateSimilarity(str1, str2 string) float64 {
	if str1 == str2 {
		return 1.0
	}

	r1, r2 := []rune(str1), []rune(str2)
	total := len(r1) + len(r2)
	if total == 0 {
		return 1.0
	}

	distance := s.indelDistance(r1, r2)
	return float64(total-distance) / float64(total)
}

// indelDistance counts the insertions and deletions needed to turn one rune
// sequence into the other. A substitution costs two edits.
func (s *TextSimilarityService) indelDistance(r1, r2 []rune) int {
	return len(r1) + len(r2) - 2*s.longestCommonSubsequence(r1, r2)
}

// longestCommonSubsequence returns the LCS length using two rolling rows
func (s *TextSimilarityService) longestCommonSubsequence(r1, r2 []rune) int {
	if len(r1) < len(r2) {
		r1, r2 = r2, r1
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for i := 1; i <= len(r1); i++ {
		for j := 1; j <= len(r2); j++ {
			if r1[i-1] == r2[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
