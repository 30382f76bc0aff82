package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alimgiray/devmatch/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiPunctuation matches the ASCII punctuation characters stripped from names
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

type NormalizerService struct{}

func NewNormalizerService() *NormalizerService {
	return &NormalizerService{}
}

// Normalize decomposes a developer into the canonical fields used for matching.
// Names are folded aggressively; the email is only split at the first "@".
func (s *NormalizerService) Normalize(dev models.Developer) models.NormalizedDeveloper {
	fullName := s.NormalizeName(dev.Name)
	first, last := splitName(fullName)

	return models.NormalizedDeveloper{
		FullName:     fullName,
		First:        first,
		Last:         last,
		InitialFirst: initialOf(first),
		InitialLast:  initialOf(last),
		Email:        dev.Email,
		EmailLocal:   EmailLocalPart(dev.Email),
	}
}

// NormalizeName strips punctuation and accents, case-folds and collapses whitespace
func (s *NormalizerService) NormalizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, name)

	// Transformers and casers carry state, so each call gets its own
	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if folded, _, err := transform.String(stripMarks, name); err == nil {
		name = folded
	}

	name = cases.Fold().String(name)

	return strings.Join(strings.Fields(name), " ")
}

// EmailLocalPart returns everything before the first "@", or the whole string without one
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// splitName splits a normalized name into first token and the rest
func splitName(fullName string) (string, string) {
	first, last, found := strings.Cut(fullName, " ")
	if !found {
		return fullName, ""
	}
	return first, last
}

// initialOf returns the first letter of a name part longer than one letter.
// A one letter part is already an initial and yields "".
func initialOf(part string) string {
	if utf8.RuneCountInString(part) <= 1 {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(part)
	return string(r)
}
