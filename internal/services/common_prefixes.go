package services

// CommonPrefixSet holds email local-parts too generic to carry identity
// signal. It is read-only once built.
type CommonPrefixSet struct {
	prefixes map[string]struct{}
}

// NewCommonPrefixSet builds a set from the given local-parts
func NewCommonPrefixSet(prefixes ...string) CommonPrefixSet {
	set := CommonPrefixSet{prefixes: make(map[string]struct{}, len(prefixes))}
	for _, prefix := range prefixes {
		set.prefixes[prefix] = struct{}{}
	}
	return set
}

// Contains reports whether the local-part is generic. Comparison is exact,
// like every other email local-part comparison.
func (s CommonPrefixSet) Contains(local string) bool {
	_, ok := s.prefixes[local]
	return ok
}

// Len returns the number of prefixes in the set
func (s CommonPrefixSet) Len() int {
	return len(s.prefixes)
}
