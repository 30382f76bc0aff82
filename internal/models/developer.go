package models

import "sort"

// Developer is one (name, email) identity string as it appears in a commit
// author or committer field
type Developer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NormalizedDeveloper is the canonical decomposition of a Developer used for matching
type NormalizedDeveloper struct {
	FullName     string `json:"full_name"`
	First        string `json:"first"`
	Last         string `json:"last"`
	InitialFirst string `json:"initial_first"`
	InitialLast  string `json:"initial_last"`
	Email        string `json:"email"`
	EmailLocal   string `json:"email_local"`
}

// UniqueDevelopers removes exact duplicates and returns the developers
// sorted by name, then email
func UniqueDevelopers(devs []Developer) []Developer {
	seen := make(map[Developer]struct{}, len(devs))
	unique := make([]Developer, 0, len(devs))
	for _, dev := range devs {
		if _, ok := seen[dev]; ok {
			continue
		}
		seen[dev] = struct{}{}
		unique = append(unique, dev)
	}

	sort.Slice(unique, func(i, j int) bool {
		if unique[i].Name != unique[j].Name {
			return unique[i].Name < unique[j].Name
		}
		return unique[i].Email < unique[j].Email
	})

	return unique
}
